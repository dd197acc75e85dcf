package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/reconcile"
	"memorybox-backend/pkg/api"
)

// ProfileHandler serves the caller's own profile.
type ProfileHandler struct {
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
}

func NewProfileHandler(reconciler *reconcile.Reconciler, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{reconciler: reconciler, logger: logger}
}

// GetProfile handles GET /api/v1/profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.reconciler.LoadProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/v1/profile. The profile id is always
// the authenticated caller; the body cannot point it elsewhere.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req api.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	profile := &domain.Profile{
		ID:                  userID,
		Email:               req.Email,
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		FamilyID:            req.FamilyID,
		OnboardingCompleted: req.OnboardingCompleted,
	}
	// Carry the original creation time forward, best-effort. A failed
	// load must not block a save the engine can absorb locally.
	if current, err := h.reconciler.LoadProfile(r.Context(), userID); err == nil && current != nil {
		profile.CreatedAt = current.CreatedAt
	}
	if err := h.reconciler.SaveProfile(r.Context(), profile); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, profile)
}
