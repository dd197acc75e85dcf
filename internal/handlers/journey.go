package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/reconcile"
	"memorybox-backend/pkg/api"
)

// JourneyHandler serves journey progress and book preferences, the two
// per-user records scoped by journey type.
type JourneyHandler struct {
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
}

func NewJourneyHandler(reconciler *reconcile.Reconciler, logger *zap.Logger) *JourneyHandler {
	return &JourneyHandler{reconciler: reconciler, logger: logger}
}

// GetProgress handles GET /api/v1/journeys/{journeyType}.
func (h *JourneyHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	progress, err := h.reconciler.LoadJourneyProgress(r.Context(), userID, chi.URLParam(r, "journeyType"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, progress)
}

// UpdateProgress handles PUT /api/v1/journeys/{journeyType}. Every
// update counts as journey activity.
func (h *JourneyHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req api.UpdateJourneyProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	progress := &domain.JourneyProgress{
		UserID:         userID,
		JourneyType:    chi.URLParam(r, "journeyType"),
		CompletedSteps: req.CompletedSteps,
		CurrentStep:    req.CurrentStep,
		LastActivityAt: time.Now().UTC(),
	}
	if err := h.reconciler.SaveJourneyProgress(r.Context(), progress); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, progress)
}

// GetBookPreference handles GET /api/v1/book-preferences. Journey type
// and the optional child scope arrive as query parameters.
func (h *JourneyHandler) GetBookPreference(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	preference, err := h.reconciler.LoadBookPreference(r.Context(), userID,
		r.URL.Query().Get("journeyType"), r.URL.Query().Get("childId"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, preference)
}

// UpdateBookPreference handles PUT /api/v1/book-preferences.
func (h *JourneyHandler) UpdateBookPreference(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req api.UpdateBookPreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	preference := &domain.BookPreference{
		UserID:       userID,
		JourneyType:  req.JourneyType,
		ChildID:      req.ChildID,
		CustomTitle:  req.CustomTitle,
		LastOpenedAt: time.Now().UTC(),
	}
	if err := h.reconciler.SaveBookPreference(r.Context(), preference); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, preference)
}
