package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/reconcile"
	"memorybox-backend/pkg/api"
)

// CapsuleHandler serves time capsules within a family scope.
type CapsuleHandler struct {
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
}

func NewCapsuleHandler(reconciler *reconcile.Reconciler, logger *zap.Logger) *CapsuleHandler {
	return &CapsuleHandler{reconciler: reconciler, logger: logger}
}

// ListCapsules handles GET /api/v1/families/{familyID}/capsules.
func (h *CapsuleHandler) ListCapsules(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	capsules, err := h.reconciler.LoadTimeCapsules(r.Context(), chi.URLParam(r, "familyID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, capsules)
}

// CreateCapsule handles POST /api/v1/families/{familyID}/capsules.
func (h *CapsuleHandler) CreateCapsule(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req api.CreateTimeCapsuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	capsule := &domain.TimeCapsule{
		FamilyID:  chi.URLParam(r, "familyID"),
		Title:     req.Title,
		Message:   req.Message,
		OpenDate:  req.OpenDate,
		CreatedBy: userID,
	}
	if err := h.reconciler.SaveTimeCapsule(r.Context(), capsule); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, capsule)
}

// DeleteCapsule handles DELETE /api/v1/families/{familyID}/capsules/{capsuleID}.
func (h *CapsuleHandler) DeleteCapsule(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	err := h.reconciler.DeleteTimeCapsule(r.Context(), chi.URLParam(r, "familyID"), chi.URLParam(r, "capsuleID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}
