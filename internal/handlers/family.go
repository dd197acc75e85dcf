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

// FamilyHandler serves family records.
type FamilyHandler struct {
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
}

func NewFamilyHandler(reconciler *reconcile.Reconciler, logger *zap.Logger) *FamilyHandler {
	return &FamilyHandler{reconciler: reconciler, logger: logger}
}

// CreateFamily handles POST /api/v1/families. The caller becomes the
// family's creator and a fresh id is minted here.
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req api.CreateFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	family := &domain.Family{
		ID:        domain.NewID(),
		Name:      req.Name,
		CreatedBy: userID,
	}
	if err := h.reconciler.SaveFamily(r.Context(), family); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, family)
}

// GetFamily handles GET /api/v1/families/{familyID}.
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	family, err := h.reconciler.LoadFamily(r.Context(), chi.URLParam(r, "familyID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, family)
}

// UpdateFamily handles PUT /api/v1/families/{familyID}.
func (h *FamilyHandler) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	familyID := chi.URLParam(r, "familyID")

	var req api.UpdateFamilyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	family := &domain.Family{ID: familyID, Name: req.Name}
	if current, err := h.reconciler.LoadFamily(r.Context(), familyID); err == nil && current != nil {
		family.CreatedBy = current.CreatedBy
		family.CreatedAt = current.CreatedAt
	}
	if err := h.reconciler.SaveFamily(r.Context(), family); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, family)
}
