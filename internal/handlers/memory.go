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

// MemoryHandler serves memory records within a family scope.
type MemoryHandler struct {
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
}

func NewMemoryHandler(reconciler *reconcile.Reconciler, logger *zap.Logger) *MemoryHandler {
	return &MemoryHandler{reconciler: reconciler, logger: logger}
}

// ListMemories handles GET /api/v1/families/{familyID}/memories.
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	memories, err := h.reconciler.LoadMemories(r.Context(), chi.URLParam(r, "familyID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, memories)
}

// CreateMemory handles POST /api/v1/families/{familyID}/memories. The
// body is the memory document; files inside it reference media that was
// already uploaded elsewhere. The engine mints the id and echoes it back.
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var m domain.Memory
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	m.ID = ""
	m.FamilyID = chi.URLParam(r, "familyID")

	if err := h.reconciler.AddMemory(r.Context(), &m); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, &m)
}

// UpdateMemory handles PUT /api/v1/families/{familyID}/memories/{memoryID}.
func (h *MemoryHandler) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var m domain.Memory
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	m.ID = chi.URLParam(r, "memoryID")
	m.FamilyID = chi.URLParam(r, "familyID")

	if err := h.reconciler.UpdateMemory(r.Context(), &m); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, &m)
}

// DeleteMemory handles DELETE /api/v1/families/{familyID}/memories/{memoryID}.
func (h *MemoryHandler) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	err := h.reconciler.DeleteMemory(r.Context(), chi.URLParam(r, "familyID"), chi.URLParam(r, "memoryID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}
