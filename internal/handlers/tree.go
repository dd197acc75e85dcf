package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/reconcile"
	"memorybox-backend/pkg/api"
	appErrors "memorybox-backend/pkg/errors"
)

// TreeHandler serves the family tree document.
type TreeHandler struct {
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
}

func NewTreeHandler(reconciler *reconcile.Reconciler, logger *zap.Logger) *TreeHandler {
	return &TreeHandler{reconciler: reconciler, logger: logger}
}

// GetTree handles GET /api/v1/families/{familyID}/tree.
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	tree, err := h.reconciler.LoadTree(r.Context(), chi.URLParam(r, "familyID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, tree)
}

// SaveTree handles PUT /api/v1/families/{familyID}/tree. The body is the
// whole tree document; the path decides which family it lands on. A save
// the engine rejects as destructive is answered exactly like a success,
// so a glitching client cannot tell and will not turn an empty screen
// into an empty backend.
func (h *TreeHandler) SaveTree(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var tree domain.FamilyTree
	if err := json.NewDecoder(r.Body).Decode(&tree); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tree.FamilyID = chi.URLParam(r, "familyID")

	err := h.reconciler.SaveTree(r.Context(), &tree)
	if err != nil && !appErrors.IsRejected(err) {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, &tree)
}
