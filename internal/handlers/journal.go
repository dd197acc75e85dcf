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

// JournalHandler serves the caller's journal.
type JournalHandler struct {
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
}

func NewJournalHandler(reconciler *reconcile.Reconciler, logger *zap.Logger) *JournalHandler {
	return &JournalHandler{reconciler: reconciler, logger: logger}
}

// ListEntries handles GET /api/v1/journals.
func (h *JournalHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	entries, err := h.reconciler.LoadJournalEntries(r.Context(), userID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, entries)
}

// CreateEntry handles POST /api/v1/journals. Entries always belong to
// the caller regardless of what the body claims.
func (h *JournalHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var entry domain.JournalEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entry.ID = ""
	entry.UserID = userID

	if err := h.reconciler.SaveJournalEntry(r.Context(), &entry); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, &entry)
}

// UpdateEntry handles PUT /api/v1/journals/{entryID}.
func (h *JournalHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var entry domain.JournalEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	entry.ID = chi.URLParam(r, "entryID")
	entry.UserID = userID

	if err := h.reconciler.SaveJournalEntry(r.Context(), &entry); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, &entry)
}

// DeleteEntry handles DELETE /api/v1/journals/{entryID}.
func (h *JournalHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	err := h.reconciler.DeleteJournalEntry(r.Context(), userID, chi.URLParam(r, "entryID"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusNoContent, nil)
}
