package reconcile

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// SaveJournalEntry persists a journal entry remote-first. Entries without
// an id or cadence get the defaults a fresh entry carries.
func (r *Reconciler) SaveJournalEntry(ctx context.Context, entry *domain.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = domain.NewID()
	}
	if entry.Frequency == "" {
		entry.Frequency = domain.FrequencyDaily
	}
	entry.Touch(r.now())
	if err := entry.Validate(); err != nil {
		r.outcome(kindJournal, "validation_failed")
		return err
	}

	err := r.saveWithRetry(ctx, kindJournal, func(ctx context.Context) error {
		return r.clients.Journals.Upsert(ctx, entry)
	})
	if err != nil {
		r.outcome(kindJournal, classifySaveError(err))
		return err
	}

	r.local.UpsertRecord(localstore.JournalKey, entry)
	r.outcome(kindJournal, "succeeded")
	return nil
}

// DeleteJournalEntry removes an entry remote-first, then from the local
// mirror.
func (r *Reconciler) DeleteJournalEntry(ctx context.Context, userID, entryID string) error {
	if userID == "" || entryID == "" {
		return appErrors.NewValidation("user id and entry id are required")
	}

	err := r.saveWithRetry(ctx, kindJournal, func(ctx context.Context) error {
		return r.clients.Journals.Delete(ctx, userID, entryID)
	})
	if err != nil {
		r.outcome(kindJournal, classifySaveError(err))
		return err
	}

	r.local.RemoveRecord(localstore.JournalKey, entryID)
	r.outcome(kindJournal, "succeeded")
	return nil
}

// LoadJournalEntries returns the user's journal, newest first. Remote
// truth wins and is mirrored; an unreachable backend falls back to the
// cached copy.
func (r *Reconciler) LoadJournalEntries(ctx context.Context, userID string) ([]domain.JournalEntry, error) {
	if userID == "" {
		return nil, appErrors.NewValidation("user id is required")
	}

	entries, err := r.clients.Journals.List(ctx, userID)
	if err != nil {
		var cached []domain.JournalEntry
		if r.local.Read(localstore.JournalKey, &cached) {
			r.logger.Warn("serving cached journal, remote read failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return cached, nil
		}
		r.logger.Warn("journal unavailable remotely and locally, serving empty list",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return []domain.JournalEntry{}, nil
	}

	r.local.Write(localstore.JournalKey, entries)
	return entries, nil
}
