package remote

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// JournalClient syncs rows of the journals table.
type JournalClient struct {
	transport Transport
	local     *localstore.Store
	logger    *zap.Logger
}

func NewJournalClient(transport Transport, local *localstore.Store, logger *zap.Logger) *JournalClient {
	return &JournalClient{transport: transport, local: local, logger: logger}
}

// List returns the user's journal entries, newest first. Ephemeral user
// ids are served from the local cache without a remote call.
func (c *JournalClient) List(ctx context.Context, userID string) ([]domain.JournalEntry, error) {
	if !domain.IsDurable(userID) {
		var cached []domain.JournalEntry
		c.local.Read(localstore.JournalKey, &cached)
		if cached == nil {
			cached = []domain.JournalEntry{}
		}
		return cached, nil
	}
	var rows []journalRow
	if err := c.transport.SelectEq(ctx, TableJournals, map[string]string{"user_id": userID}, &rows); err != nil {
		return nil, err
	}
	return journalsFromRows(rows), nil
}

// Upsert pushes one journal entry. Ephemeral user ids stay purely local.
func (c *JournalClient) Upsert(ctx context.Context, entry *domain.JournalEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if !domain.IsDurable(entry.UserID) {
		if !c.local.UpsertRecord(localstore.JournalKey, entry) {
			return appErrors.NewInternal("caching ephemeral journal entry failed", nil)
		}
		return nil
	}
	return c.transport.Upsert(ctx, TableJournals, "id", journalToRow(*entry))
}

// Delete removes one journal entry by id. Ephemeral user ids stay purely
// local.
func (c *JournalClient) Delete(ctx context.Context, userID, entryID string) error {
	if !domain.IsDurable(userID) {
		if !c.local.RemoveRecord(localstore.JournalKey, entryID) {
			return appErrors.NewInternal("dropping ephemeral journal entry failed", nil)
		}
		return nil
	}
	return c.transport.DeleteEq(ctx, TableJournals, map[string]string{"id": entryID})
}
