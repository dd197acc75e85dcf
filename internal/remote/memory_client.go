package remote

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// MemoryClient syncs rows of the memories table.
type MemoryClient struct {
	transport Transport
	local     *localstore.Store
	logger    *zap.Logger
}

func NewMemoryClient(transport Transport, local *localstore.Store, logger *zap.Logger) *MemoryClient {
	return &MemoryClient{transport: transport, local: local, logger: logger}
}

// List returns the family's memories, newest first. Ephemeral family ids
// are served from the local cache without a remote call.
func (c *MemoryClient) List(ctx context.Context, familyID string) ([]domain.Memory, error) {
	if !domain.IsDurable(familyID) {
		var cached []domain.Memory
		c.local.Read(localstore.MemoriesKey(familyID), &cached)
		if cached == nil {
			cached = []domain.Memory{}
		}
		return cached, nil
	}
	var rows []memoryRow
	if err := c.transport.SelectEq(ctx, TableMemories, map[string]string{"family_id": familyID}, &rows); err != nil {
		return nil, err
	}
	return memoriesFromRows(rows, c.logger), nil
}

// Upsert pushes one memory. Legacy kind spellings are normalized in
// place first, so the value the caller holds matches what was written.
// Ephemeral family ids stay purely local.
func (c *MemoryClient) Upsert(ctx context.Context, m *domain.Memory) error {
	kind, known := domain.NormalizeMemoryType(m.Type)
	if !known && m.Type != "" {
		c.logger.Warn("unrecognized memory kind on write, defaulting to photo",
			zap.String("memory_id", m.ID),
			zap.String("raw_kind", m.Type),
		)
	}
	m.Type = kind
	if err := m.Validate(); err != nil {
		return err
	}
	if !domain.IsDurable(m.FamilyID) {
		if !c.local.UpsertRecord(localstore.MemoriesKey(m.FamilyID), m) {
			return appErrors.NewInternal("caching ephemeral memory failed", nil)
		}
		return nil
	}
	return c.transport.Upsert(ctx, TableMemories, "id", memoryToRow(*m))
}

// Delete removes one memory by id, scoped to its family so an id alone
// cannot reach across families. Ephemeral family ids stay purely local;
// removing an absent record is a no-op either way.
func (c *MemoryClient) Delete(ctx context.Context, familyID, memoryID string) error {
	if !domain.IsDurable(familyID) {
		if !c.local.RemoveRecord(localstore.MemoriesKey(familyID), memoryID) {
			return appErrors.NewInternal("dropping ephemeral memory failed", nil)
		}
		return nil
	}
	return c.transport.DeleteEq(ctx, TableMemories, map[string]string{"id": memoryID, "family_id": familyID})
}
