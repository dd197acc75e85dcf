package remote

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// CapsuleClient syncs rows of the time_capsules table.
type CapsuleClient struct {
	transport Transport
	local     *localstore.Store
	logger    *zap.Logger
}

func NewCapsuleClient(transport Transport, local *localstore.Store, logger *zap.Logger) *CapsuleClient {
	return &CapsuleClient{transport: transport, local: local, logger: logger}
}

// List returns the family's time capsules, newest first. Ephemeral family
// ids are served from the local cache without a remote call.
func (c *CapsuleClient) List(ctx context.Context, familyID string) ([]domain.TimeCapsule, error) {
	if !domain.IsDurable(familyID) {
		var cached []domain.TimeCapsule
		c.local.Read(localstore.CapsulesKey(familyID), &cached)
		if cached == nil {
			cached = []domain.TimeCapsule{}
		}
		return cached, nil
	}
	var rows []capsuleRow
	if err := c.transport.SelectEq(ctx, TableTimeCapsules, map[string]string{"family_id": familyID}, &rows); err != nil {
		return nil, err
	}
	return capsulesFromRows(rows), nil
}

// Upsert pushes one capsule. Ephemeral family ids stay purely local.
func (c *CapsuleClient) Upsert(ctx context.Context, capsule *domain.TimeCapsule) error {
	if err := capsule.Validate(); err != nil {
		return err
	}
	if !domain.IsDurable(capsule.FamilyID) {
		if !c.local.UpsertRecord(localstore.CapsulesKey(capsule.FamilyID), capsule) {
			return appErrors.NewInternal("caching ephemeral capsule failed", nil)
		}
		return nil
	}
	return c.transport.Upsert(ctx, TableTimeCapsules, "id", capsuleToRow(*capsule))
}

// Delete removes one capsule by id, scoped to its family. Ephemeral
// family ids stay purely local.
func (c *CapsuleClient) Delete(ctx context.Context, familyID, capsuleID string) error {
	if !domain.IsDurable(familyID) {
		if !c.local.RemoveRecord(localstore.CapsulesKey(familyID), capsuleID) {
			return appErrors.NewInternal("dropping ephemeral capsule failed", nil)
		}
		return nil
	}
	return c.transport.DeleteEq(ctx, TableTimeCapsules, map[string]string{"id": capsuleID, "family_id": familyID})
}
