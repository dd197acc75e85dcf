package remote

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// FamilyClient syncs rows of the families table.
type FamilyClient struct {
	transport Transport
	local     *localstore.Store
	logger    *zap.Logger
}

func NewFamilyClient(transport Transport, local *localstore.Store, logger *zap.Logger) *FamilyClient {
	return &FamilyClient{transport: transport, local: local, logger: logger}
}

// Fetch loads the family record, or nil when no row exists.
func (c *FamilyClient) Fetch(ctx context.Context, familyID string) (*domain.Family, error) {
	if !domain.IsDurable(familyID) {
		var cached domain.Family
		if c.local.Read(localstore.FamilyKey(familyID), &cached) {
			return &cached, nil
		}
		return nil, nil
	}
	var rows []familyRow
	if err := c.transport.SelectEq(ctx, TableFamilies, map[string]string{"id": familyID}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	family := familyFromRow(rows[0])
	return &family, nil
}

// Upsert pushes the family record. Ephemeral ids stay purely local.
func (c *FamilyClient) Upsert(ctx context.Context, family *domain.Family) error {
	if err := family.Validate(); err != nil {
		return err
	}
	if !domain.IsDurable(family.ID) {
		if !c.local.Write(localstore.FamilyKey(family.ID), family) {
			return appErrors.NewInternal("caching ephemeral family failed", nil)
		}
		return nil
	}
	return c.transport.Upsert(ctx, TableFamilies, "id", familyToRow(*family))
}
