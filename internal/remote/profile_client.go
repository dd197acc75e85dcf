package remote

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// ProfileClient syncs rows of the users table.
type ProfileClient struct {
	transport Transport
	local     *localstore.Store
	logger    *zap.Logger
}

func NewProfileClient(transport Transport, local *localstore.Store, logger *zap.Logger) *ProfileClient {
	return &ProfileClient{transport: transport, local: local, logger: logger}
}

// Fetch loads the profile for userID, or nil when no row exists.
// Ephemeral ids resolve from the local cache alone.
func (c *ProfileClient) Fetch(ctx context.Context, userID string) (*domain.Profile, error) {
	if !domain.IsDurable(userID) {
		var cached domain.Profile
		if c.local.Read(localstore.ProfileKey(userID), &cached) {
			return &cached, nil
		}
		return nil, nil
	}
	var rows []userRow
	if err := c.transport.SelectEq(ctx, TableUsers, map[string]string{"id": userID}, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	profile := profileFromRow(rows[0])
	return &profile, nil
}

// Upsert pushes the profile to the users table. Ephemeral ids stay purely
// local.
func (c *ProfileClient) Upsert(ctx context.Context, profile *domain.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	if !domain.IsDurable(profile.ID) {
		if !c.local.Write(localstore.ProfileKey(profile.ID), profile) {
			return appErrors.NewInternal("caching ephemeral profile failed", nil)
		}
		return nil
	}
	return c.transport.Upsert(ctx, TableUsers, "id", profileToRow(*profile))
}
