package remote

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// JourneyClient syncs the journey_progress table, keyed on
// (user_id, journey_type).
type JourneyClient struct {
	transport Transport
	local     *localstore.Store
	logger    *zap.Logger
}

func NewJourneyClient(transport Transport, local *localstore.Store, logger *zap.Logger) *JourneyClient {
	return &JourneyClient{transport: transport, local: local, logger: logger}
}

// Fetch loads one user's progress through a journey, or nil when no row
// exists.
func (c *JourneyClient) Fetch(ctx context.Context, userID, journeyType string) (*domain.JourneyProgress, error) {
	if !domain.IsDurable(userID) {
		var cached domain.JourneyProgress
		if c.local.Read(localstore.JourneyProgressKey(journeyType, userID), &cached) {
			cached.Normalize()
			return &cached, nil
		}
		return nil, nil
	}
	var rows []journeyRow
	filters := map[string]string{"user_id": userID, "journey_type": journeyType}
	if err := c.transport.SelectEq(ctx, TableJourneyProgress, filters, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	progress := journeyFromRow(rows[0])
	return &progress, nil
}

// Upsert pushes the progress row. Ephemeral user ids stay purely local.
func (c *JourneyClient) Upsert(ctx context.Context, progress *domain.JourneyProgress) error {
	progress.Normalize()
	if err := progress.Validate(); err != nil {
		return err
	}
	if !domain.IsDurable(progress.UserID) {
		key := localstore.JourneyProgressKey(progress.JourneyType, progress.UserID)
		if !c.local.Write(key, progress) {
			return appErrors.NewInternal("caching ephemeral journey progress failed", nil)
		}
		return nil
	}
	return c.transport.Upsert(ctx, TableJourneyProgress, "user_id,journey_type", journeyToRow(*progress))
}
