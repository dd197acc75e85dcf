package remote

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// BookPreferenceClient syncs the user_book_preferences table, keyed on
// (user_id, journey_type, child_id).
type BookPreferenceClient struct {
	transport Transport
	local     *localstore.Store
	logger    *zap.Logger
}

func NewBookPreferenceClient(transport Transport, local *localstore.Store, logger *zap.Logger) *BookPreferenceClient {
	return &BookPreferenceClient{transport: transport, local: local, logger: logger}
}

// Fetch loads one book preference, or nil when no row exists. childID may
// be empty for journeys that are not child-scoped.
func (c *BookPreferenceClient) Fetch(ctx context.Context, userID, journeyType, childID string) (*domain.BookPreference, error) {
	if !domain.IsDurable(userID) {
		var cached domain.BookPreference
		if c.local.Read(localstore.BookPreferenceKey(userID, journeyType, childID), &cached) {
			return &cached, nil
		}
		return nil, nil
	}
	filters := map[string]string{"user_id": userID, "journey_type": journeyType}
	if childID != "" {
		filters["child_id"] = childID
	}
	var rows []bookPreferenceRow
	if err := c.transport.SelectEq(ctx, TableBookPreferences, filters, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	preference := bookPreferenceFromRow(rows[0])
	return &preference, nil
}

// Upsert pushes the preference row. Ephemeral user ids stay purely local.
func (c *BookPreferenceClient) Upsert(ctx context.Context, preference *domain.BookPreference) error {
	if err := preference.Validate(); err != nil {
		return err
	}
	if !domain.IsDurable(preference.UserID) {
		key := localstore.BookPreferenceKey(preference.UserID, preference.JourneyType, preference.ChildID)
		if !c.local.Write(key, preference) {
			return appErrors.NewInternal("caching ephemeral book preference failed", nil)
		}
		return nil
	}
	return c.transport.Upsert(ctx, TableBookPreferences, "user_id,journey_type,child_id", bookPreferenceToRow(*preference))
}
