package reconcile

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// SaveJourneyProgress mirrors progress locally and pushes it remote on
// the usual retry schedule, masking exhaustion.
func (r *Reconciler) SaveJourneyProgress(ctx context.Context, progress *domain.JourneyProgress) error {
	progress.Normalize()
	progress.Touch(r.now())
	if err := progress.Validate(); err != nil {
		r.outcome(kindJourney, "validation_failed")
		return err
	}

	key := localstore.JourneyProgressKey(progress.JourneyType, progress.UserID)
	pushErr := r.saveWithRetry(ctx, kindJourney, func(ctx context.Context) error {
		return r.clients.Journeys.Upsert(ctx, progress)
	})
	mirrored := r.local.Write(key, progress)
	return r.maskedPush(kindJourney, progress.UserID, mirrored, pushErr)
}

// LoadJourneyProgress returns the user's progress through a journey.
// Progress is soft state: when neither the remote nor the cache has a
// row, a fresh zero-progress record comes back instead of an error.
func (r *Reconciler) LoadJourneyProgress(ctx context.Context, userID, journeyType string) (*domain.JourneyProgress, error) {
	if userID == "" || journeyType == "" {
		return nil, appErrors.NewValidation("user id and journey type are required")
	}

	key := localstore.JourneyProgressKey(journeyType, userID)
	progress, err := r.clients.Journeys.Fetch(ctx, userID, journeyType)
	if err != nil {
		var cached domain.JourneyProgress
		if r.local.Read(key, &cached) {
			cached.Normalize()
			r.logger.Warn("serving cached journey progress, remote read failed",
				zap.String("user_id", userID),
				zap.String("journey_type", journeyType),
				zap.Error(err),
			)
			return &cached, nil
		}
		r.logger.Warn("journey progress unavailable, starting fresh",
			zap.String("user_id", userID),
			zap.String("journey_type", journeyType),
			zap.Error(err),
		)
		return freshProgress(userID, journeyType), nil
	}
	if progress == nil {
		var cached domain.JourneyProgress
		if r.local.Read(key, &cached) {
			cached.Normalize()
			return &cached, nil
		}
		return freshProgress(userID, journeyType), nil
	}

	r.local.Write(key, progress)
	return progress, nil
}

func freshProgress(userID, journeyType string) *domain.JourneyProgress {
	progress := &domain.JourneyProgress{UserID: userID, JourneyType: journeyType}
	progress.Normalize()
	return progress
}

// SaveTimeCapsule mirrors the capsule locally and pushes it remote on
// the usual retry schedule, masking exhaustion. Missing ids are minted
// here.
func (r *Reconciler) SaveTimeCapsule(ctx context.Context, capsule *domain.TimeCapsule) error {
	if capsule.ID == "" {
		capsule.ID = domain.NewID()
	}
	capsule.Touch(r.now())
	if err := capsule.Validate(); err != nil {
		r.outcome(kindTimeCapsule, "validation_failed")
		return err
	}

	pushErr := r.saveWithRetry(ctx, kindTimeCapsule, func(ctx context.Context) error {
		return r.clients.Capsules.Upsert(ctx, capsule)
	})
	mirrored := r.local.UpsertRecord(localstore.CapsulesKey(capsule.FamilyID), capsule)
	return r.maskedPush(kindTimeCapsule, capsule.FamilyID, mirrored, pushErr)
}

// DeleteTimeCapsule drops the capsule from the local mirror immediately
// and removes the remote row on the usual retry schedule. A masked
// exhaustion means the row can reappear on the next successful sync.
func (r *Reconciler) DeleteTimeCapsule(ctx context.Context, familyID, capsuleID string) error {
	if familyID == "" || capsuleID == "" {
		return appErrors.NewValidation("family id and capsule id are required")
	}

	pushErr := r.saveWithRetry(ctx, kindTimeCapsule, func(ctx context.Context) error {
		return r.clients.Capsules.Delete(ctx, familyID, capsuleID)
	})
	mirrored := r.local.RemoveRecord(localstore.CapsulesKey(familyID), capsuleID)
	return r.maskedPush(kindTimeCapsule, familyID, mirrored, pushErr)
}

// LoadTimeCapsules returns the family's capsules, newest first, with the
// usual stale-local fallback.
func (r *Reconciler) LoadTimeCapsules(ctx context.Context, familyID string) ([]domain.TimeCapsule, error) {
	if familyID == "" {
		return nil, appErrors.NewValidation("family id is required")
	}

	capsules, err := r.clients.Capsules.List(ctx, familyID)
	if err != nil {
		var cached []domain.TimeCapsule
		if r.local.Read(localstore.CapsulesKey(familyID), &cached) {
			r.logger.Warn("serving cached capsules, remote read failed",
				zap.String("family_id", familyID),
				zap.Error(err),
			)
			return cached, nil
		}
		r.logger.Warn("capsules unavailable remotely and locally, serving empty list",
			zap.String("family_id", familyID),
			zap.Error(err),
		)
		return []domain.TimeCapsule{}, nil
	}

	r.local.Write(localstore.CapsulesKey(familyID), capsules)
	return capsules, nil
}

// SaveBookPreference mirrors the preference locally and pushes it remote
// on the usual retry schedule, masking exhaustion.
func (r *Reconciler) SaveBookPreference(ctx context.Context, preference *domain.BookPreference) error {
	preference.Touch(r.now())
	if err := preference.Validate(); err != nil {
		r.outcome(kindBookPreference, "validation_failed")
		return err
	}

	key := localstore.BookPreferenceKey(preference.UserID, preference.JourneyType, preference.ChildID)
	pushErr := r.saveWithRetry(ctx, kindBookPreference, func(ctx context.Context) error {
		return r.clients.BookPreferences.Upsert(ctx, preference)
	})
	mirrored := r.local.Write(key, preference)
	return r.maskedPush(kindBookPreference, preference.UserID, mirrored, pushErr)
}

// LoadBookPreference returns the stored preference, or a default one when
// nothing is stored anywhere. Preferences are soft state like journey
// progress.
func (r *Reconciler) LoadBookPreference(ctx context.Context, userID, journeyType, childID string) (*domain.BookPreference, error) {
	if userID == "" || journeyType == "" {
		return nil, appErrors.NewValidation("user id and journey type are required")
	}

	key := localstore.BookPreferenceKey(userID, journeyType, childID)
	preference, err := r.clients.BookPreferences.Fetch(ctx, userID, journeyType, childID)
	if err != nil {
		var cached domain.BookPreference
		if r.local.Read(key, &cached) {
			r.logger.Warn("serving cached book preference, remote read failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return &cached, nil
		}
		return defaultPreference(userID, journeyType, childID), nil
	}
	if preference == nil {
		var cached domain.BookPreference
		if r.local.Read(key, &cached) {
			return &cached, nil
		}
		return defaultPreference(userID, journeyType, childID), nil
	}

	r.local.Write(key, preference)
	return preference, nil
}

func defaultPreference(userID, journeyType, childID string) *domain.BookPreference {
	return &domain.BookPreference{
		UserID:      userID,
		JourneyType: journeyType,
		ChildID:     childID,
	}
}
