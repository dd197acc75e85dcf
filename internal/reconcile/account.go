package reconcile

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// SaveProfile mirrors the profile locally and pushes it remote on the
// usual retry schedule. A push that exhausts its retries is logged and
// masked; the local copy stays authoritative until the next successful
// sync.
func (r *Reconciler) SaveProfile(ctx context.Context, profile *domain.Profile) error {
	profile.Touch(r.now())
	if err := profile.Validate(); err != nil {
		r.outcome(kindProfile, "validation_failed")
		return err
	}

	pushErr := r.saveWithRetry(ctx, kindProfile, func(ctx context.Context) error {
		return r.clients.Profiles.Upsert(ctx, profile)
	})
	mirrored := r.local.Write(localstore.ProfileKey(profile.ID), profile)
	return r.maskedPush(kindProfile, profile.ID, mirrored, pushErr)
}

// LoadProfile returns the user's profile, preferring remote truth. An
// unreachable backend serves the cached copy stale; a user with no row
// anywhere is NOT_FOUND.
func (r *Reconciler) LoadProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, appErrors.NewValidation("user id is required")
	}

	profile, err := r.clients.Profiles.Fetch(ctx, userID)
	if err != nil {
		var cached domain.Profile
		if r.local.Read(localstore.ProfileKey(userID), &cached) {
			r.logger.Warn("serving cached profile, remote read failed",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return &cached, nil
		}
		return nil, err
	}
	if profile == nil {
		var cached domain.Profile
		if r.local.Read(localstore.ProfileKey(userID), &cached) {
			return &cached, nil
		}
		return nil, appErrors.NewNotFound("profile " + userID + " not found")
	}

	r.local.Write(localstore.ProfileKey(userID), profile)
	return profile, nil
}

// SaveFamily mirrors the family record locally and pushes it remote on
// the usual retry schedule, masking exhaustion.
func (r *Reconciler) SaveFamily(ctx context.Context, family *domain.Family) error {
	family.Touch(r.now())
	if err := family.Validate(); err != nil {
		r.outcome(kindFamily, "validation_failed")
		return err
	}

	pushErr := r.saveWithRetry(ctx, kindFamily, func(ctx context.Context) error {
		return r.clients.Families.Upsert(ctx, family)
	})
	mirrored := r.local.Write(localstore.FamilyKey(family.ID), family)
	return r.maskedPush(kindFamily, family.ID, mirrored, pushErr)
}

// LoadFamily returns the family record, preferring remote truth with a
// stale-local fallback.
func (r *Reconciler) LoadFamily(ctx context.Context, familyID string) (*domain.Family, error) {
	if familyID == "" {
		return nil, appErrors.NewValidation("family id is required")
	}

	family, err := r.clients.Families.Fetch(ctx, familyID)
	if err != nil {
		var cached domain.Family
		if r.local.Read(localstore.FamilyKey(familyID), &cached) {
			r.logger.Warn("serving cached family, remote read failed",
				zap.String("family_id", familyID),
				zap.Error(err),
			)
			return &cached, nil
		}
		return nil, err
	}
	if family == nil {
		var cached domain.Family
		if r.local.Read(localstore.FamilyKey(familyID), &cached) {
			return &cached, nil
		}
		return nil, appErrors.NewNotFound("family " + familyID + " not found")
	}

	r.local.Write(localstore.FamilyKey(familyID), family)
	return family, nil
}
