package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// repairTimeout bounds the background push that restores a remote tree
// from the local copy. It must outlast the full retry schedule.
const repairTimeout = 45 * time.Second

// SaveTree pushes the family tree remote-first and mirrors it locally on
// success. An empty tree aimed at a remote that still has people is
// rejected rather than allowed to erase them; the rejection is typed so
// the surface layer can treat it as a quiet no-op.
func (r *Reconciler) SaveTree(ctx context.Context, tree *domain.FamilyTree) error {
	tree.Normalize()
	if err := tree.Validate(); err != nil {
		r.outcome(kindFamilyTree, "validation_failed")
		return err
	}

	if !tree.HasPeople() {
		existing, err := r.clients.Trees.Fetch(ctx, tree.FamilyID)
		if err != nil {
			// Cannot prove the overwrite is safe, and an empty save is
			// never urgent.
			r.logger.Warn("rejecting empty tree save, remote state unknown",
				zap.String("family_id", tree.FamilyID),
				zap.Error(err),
			)
			r.outcome(kindFamilyTree, "rejected")
			return appErrors.NewRejected("empty tree save rejected: remote state unknown")
		}
		if existing != nil && existing.HasPeople() {
			r.logger.Warn("rejecting empty tree save over populated remote tree",
				zap.String("family_id", tree.FamilyID),
				zap.Int("remote_people", len(existing.People)),
			)
			r.outcome(kindFamilyTree, "rejected")
			return appErrors.NewRejected("empty tree save would erase existing people")
		}
	}

	err := r.saveWithRetry(ctx, kindFamilyTree, func(ctx context.Context) error {
		return r.clients.Trees.Upsert(ctx, tree)
	})
	if err != nil {
		r.outcome(kindFamilyTree, classifySaveError(err))
		return err
	}

	r.local.Write(localstore.TreeKey(tree.FamilyID), tree)
	r.notifier.Publish(domain.NewChangeEvent(domain.ChangeFamilyTreeUpdated, tree.FamilyID, tree.FamilyID, tree))
	r.outcome(kindFamilyTree, "succeeded")
	return nil
}

// LoadTree returns the authoritative tree for a family. Remote truth wins
// whenever it has people. A remote that is reachable but visibly empty
// while the local cache still has people is treated as a torn remote
// write: the local copy is served and pushed back up in the background.
// When the remote cannot be reached at all, the cached copy is served
// stale without any repair attempt.
func (r *Reconciler) LoadTree(ctx context.Context, familyID string) (*domain.FamilyTree, error) {
	if familyID == "" {
		return nil, appErrors.NewValidation("family id is required")
	}

	remoteTree, err := r.clients.Trees.Fetch(ctx, familyID)
	if err != nil {
		var cached domain.FamilyTree
		if r.local.Read(localstore.TreeKey(familyID), &cached) {
			cached.Normalize()
			r.logger.Warn("serving cached tree, remote read failed",
				zap.String("family_id", familyID),
				zap.Error(err),
			)
			return &cached, nil
		}
		// Nothing cached either. Reads never fail outright; an empty
		// tree lets the caller start fresh while the backend recovers.
		r.logger.Warn("tree unavailable remotely and locally, serving empty tree",
			zap.String("family_id", familyID),
			zap.Error(err),
		)
		return domain.NewEmptyTree(familyID), nil
	}

	if remoteTree != nil && remoteTree.HasPeople() {
		r.local.Write(localstore.TreeKey(familyID), remoteTree)
		return remoteTree, nil
	}

	var cached domain.FamilyTree
	if r.local.Read(localstore.TreeKey(familyID), &cached) && cached.HasPeople() {
		cached.Normalize()
		r.logger.Info("remote tree lost its people, repairing from local copy",
			zap.String("family_id", familyID),
			zap.Int("people", len(cached.People)),
		)
		r.repairTree(cached)
		return &cached, nil
	}

	if remoteTree != nil {
		remoteTree.Normalize()
		return remoteTree, nil
	}
	return domain.NewEmptyTree(familyID), nil
}

// repairTree pushes a local tree copy back to the remote without holding
// up the caller. The push runs the same retry schedule as a foreground
// save; exhaustion only logs.
func (r *Reconciler) repairTree(tree domain.FamilyTree) {
	if r.metrics != nil {
		r.metrics.RepairPushes.Inc()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), repairTimeout)
		defer cancel()

		err := r.saveWithRetry(ctx, kindFamilyTree, func(ctx context.Context) error {
			return r.clients.Trees.Upsert(ctx, &tree)
		})
		if err != nil {
			r.logger.Warn("tree repair push failed",
				zap.String("family_id", tree.FamilyID),
				zap.Error(err),
			)
		} else {
			r.logger.Info("restored remote tree from local copy",
				zap.String("family_id", tree.FamilyID),
				zap.Int("people", len(tree.People)),
			)
		}
		if r.afterRepair != nil {
			r.afterRepair(err)
		}
	}()
}
