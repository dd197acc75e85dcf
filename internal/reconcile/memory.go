package reconcile

import (
	"context"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
	"memorybox-backend/internal/localstore"
	appErrors "memorybox-backend/pkg/errors"
)

// AddMemory persists a new memory remote-first and announces it as
// memoryAdded. A missing id is minted here so the caller gets it back on
// the same value.
func (r *Reconciler) AddMemory(ctx context.Context, m *domain.Memory) error {
	if m.ID == "" {
		m.ID = domain.NewID()
	}
	return r.saveMemory(ctx, m, domain.ChangeMemoryAdded)
}

// UpdateMemory persists changes to an existing memory and announces it as
// memoryUpdated.
func (r *Reconciler) UpdateMemory(ctx context.Context, m *domain.Memory) error {
	return r.saveMemory(ctx, m, domain.ChangeMemoryUpdated)
}

func (r *Reconciler) saveMemory(ctx context.Context, m *domain.Memory, kind domain.ChangeKind) error {
	m.Touch(r.now())
	normalized, known := domain.NormalizeMemoryType(m.Type)
	if !known && m.Type != "" {
		r.logger.Warn("unrecognized memory kind, defaulting to photo",
			zap.String("memory_id", m.ID),
			zap.String("raw_kind", m.Type),
		)
	}
	m.Type = normalized
	if err := m.Validate(); err != nil {
		r.outcome(kindMemory, "validation_failed")
		return err
	}

	err := r.saveWithRetry(ctx, kindMemory, func(ctx context.Context) error {
		return r.clients.Memories.Upsert(ctx, m)
	})
	if err != nil {
		r.outcome(kindMemory, classifySaveError(err))
		return err
	}

	r.local.UpsertRecord(localstore.MemoriesKey(m.FamilyID), m)
	r.notifier.Publish(domain.NewChangeEvent(kind, m.ID, m.FamilyID, m))
	r.outcome(kindMemory, "succeeded")
	return nil
}

// DeleteMemory removes a memory remote-first, drops it from the local
// mirror and announces memoryDeleted.
func (r *Reconciler) DeleteMemory(ctx context.Context, familyID, memoryID string) error {
	if familyID == "" || memoryID == "" {
		return appErrors.NewValidation("family id and memory id are required")
	}

	err := r.saveWithRetry(ctx, kindMemory, func(ctx context.Context) error {
		return r.clients.Memories.Delete(ctx, familyID, memoryID)
	})
	if err != nil {
		r.outcome(kindMemory, classifySaveError(err))
		return err
	}

	r.local.RemoveRecord(localstore.MemoriesKey(familyID), memoryID)
	r.notifier.Publish(domain.NewChangeEvent(domain.ChangeMemoryDeleted, memoryID, familyID, nil))
	r.outcome(kindMemory, "succeeded")
	return nil
}

// LoadMemories returns the family's memories. Remote truth wins and is
// mirrored into the cache; when the backend is unreachable the cached
// copy is served stale.
func (r *Reconciler) LoadMemories(ctx context.Context, familyID string) ([]domain.Memory, error) {
	if familyID == "" {
		return nil, appErrors.NewValidation("family id is required")
	}

	memories, err := r.clients.Memories.List(ctx, familyID)
	if err != nil {
		var cached []domain.Memory
		if r.local.Read(localstore.MemoriesKey(familyID), &cached) {
			r.logger.Warn("serving cached memories, remote read failed",
				zap.String("family_id", familyID),
				zap.Error(err),
			)
			return cached, nil
		}
		r.logger.Warn("memories unavailable remotely and locally, serving empty list",
			zap.String("family_id", familyID),
			zap.Error(err),
		)
		return []domain.Memory{}, nil
	}

	r.local.Write(localstore.MemoriesKey(familyID), memories)
	return memories, nil
}
