package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"memorybox-backend/internal/localstore"
	"memorybox-backend/internal/remote"
	appErrors "memorybox-backend/pkg/errors"
	"memorybox-backend/pkg/observability"
)

// Outcome kind labels for the save metrics.
const (
	kindFamilyTree     = "familyTree"
	kindMemory         = "memory"
	kindJournal        = "journal"
	kindProfile        = "profile"
	kindFamily         = "family"
	kindJourney        = "journeyProgress"
	kindTimeCapsule    = "timeCapsule"
	kindBookPreference = "bookPreference"
)

// Reconciler is the save/load controller. Every push runs the same
// bounded-backoff schedule. Saves for the core kinds (family tree,
// memories, journal entries) are remote-first: the local mirror and
// change notifications happen only after the backend confirmed the
// write. The remaining kinds degrade softer: a push that exhausts its
// retries is logged and masked while the local copy carries on.
type Reconciler struct {
	clients  *remote.Clients
	local    *localstore.Store
	notifier *Notifier
	metrics  *observability.Collector
	logger   *zap.Logger

	policy Policy
	sleep  Sleeper
	now    func() time.Time

	// afterRepair observes fire-and-forget repair pushes; tests use it
	// to wait for completion.
	afterRepair func(err error)
}

// NewReconciler wires the controller. A zero policy falls back to
// DefaultPolicy; metrics may be nil.
func NewReconciler(clients *remote.Clients, local *localstore.Store, notifier *Notifier, policy Policy, metrics *observability.Collector, logger *zap.Logger) *Reconciler {
	if policy.MaxAttempts <= 0 {
		policy = DefaultPolicy()
	}
	if notifier == nil {
		notifier = NewNotifier(logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		clients:  clients,
		local:    local,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		policy:   policy,
		sleep:    SleepWithContext,
		now:      time.Now,
	}
}

// Notifier exposes the event hub so surface layers can register
// listeners.
func (r *Reconciler) Notifier() *Notifier {
	return r.notifier
}

func (r *Reconciler) saveWithRetry(ctx context.Context, kind string, op Operation) error {
	return RunWithBackoff(ctx, r.policy, r.sleep, func(attempt int, err error) {
		if r.metrics != nil {
			r.metrics.SaveRetries.Inc()
		}
		r.logger.Warn("save attempt failed, backing off",
			zap.String("kind", kind),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}, op)
}

func (r *Reconciler) outcome(kind, result string) {
	if r.metrics != nil {
		r.metrics.SaveOutcomes.WithLabelValues(kind, result).Inc()
	}
}

// classifySaveError maps a save failure onto its outcome label.
func classifySaveError(err error) string {
	switch {
	case err == nil:
		return "succeeded"
	case appErrors.IsExhausted(err):
		return "exhausted"
	case appErrors.IsRejected(err):
		return "rejected"
	case appErrors.IsValidation(err):
		return "validation_failed"
	default:
		return "failed"
	}
}

// maskedPush finishes a soft-degrade save: the local mirror was already
// written, pushErr (if any) is logged and absorbed. Only when both the
// push and the mirror failed does the caller see an error.
func (r *Reconciler) maskedPush(kind, scope string, mirrored bool, pushErr error) error {
	if pushErr == nil {
		r.outcome(kind, "succeeded")
		return nil
	}
	if !mirrored {
		r.outcome(kind, classifySaveError(pushErr))
		return pushErr
	}
	r.logger.Warn("remote push failed, local copy kept",
		zap.String("kind", kind),
		zap.String("scope", scope),
		zap.Error(pushErr),
	)
	r.outcome(kind, "masked")
	return nil
}
