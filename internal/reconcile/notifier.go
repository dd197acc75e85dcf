package reconcile

import (
	"sync"

	"go.uber.org/zap"

	"memorybox-backend/internal/domain"
)

// Notifier fans change events out to registered listeners. Registration
// is explicit: Subscribe returns the unsubscribe handle, and nothing is
// ever registered implicitly.
type Notifier struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(domain.ChangeEvent)
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		subs:   make(map[int]func(domain.ChangeEvent)),
		logger: logger,
	}
}

// Subscribe registers fn for every future event and returns its
// unsubscribe func. Unsubscribing twice is harmless.
func (n *Notifier) Subscribe(fn func(domain.ChangeEvent)) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Publish delivers the event to every subscriber on the caller's
// goroutine; delivery order between subscribers is not guaranteed. A
// subscriber that needs to do slow work should hand off to its own
// goroutine.
func (n *Notifier) Publish(event domain.ChangeEvent) {
	n.mu.RLock()
	listeners := make([]func(domain.ChangeEvent), 0, len(n.subs))
	for _, fn := range n.subs {
		listeners = append(listeners, fn)
	}
	n.mu.RUnlock()

	n.logger.Debug("publishing change event",
		zap.String("kind", string(event.Kind)),
		zap.String("entity_id", event.EntityID),
		zap.String("scope_id", event.ScopeID),
		zap.Int("listeners", len(listeners)),
	)
	for _, fn := range listeners {
		fn(event)
	}
}

// Len reports the current subscriber count.
func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subs)
}
