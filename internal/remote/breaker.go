package remote

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	appErrors "memorybox-backend/pkg/errors"
)

// BreakerConfig tunes the circuit breaker guarding the remote transport.
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// ReadyToTrip fires once MinRequests have been seen and the failure
	// ratio reaches FailureThreshold.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the thresholds used in production.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "supabase",
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

type breakerTransport struct {
	inner   Transport
	breaker *gobreaker.CircuitBreaker
}

// WithBreaker wraps a transport so a sustained run of failures
// short-circuits further calls instead of hammering an unreachable
// backend. Rejected calls surface as REMOTE_UNAVAILABLE.
func WithBreaker(inner Transport, config BreakerConfig, logger *zap.Logger) Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &breakerTransport{inner: inner, breaker: cb}
}

func (t *breakerTransport) SelectEq(ctx context.Context, table string, filters map[string]string, dest interface{}) error {
	return t.execute(func() error {
		return t.inner.SelectEq(ctx, table, filters, dest)
	})
}

func (t *breakerTransport) Upsert(ctx context.Context, table, onConflict string, row interface{}) error {
	return t.execute(func() error {
		return t.inner.Upsert(ctx, table, onConflict, row)
	})
}

func (t *breakerTransport) DeleteEq(ctx context.Context, table string, filters map[string]string) error {
	return t.execute(func() error {
		return t.inner.DeleteEq(ctx, table, filters)
	})
}

func (t *breakerTransport) execute(op func() error) error {
	_, err := t.breaker.Execute(func() (any, error) {
		return nil, op()
	})
	switch err {
	case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
		return appErrors.NewRemoteUnavailable("remote backend circuit open", err)
	default:
		return err
	}
}
