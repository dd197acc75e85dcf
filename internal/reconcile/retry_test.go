package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "memorybox-backend/pkg/errors"
)

type sleepRecorder struct {
	delays []time.Duration
	err    error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return s.err
}

func TestRunWithBackoff_FirstAttemptSucceeds(t *testing.T) {
	recorder := &sleepRecorder{}
	attempts := 0

	err := RunWithBackoff(context.Background(), DefaultPolicy(), recorder.sleep, nil, func(context.Context) error {
		attempts++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
	assert.Empty(t, recorder.delays)
}

func TestRunWithBackoff_ExponentialScheduleThenExhausted(t *testing.T) {
	recorder := &sleepRecorder{}
	attempts := 0
	var retriedAttempts []int

	err := RunWithBackoff(context.Background(), DefaultPolicy(), recorder.sleep,
		func(attempt int, err error) {
			retriedAttempts = append(retriedAttempts, attempt)
			assert.Error(t, err)
		},
		func(context.Context) error {
			attempts++
			return appErrors.NewRemoteUnavailable("backend down", nil)
		})

	require.Error(t, err)
	assert.True(t, appErrors.IsExhausted(err))
	assert.Equal(t, 3, attempts)
	// 2s then 4s between attempts, and no sleep after the last one.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, recorder.delays)
	assert.Equal(t, []int{0, 1}, retriedAttempts)
}

func TestRunWithBackoff_RecoveryStopsTheSchedule(t *testing.T) {
	recorder := &sleepRecorder{}
	attempts := 0

	err := RunWithBackoff(context.Background(), DefaultPolicy(), recorder.sleep, nil, func(context.Context) error {
		attempts++
		if attempts == 1 {
			return appErrors.NewRemoteUnavailable("flake", nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []time.Duration{2 * time.Second}, recorder.delays)
}

func TestRunWithBackoff_NonRetryableShortCircuits(t *testing.T) {
	recorder := &sleepRecorder{}
	attempts := 0

	err := RunWithBackoff(context.Background(), DefaultPolicy(), recorder.sleep, nil, func(context.Context) error {
		attempts++
		return appErrors.NewValidation("bad input")
	})

	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.False(t, appErrors.IsExhausted(err))
	assert.Equal(t, 1, attempts)
	assert.Empty(t, recorder.delays)
}

func TestRunWithBackoff_CanceledDuringBackoff(t *testing.T) {
	recorder := &sleepRecorder{err: context.Canceled}
	attempts := 0

	err := RunWithBackoff(context.Background(), DefaultPolicy(), recorder.sleep, nil, func(context.Context) error {
		attempts++
		return appErrors.NewRemoteUnavailable("backend down", nil)
	})

	require.Error(t, err)
	assert.True(t, appErrors.IsRemoteUnavailable(err))
	assert.Equal(t, 1, attempts)
}

func TestPolicy_DelayIsCappedAtMax(t *testing.T) {
	policy := Policy{MaxAttempts: 10, BaseDelay: 2 * time.Second, MaxDelay: 5 * time.Second, Factor: 2.0}

	assert.Equal(t, 2*time.Second, policy.delay(0))
	assert.Equal(t, 4*time.Second, policy.delay(1))
	assert.Equal(t, 5*time.Second, policy.delay(2))
	assert.Equal(t, 5*time.Second, policy.delay(7))
}
