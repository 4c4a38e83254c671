package healthcheck

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

func failing() error { return errUpstream }
func succeeding() error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("weather", CircuitBreakerConfig{FailureThreshold: 2, Timeout: time.Minute})

	assert.ErrorIs(t, cb.Execute(failing), errUpstream)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(failing), errUpstream)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })

	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var transitions []CircuitBreakerState
	cb := NewCircuitBreaker("weather", CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          time.Minute,
		OnStateChange: func(_ string, _, to CircuitBreakerState) {
			transitions = append(transitions, to)
		},
	})
	cb.now = func() time.Time { return now }

	require.Error(t, cb.Execute(failing))
	now = now.Add(2 * time.Minute)

	require.NoError(t, cb.Execute(succeeding))
	assert.Equal(t, StateHalfOpen, cb.State())
	require.NoError(t, cb.Execute(succeeding))
	assert.Equal(t, StateClosed, cb.State())

	assert.Equal(t, []CircuitBreakerState{StateOpen, StateHalfOpen, StateClosed}, transitions)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker("weather", CircuitBreakerConfig{FailureThreshold: 1, Timeout: time.Minute})
	cb.now = func() time.Time { return now }

	require.Error(t, cb.Execute(failing))
	now = now.Add(2 * time.Minute)
	require.Error(t, cb.Execute(failing))

	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(succeeding), ErrCircuitOpen)
}

func TestCircuitBreaker_CheckReportsDegradedWhenOpen(t *testing.T) {
	cb := NewCircuitBreaker("weather", CircuitBreakerConfig{FailureThreshold: 1})

	assert.Equal(t, StatusHealthy, cb.Check(context.Background()).Status)

	_ = cb.Execute(failing)
	check := cb.Check(context.Background())

	assert.Equal(t, StatusDegraded, check.Status)
	assert.Equal(t, errUpstream.Error(), check.Message)
}
