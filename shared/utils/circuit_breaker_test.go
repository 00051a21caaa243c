package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failing() error    { return errBoom }
func succeeding() error { return nil }

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Call(failing), errBoom)
	}
	assert.Equal(t, StateOpen, cb.GetState())

	// Further calls are rejected without invoking the function.
	invoked := false
	err := cb.Call(func() error {
		invoked = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, invoked)
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(1, 20*time.Millisecond)

	require.ErrorIs(t, cb.Call(failing), errBoom)
	require.Equal(t, StateOpen, cb.GetState())

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, cb.Call(succeeding))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 20*time.Millisecond)

	require.ErrorIs(t, cb.Call(failing), errBoom)
	time.Sleep(30 * time.Millisecond)

	require.ErrorIs(t, cb.Call(failing), errBoom)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(2, time.Minute)

	require.ErrorIs(t, cb.Call(failing), errBoom)
	require.NoError(t, cb.Call(succeeding))
	require.ErrorIs(t, cb.Call(failing), errBoom)

	assert.Equal(t, StateClosed, cb.GetState())
}
