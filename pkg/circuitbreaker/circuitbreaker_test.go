package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 2, Cooldown: time.Minute})

	fail := func() error { return errBoom }

	require.ErrorIs(t, cb.Execute(fail), errBoom)
	require.ErrorIs(t, cb.Execute(fail), errBoom)

	// Threshold reached: calls are refused without running fn.
	ran := false
	err := cb.Execute(func() error { ran = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, ran)
}

func TestBreaker_SuccessResetsFailures(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 2, Cooldown: time.Minute})

	require.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)

	// Still closed: the success in between reset the count.
	require.NoError(t, cb.Execute(func() error { return nil }))
}

func TestBreaker_HalfOpenProbe(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 1, Cooldown: 10 * time.Millisecond})

	require.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)

	time.Sleep(20 * time.Millisecond)

	// Cooldown elapsed: one probe call is allowed and closes the breaker.
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.NoError(t, cb.Execute(func() error { return nil }))
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	cb := New(Settings{Name: "test", FailureThreshold: 3, Cooldown: 10 * time.Millisecond})

	for i := 0; i < 3; i++ {
		require.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	}
	time.Sleep(20 * time.Millisecond)

	require.ErrorIs(t, cb.Execute(func() error { return errBoom }), errBoom)
	require.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)
}
