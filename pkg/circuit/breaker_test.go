package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errRemote = errors.New("remote down")

func TestNewBreaker(t *testing.T) {
	breaker := NewBreaker("media", DefaultConfig(), nil)

	assert.Equal(t, StateClosed, breaker.State())
	assert.NoError(t, breaker.Allow())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	config := Config{Threshold: 3, Timeout: time.Second, SuccessThreshold: 2, MaxHalfOpen: 2}
	breaker := NewBreaker("media", config, zap.NewNop())

	for i := 0; i < 3; i++ {
		breaker.Record(errRemote)
	}

	assert.Equal(t, StateOpen, breaker.State())
	assert.ErrorIs(t, breaker.Allow(), ErrCircuitOpen)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	breaker := NewBreaker("media", Config{Threshold: 2, Timeout: time.Hour}, nil)

	breaker.Record(errRemote)
	breaker.Record(nil)
	breaker.Record(errRemote)

	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_HalfOpenThenClosed(t *testing.T) {
	config := Config{Threshold: 2, Timeout: 50 * time.Millisecond, SuccessThreshold: 2, MaxHalfOpen: 5}
	breaker := NewBreaker("media", config, zap.NewNop())

	breaker.Record(errRemote)
	breaker.Record(errRemote)
	require.Equal(t, StateOpen, breaker.State())

	time.Sleep(60 * time.Millisecond)

	require.NoError(t, breaker.Allow())
	assert.Equal(t, StateHalfOpen, breaker.State())

	breaker.Record(nil)
	breaker.Record(nil)
	assert.Equal(t, StateClosed, breaker.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	config := Config{Threshold: 1, Timeout: 20 * time.Millisecond, SuccessThreshold: 1, MaxHalfOpen: 1}
	breaker := NewBreaker("media", config, nil)

	breaker.Record(errRemote)
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, breaker.Allow())

	assert.ErrorIs(t, breaker.Allow(), ErrTooManyRequests)

	breaker.Record(errRemote)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreaker_Execute(t *testing.T) {
	breaker := NewBreaker("media", DefaultConfig(), nil)

	assert.NoError(t, breaker.Execute(func() error { return nil }))
	assert.ErrorIs(t, breaker.Execute(func() error { return errRemote }), errRemote)
	assert.Equal(t, 1, breaker.Snapshot().Failures)
}

func TestBreaker_ExecuteContextIgnoresCallerCancel(t *testing.T) {
	breaker := NewBreaker("media", Config{Threshold: 1, Timeout: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := breaker.ExecuteContext(ctx, func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, breaker.State())

	err = breaker.ExecuteContext(context.Background(), func(context.Context) error { return errRemote })
	assert.ErrorIs(t, err, errRemote)
	assert.Equal(t, StateOpen, breaker.State())
}

func TestBreaker_OnStateChange(t *testing.T) {
	var transitions []string
	config := Config{
		Threshold: 1,
		Timeout:   time.Hour,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	}
	breaker := NewBreaker("media", config, nil)

	breaker.Record(errRemote)
	breaker.Reset()

	assert.Equal(t, []string{"media:CLOSED->OPEN", "media:OPEN->CLOSED"}, transitions)
}

func TestBreaker_Snapshot(t *testing.T) {
	breaker := NewBreaker("media", Config{Threshold: 5, Timeout: time.Hour}, nil)
	breaker.Record(errRemote)

	snap := breaker.Snapshot()
	assert.Equal(t, "media", snap.Name)
	assert.Equal(t, "CLOSED", snap.State)
	assert.Equal(t, 1, snap.Failures)
	assert.False(t, snap.LastFailure.IsZero())
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateClosed, "CLOSED"},
		{StateOpen, "OPEN"},
		{StateHalfOpen, "HALF_OPEN"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.state.String())
	}
}
