package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("redis: connection refused")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestBreaker(cfg Config) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := New("order-cache", cfg)
	cb.now = clock.Now
	if cb.interval > 0 {
		cb.expiry = clock.Now().Add(cb.interval)
	}
	return cb, clock
}

func fail() error    { return errDown }
func succeed() error { return nil }

func TestCircuitBreaker_StaysClosedOnSuccess(t *testing.T) {
	cb, _ := newTestBreaker(Config{Timeout: time.Second})

	for i := 0; i < 10; i++ {
		require.NoError(t, cb.Execute(succeed))
	}
	assert.Equal(t, StateClosed, cb.State())
	assert.EqualValues(t, 10, cb.Counts().TotalSuccesses)
}

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	cb, _ := newTestBreaker(Config{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(c Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(fail), errDown)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called, "熔断时不应调用下游")
	assert.Equal(t, []string{"CLOSED->OPEN"}, transitions)
}

func TestCircuitBreaker_SuccessResetsConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(Config{
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
	})

	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	require.NoError(t, cb.Execute(succeed))
	_ = cb.Execute(fail)

	assert.Equal(t, StateClosed, cb.State())
	assert.EqualValues(t, 1, cb.Counts().ConsecutiveFailures)
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb, clock := newTestBreaker(Config{
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})

	_ = cb.Execute(fail)
	require.Equal(t, StateOpen, cb.State())

	clock.Advance(11 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	t.Run("半开失败重新打开", func(t *testing.T) {
		assert.ErrorIs(t, cb.Execute(fail), errDown)
		assert.Equal(t, StateOpen, cb.State())
	})

	t.Run("半开成功关闭", func(t *testing.T) {
		clock.Advance(11 * time.Second)
		require.NoError(t, cb.Execute(succeed))
		assert.Equal(t, StateClosed, cb.State())
	})
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb, clock := newTestBreaker(Config{
		MaxRequests: 1,
		Timeout:     time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
	})
	_ = cb.Execute(fail)
	clock.Advance(2 * time.Second)

	release := make(chan struct{})
	done := make(chan error, 1)
	started := make(chan struct{})
	go func() {
		done <- cb.Execute(func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	assert.ErrorIs(t, cb.Execute(succeed), ErrOpenState, "探测名额已满")
	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_IntervalResetsCounts(t *testing.T) {
	cb, clock := newTestBreaker(Config{
		Interval:    10 * time.Second,
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 3 },
	})

	_ = cb.Execute(fail)
	_ = cb.Execute(fail)
	clock.Advance(11 * time.Second)
	_ = cb.Execute(fail)

	assert.Equal(t, StateClosed, cb.State())
	assert.EqualValues(t, 1, cb.Counts().TotalFailures)
}

func TestCircuitBreaker_IsSuccessful(t *testing.T) {
	cb, _ := newTestBreaker(Config{
		ReadyToTrip: func(c Counts) bool { return c.ConsecutiveFailures >= 1 },
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	err := cb.Execute(func() error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State(), "调用方取消不算下游故障")
}

func TestCounts_FailureRate(t *testing.T) {
	assert.Zero(t, Counts{}.FailureRate())
	assert.InDelta(t, 0.25, Counts{Requests: 4, TotalFailures: 1}.FailureRate(), 1e-9)
}
