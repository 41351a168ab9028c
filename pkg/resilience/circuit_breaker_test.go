package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	b := NewBreaker(BreakerConfig{Name: "peer-1", FailureThreshold: 2, OpenTimeout: time.Hour})
	boom := errors.New("boom")

	fail := func(context.Context) error { return boom }

	assert.ErrorIs(t, b.Execute(context.Background(), fail), boom)
	assert.Equal(t, BreakerClosed, b.State())

	assert.ErrorIs(t, b.Execute(context.Background(), fail), boom)
	assert.Equal(t, BreakerOpen, b.State())

	// open: fail fast without invoking fn
	called := false
	err := b.Execute(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreaker_HalfOpenProbeClosesOnSuccess(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: 10 * time.Millisecond})

	_ = b.Execute(context.Background(), func(context.Context) error { return errors.New("down") })
	assert.Equal(t, BreakerOpen, b.State())

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, BreakerHalfOpen, b.State())

	err := b.Execute(context.Background(), func(context.Context) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, BreakerClosed, b.State())
}

func TestBreaker_HalfOpenProbeReopensOnFailure(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: 10 * time.Millisecond})

	_ = b.Execute(context.Background(), func(context.Context) error { return errors.New("down") })
	time.Sleep(20 * time.Millisecond)

	_ = b.Execute(context.Background(), func(context.Context) error { return errors.New("still down") })
	assert.Equal(t, BreakerOpen, b.State())
}

func TestBreaker_SuccessResetsFailureStreak(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Hour})
	boom := errors.New("boom")

	_ = b.Execute(context.Background(), func(context.Context) error { return boom })
	_ = b.Execute(context.Background(), func(context.Context) error { return nil })
	_ = b.Execute(context.Background(), func(context.Context) error { return boom })

	assert.Equal(t, BreakerClosed, b.State())
}
