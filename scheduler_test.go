package acceptor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultTestScheduler_RunOnce tests the scheduler in run-once mode
func TestDefaultTestScheduler_RunOnce(t *testing.T) {
	logger := log.New()
	callCount := 0

	scheduler := NewDefaultTestScheduler(100*time.Millisecond, true, logger, func(ctx context.Context) error {
		callCount++
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := scheduler.Start(ctx)
	require.NoError(t, err)

	// In run-once mode, the callback should be called exactly once immediately
	assert.Equal(t, 1, callCount, "Expected callback to be called exactly once")
	assert.True(t, scheduler.Stopped(), "Scheduler should report stopped after run-once completes")

	// Wait a bit to make sure no more calls happen
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, callCount, "Expected callback to be called exactly once")
}

// TestDefaultTestScheduler_Periodic tests the scheduler in periodic mode
func TestDefaultTestScheduler_Periodic(t *testing.T) {
	logger := log.New()

	// Use a channel to synchronize and count callback executions
	callChan := make(chan struct{}, 10) // Buffer to avoid blocking
	expectedCalls := 4

	scheduler := NewDefaultTestScheduler(10*time.Millisecond, false, logger, func(ctx context.Context) error {
		callChan <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := scheduler.Start(ctx)
	require.NoError(t, err)

	// Wait for the expected number of calls, the first happens on startup
	timeout := time.After(2 * time.Second)
	for i := 0; i < expectedCalls; i++ {
		select {
		case <-callChan:
		case <-timeout:
			t.Fatalf("Timed out waiting for callback call %d of %d", i+1, expectedCalls)
		}
	}

	require.NoError(t, scheduler.Stop())

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer shutdownCancel()
	require.NoError(t, scheduler.WaitForShutdown(shutdownCtx))
	assert.True(t, scheduler.Stopped())
}

// TestDefaultTestScheduler_CallbackError tests that a failing first run
// surfaces through Start
func TestDefaultTestScheduler_CallbackError(t *testing.T) {
	logger := log.New()
	expectedErr := errors.New("test suite exploded")

	scheduler := NewDefaultTestScheduler(10*time.Millisecond, false, logger, func(ctx context.Context) error {
		return expectedErr
	})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	err := scheduler.Start(ctx)
	assert.ErrorIs(t, err, expectedErr)
}

// TestDefaultTestScheduler_NoCallback tests that Start fails without a callback
func TestDefaultTestScheduler_NoCallback(t *testing.T) {
	logger := log.New()
	scheduler := NewDefaultTestScheduler(10*time.Millisecond, true, logger, nil)

	err := scheduler.Start(context.Background())
	assert.ErrorContains(t, err, "callback")
}

// TestDefaultTestScheduler_AlreadyStopped tests that stopping twice is safe
func TestDefaultTestScheduler_AlreadyStopped(t *testing.T) {
	logger := log.New()

	scheduler := NewDefaultTestScheduler(10*time.Millisecond, false, logger, func(ctx context.Context) error {
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, scheduler.Start(ctx))
	require.NoError(t, scheduler.Stop())
	assert.True(t, scheduler.Stopped())

	// A second Stop must not close the done channel again
	require.NoError(t, scheduler.Stop())
}

// TestDefaultTestScheduler_ContextCancellation tests that canceling the
// context stops the periodic runner
func TestDefaultTestScheduler_ContextCancellation(t *testing.T) {
	logger := log.New()
	callChan := make(chan struct{}, 10)

	scheduler := NewDefaultTestScheduler(10*time.Millisecond, false, logger, func(ctx context.Context) error {
		select {
		case callChan <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, scheduler.Start(ctx))

	// Wait for the startup run, then cancel
	select {
	case <-callChan:
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for first callback")
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
	defer shutdownCancel()
	require.NoError(t, scheduler.WaitForShutdown(shutdownCtx))
	assert.True(t, scheduler.Stopped())
}
