package cache_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/js4hs-edge/internal/cache"
	"github.com/joshdurbin/js4hs-edge/internal/cache/memory"
	"github.com/joshdurbin/js4hs-edge/internal/cache/mocks"
)

func TestSweeper_Sweep(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	now := time.Now()

	// Fresh and stale entries alike are dropped
	require.NoError(t, store.Set(ctx, "fresh", &cache.Entry{Body: []byte("a"), ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Set(ctx, "stale", &cache.Entry{Body: []byte("b"), ExpiresAt: now.Add(-time.Hour)}))

	recorder := &mocks.Recorder{}
	recorder.On("Swept", 2).Once()

	sweeper := cache.NewSweeper(store, zerolog.Nop(), recorder)
	removed, err := sweeper.Sweep(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, store.Len(ctx))
	recorder.AssertExpectations(t)
}

func TestSweeper_SweepError(t *testing.T) {
	ctx := context.Background()
	store := &mocks.Store{}
	store.On("Clear", ctx).Return(0, errors.New("backend unavailable"))

	recorder := &mocks.Recorder{}
	sweeper := cache.NewSweeper(store, zerolog.Nop(), recorder)

	_, err := sweeper.Sweep(ctx)
	assert.Error(t, err)

	// Run swallows the error
	sweeper.Run(ctx)

	store.AssertNumberOfCalls(t, "Clear", 2)
	recorder.AssertNotCalled(t, "Swept", mock.Anything)
}

func TestSweeper_ScheduledThroughScheduler(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	sweeper := cache.NewSweeper(store, zerolog.Nop(), nil)

	scheduler := &mocks.Scheduler{}
	scheduler.On("Schedule", ctx, cache.DefaultSweepInterval, mock.AnythingOfType("func(context.Context)")).
		Run(func(args mock.Arguments) {
			// Invoke the job once as the ticker would
			args.Get(2).(func(context.Context))(ctx)
		}).
		Return(nil)

	require.NoError(t, store.Set(ctx, "k", &cache.Entry{Body: []byte("x")}))
	require.NoError(t, scheduler.Schedule(ctx, cache.DefaultSweepInterval, sweeper.Run))

	assert.Equal(t, 0, store.Len(ctx))
	scheduler.AssertExpectations(t)
}

func TestTickerScheduler(t *testing.T) {
	scheduler := cache.NewTickerScheduler()

	var runs atomic.Int32
	err := scheduler.Schedule(context.Background(), 10*time.Millisecond, func(context.Context) {
		runs.Add(1)
	})
	require.NoError(t, err)

	// Scheduling twice is a no-op
	require.NoError(t, scheduler.Schedule(context.Background(), 10*time.Millisecond, func(context.Context) {
		t.Error("second job should never run")
	}))

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, scheduler.Stop())
	stopped := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, runs.Load())

	// Stopping twice is fine
	assert.NoError(t, scheduler.Stop())
}

func TestTickerScheduler_InvalidInterval(t *testing.T) {
	scheduler := cache.NewTickerScheduler()
	assert.Error(t, scheduler.Schedule(context.Background(), 0, func(context.Context) {}))
	assert.NoError(t, scheduler.Stop())
}

func TestTickerScheduler_ContextCancel(t *testing.T) {
	scheduler := cache.NewTickerScheduler()
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, scheduler.Schedule(ctx, time.Hour, func(context.Context) {}))
	cancel()

	done := make(chan struct{})
	go func() {
		_ = scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
