package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/js4hs-edge/internal/cache"
)

// Store is a mock implementation of cache.Store
type Store struct {
	mock.Mock
}

// Get retrieves an entry by key
func (m *Store) Get(ctx context.Context, key string) (*cache.Entry, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).(*cache.Entry), args.Bool(1)
}

// Set stores an entry
func (m *Store) Set(ctx context.Context, key string, entry *cache.Entry) error {
	args := m.Called(ctx, key, entry)
	return args.Error(0)
}

// Clear removes every entry
func (m *Store) Clear(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Len returns the number of stored entries
func (m *Store) Len(ctx context.Context) int {
	args := m.Called(ctx)
	return args.Int(0)
}

// Scheduler is a mock implementation of cache.Scheduler
type Scheduler struct {
	mock.Mock
}

// Schedule starts running job every interval
func (m *Scheduler) Schedule(ctx context.Context, interval time.Duration, job func(context.Context)) error {
	args := m.Called(ctx, interval, job)
	return args.Error(0)
}

// Stop stops the scheduled job
func (m *Scheduler) Stop() error {
	args := m.Called()
	return args.Error(0)
}

// Recorder is a mock implementation of cache.Recorder
type Recorder struct {
	mock.Mock
}

func (m *Recorder) Hit()                 { m.Called() }
func (m *Recorder) Miss()                { m.Called() }
func (m *Recorder) Bypass(reason string) { m.Called(reason) }
func (m *Recorder) StoreError()          { m.Called() }
func (m *Recorder) Swept(removed int)    { m.Called(removed) }

var (
	_ cache.Store     = (*Store)(nil)
	_ cache.Scheduler = (*Scheduler)(nil)
	_ cache.Recorder  = (*Recorder)(nil)
)
