package cache

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSweepInterval is how often the whole store is cleared
const DefaultSweepInterval = 24 * time.Hour

// Sweeper empties a Store on a schedule. Entries are never evicted one by
// one; a sweep drops everything regardless of freshness.
type Sweeper struct {
	store    Store
	logger   zerolog.Logger
	recorder Recorder
}

// NewSweeper creates a sweeper for store. A nil recorder discards events.
func NewSweeper(store Store, logger zerolog.Logger, recorder Recorder) *Sweeper {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Sweeper{
		store:    store,
		logger:   logger,
		recorder: recorder,
	}
}

// Sweep clears the store and returns how many entries were removed
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	removed, err := s.store.Clear(ctx)
	if err != nil {
		return 0, err
	}
	s.recorder.Swept(removed)
	return removed, nil
}

// Run is the scheduled form of Sweep. Failures are logged.
func (s *Sweeper) Run(ctx context.Context) {
	removed, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("cache sweep failed")
		return
	}
	s.logger.Info().Int("removed", removed).Msg("cache swept")
}
