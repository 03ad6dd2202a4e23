package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// TickerScheduler implements Scheduler with a background ticker goroutine
type TickerScheduler struct {
	mutex     sync.Mutex
	stopChan  chan struct{}
	done      chan struct{}
	running   bool
	newTicker func(time.Duration) (<-chan time.Time, func())
}

// NewTickerScheduler creates a scheduler backed by time.Ticker
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Schedule starts running job every interval. Scheduling while already running is a no-op.
func (s *TickerScheduler) Schedule(ctx context.Context, interval time.Duration, job func(context.Context)) error {
	if interval <= 0 {
		return errors.New("schedule interval must be positive")
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.running {
		return nil
	}
	s.running = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	ticks, stop := s.newTicker(interval)
	go s.loop(ctx, ticks, stop, s.stopChan, s.done, job)
	return nil
}

// Stop stops the scheduled job and waits for an in-flight run to finish
func (s *TickerScheduler) Stop() error {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return nil
	}
	s.running = false
	close(s.stopChan)
	done := s.done
	s.mutex.Unlock()

	<-done
	return nil
}

func (s *TickerScheduler) loop(ctx context.Context, ticks <-chan time.Time, stop func(), stopChan, done chan struct{}, job func(context.Context)) {
	defer close(done)
	defer stop()

	for {
		select {
		case <-ticks:
			job(ctx)
		case <-stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

var _ Scheduler = (*TickerScheduler)(nil)
