package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidTTL is returned when a cache duration is negative or not a whole number of seconds
	ErrInvalidTTL = errors.New("cache duration must be a non-negative whole number of seconds")

	// ErrEntryTooLarge is returned when an entry exceeds the store's size limit
	ErrEntryTooLarge = errors.New("cache entry exceeds size limit")
)

// Entry is a stored response body
type Entry struct {
	Body        []byte    `json:"body"`
	ContentType string    `json:"content_type,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Fresh reports whether the entry may still be served at now
func (e *Entry) Fresh(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Store defines the interface for response storage
type Store interface {
	// Get retrieves an entry by key, expired or not
	Get(ctx context.Context, key string) (*Entry, bool)

	// Set stores an entry, replacing any existing value
	Set(ctx context.Context, key string, entry *Entry) error

	// Clear removes every entry and returns how many were removed
	Clear(ctx context.Context) (int, error)

	// Len returns the number of stored entries
	Len(ctx context.Context) int
}

// Scheduler runs a job on a fixed interval until stopped
type Scheduler interface {
	// Schedule starts running job every interval
	Schedule(ctx context.Context, interval time.Duration, job func(context.Context)) error

	// Stop stops the scheduled job
	Stop() error
}

// Recorder receives cache events for instrumentation
type Recorder interface {
	Hit()
	Miss()
	Bypass(reason string)
	StoreError()
	Swept(removed int)
}

// NopRecorder discards all events
type NopRecorder struct{}

func (NopRecorder) Hit()          {}
func (NopRecorder) Miss()         {}
func (NopRecorder) Bypass(string) {}
func (NopRecorder) StoreError()   {}
func (NopRecorder) Swept(int)     {}

var _ Recorder = NopRecorder{}
