package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/joshdurbin/js4hs-edge/internal/cache"
)

// Store implements cache.Store using in-memory storage
type Store struct {
	data          map[string]*cache.Entry
	mutex         sync.RWMutex
	maxEntryBytes int
}

// Option configures a Store
type Option func(*Store)

// WithMaxEntryBytes rejects entries whose body is larger than n bytes. Zero disables the limit.
func WithMaxEntryBytes(n int) Option {
	return func(s *Store) { s.maxEntryBytes = n }
}

// New creates a new in-memory store
func New(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]*cache.Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves an entry by key
func (s *Store) Get(ctx context.Context, key string) (*cache.Entry, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entry, exists := s.data[key]
	if !exists {
		return nil, false
	}

	// Return a copy to prevent external modification
	return copyEntry(entry), true
}

// Set stores an entry
func (s *Store) Set(ctx context.Context, key string, entry *cache.Entry) error {
	if entry == nil {
		return fmt.Errorf("cannot store nil entry for key %s", key)
	}
	if s.maxEntryBytes > 0 && len(entry.Body) > s.maxEntryBytes {
		return fmt.Errorf("%w: %d bytes > %d", cache.ErrEntryTooLarge, len(entry.Body), s.maxEntryBytes)
	}

	// Copy outside the lock; readers only ever see a complete entry
	stored := copyEntry(entry)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data[key] = stored
	return nil
}

// Clear removes every entry
func (s *Store) Clear(ctx context.Context) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	removed := len(s.data)
	s.data = make(map[string]*cache.Entry)
	return removed, nil
}

// Len returns the number of stored entries
func (s *Store) Len(ctx context.Context) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.data)
}

func copyEntry(e *cache.Entry) *cache.Entry {
	body := make([]byte, len(e.Body))
	copy(body, e.Body)
	return &cache.Entry{
		Body:        body,
		ContentType: e.ContentType,
		StoredAt:    e.StoredAt,
		ExpiresAt:   e.ExpiresAt,
	}
}

// Ensure Store implements the interface
var _ cache.Store = (*Store)(nil)
