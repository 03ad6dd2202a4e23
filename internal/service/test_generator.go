package service

import (
	"fmt"
	"sync"
)

// TestGenerator is a predictable IDGenerator for testing purposes
type TestGenerator struct {
	mu      sync.Mutex
	counter int
}

// NewTestGenerator creates a new test generator
func NewTestGenerator() *TestGenerator {
	return &TestGenerator{}
}

// NewID returns job-0001, job-0002, ...
func (g *TestGenerator) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.counter++
	return fmt.Sprintf("job-%04d", g.counter), nil
}

var _ IDGenerator = (*TestGenerator)(nil)
