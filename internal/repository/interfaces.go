package repository

import (
	"context"
	"errors"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
)

// ErrJobNotFound is returned when no job has the requested id
var ErrJobNotFound = errors.New("job not found")

// JobRepository defines the interface for job listing storage
type JobRepository interface {
	// CreateJob inserts a job; ID and CreatedAt must already be set
	CreateJob(ctx context.Context, job *domain.Job) (*domain.Job, error)

	// GetJob retrieves a job by id
	GetJob(ctx context.Context, id string) (*domain.Job, error)

	// ListJobs retrieves jobs ordered by creation date (desc)
	ListJobs(ctx context.Context, limit, offset int) ([]*domain.Job, error)

	// CountJobs returns the total number of jobs
	CountJobs(ctx context.Context) (int, error)

	// Ping checks that the backing database is reachable
	Ping(ctx context.Context) error

	// Close closes the repository connection
	Close() error
}
