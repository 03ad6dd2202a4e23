package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/repository"
)

// JobRepository is a mock implementation of repository.JobRepository
type JobRepository struct {
	mock.Mock
}

// CreateJob inserts a job
func (m *JobRepository) CreateJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

// GetJob retrieves a job by id
func (m *JobRepository) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

// ListJobs retrieves jobs ordered by creation date (desc)
func (m *JobRepository) ListJobs(ctx context.Context, limit, offset int) ([]*domain.Job, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Job), args.Error(1)
}

// CountJobs returns the total number of jobs
func (m *JobRepository) CountJobs(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// Ping checks that the backing database is reachable
func (m *JobRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close closes the repository connection
func (m *JobRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

var _ repository.JobRepository = (*JobRepository)(nil)
