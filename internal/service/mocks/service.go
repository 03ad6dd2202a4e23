package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/linkcheck"
	"github.com/joshdurbin/js4hs-edge/internal/service"
)

// JobBoard is a mock implementation of service.JobBoard
type JobBoard struct {
	mock.Mock
}

// CreateJob validates and stores a new job listing
func (m *JobBoard) CreateJob(ctx context.Context, req domain.CreateJobRequest) (*domain.Job, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

// GetJob retrieves a job by id
func (m *JobBoard) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

// ListJobs returns one page of jobs
func (m *JobBoard) ListJobs(ctx context.Context, page int) (*domain.JobPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JobPage), args.Error(1)
}

// Close closes the service and its dependencies
func (m *JobBoard) Close() error {
	args := m.Called()
	return args.Error(0)
}

// LinkService is a mock implementation of service.LinkService
type LinkService struct {
	mock.Mock
}

// IssueLink stamps target with the current time
func (m *LinkService) IssueLink(target string) (*domain.QRLinkResponse, error) {
	args := m.Called(target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QRLinkResponse), args.Error(1)
}

// ValidateLink reports whether rawURL is still within its window
func (m *LinkService) ValidateLink(rawURL string) linkcheck.Result {
	args := m.Called(rawURL)
	return args.Get(0).(linkcheck.Result)
}

var (
	_ service.JobBoard    = (*JobBoard)(nil)
	_ service.LinkService = (*LinkService)(nil)
)
