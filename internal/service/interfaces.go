package service

import (
	"context"
	"errors"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/linkcheck"
)

// Validation errors returned to callers as bad requests
var (
	ErrInvalidJob    = errors.New("invalid job")
	ErrInvalidPage   = errors.New("page must be a positive integer")
	ErrInvalidTarget = errors.New("invalid link target")
)

// DefaultPageSize is the number of jobs returned per page
const DefaultPageSize = 20

// JobBoard defines the job listing operations
type JobBoard interface {
	// CreateJob validates and stores a new job listing
	CreateJob(ctx context.Context, req domain.CreateJobRequest) (*domain.Job, error)

	// GetJob retrieves a job by id
	GetJob(ctx context.Context, id string) (*domain.Job, error)

	// ListJobs returns one page of jobs, newest first. Pages start at 1.
	ListJobs(ctx context.Context, page int) (*domain.JobPage, error)

	// Close closes the service and its dependencies
	Close() error
}

// LinkService issues and checks time-limited QR links
type LinkService interface {
	// IssueLink stamps target with the current time
	IssueLink(target string) (*domain.QRLinkResponse, error)

	// ValidateLink reports whether rawURL is still within its window
	ValidateLink(rawURL string) linkcheck.Result
}

// IDGenerator produces identifiers for new records
type IDGenerator interface {
	NewID() (string, error)
}

// LinkRecorder receives link validation outcomes
type LinkRecorder interface {
	LinkValidated(result string)
}
