package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/repository"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// jobBoard implements JobBoard
type jobBoard struct {
	repo     repository.JobRepository
	ids      IDGenerator
	now      func() time.Time
	pageSize int
}

// JobBoardOption configures the job board
type JobBoardOption func(*jobBoard)

// WithIDGenerator overrides the uuid generator
func WithIDGenerator(ids IDGenerator) JobBoardOption {
	return func(b *jobBoard) { b.ids = ids }
}

// WithJobClock overrides the creation time source
func WithJobClock(now func() time.Time) JobBoardOption {
	return func(b *jobBoard) { b.now = now }
}

// NewJobBoard creates a new job board service
func NewJobBoard(repo repository.JobRepository, opts ...JobBoardOption) JobBoard {
	b := &jobBoard{
		repo:     repo,
		ids:      UUIDGenerator{},
		now:      time.Now,
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateJob validates and stores a new job listing
func (b *jobBoard) CreateJob(ctx context.Context, req domain.CreateJobRequest) (*domain.Job, error) {
	job := &domain.Job{
		Title:       strings.TrimSpace(req.Title),
		Employer:    strings.TrimSpace(req.Employer),
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
	}
	if err := validateJob(job); err != nil {
		return nil, err
	}

	id, err := b.ids.NewID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate job id: %w", err)
	}
	job.ID = id
	job.CreatedAt = b.now().UTC()

	created, err := b.repo.CreateJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return created, nil
}

// GetJob retrieves a job by id
func (b *jobBoard) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	if strings.TrimSpace(id) == "" {
		return nil, repository.ErrJobNotFound
	}
	return b.repo.GetJob(ctx, id)
}

// ListJobs returns one page of jobs
func (b *jobBoard) ListJobs(ctx context.Context, page int) (*domain.JobPage, error) {
	if page < 1 || page > math.MaxInt/b.pageSize {
		return nil, ErrInvalidPage
	}

	total, err := b.repo.CountJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count jobs: %w", err)
	}

	jobs := []*domain.Job{}
	offset := (page - 1) * b.pageSize
	if offset < total {
		jobs, err = b.repo.ListJobs(ctx, b.pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("failed to list jobs: %w", err)
		}
	}

	return &domain.JobPage{
		Jobs:     jobs,
		Page:     page,
		PageSize: b.pageSize,
		Total:    total,
	}, nil
}

// Close closes the underlying repository
func (b *jobBoard) Close() error {
	return b.repo.Close()
}

func validateJob(job *domain.Job) error {
	switch {
	case job.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidJob)
	case job.Employer == "":
		return fmt.Errorf("%w: employer is required", ErrInvalidJob)
	case len(job.Title) > maxTitleLength:
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidJob, maxTitleLength)
	case len(job.Description) > maxDescriptionLength:
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidJob, maxDescriptionLength)
	}
	return nil
}

// UUIDGenerator issues random version 4 UUIDs
type UUIDGenerator struct{}

// NewID returns a new UUID string
func (UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
