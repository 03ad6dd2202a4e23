package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/repository"
	repoMocks "github.com/joshdurbin/js4hs-edge/internal/repository/mocks"
)

func TestJobBoard_CreateJob(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 1, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		req         domain.CreateJobRequest
		setupMocks  func(*repoMocks.JobRepository)
		wantErr     bool
		errIs       error
		errContains string
	}{
		{
			name: "successful creation",
			req:  domain.CreateJobRequest{Title: "  Cashier ", Employer: "Corner Market", Location: "Main St"},
			setupMocks: func(repo *repoMocks.JobRepository) {
				repo.On("CreateJob", ctx, mock.MatchedBy(func(j *domain.Job) bool {
					return j.ID == "job-0001" && j.Title == "Cashier" && j.CreatedAt.Equal(now)
				})).Return(&domain.Job{ID: "job-0001", Title: "Cashier", Employer: "Corner Market", Location: "Main St", CreatedAt: now}, nil)
			},
		},
		{
			name:       "missing title",
			req:        domain.CreateJobRequest{Title: "   ", Employer: "Corner Market"},
			setupMocks: func(repo *repoMocks.JobRepository) {},
			wantErr:    true,
			errIs:      ErrInvalidJob,
		},
		{
			name:       "missing employer",
			req:        domain.CreateJobRequest{Title: "Cashier"},
			setupMocks: func(repo *repoMocks.JobRepository) {},
			wantErr:    true,
			errIs:      ErrInvalidJob,
		},
		{
			name:        "title too long",
			req:         domain.CreateJobRequest{Title: strings.Repeat("x", maxTitleLength+1), Employer: "Corner Market"},
			setupMocks:  func(repo *repoMocks.JobRepository) {},
			wantErr:     true,
			errIs:       ErrInvalidJob,
			errContains: "title exceeds",
		},
		{
			name: "repository error",
			req:  domain.CreateJobRequest{Title: "Cashier", Employer: "Corner Market"},
			setupMocks: func(repo *repoMocks.JobRepository) {
				repo.On("CreateJob", ctx, mock.AnythingOfType("*domain.Job")).Return(nil, assert.AnError)
			},
			wantErr:     true,
			errContains: "failed to create job",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &repoMocks.JobRepository{}
			tt.setupMocks(repo)

			board := NewJobBoard(repo, WithIDGenerator(NewTestGenerator()), WithJobClock(func() time.Time { return now }))
			job, err := board.CreateJob(ctx, tt.req)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, job)
				if tt.errIs != nil {
					assert.True(t, errors.Is(err, tt.errIs))
				}
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "job-0001", job.ID)
				assert.Equal(t, "Cashier", job.Title)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestJobBoard_CreateJob_DefaultUUID(t *testing.T) {
	ctx := context.Background()
	repo := &repoMocks.JobRepository{}
	repo.On("CreateJob", ctx, mock.MatchedBy(func(j *domain.Job) bool {
		_, err := uuid.Parse(j.ID)
		return err == nil
	})).Return(&domain.Job{ID: "ok"}, nil)

	_, err := NewJobBoard(repo).CreateJob(ctx, domain.CreateJobRequest{Title: "Tutor", Employer: "Library"})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestJobBoard_GetJob(t *testing.T) {
	ctx := context.Background()

	repo := &repoMocks.JobRepository{}
	repo.On("GetJob", ctx, "job-1").Return(&domain.Job{ID: "job-1", Title: "Lifeguard"}, nil)
	repo.On("GetJob", ctx, "missing").Return(nil, repository.ErrJobNotFound)

	board := NewJobBoard(repo)

	job, err := board.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "Lifeguard", job.Title)

	_, err = board.GetJob(ctx, "missing")
	assert.True(t, errors.Is(err, repository.ErrJobNotFound))

	_, err = board.GetJob(ctx, " ")
	assert.True(t, errors.Is(err, repository.ErrJobNotFound))

	repo.AssertExpectations(t)
}

func TestJobBoard_ListJobs(t *testing.T) {
	ctx := context.Background()

	t.Run("first page", func(t *testing.T) {
		repo := &repoMocks.JobRepository{}
		jobs := []*domain.Job{{ID: "b"}, {ID: "a"}}
		repo.On("CountJobs", ctx).Return(2, nil)
		repo.On("ListJobs", ctx, DefaultPageSize, 0).Return(jobs, nil)

		page, err := NewJobBoard(repo).ListJobs(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, jobs, page.Jobs)
		assert.Equal(t, 1, page.Page)
		assert.Equal(t, DefaultPageSize, page.PageSize)
		assert.Equal(t, 2, page.Total)
		repo.AssertExpectations(t)
	})

	t.Run("third page offset", func(t *testing.T) {
		repo := &repoMocks.JobRepository{}
		repo.On("CountJobs", ctx).Return(45, nil)
		repo.On("ListJobs", ctx, DefaultPageSize, 40).Return([]*domain.Job{{ID: "z"}}, nil)

		page, err := NewJobBoard(repo).ListJobs(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, page.Jobs, 1)
		repo.AssertExpectations(t)
	})

	t.Run("past the end is empty", func(t *testing.T) {
		repo := &repoMocks.JobRepository{}
		repo.On("CountJobs", ctx).Return(0, nil)

		page, err := NewJobBoard(repo).ListJobs(ctx, 4)
		require.NoError(t, err)
		assert.NotNil(t, page.Jobs)
		assert.Empty(t, page.Jobs)
		repo.AssertNotCalled(t, "ListJobs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid page", func(t *testing.T) {
		repo := &repoMocks.JobRepository{}
		for _, p := range []int{0, -1} {
			_, err := NewJobBoard(repo).ListJobs(ctx, p)
			assert.True(t, errors.Is(err, ErrInvalidPage))
		}
		repo.AssertNotCalled(t, "CountJobs", mock.Anything)
	})

	t.Run("page whose offset overflows", func(t *testing.T) {
		repo := &repoMocks.JobRepository{}
		for _, p := range []int{math.MaxInt/DefaultPageSize + 1, math.MaxInt/2, math.MaxInt} {
			_, err := NewJobBoard(repo).ListJobs(ctx, p)
			assert.ErrorIs(t, err, ErrInvalidPage)
		}
		repo.AssertNotCalled(t, "CountJobs", mock.Anything)
		repo.AssertNotCalled(t, "ListJobs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("last representable page", func(t *testing.T) {
		repo := &repoMocks.JobRepository{}
		repo.On("CountJobs", ctx).Return(3, nil)

		result, err := NewJobBoard(repo).ListJobs(ctx, math.MaxInt/DefaultPageSize)
		require.NoError(t, err)
		assert.Empty(t, result.Jobs)
		repo.AssertNotCalled(t, "ListJobs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repository errors", func(t *testing.T) {
		repo := &repoMocks.JobRepository{}
		repo.On("CountJobs", ctx).Return(0, assert.AnError)

		_, err := NewJobBoard(repo).ListJobs(ctx, 1)
		assert.ErrorIs(t, err, assert.AnError)

		repo = &repoMocks.JobRepository{}
		repo.On("CountJobs", ctx).Return(3, nil)
		repo.On("ListJobs", ctx, DefaultPageSize, 0).Return(nil, assert.AnError)

		_, err = NewJobBoard(repo).ListJobs(ctx, 1)
		assert.ErrorContains(t, err, "failed to list jobs")
	})
}

func TestJobBoard_Close(t *testing.T) {
	repo := &repoMocks.JobRepository{}
	repo.On("Close").Return(nil)

	assert.NoError(t, NewJobBoard(repo).Close())
	repo.AssertExpectations(t)
}

func TestTestGenerator(t *testing.T) {
	gen := NewTestGenerator()
	first, _ := gen.NewID()
	second, _ := gen.NewID()
	assert.Equal(t, "job-0001", first)
	assert.Equal(t, "job-0002", second)
}
