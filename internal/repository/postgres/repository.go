// Package postgres stores job listings in PostgreSQL through a pgx pool.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/repository"
	"github.com/joshdurbin/js4hs-edge/internal/repository/migrations"
)

const (
	insertJob = `INSERT INTO jobs (id, title, employer, location, description, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	selectJob = `SELECT id::text, title, employer, location, description, created_at
FROM jobs WHERE id::text = $1`

	listJobs = `SELECT id::text, title, employer, location, description, created_at
FROM jobs ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`

	countJobs = `SELECT COUNT(*) FROM jobs`
)

// Repository implements repository.JobRepository using PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and applies pending migrations
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := &Repository{pool: pool}
	if err := repo.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// CreateJob inserts a job
func (r *Repository) CreateJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	createdAt := job.CreatedAt.UTC()
	_, err := r.pool.Exec(ctx, insertJob,
		job.ID, job.Title, job.Employer, job.Location, job.Description, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	created := *job
	created.CreatedAt = createdAt
	return &created, nil
}

// GetJob retrieves a job by id
func (r *Repository) GetJob(ctx context.Context, id string) (*domain.Job, error) {
	rows, err := r.pool.Query(ctx, selectJob, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	job, err := pgx.CollectExactlyOneRow(rows, scanJob)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs retrieves jobs ordered by creation date (desc)
func (r *Repository) ListJobs(ctx context.Context, limit, offset int) ([]*domain.Job, error) {
	rows, err := r.pool.Query(ctx, listJobs, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs, err := pgx.CollectRows(rows, scanJob)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	if jobs == nil {
		jobs = []*domain.Job{}
	}
	return jobs, nil
}

// CountJobs returns the total number of jobs
func (r *Repository) CountJobs(ctx context.Context) (int, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, countJobs).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return int(count), nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the pool
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

func scanJob(row pgx.CollectableRow) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(&job.ID, &job.Title, &job.Employer, &job.Location, &job.Description, &job.CreatedAt); err != nil {
		return nil, err
	}
	job.CreatedAt = job.CreatedAt.UTC()
	return &job, nil
}

func (r *Repository) runMigrations(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	pending, err := migrations.For(migrations.Postgres)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	for _, m := range pending {
		err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx,
				"INSERT INTO schema_migrations (version) VALUES ($1) ON CONFLICT (version) DO NOTHING", m.Version)
			if err != nil {
				return fmt.Errorf("failed to record migration: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return nil // already applied
			}
			_, err = tx.Exec(ctx, m.SQL)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// Ensure Repository implements the interface
var _ repository.JobRepository = (*Repository)(nil)
