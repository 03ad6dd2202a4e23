package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/joshdurbin/js4hs-edge/internal/domain"
	"github.com/joshdurbin/js4hs-edge/internal/repository"
)

const (
	insertJob = `INSERT INTO jobs (id, title, employer, location, description, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

	selectJob = `SELECT id, title, employer, location, description, created_at
FROM jobs WHERE id = ?`

	listJobs = `SELECT id, title, employer, location, description, created_at
FROM jobs ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`

	countJobs = `SELECT COUNT(*) FROM jobs`
)

// Repository implements repository.JobRepository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository. Writers wait up to five seconds
// for a locked database before failing.
func New(databasePath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", databasePath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	repo := &Repository{db: db}

	if err := repo.runMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

// CreateJob inserts a job
func (r *Repository) CreateJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	createdAt := job.CreatedAt.UTC()
	_, err := r.db.ExecContext(ctx, insertJob,
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
	job, err := scanJob(r.db.QueryRowContext(ctx, selectJob, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// ListJobs retrieves jobs ordered by creation date (desc)
func (r *Repository) ListJobs(ctx context.Context, limit, offset int) ([]*domain.Job, error) {
	rows, err := r.db.QueryContext(ctx, listJobs, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]*domain.Job, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	return jobs, nil
}

// CountJobs returns the total number of jobs
func (r *Repository) CountJobs(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, countJobs).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the repository connection
func (r *Repository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	if err := row.Scan(&job.ID, &job.Title, &job.Employer, &job.Location, &job.Description, &job.CreatedAt); err != nil {
		return nil, err
	}
	job.CreatedAt = job.CreatedAt.UTC()
	return &job, nil
}

// Ensure Repository implements the interface
var _ repository.JobRepository = (*Repository)(nil)
