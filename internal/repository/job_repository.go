package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/pkg/database"
)

const jobColumns = `id, homeowner_id, title, description, trade, postcode, budget_min, budget_max, status, created_at, updated_at`

// jobRepository implements JobRepository interface
type jobRepository struct {
	db *database.Postgres
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *database.Postgres) JobRepository {
	return &jobRepository{db: db}
}

func scanJob(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Job, error) {
	j := &domain.Job{}
	err := scanner.Scan(
		&j.ID,
		&j.HomeownerID,
		&j.Title,
		&j.Description,
		&j.Trade,
		&j.Postcode,
		&j.BudgetMin,
		&j.BudgetMax,
		&j.Status,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// Insert creates a new job
func (r *jobRepository) Insert(ctx context.Context, job *domain.Job) error {
	query := fmt.Sprintf(`INSERT INTO jobs (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`, jobColumns)

	if job.ID == "" {
		job.ID = uuid.New().String()
	}
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = now
	}
	if job.Status == "" {
		job.Status = domain.JobOpen
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		job.ID,
		job.HomeownerID,
		job.Title,
		job.Description,
		job.Trade,
		job.Postcode,
		job.BudgetMin,
		job.BudgetMax,
		job.Status,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	return nil
}

// FetchByID retrieves a job by id
func (r *jobRepository) FetchByID(ctx context.Context, id string) (*domain.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE id = $1`, jobColumns)

	job, err := scanJob(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get job by id: %w", err)
	}

	return job, nil
}

func (r *jobRepository) listJobs(ctx context.Context, query string, args ...interface{}) ([]*domain.Job, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}

	return jobs, nil
}

// ListByHomeowner returns a homeowner's jobs, newest first
func (r *jobRepository) ListByHomeowner(ctx context.Context, homeownerID string) ([]*domain.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE homeowner_id = $1 ORDER BY created_at DESC`, jobColumns)
	return r.listJobs(ctx, query, homeownerID)
}

// ListOpen returns open jobs, optionally filtered by trade
func (r *jobRepository) ListOpen(ctx context.Context, trade string) ([]*domain.Job, error) {
	if trade != "" {
		query := fmt.Sprintf(`SELECT %s FROM jobs WHERE status = 'open' AND trade = $1 ORDER BY created_at DESC`, jobColumns)
		return r.listJobs(ctx, query, trade)
	}
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE status = 'open' ORDER BY created_at DESC`, jobColumns)
	return r.listJobs(ctx, query)
}

// UpdateStatus moves a job through its lifecycle, returning the updated row
func (r *jobRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus) (*domain.Job, error) {
	query := fmt.Sprintf(`UPDATE jobs SET status = $2, updated_at = now() WHERE id = $1 RETURNING %s`, jobColumns)

	job, err := scanJob(r.db.DB.QueryRowContext(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("job with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	return job, nil
}

// CountByHomeowner counts a homeowner's jobs in a given status
func (r *jobRepository) CountByHomeowner(ctx context.Context, homeownerID string, status domain.JobStatus) (int, error) {
	var count int
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM jobs WHERE homeowner_id = $1 AND status = $2`,
		homeownerID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}

// CountOpen counts open jobs, optionally filtered by trade
func (r *jobRepository) CountOpen(ctx context.Context, trade string) (int, error) {
	var count int
	var err error
	if trade != "" {
		err = r.db.DB.QueryRowContext(ctx, `SELECT count(*) FROM jobs WHERE status = 'open' AND trade = $1`, trade).Scan(&count)
	} else {
		err = r.db.DB.QueryRowContext(ctx, `SELECT count(*) FROM jobs WHERE status = 'open'`).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to count open jobs: %w", err)
	}
	return count, nil
}
