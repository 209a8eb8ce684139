package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/pkg/database"
)

// complaintRepository implements ComplaintRepository interface
type complaintRepository struct {
	db *database.Postgres
}

// NewComplaintRepository creates a new complaint repository
func NewComplaintRepository(db *database.Postgres) ComplaintRepository {
	return &complaintRepository{db: db}
}

// Insert files a complaint
func (r *complaintRepository) Insert(ctx context.Context, complaint *domain.Complaint) error {
	query := `
		INSERT INTO complaints (id, reporter_id, subject_id, job_id, category, body, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if complaint.ID == "" {
		complaint.ID = uuid.New().String()
	}
	if complaint.CreatedAt.IsZero() {
		complaint.CreatedAt = time.Now()
	}
	if complaint.Status == "" {
		complaint.Status = domain.ComplaintOpen
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		complaint.ID,
		complaint.ReporterID,
		complaint.SubjectID,
		complaint.JobID,
		complaint.Category,
		complaint.Body,
		complaint.Status,
		complaint.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert complaint: %w", err)
	}

	return nil
}

// ListByReporter returns complaints filed by a user, newest first
func (r *complaintRepository) ListByReporter(ctx context.Context, reporterID string) ([]*domain.Complaint, error) {
	query := `
		SELECT id, reporter_id, subject_id, job_id, category, body, status, created_at
		FROM complaints
		WHERE reporter_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, reporterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	defer rows.Close()

	var complaints []*domain.Complaint
	for rows.Next() {
		c := &domain.Complaint{}
		if err := rows.Scan(&c.ID, &c.ReporterID, &c.SubjectID, &c.JobID, &c.Category, &c.Body, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate complaints: %w", err)
	}

	return complaints, nil
}
