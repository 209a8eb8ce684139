package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/pkg/database"
)

// professionalRepository implements ProfessionalRepository interface
type professionalRepository struct {
	db *database.Postgres
}

// NewProfessionalRepository creates a new professional-details repository
func NewProfessionalRepository(db *database.Postgres) ProfessionalRepository {
	return &professionalRepository{db: db}
}

// Insert creates the professional-details row linked to a profile
func (r *professionalRepository) Insert(ctx context.Context, details *domain.ProfessionalDetails) error {
	query := `
		INSERT INTO professionals (id, company_name, registration_number, trade, bio,
			hourly_rate, years_of_experience, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	now := time.Now()
	if details.CreatedAt.IsZero() {
		details.CreatedAt = now
	}
	if details.UpdatedAt.IsZero() {
		details.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		details.ID,
		details.CompanyName,
		details.RegistrationNumber,
		details.Trade,
		details.Bio,
		details.HourlyRate,
		details.YearsOfExperience,
		details.Rating,
		details.CreatedAt,
		details.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("professional details for %s already exist: %w", details.ID, ErrDuplicateProfile)
		}
		return fmt.Errorf("failed to insert professional details: %w", err)
	}

	return nil
}

// FetchByID retrieves professional details by profile id
func (r *professionalRepository) FetchByID(ctx context.Context, id string) (*domain.ProfessionalDetails, error) {
	query := `
		SELECT id, company_name, registration_number, trade, bio, hourly_rate,
			years_of_experience, rating, created_at, updated_at
		FROM professionals
		WHERE id = $1
	`

	d := &domain.ProfessionalDetails{}
	err := r.db.DB.QueryRowContext(ctx, query, id).Scan(
		&d.ID,
		&d.CompanyName,
		&d.RegistrationNumber,
		&d.Trade,
		&d.Bio,
		&d.HourlyRate,
		&d.YearsOfExperience,
		&d.Rating,
		&d.CreatedAt,
		&d.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("professional details for %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get professional details: %w", err)
	}

	return d, nil
}
