package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/pkg/database"
)

const profileColumns = `id, email, user_type, confirmed, first_name, last_name, phone, postcode,
		preferred_contact, address, avatar_url, created_at, updated_at`

// profileRepository implements ProfileRepository interface
type profileRepository struct {
	db *database.Postgres
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.Postgres) ProfileRepository {
	return &profileRepository{db: db}
}

func scanProfile(row *sql.Row) (*domain.Profile, error) {
	p := &domain.Profile{}
	err := row.Scan(
		&p.ID,
		&p.Email,
		&p.UserType,
		&p.Confirmed,
		&p.FirstName,
		&p.LastName,
		&p.Phone,
		&p.Postcode,
		&p.PreferredContact,
		&p.Address,
		&p.AvatarURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FetchByID retrieves a profile by its id
func (r *profileRepository) FetchByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)

	profile, err := scanProfile(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile by id: %w", err)
	}

	return profile, nil
}

// FindByIDOrEmail retrieves the single profile matching either the id or the
// email (case-insensitive). Rows matching the id take precedence when both
// exist.
func (r *profileRepository) FindByIDOrEmail(ctx context.Context, id, email string) (*domain.Profile, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM profiles
		WHERE id = $1 OR lower(email) = lower($2)
		ORDER BY (id = $1) DESC
		LIMIT 1
	`, profileColumns)

	profile, err := scanProfile(r.db.DB.QueryRowContext(ctx, query, id, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile matching id %s or email %s not found: %w", id, email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find profile by id or email: %w", err)
	}

	return profile, nil
}

// Insert creates a new profile row
func (r *profileRepository) Insert(ctx context.Context, profile *domain.Profile) error {
	query := `
		INSERT INTO profiles (id, email, user_type, confirmed, first_name, last_name, phone, postcode,
			preferred_contact, address, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))

	_, err := r.db.DB.ExecContext(ctx, query,
		profile.ID,
		profile.Email,
		profile.UserType,
		profile.Confirmed,
		profile.FirstName,
		profile.LastName,
		profile.Phone,
		profile.Postcode,
		profile.PreferredContact,
		profile.Address,
		profile.AvatarURL,
		profile.CreatedAt,
		profile.UpdatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			if pqErr.Constraint == "profiles_pkey" {
				return fmt.Errorf("profile %s already exists: %w", profile.ID, ErrDuplicateProfile)
			}
			return fmt.Errorf("profile with email %s already exists: %w", profile.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	return nil
}

// Update applies the allow-listed fields and refreshes updated_at, returning
// the updated row
func (r *profileRepository) Update(ctx context.Context, id string, updates *ProfileUpdate) (*domain.Profile, error) {
	set := []string{"updated_at = now()"}
	args := []interface{}{id}

	add := func(column string, value *string) {
		if value != nil {
			args = append(args, *value)
			set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("first_name", updates.FirstName)
	add("last_name", updates.LastName)
	add("phone", updates.Phone)
	add("postcode", updates.Postcode)
	add("preferred_contact", updates.PreferredContact)
	add("address", updates.Address)
	add("avatar_url", updates.AvatarURL)

	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(set, ", "), profileColumns)

	profile, err := scanProfile(r.db.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return profile, nil
}

// UpdateID moves a row from a temporary key to the identity provider's user
// id, returning the repaired row
func (r *profileRepository) UpdateID(ctx context.Context, oldID, newID string) (*domain.Profile, error) {
	query := fmt.Sprintf(`
		UPDATE profiles SET id = $2, updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, profileColumns)

	profile, err := scanProfile(r.db.DB.QueryRowContext(ctx, query, oldID, newID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile with id %s not found: %w", oldID, ErrNotFound)
		}
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, fmt.Errorf("profile %s already exists: %w", newID, ErrDuplicateProfile)
		}
		return nil, fmt.Errorf("failed to repair profile id: %w", err)
	}

	return profile, nil
}

// SetConfirmed marks the profile's email as confirmed, returning the updated
// row
func (r *profileRepository) SetConfirmed(ctx context.Context, id string) (*domain.Profile, error) {
	query := fmt.Sprintf(`
		UPDATE profiles SET confirmed = true, updated_at = now()
		WHERE id = $1
		RETURNING %s
	`, profileColumns)

	profile, err := scanProfile(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("profile with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to confirm profile: %w", err)
	}

	return profile, nil
}

// Delete removes a profile row
func (r *profileRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.DB.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("profile with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}
