package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/pkg/database"
)

// roleChangeRepository implements RoleChangeRepository interface
type roleChangeRepository struct {
	db *database.Postgres
}

// NewRoleChangeRepository creates a new role-change request repository
func NewRoleChangeRepository(db *database.Postgres) RoleChangeRepository {
	return &roleChangeRepository{db: db}
}

// Insert appends a pending role-change request
func (r *roleChangeRepository) Insert(ctx context.Context, req *domain.RoleChangeRequest) error {
	query := `
		INSERT INTO role_change_requests (id, user_id, from_role, requested_role, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	now := time.Now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = now
	}
	if req.Status == "" {
		req.Status = domain.RoleChangePending
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		req.ID,
		req.UserID,
		req.FromRole,
		req.RequestedRole,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert role change request: %w", err)
	}

	return nil
}

// ListByUser returns a user's role-change requests, newest first
func (r *roleChangeRepository) ListByUser(ctx context.Context, userID string) ([]*domain.RoleChangeRequest, error) {
	query := `
		SELECT id, user_id, from_role, requested_role, status, created_at, updated_at
		FROM role_change_requests
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list role change requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.RoleChangeRequest
	for rows.Next() {
		req := &domain.RoleChangeRequest{}
		if err := rows.Scan(&req.ID, &req.UserID, &req.FromRole, &req.RequestedRole, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan role change request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate role change requests: %w", err)
	}

	return requests, nil
}
