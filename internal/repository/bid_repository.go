package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/pkg/database"
)

const bidColumns = `id, job_id, professional_id, amount, message, status, created_at`

// bidRepository implements BidRepository interface
type bidRepository struct {
	db *database.Postgres
}

// NewBidRepository creates a new bid repository
func NewBidRepository(db *database.Postgres) BidRepository {
	return &bidRepository{db: db}
}

func scanBid(scanner interface {
	Scan(dest ...interface{}) error
}) (*domain.Bid, error) {
	b := &domain.Bid{}
	err := scanner.Scan(
		&b.ID,
		&b.JobID,
		&b.ProfessionalID,
		&b.Amount,
		&b.Message,
		&b.Status,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Insert places a bid; each professional gets one bid per job
func (r *bidRepository) Insert(ctx context.Context, bid *domain.Bid) error {
	query := fmt.Sprintf(`INSERT INTO bids (%s) VALUES ($1, $2, $3, $4, $5, $6, $7)`, bidColumns)

	if bid.ID == "" {
		bid.ID = uuid.New().String()
	}
	if bid.CreatedAt.IsZero() {
		bid.CreatedAt = time.Now()
	}
	if bid.Status == "" {
		bid.Status = domain.BidPending
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		bid.ID,
		bid.JobID,
		bid.ProfessionalID,
		bid.Amount,
		bid.Message,
		bid.Status,
		bid.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("professional %s already bid on job %s: %w", bid.ProfessionalID, bid.JobID, ErrDuplicateBid)
		}
		return fmt.Errorf("failed to insert bid: %w", err)
	}

	return nil
}

// FetchByID retrieves a bid by id
func (r *bidRepository) FetchByID(ctx context.Context, id string) (*domain.Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bids WHERE id = $1`, bidColumns)

	bid, err := scanBid(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bid with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch bid: %w", err)
	}

	return bid, nil
}

func (r *bidRepository) listBids(ctx context.Context, query string, args ...interface{}) ([]*domain.Bid, error) {
	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list bids: %w", err)
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, bid)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bids: %w", err)
	}

	return bids, nil
}

// ListByJob returns all bids on a job, lowest amount first
func (r *bidRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bids WHERE job_id = $1 ORDER BY amount ASC`, bidColumns)
	return r.listBids(ctx, query, jobID)
}

// ListByProfessional returns a professional's bids, newest first
func (r *bidRepository) ListByProfessional(ctx context.Context, professionalID string) ([]*domain.Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bids WHERE professional_id = $1 ORDER BY created_at DESC`, bidColumns)
	return r.listBids(ctx, query, professionalID)
}

// UpdateStatus accepts or rejects a bid, returning the updated row
func (r *bidRepository) UpdateStatus(ctx context.Context, id string, status domain.BidStatus) (*domain.Bid, error) {
	query := fmt.Sprintf(`UPDATE bids SET status = $2 WHERE id = $1 RETURNING %s`, bidColumns)

	bid, err := scanBid(r.db.DB.QueryRowContext(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("bid with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update bid status: %w", err)
	}

	return bid, nil
}

// CountPendingForHomeowner counts pending bids across a homeowner's jobs
func (r *bidRepository) CountPendingForHomeowner(ctx context.Context, homeownerID string) (int, error) {
	var count int
	err := r.db.DB.QueryRowContext(ctx, `
		SELECT count(*) FROM bids b
		JOIN jobs j ON j.id = b.job_id
		WHERE j.homeowner_id = $1 AND b.status = 'pending'
	`, homeownerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending bids: %w", err)
	}
	return count, nil
}

// CountByProfessional counts a professional's bids in a given status
func (r *bidRepository) CountByProfessional(ctx context.Context, professionalID string, status domain.BidStatus) (int, error) {
	var count int
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM bids WHERE professional_id = $1 AND status = $2`,
		professionalID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bids: %w", err)
	}
	return count, nil
}
