package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tradehub/tradehub-api/internal/domain"
	"github.com/tradehub/tradehub-api/pkg/database"
)

// messageRepository implements MessageRepository interface
type messageRepository struct {
	db *database.Postgres
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(db *database.Postgres) MessageRepository {
	return &messageRepository{db: db}
}

// Insert appends a message to a job thread
func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, job_id, sender_id, recipient_id, body, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		msg.ID,
		msg.JobID,
		msg.SenderID,
		msg.RecipientID,
		msg.Body,
		msg.Read,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}

// ListThread returns a job's messages in chronological order
func (r *messageRepository) ListThread(ctx context.Context, jobID string) ([]*domain.Message, error) {
	query := `
		SELECT id, job_id, sender_id, recipient_id, body, read, created_at
		FROM messages
		WHERE job_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.DB.QueryContext(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		msg := &domain.Message{}
		if err := rows.Scan(&msg.ID, &msg.JobID, &msg.SenderID, &msg.RecipientID, &msg.Body, &msg.Read, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

// MarkRead flags a recipient's messages in a thread as read
func (r *messageRepository) MarkRead(ctx context.Context, jobID, recipientID string) error {
	_, err := r.db.DB.ExecContext(ctx,
		`UPDATE messages SET read = true WHERE job_id = $1 AND recipient_id = $2 AND read = false`,
		jobID, recipientID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// CountUnread counts a user's unread messages across all threads
func (r *messageRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	var count int
	err := r.db.DB.QueryRowContext(ctx,
		`SELECT count(*) FROM messages WHERE recipient_id = $1 AND read = false`,
		recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}
