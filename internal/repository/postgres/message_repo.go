package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velic22/chirp/internal/domain"
)

type MessageRepo struct {
	pool *pgxpool.Pool
}

func NewMessageRepo(pool *pgxpool.Pool) *MessageRepo {
	return &MessageRepo{pool: pool}
}

func (r *MessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, text, seen, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		msg.ID, msg.SenderID, msg.ReceiverID, msg.Text, msg.Seen, msg.CreatedAt, msg.UpdatedAt,
	)
	return err
}

func (r *MessageRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.receiver_id, m.text, m.seen,
			m.created_at, m.updated_at, u.name, u.username, u.image
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = $1`
	var msg domain.Message
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Text, &msg.Seen,
		&msg.CreatedAt, &msg.UpdatedAt,
		&msg.SenderName, &msg.SenderUsername, &msg.SenderImage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return &msg, err
}

// ListBetween returns the full history between two users, oldest first. The
// ascending order is load-bearing: clients render the slice as-is.
func (r *MessageRepo) ListBetween(ctx context.Context, userA, userB uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.receiver_id, m.text, m.seen,
			m.created_at, m.updated_at, u.name, u.username, u.image
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE (m.sender_id = $1 AND m.receiver_id = $2)
			OR (m.sender_id = $2 AND m.receiver_id = $1)
		ORDER BY m.created_at ASC`

	rows, err := r.pool.Query(ctx, query, userA, userB)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

func (r *MessageRepo) ListInvolving(ctx context.Context, userID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.sender_id, m.receiver_id, m.text, m.seen,
			m.created_at, m.updated_at, u.name, u.username, u.image
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.sender_id = $1 OR m.receiver_id = $1`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

// MarkSeen touches only the seen flag; sender, receiver and text stay
// immutable after creation.
func (r *MessageRepo) MarkSeen(ctx context.Context, senderID, receiverID uuid.UUID) error {
	query := `
		UPDATE messages SET seen = TRUE, updated_at = now()
		WHERE sender_id = $1 AND receiver_id = $2 AND seen = FALSE`
	_, err := r.pool.Exec(ctx, query, senderID, receiverID)
	return err
}

func collectMessages(rows pgx.Rows) ([]domain.Message, error) {
	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Text, &msg.Seen,
			&msg.CreatedAt, &msg.UpdatedAt,
			&msg.SenderName, &msg.SenderUsername, &msg.SenderImage,
		); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
