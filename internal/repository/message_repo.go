package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"support-chat/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message domain.Message) error
	ListByThreadID(ctx context.Context, threadID string) ([]domain.Message, error)
	ExistsByThreadID(ctx context.Context, threadID string) (bool, error)
}

type PgMessageRepository struct {
	pool *pgxpool.Pool
}

func NewPgMessageRepository(pool *pgxpool.Pool) *PgMessageRepository {
	return &PgMessageRepository{pool: pool}
}

func (r *PgMessageRepository) Create(ctx context.Context, message domain.Message) error {
	const query = `
		INSERT INTO support_messages (id, thread_id, sender_user_id, content, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.ThreadID,
		message.SenderUserID,
		message.Content,
		message.SentAt,
	)
	return err
}

func (r *PgMessageRepository) ListByThreadID(ctx context.Context, threadID string) ([]domain.Message, error) {
	// Empates de sent_at se resuelven por id para mantener orden estable.
	const query = `
		SELECT id, thread_id, sender_user_id, content, sent_at
		FROM support_messages
		WHERE thread_id = $1
		ORDER BY sent_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, threadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var msg domain.Message
		err = rows.Scan(
			&msg.ID,
			&msg.ThreadID,
			&msg.SenderUserID,
			&msg.Content,
			&msg.SentAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

func (r *PgMessageRepository) ExistsByThreadID(ctx context.Context, threadID string) (bool, error) {
	const query = `
		SELECT EXISTS (SELECT 1 FROM support_messages WHERE thread_id = $1)
	`
	var exists bool
	err := r.pool.QueryRow(ctx, query, threadID).Scan(&exists)
	return exists, err
}
