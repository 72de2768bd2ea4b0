package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"support-chat/internal/domain"
)

// ThreadRepository define el contrato de persistencia para hilos de soporte.
// ClaimIfUnassigned es la primitiva atomica que resuelve la carrera de claim:
// asigna solo si el hilo sigue sin asignar y reporta si gano la escritura.
type ThreadRepository interface {
	Create(ctx context.Context, thread domain.Thread) error
	GetByID(ctx context.Context, id string) (domain.Thread, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Thread, error)
	ListVisibleToSupport(ctx context.Context, supportUserID string) ([]domain.Thread, error)
	ClaimIfUnassigned(ctx context.Context, threadID, supportUserID string) (bool, error)
	SetStatus(ctx context.Context, threadID, status string) error
}

// PgThreadRepository implementa ThreadRepository usando pgxpool.
type PgThreadRepository struct {
	pool *pgxpool.Pool
}

func NewPgThreadRepository(pool *pgxpool.Pool) *PgThreadRepository {
	return &PgThreadRepository{pool: pool}
}

func (r *PgThreadRepository) Create(ctx context.Context, thread domain.Thread) error {
	const query = `
		INSERT INTO support_threads (id, subject, status, created_by_user_id, assigned_support_user_id, reservation_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var assigned, reservation any
	if thread.AssignedSupportUserID != "" {
		assigned = thread.AssignedSupportUserID
	}
	if thread.ReservationID != "" {
		reservation = thread.ReservationID
	}

	_, err := r.pool.Exec(ctx, query,
		thread.ID,
		thread.Subject,
		thread.Status,
		thread.CreatedByUserID,
		assigned,
		reservation,
		thread.CreatedAt,
	)
	return err
}

func (r *PgThreadRepository) GetByID(ctx context.Context, id string) (domain.Thread, error) {
	const query = `
		SELECT id, subject, status, created_by_user_id, assigned_support_user_id, reservation_id, created_at
		FROM support_threads
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanThread(row)
}

func (r *PgThreadRepository) ListByCreator(ctx context.Context, userID string) ([]domain.Thread, error) {
	const query = `
		SELECT id, subject, status, created_by_user_id, assigned_support_user_id, reservation_id, created_at
		FROM support_threads
		WHERE created_by_user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanThreads(rows)
}

// ListVisibleToSupport devuelve hilos con al menos un mensaje que estan sin
// asignar o asignados al agente indicado.
func (r *PgThreadRepository) ListVisibleToSupport(ctx context.Context, supportUserID string) ([]domain.Thread, error) {
	const query = `
		SELECT t.id, t.subject, t.status, t.created_by_user_id, t.assigned_support_user_id, t.reservation_id, t.created_at
		FROM support_threads t
		WHERE EXISTS (SELECT 1 FROM support_messages m WHERE m.thread_id = t.id)
		  AND (t.assigned_support_user_id IS NULL OR t.assigned_support_user_id = $1)
		ORDER BY t.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, supportUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanThreads(rows)
}

func (r *PgThreadRepository) ClaimIfUnassigned(ctx context.Context, threadID, supportUserID string) (bool, error) {
	const query = `
		UPDATE support_threads
		SET assigned_support_user_id = $2
		WHERE id = $1 AND assigned_support_user_id IS NULL AND status <> 'CLOSED'
	`
	tag, err := r.pool.Exec(ctx, query, threadID, supportUserID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgThreadRepository) SetStatus(ctx context.Context, threadID, status string) error {
	const query = `
		UPDATE support_threads
		SET status = $2
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, threadID, status)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThread(row rowScanner) (domain.Thread, error) {
	var t domain.Thread
	var assigned, reservation *string

	err := row.Scan(
		&t.ID,
		&t.Subject,
		&t.Status,
		&t.CreatedByUserID,
		&assigned,
		&reservation,
		&t.CreatedAt,
	)
	if err != nil {
		return domain.Thread{}, err
	}
	if assigned != nil {
		t.AssignedSupportUserID = *assigned
	}
	if reservation != nil {
		t.ReservationID = *reservation
	}
	return t, nil
}

func scanThreads(rows interface {
	rowScanner
	Next() bool
	Err() error
}) ([]domain.Thread, error) {
	var threads []domain.Thread
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return threads, nil
}
