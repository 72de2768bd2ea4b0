package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"support-chat/internal/domain"
)

type ReservationRepository interface {
	GetByID(ctx context.Context, id string) (domain.Reservation, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Reservation, error)
}

type PgReservationRepository struct {
	pool *pgxpool.Pool
}

func NewPgReservationRepository(pool *pgxpool.Pool) *PgReservationRepository {
	return &PgReservationRepository{pool: pool}
}

const reservationColumns = `id, user_id, status, start_at, end_at, total_price_cents, currency, pickup_agency_id, dropoff_agency_id, car_category_code, created_at`

func (r *PgReservationRepository) GetByID(ctx context.Context, id string) (domain.Reservation, error) {
	const query = `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1
	`
	var res domain.Reservation
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&res.ID,
		&res.UserID,
		&res.Status,
		&res.StartAt,
		&res.EndAt,
		&res.TotalPriceCents,
		&res.Currency,
		&res.PickupAgencyID,
		&res.DropoffAgencyID,
		&res.CarCategoryCode,
		&res.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Reservation{}, err
	}
	return res, err
}

func (r *PgReservationRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Reservation, error) {
	const query = `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		err = rows.Scan(
			&res.ID,
			&res.UserID,
			&res.Status,
			&res.StartAt,
			&res.EndAt,
			&res.TotalPriceCents,
			&res.Currency,
			&res.PickupAgencyID,
			&res.DropoffAgencyID,
			&res.CarCategoryCode,
			&res.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}
