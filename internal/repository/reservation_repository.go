package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rental-relay/internal/domain"
)

const reservationColumns = `id, message, vacation_property_id, guest_user_id, status,
               anonymous_phone_number, relay_unavailable, created_at, updated_at`

// ReservationRepository encapsulates reservation persistence. Status
// transitions go through UpdateStatus, a single conditional UPDATE, so
// concurrent confirm/reject attempts cannot both commit.
type ReservationRepository interface {
	Create(ctx context.Context, reservation *domain.Reservation) error
	GetByID(ctx context.Context, id string) (*domain.Reservation, error)
	// FirstPendingForHost returns the oldest pending reservation on any
	// property of the given host. pgx.ErrNoRows when none exists.
	FirstPendingForHost(ctx context.Context, hostID string) (*domain.Reservation, error)
	GetByAnonymousNumber(ctx context.Context, anonymousNumber string) (*domain.Reservation, error)
	// UpdateStatus moves the reservation from one status to another,
	// returning pgx.ErrNoRows when the current status no longer matches.
	UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus) error
	SetAnonymousNumber(ctx context.Context, id, anonymousNumber string) error
	MarkRelayUnavailable(ctx context.Context, id string) error
	ListByGuest(ctx context.Context, guestID string) ([]domain.Reservation, error)
	ListByHost(ctx context.Context, hostID string) ([]domain.Reservation, error)
}

type reservationRepository struct {
	pool *pgxpool.Pool
}

// NewReservationRepository instantiates repository.
func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &reservationRepository{pool: pool}
}

func (r *reservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	const query = `
        INSERT INTO reservations (message, vacation_property_id, guest_user_id, status)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		reservation.Message,
		reservation.PropertyID,
		reservation.GuestID,
		reservation.Status,
	).Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	const query = `
        SELECT ` + reservationColumns + `
        FROM reservations WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *reservationRepository) FirstPendingForHost(ctx context.Context, hostID string) (*domain.Reservation, error) {
	// Oldest request first keeps host replies deterministic when more
	// than one reservation is awaiting an answer.
	const query = `
        SELECT r.id, r.message, r.vacation_property_id, r.guest_user_id, r.status,
               r.anonymous_phone_number, r.relay_unavailable, r.created_at, r.updated_at
        FROM reservations r
        JOIN vacation_properties p ON p.id = r.vacation_property_id
        WHERE p.host_user_id=$1 AND r.status=$2
        ORDER BY r.created_at ASC, r.id ASC
        LIMIT 1`
	return r.fetchSingle(ctx, query, hostID, domain.ReservationStatusPending)
}

func (r *reservationRepository) GetByAnonymousNumber(ctx context.Context, anonymousNumber string) (*domain.Reservation, error) {
	const query = `
        SELECT ` + reservationColumns + `
        FROM reservations WHERE anonymous_phone_number=$1`
	return r.fetchSingle(ctx, query, anonymousNumber)
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, from, to domain.ReservationStatus) error {
	const query = `
        UPDATE reservations SET status=$3, updated_at=NOW()
        WHERE id=$1 AND status=$2`
	cmd, err := r.pool.Exec(ctx, query, id, from, to)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reservationRepository) SetAnonymousNumber(ctx context.Context, id, anonymousNumber string) error {
	const query = `
        UPDATE reservations SET anonymous_phone_number=$2, relay_unavailable=FALSE, updated_at=NOW()
        WHERE id=$1 AND status=$3`
	cmd, err := r.pool.Exec(ctx, query, id, anonymousNumber, domain.ReservationStatusConfirmed)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reservationRepository) MarkRelayUnavailable(ctx context.Context, id string) error {
	const query = `
        UPDATE reservations SET relay_unavailable=TRUE, updated_at=NOW()
        WHERE id=$1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *reservationRepository) ListByGuest(ctx context.Context, guestID string) ([]domain.Reservation, error) {
	const query = `
        SELECT ` + reservationColumns + `
        FROM reservations WHERE guest_user_id=$1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, guestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *reservationRepository) ListByHost(ctx context.Context, hostID string) ([]domain.Reservation, error) {
	const query = `
        SELECT r.id, r.message, r.vacation_property_id, r.guest_user_id, r.status,
               r.anonymous_phone_number, r.relay_unavailable, r.created_at, r.updated_at
        FROM reservations r
        JOIN vacation_properties p ON p.id = r.vacation_property_id
        WHERE p.host_user_id=$1 ORDER BY r.created_at DESC`

	rows, err := r.pool.Query(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReservations(rows)
}

func (r *reservationRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.Reservation, error) {
	var reservation domain.Reservation
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&reservation.ID,
		&reservation.Message,
		&reservation.PropertyID,
		&reservation.GuestID,
		&reservation.Status,
		&reservation.AnonymousPhoneNumber,
		&reservation.RelayUnavailable,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func scanReservations(rows pgx.Rows) ([]domain.Reservation, error) {
	var result []domain.Reservation
	for rows.Next() {
		var reservation domain.Reservation
		if err := rows.Scan(
			&reservation.ID,
			&reservation.Message,
			&reservation.PropertyID,
			&reservation.GuestID,
			&reservation.Status,
			&reservation.AnonymousPhoneNumber,
			&reservation.RelayUnavailable,
			&reservation.CreatedAt,
			&reservation.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reservation)
	}
	return result, rows.Err()
}
