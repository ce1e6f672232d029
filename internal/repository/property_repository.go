package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/rental-relay/internal/domain"
)

// PropertyRepository encapsulates vacation property persistence.
type PropertyRepository interface {
	Create(ctx context.Context, property *domain.VacationProperty) error
	GetByID(ctx context.Context, id string) (*domain.VacationProperty, error)
	List(ctx context.Context, limit, offset int) ([]domain.VacationProperty, error)
}

type propertyRepository struct {
	pool *pgxpool.Pool
}

// NewPropertyRepository instantiates repository.
func NewPropertyRepository(pool *pgxpool.Pool) PropertyRepository {
	return &propertyRepository{pool: pool}
}

func (r *propertyRepository) Create(ctx context.Context, property *domain.VacationProperty) error {
	const query = `
        INSERT INTO vacation_properties (host_user_id, description, image_url)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		property.HostID,
		property.Description,
		property.ImageURL,
	).Scan(&property.ID, &property.CreatedAt, &property.UpdatedAt)
}

func (r *propertyRepository) GetByID(ctx context.Context, id string) (*domain.VacationProperty, error) {
	const query = `
        SELECT id, host_user_id, description, image_url, created_at, updated_at
        FROM vacation_properties WHERE id=$1`

	var property domain.VacationProperty
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&property.ID,
		&property.HostID,
		&property.Description,
		&property.ImageURL,
		&property.CreatedAt,
		&property.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *propertyRepository) List(ctx context.Context, limit, offset int) ([]domain.VacationProperty, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, host_user_id, description, image_url, created_at, updated_at
        FROM vacation_properties ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProperties(rows)
}

func scanProperties(rows pgx.Rows) ([]domain.VacationProperty, error) {
	var result []domain.VacationProperty
	for rows.Next() {
		var property domain.VacationProperty
		if err := rows.Scan(
			&property.ID,
			&property.HostID,
			&property.Description,
			&property.ImageURL,
			&property.CreatedAt,
			&property.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, property)
	}
	return result, rows.Err()
}
