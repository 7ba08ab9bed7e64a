package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/legal-desk/internal/domain"
)

// DivisionRepository manages division persistence.
type DivisionRepository interface {
	Create(ctx context.Context, division *domain.Division) error
	GetByID(ctx context.Context, id string) (*domain.Division, error)
	GetByCode(ctx context.Context, code string) (*domain.Division, error)
	ListActive(ctx context.Context) ([]domain.Division, error)
}

type divisionRepository struct {
	pool *pgxpool.Pool
}

// NewDivisionRepository builds the repository.
func NewDivisionRepository(pool *pgxpool.Pool) DivisionRepository {
	return &divisionRepository{pool: pool}
}

func (r *divisionRepository) Create(ctx context.Context, division *domain.Division) error {
	const query = `
        INSERT INTO divisions (code, name, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		division.Code,
		division.Name,
		division.IsActive,
	).Scan(&division.ID, &division.CreatedAt, &division.UpdatedAt)
}

func (r *divisionRepository) GetByID(ctx context.Context, id string) (*domain.Division, error) {
	const query = `
        SELECT id, code, name, is_active, created_at, updated_at
        FROM divisions WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *divisionRepository) GetByCode(ctx context.Context, code string) (*domain.Division, error) {
	const query = `
        SELECT id, code, name, is_active, created_at, updated_at
        FROM divisions WHERE UPPER(code)=UPPER($1)`
	return r.fetchSingle(ctx, query, code)
}

func (r *divisionRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Division, error) {
	var division domain.Division
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&division.ID,
		&division.Code,
		&division.Name,
		&division.IsActive,
		&division.CreatedAt,
		&division.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &division, nil
}

func (r *divisionRepository) ListActive(ctx context.Context) ([]domain.Division, error) {
	const query = `
        SELECT id, code, name, is_active, created_at, updated_at
        FROM divisions WHERE is_active = TRUE ORDER BY code`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Division
	for rows.Next() {
		var division domain.Division
		if err := rows.Scan(&division.ID, &division.Code, &division.Name, &division.IsActive, &division.CreatedAt, &division.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, division)
	}
	return result, rows.Err()
}
