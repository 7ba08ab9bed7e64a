package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/legal-desk/internal/domain"
)

// SequenceRepository allocates per-division, per-month running counters for
// business numbers. Allocation must serialize concurrent callers for the same
// bucket so no two requests ever receive the same number.
type SequenceRepository interface {
	Next(ctx context.Context, prefix, divisionCode string, asOf time.Time) (int, error)
}

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository instantiates the repository.
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

// Next increments and returns the counter for the (prefix, division, period)
// bucket. The upsert takes a row lock on the bucket, so concurrent callers are
// serialized by postgres and each sees a distinct, contiguous value.
func (r *sequenceRepository) Next(ctx context.Context, prefix, divisionCode string, asOf time.Time) (int, error) {
	const query = `
        INSERT INTO document_sequences (prefix, division_code, period, last_seq)
        VALUES ($1,$2,$3,1)
        ON CONFLICT (prefix, division_code, period)
        DO UPDATE SET last_seq = document_sequences.last_seq + 1, updated_at = NOW()
        RETURNING last_seq`
	var seq int
	err := r.pool.QueryRow(ctx, query,
		prefix,
		domain.DivisionCode3(divisionCode),
		domain.SequencePeriod(asOf),
	).Scan(&seq)
	return seq, err
}
