package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/legal-desk/internal/domain"
)

// ActivityRepository manages the immutable activity trail.
type ActivityRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	ListBySubject(ctx context.Context, subject domain.ActivitySubject, subjectID string, limit, offset int) ([]domain.ActivityLog, error)
}

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository builds the repository.
func NewActivityRepository(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepository{pool: pool}
}

func (r *activityRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	const query = `
        INSERT INTO activity_logs (subject_type, subject_id, event, actor_id, message)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.SubjectType,
		entry.SubjectID,
		entry.Event,
		entry.ActorID,
		entry.Message,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityRepository) ListBySubject(ctx context.Context, subject domain.ActivitySubject, subjectID string, limit, offset int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, subject_type, subject_id, event, actor_id, message, created_at
        FROM activity_logs
        WHERE subject_type=$1 AND subject_id=$2
        ORDER BY created_at ASC
        LIMIT $3 OFFSET $4`
	rows, err := r.pool.Query(ctx, query, subject, subjectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLog
	for rows.Next() {
		var entry domain.ActivityLog
		if err := rows.Scan(&entry.ID, &entry.SubjectType, &entry.SubjectID, &entry.Event, &entry.ActorID, &entry.Message, &entry.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
