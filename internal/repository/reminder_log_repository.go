package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/legal-desk/internal/domain"
)

// ReminderLogRepository guards the at-most-one-per-day reminder guarantee.
type ReminderLogRepository interface {
	// Reserve atomically claims today's reminder slot for the tuple. It
	// returns false when a row already exists, meaning a reminder of this
	// type already went out today.
	Reserve(ctx context.Context, contractID, userID string, channel domain.ReminderChannel, day time.Time) (bool, error)
	// Release gives a claimed slot back after a failed send so the next
	// scheduled run retries the recipient.
	Release(ctx context.Context, contractID, userID string, channel domain.ReminderChannel, day time.Time) error
	CountForDay(ctx context.Context, day time.Time) (int, error)
}

type reminderLogRepository struct {
	pool *pgxpool.Pool
}

// NewReminderLogRepository builds the repository.
func NewReminderLogRepository(pool *pgxpool.Pool) ReminderLogRepository {
	return &reminderLogRepository{pool: pool}
}

func (r *reminderLogRepository) Reserve(ctx context.Context, contractID, userID string, channel domain.ReminderChannel, day time.Time) (bool, error) {
	const query = `
        INSERT INTO reminder_logs (contract_id, user_id, channel, sent_on)
        VALUES ($1,$2,$3,$4::date)
        ON CONFLICT (contract_id, user_id, channel, sent_on) DO NOTHING`
	cmd, err := r.pool.Exec(ctx, query, contractID, userID, channel, day)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *reminderLogRepository) Release(ctx context.Context, contractID, userID string, channel domain.ReminderChannel, day time.Time) error {
	const query = `
        DELETE FROM reminder_logs
        WHERE contract_id=$1 AND user_id=$2 AND channel=$3 AND sent_on=$4::date`
	_, err := r.pool.Exec(ctx, query, contractID, userID, channel, day)
	return err
}

func (r *reminderLogRepository) CountForDay(ctx context.Context, day time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM reminder_logs WHERE sent_on=$1::date`
	var count int
	err := r.pool.QueryRow(ctx, query, day).Scan(&count)
	return count, err
}
