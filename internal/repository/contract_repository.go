package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/legal-desk/internal/domain"
)

// ContractFilter captures listing parameters.
type ContractFilter struct {
	DivisionID    *string
	PICUserID     *string
	Statuses      []domain.ContractStatus
	DocumentTypes []domain.DocumentType
	EndBefore     *time.Time
	EndAfter      *time.Time
	Limit         int
	Offset        int
}

// ContractRepository encapsulates contract persistence.
type ContractRepository interface {
	// Create inserts the contract together with its materialization activity
	// entry in a single transaction.
	Create(ctx context.Context, contract *domain.Contract, entry *domain.ActivityLog) error
	GetByID(ctx context.Context, id string) (*domain.Contract, error)
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Contract, error)
	ListWithFilter(ctx context.Context, filter ContractFilter) ([]domain.Contract, error)
	// Transition persists a status change atomically with its activity entry,
	// guarded by a compare-and-swap on the previously observed status.
	Transition(ctx context.Context, contract *domain.Contract, expected domain.ContractStatus, entry *domain.ActivityLog) error
	// ListExpirable returns active, non-auto-renewing contracts whose end date
	// is strictly before the given day.
	ListExpirable(ctx context.Context, before time.Time) ([]domain.Contract, error)
	// ListDueForReminder returns active, non-auto-renewing contracts whose end
	// date falls inside [from, to], excluding the given document types.
	ListDueForReminder(ctx context.Context, from, to time.Time, excluded []domain.DocumentType) ([]domain.Contract, error)
}

type contractRepository struct {
	pool *pgxpool.Pool
}

// NewContractRepository instantiates the repository.
func NewContractRepository(pool *pgxpool.Pool) ContractRepository {
	return &contractRepository{pool: pool}
}

const contractColumns = `id, number, ticket_id, division_id, document_type, description,
	pic_user_id, pic_name, pic_email, start_date, end_date, is_auto_renewal,
	status, terminated_at, termination_reason, created_at, updated_at`

func (r *contractRepository) Create(ctx context.Context, contract *domain.Contract, entry *domain.ActivityLog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO contracts (number, ticket_id, division_id, document_type, description,
            pic_user_id, pic_name, pic_email, start_date, end_date, is_auto_renewal, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		contract.Number,
		contract.TicketID,
		contract.DivisionID,
		contract.DocumentType,
		contract.Description,
		contract.PICUserID,
		contract.PICName,
		contract.PICEmail,
		contract.StartDate,
		contract.EndDate,
		contract.IsAutoRenewal,
		contract.Status,
	).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt); err != nil {
		return err
	}

	if entry != nil {
		const logQuery = `
            INSERT INTO activity_logs (subject_type, subject_id, event, actor_id, message)
            VALUES ($1,$2,$3,$4,$5)`
		if _, err := tx.Exec(ctx, logQuery, entry.SubjectType, contract.ID, entry.Event, entry.ActorID, entry.Message); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *contractRepository) GetByID(ctx context.Context, id string) (*domain.Contract, error) {
	query := fmt.Sprintf("SELECT %s FROM contracts WHERE id=$1", contractColumns)
	return scanContract(r.pool.QueryRow(ctx, query, id))
}

func (r *contractRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Contract, error) {
	query := fmt.Sprintf("SELECT %s FROM contracts WHERE ticket_id=$1", contractColumns)
	return scanContract(r.pool.QueryRow(ctx, query, ticketID))
}

func scanContract(row pgx.Row) (*domain.Contract, error) {
	var c domain.Contract
	if err := row.Scan(
		&c.ID, &c.Number, &c.TicketID, &c.DivisionID, &c.DocumentType, &c.Description,
		&c.PICUserID, &c.PICName, &c.PICEmail, &c.StartDate, &c.EndDate, &c.IsAutoRenewal,
		&c.Status, &c.TerminatedAt, &c.TerminationReason, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contractRepository) Transition(ctx context.Context, contract *domain.Contract, expected domain.ContractStatus, entry *domain.ActivityLog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE contracts SET status=$1, terminated_at=$2, termination_reason=$3, updated_at=NOW()
        WHERE id=$4 AND status=$5`
	cmd, err := tx.Exec(ctx, query,
		contract.Status, contract.TerminatedAt, contract.TerminationReason,
		contract.ID, expected,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleStatus
	}

	if entry != nil {
		const logQuery = `
            INSERT INTO activity_logs (subject_type, subject_id, event, actor_id, message)
            VALUES ($1,$2,$3,$4,$5)`
		if _, err := tx.Exec(ctx, logQuery, entry.SubjectType, entry.SubjectID, entry.Event, entry.ActorID, entry.Message); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *contractRepository) ListWithFilter(ctx context.Context, filter ContractFilter) ([]domain.Contract, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DivisionID != nil {
		args = append(args, *filter.DivisionID)
		clauses = append(clauses, fmt.Sprintf("division_id=$%d", len(args)))
	}
	if filter.PICUserID != nil {
		args = append(args, *filter.PICUserID)
		clauses = append(clauses, fmt.Sprintf("pic_user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.DocumentTypes) > 0 {
		placeholders := make([]string, len(filter.DocumentTypes))
		for i, dt := range filter.DocumentTypes {
			args = append(args, dt)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("document_type IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.EndBefore != nil {
		args = append(args, *filter.EndBefore)
		clauses = append(clauses, fmt.Sprintf("end_date <= $%d", len(args)))
	}
	if filter.EndAfter != nil {
		args = append(args, *filter.EndAfter)
		clauses = append(clauses, fmt.Sprintf("end_date >= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf("SELECT %s FROM contracts WHERE %s ORDER BY end_date ASC NULLS LAST LIMIT %d OFFSET %d",
		contractColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContracts(rows)
}

func (r *contractRepository) ListExpirable(ctx context.Context, before time.Time) ([]domain.Contract, error) {
	query := fmt.Sprintf(`SELECT %s FROM contracts
        WHERE status=$1 AND is_auto_renewal=FALSE AND end_date IS NOT NULL AND end_date < $2::date`,
		contractColumns)
	rows, err := r.pool.Query(ctx, query, domain.ContractStatusActive, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContracts(rows)
}

func (r *contractRepository) ListDueForReminder(ctx context.Context, from, to time.Time, excluded []domain.DocumentType) ([]domain.Contract, error) {
	args := []any{domain.ContractStatusActive, from, to}
	query := fmt.Sprintf(`SELECT %s FROM contracts
        WHERE status=$1 AND is_auto_renewal=FALSE
          AND end_date IS NOT NULL AND end_date >= $2::date AND end_date <= $3::date`,
		contractColumns)
	if len(excluded) > 0 {
		types := make([]string, 0, len(excluded))
		for _, dt := range excluded {
			types = append(types, string(dt))
		}
		args = append(args, types)
		query += fmt.Sprintf(" AND document_type <> ALL($%d)", len(args))
	}
	query += " ORDER BY end_date ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContracts(rows)
}

func collectContracts(rows pgx.Rows) ([]domain.Contract, error) {
	var result []domain.Contract
	for rows.Next() {
		contract, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *contract)
	}
	return result, rows.Err()
}
