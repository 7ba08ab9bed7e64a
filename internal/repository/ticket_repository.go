package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/legal-desk/internal/domain"
)

// ErrStaleStatus signals that a compare-and-swap transition lost the race:
// the row's current status no longer matches what the caller observed.
var ErrStaleStatus = errors.New("ticket status changed concurrently")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	DivisionID    *string
	CreatedBy     *string
	ReviewedBy    *string
	Statuses      []domain.TicketStatus
	DocumentTypes []domain.DocumentType
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
	Limit         int
	Offset        int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// Transition persists a status change atomically with its activity entry,
	// guarded by a compare-and-swap on the previously observed status.
	// Returns ErrStaleStatus when a concurrent transition won.
	Transition(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus, entry *domain.ActivityLog) error
	// ListTerminalMissingAging returns terminal tickets with a null or zero
	// stored aging duration, for the backfill job.
	ListTerminalMissingAging(ctx context.Context) ([]domain.Ticket, error)
	SetAgingMinutes(ctx context.Context, id string, minutes int64) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, number, division_id, document_type, title, description, status,
	counterpart_name, agreement_start_date, agreement_duration, is_auto_renewal,
	renewal_period, renewal_notice_days, agreement_end_date, termination_notice_days,
	grantor, grantee, attorney_start_date, attorney_end_date,
	has_financial_impact, payment_direction, recurring_description, sla_compliant,
	checklist_draft_reviewed, checklist_counterpart_signed, checklist_original_archived, checklist_remarks,
	created_by, reviewed_by, reviewed_at, aging_start, aging_end, aging_minutes,
	rejection_reason, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (number, division_id, document_type, title, description, status,
            counterpart_name, agreement_start_date, agreement_duration, is_auto_renewal,
            renewal_period, renewal_notice_days, agreement_end_date, termination_notice_days,
            grantor, grantee, attorney_start_date, attorney_end_date,
            has_financial_impact, payment_direction, recurring_description, sla_compliant,
            created_by)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
        RETURNING id, created_at, updated_at`

	args := ticketInsertArgs(ticket)
	return r.pool.QueryRow(ctx, query, args...).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func ticketInsertArgs(t *domain.Ticket) []any {
	var (
		counterpart, duration, renewalPeriod        *string
		agreementStart, agreementEnd                *time.Time
		autoRenewal                                 bool
		renewalNotice, terminationNotice            *int
		grantor, grantee                            *string
		attorneyStart, attorneyEnd                  *time.Time
		paymentDirection, recurring                 *string
	)
	if a := t.Agreement; a != nil {
		counterpart = &a.CounterpartName
		start := a.StartDate
		agreementStart = &start
		duration = &a.DurationText
		autoRenewal = a.IsAutoRenewal
		renewalPeriod = &a.RenewalPeriod
		notice := a.RenewalNoticeDays
		renewalNotice = &notice
		agreementEnd = a.EndDate
		term := a.TerminationNoticeDays
		terminationNotice = &term
	}
	if p := t.Attorney; p != nil {
		grantor = &p.Grantor
		grantee = &p.Grantee
		start, end := p.StartDate, p.EndDate
		attorneyStart, attorneyEnd = &start, &end
	}
	if t.Financial.HasImpact {
		direction := string(t.Financial.PaymentDirection)
		paymentDirection = &direction
		recurring = &t.Financial.RecurringDescription
	}
	return []any{
		t.Number, t.DivisionID, t.DocumentType, t.Title, t.Description, t.Status,
		counterpart, agreementStart, duration, autoRenewal,
		renewalPeriod, renewalNotice, agreementEnd, terminationNotice,
		grantor, grantee, attorneyStart, attorneyEnd,
		t.Financial.HasImpact, paymentDirection, recurring, t.SLACompliant,
		t.CreatedBy,
	}
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE id=$1", ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	query := fmt.Sprintf("SELECT %s FROM tickets WHERE number=$1", ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t                                    domain.Ticket
		counterpart, duration, renewalPeriod *string
		agreementStart, agreementEnd         *time.Time
		autoRenewal                          bool
		renewalNotice, terminationNotice     *int
		grantor, grantee                     *string
		attorneyStart, attorneyEnd           *time.Time
		paymentDirection, recurring          *string
		draftReviewed, signed, archived      *bool
		remarks                              *string
	)
	if err := row.Scan(
		&t.ID, &t.Number, &t.DivisionID, &t.DocumentType, &t.Title, &t.Description, &t.Status,
		&counterpart, &agreementStart, &duration, &autoRenewal,
		&renewalPeriod, &renewalNotice, &agreementEnd, &terminationNotice,
		&grantor, &grantee, &attorneyStart, &attorneyEnd,
		&t.Financial.HasImpact, &paymentDirection, &recurring, &t.SLACompliant,
		&draftReviewed, &signed, &archived, &remarks,
		&t.CreatedBy, &t.ReviewedBy, &t.ReviewedAt, &t.AgingStart, &t.AgingEnd, &t.AgingMinutes,
		&t.RejectionReason, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if counterpart != nil && agreementStart != nil {
		t.Agreement = &domain.AgreementTerms{
			CounterpartName: *counterpart,
			StartDate:       *agreementStart,
			IsAutoRenewal:   autoRenewal,
			EndDate:         agreementEnd,
		}
		if duration != nil {
			t.Agreement.DurationText = *duration
		}
		if renewalPeriod != nil {
			t.Agreement.RenewalPeriod = *renewalPeriod
		}
		if renewalNotice != nil {
			t.Agreement.RenewalNoticeDays = *renewalNotice
		}
		if terminationNotice != nil {
			t.Agreement.TerminationNoticeDays = *terminationNotice
		}
	}
	if grantor != nil && attorneyStart != nil && attorneyEnd != nil {
		t.Attorney = &domain.AttorneyTerms{
			Grantor:   *grantor,
			StartDate: *attorneyStart,
			EndDate:   *attorneyEnd,
		}
		if grantee != nil {
			t.Attorney.Grantee = *grantee
		}
	}
	if paymentDirection != nil {
		t.Financial.PaymentDirection = domain.PaymentDirection(*paymentDirection)
	}
	if recurring != nil {
		t.Financial.RecurringDescription = *recurring
	}
	if draftReviewed != nil && signed != nil && archived != nil {
		t.Checklist = &domain.CompletionChecklist{
			DraftReviewed:     *draftReviewed,
			CounterpartSigned: *signed,
			OriginalArchived:  *archived,
		}
		if remarks != nil {
			t.Checklist.Remarks = *remarks
		}
	}
	return &t, nil
}

func (r *ticketRepository) Transition(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus, entry *domain.ActivityLog) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        UPDATE tickets SET status=$1, reviewed_by=$2, reviewed_at=$3,
            aging_start=$4, aging_end=$5, aging_minutes=$6, rejection_reason=$7,
            checklist_draft_reviewed=$8, checklist_counterpart_signed=$9,
            checklist_original_archived=$10, checklist_remarks=$11, updated_at=NOW()
        WHERE id=$12 AND status=$13`

	var draftReviewed, signed, archived *bool
	var remarks *string
	if cl := ticket.Checklist; cl != nil {
		draftReviewed, signed, archived = &cl.DraftReviewed, &cl.CounterpartSigned, &cl.OriginalArchived
		remarks = &cl.Remarks
	}
	cmd, err := tx.Exec(ctx, query,
		ticket.Status, ticket.ReviewedBy, ticket.ReviewedAt,
		ticket.AgingStart, ticket.AgingEnd, ticket.AgingMinutes, ticket.RejectionReason,
		draftReviewed, signed, archived, remarks,
		ticket.ID, expected,
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

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DivisionID != nil {
		args = append(args, *filter.DivisionID)
		clauses = append(clauses, fmt.Sprintf("division_id=$%d", len(args)))
	}
	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.ReviewedBy != nil {
		args = append(args, *filter.ReviewedBy)
		clauses = append(clauses, fmt.Sprintf("reviewed_by=$%d", len(args)))
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
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf("SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		ticketColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (r *ticketRepository) ListTerminalMissingAging(ctx context.Context) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets
        WHERE status = ANY($1) AND (aging_minutes IS NULL OR aging_minutes = 0)`, ticketColumns)
	terminal := make([]string, 0, 3)
	for _, status := range domain.TerminalStatuses() {
		terminal = append(terminal, string(status))
	}
	rows, err := r.pool.Query(ctx, query, terminal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (r *ticketRepository) SetAgingMinutes(ctx context.Context, id string, minutes int64) error {
	const query = `UPDATE tickets SET aging_minutes=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, minutes, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func collectTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
