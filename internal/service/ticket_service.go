package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/legal-desk/internal/domain"
	"github.com/spec-kit/legal-desk/internal/events"
	"github.com/spec-kit/legal-desk/internal/repository"
	apperrors "github.com/spec-kit/legal-desk/pkg/util"
)

// MinRejectionReasonLength is the shortest accepted rejection reason.
const MinRejectionReasonLength = 10

// TicketService drives the ticket workflow state machine.
type TicketService struct {
	tickets     repository.TicketRepository
	divisions   repository.DivisionRepository
	sequences   repository.SequenceRepository
	attachments repository.AttachmentRepository
	activity    repository.ActivityRepository
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	DivisionRepo   repository.DivisionRepository
	SequenceRepo   repository.SequenceRepository
	AttachmentRepo repository.AttachmentRepository
	ActivityRepo   repository.ActivityRepository
	Dispatcher     events.Dispatcher
	Now            func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	DivisionCode string
	DocumentType domain.DocumentType
	Title        string
	Description  string
	Agreement    *domain.AgreementTerms
	Attorney     *domain.AttorneyTerms
	Financial    domain.FinancialTerms
	SLACompliant bool
}

// CompletionInput carries the post-completion checklist for agreement tickets.
type CompletionInput struct {
	Answers []bool
	Remarks string
}

// AttachmentInput defines uploaded document metadata.
type AttachmentInput struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:     deps.TicketRepo,
		divisions:   deps.DivisionRepo,
		sequences:   deps.SequenceRepo,
		attachments: deps.AttachmentRepo,
		activity:    deps.ActivityRepo,
		dispatcher:  deps.Dispatcher,
		now:         deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// CreateTicket validates the document-type-specific field groups, assigns a
// business number and stores the ticket in OPEN.
func (s *TicketService) CreateTicket(ctx context.Context, actorID string, input TicketCreateInput) (*domain.Ticket, error) {
	if !domain.ValidDocumentType(input.DocumentType) {
		return nil, apperrors.NewValidationError("unknown document type", map[string]any{"document_type": input.DocumentType})
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if err := validateConditionalFields(input); err != nil {
		return nil, err
	}

	division, err := s.divisions.GetByCode(ctx, input.DivisionCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("division", map[string]any{"code": input.DivisionCode})
		}
		return nil, err
	}
	if !division.IsActive {
		return nil, apperrors.NewValidationError("division inactive", map[string]any{"code": division.Code})
	}

	now := s.now()
	seq, err := s.sequences.Next(ctx, domain.NumberPrefixTicket, division.Code, now)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Number:       domain.DocumentNumber(domain.NumberPrefixTicket, division.Code, now, seq),
		DivisionID:   division.ID,
		DocumentType: input.DocumentType,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TicketStatusOpen,
		Agreement:    input.Agreement,
		Attorney:     input.Attorney,
		Financial:    input.Financial,
		SLACompliant: input.SLACompliant,
		CreatedBy:    actorID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.appendActivity(ctx, domain.ActivityLog{
		SubjectType: domain.SubjectTicket,
		SubjectID:   ticket.ID,
		Event:       domain.EventTicketCreated,
		ActorID:     &actorID,
		Message:     fmt.Sprintf("ticket %s created for %s", ticket.Number, ticket.DocumentType),
	})
	s.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCreated,
		SubjectID: ticket.ID,
		ActorID:   &actorID,
		Payload: events.TicketCreatedPayload{
			Number:       ticket.Number,
			DivisionID:   ticket.DivisionID,
			DocumentType: ticket.DocumentType,
			Title:        ticket.Title,
		},
	})
	return ticket, nil
}

// BeginReview moves an OPEN ticket to ON_PROCESS, stamping the reviewer and
// starting the aging clock.
func (s *TicketService) BeginReview(ctx context.Context, ticketID, actorID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusOnProcess) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusOnProcess))
	}

	now := s.now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusOnProcess
	ticket.ReviewedBy = &actorID
	ticket.ReviewedAt = &now
	ticket.AgingStart = &now

	if err := s.applyTransition(ctx, ticket, oldStatus, domain.EventReviewStarted, &actorID,
		fmt.Sprintf("review of %s started", ticket.Number)); err != nil {
		return nil, err
	}
	s.publishTransition(ctx, ticket, events.EventTicketReviewStarted, oldStatus, &actorID, "")
	return ticket, nil
}

// Reject moves an ON_PROCESS ticket to REJECTED with a mandatory reason and
// stops the aging clock.
func (s *TicketService) Reject(ctx context.Context, ticketID, actorID, reason string) (*domain.Ticket, error) {
	reason = strings.TrimSpace(reason)
	if len(reason) < MinRejectionReasonLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("rejection reason must be at least %d characters", MinRejectionReasonLength), nil)
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusRejected) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusRejected))
	}

	now := s.now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusRejected
	ticket.RejectionReason = &reason
	if ticket.ReviewedBy == nil {
		ticket.ReviewedBy = &actorID
		ticket.ReviewedAt = &now
	}
	stopAgingClock(ticket, now)

	if err := s.applyTransition(ctx, ticket, oldStatus, domain.EventTicketRejected, &actorID,
		fmt.Sprintf("ticket %s rejected: %s", ticket.Number, reason)); err != nil {
		return nil, err
	}
	s.publishTransition(ctx, ticket, events.EventTicketRejected, oldStatus, &actorID, reason)
	return ticket, nil
}

// Complete moves an ON_PROCESS ticket to DONE, stopping the aging clock.
// Agreement tickets must supply exactly three checklist answers. Completion
// does not materialize a contract; that is a separate, retryable action.
func (s *TicketService) Complete(ctx context.Context, ticketID, actorID string, checklist *CompletionInput) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusDone) {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusDone))
	}
	if ticket.DocumentType.RequiresChecklist() {
		if checklist == nil || len(checklist.Answers) != domain.ChecklistAnswerCount {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("agreement completion requires exactly %d checklist answers", domain.ChecklistAnswerCount), nil)
		}
		ticket.Checklist = &domain.CompletionChecklist{
			DraftReviewed:     checklist.Answers[0],
			CounterpartSigned: checklist.Answers[1],
			OriginalArchived:  checklist.Answers[2],
			Remarks:           strings.TrimSpace(checklist.Remarks),
		}
	}

	now := s.now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusDone
	stopAgingClock(ticket, now)

	if err := s.applyTransition(ctx, ticket, oldStatus, domain.EventTicketCompleted, &actorID,
		fmt.Sprintf("ticket %s completed", ticket.Number)); err != nil {
		return nil, err
	}
	s.publishTransition(ctx, ticket, events.EventTicketCompleted, oldStatus, &actorID, "")
	return ticket, nil
}

// CloseWithoutContract moves an ON_PROCESS ticket of a non-contractable
// document type to CLOSED, stopping the aging clock.
func (s *TicketService) CloseWithoutContract(ctx context.Context, ticketID, actorID string) (*domain.Ticket, error) {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.DocumentType.ClosesWithoutContract() {
		return nil, apperrors.NewValidationError(
			"document type requires completion, not direct close",
			map[string]any{"document_type": ticket.DocumentType})
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusClosed) || ticket.Status != domain.TicketStatusOnProcess {
		return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusClosed))
	}

	now := s.now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	stopAgingClock(ticket, now)

	if err := s.applyTransition(ctx, ticket, oldStatus, domain.EventTicketClosed, &actorID,
		fmt.Sprintf("ticket %s closed without contract", ticket.Number)); err != nil {
		return nil, err
	}
	s.publishTransition(ctx, ticket, events.EventTicketClosed, oldStatus, &actorID, "closed_without_contract")
	return ticket, nil
}

// AutoClose transitions a DONE ticket to CLOSED on behalf of the system, used
// when its contract is born expired or gets terminated. No-op when already
// closed.
func (s *TicketService) AutoClose(ctx context.Context, ticketID, reason string) error {
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil
	}
	if !domain.CanTransition(ticket.Status, domain.TicketStatusClosed) {
		return apperrors.NewInvalidTransition(string(ticket.Status), string(domain.TicketStatusClosed))
	}
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	if err := s.applyTransition(ctx, ticket, oldStatus, domain.EventTicketClosed, nil,
		fmt.Sprintf("ticket %s auto-closed: %s", ticket.Number, reason)); err != nil {
		return err
	}
	s.publishTransition(ctx, ticket, events.EventTicketClosed, oldStatus, nil, reason)
	return nil
}

// GetTicket fetches a ticket by id.
func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.getTicket(ctx, ticketID)
}

// ListTickets returns filtered tickets.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	return s.tickets.ListWithFilter(ctx, filter)
}

// AddAttachment stores uploaded document metadata for a ticket.
func (s *TicketService) AddAttachment(ctx context.Context, ticketID, actorID string, input AttachmentInput) (*domain.Attachment, error) {
	if strings.TrimSpace(input.StorageKey) == "" || strings.TrimSpace(input.FileName) == "" {
		return nil, apperrors.NewValidationError("storage_key and file_name required", nil)
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	attachment := &domain.Attachment{
		TicketID:   ticket.ID,
		StorageKey: input.StorageKey,
		FileName:   input.FileName,
		MimeType:   input.MimeType,
		SizeBytes:  input.SizeBytes,
		UploadedBy: actorID,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

// ListAttachments returns a ticket's uploaded document references.
func (s *TicketService) ListAttachments(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	return s.attachments.ListByTicket(ctx, ticketID)
}

// ListActivity returns a ticket's immutable activity trail.
func (s *TicketService) ListActivity(ctx context.Context, ticketID string, limit, offset int) ([]domain.ActivityLog, error) {
	return s.activity.ListBySubject(ctx, domain.SubjectTicket, ticketID, limit, offset)
}

// AgingDisplay derives both aging representations for a ticket from the single
// stored minute count (or its fallbacks).
func (s *TicketService) AgingDisplay(ticket *domain.Ticket) (formatted string, days int64, ok bool) {
	minutes, ok := domain.AgingMinutes(ticket.Status, ticket.AgingStart, ticket.AgingEnd,
		ticket.AgingMinutes, ticket.UpdatedAt, s.now())
	if !ok {
		return "", 0, false
	}
	return domain.FormatAging(minutes), domain.AgingDays(minutes), true
}

// BackfillAging persists a derived aging duration for terminal tickets whose
// stored duration is missing. Tickets that never entered review fall back to
// the created->updated window. Idempotent: populated rows are not re-matched.
func (s *TicketService) BackfillAging(ctx context.Context) (int, error) {
	tickets, err := s.tickets.ListTerminalMissingAging(ctx)
	if err != nil {
		return 0, err
	}
	updated := 0
	for i := range tickets {
		ticket := &tickets[i]
		start := ticket.AgingStart
		if start == nil {
			created := ticket.CreatedAt
			start = &created
		}
		stop := ticket.UpdatedAt
		if ticket.AgingEnd != nil {
			stop = *ticket.AgingEnd
		}
		minutes := domain.MinutesBetween(*start, stop)
		if minutes <= 0 {
			continue
		}
		if err := s.tickets.SetAgingMinutes(ctx, ticket.ID, minutes); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *TicketService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": ticketID})
		}
		return nil, err
	}
	return ticket, nil
}

// applyTransition persists the CAS-guarded status change together with its
// activity entry; a lost race surfaces as an invalid transition.
func (s *TicketService) applyTransition(ctx context.Context, ticket *domain.Ticket, expected domain.TicketStatus, event domain.ActivityEvent, actorID *string, message string) error {
	entry := &domain.ActivityLog{
		SubjectType: domain.SubjectTicket,
		SubjectID:   ticket.ID,
		Event:       event,
		ActorID:     actorID,
		Message:     message,
	}
	err := s.tickets.Transition(ctx, ticket, expected, entry)
	if errors.Is(err, repository.ErrStaleStatus) {
		return apperrors.NewInvalidTransition(string(expected), string(ticket.Status))
	}
	return err
}

func (s *TicketService) appendActivity(ctx context.Context, entry domain.ActivityLog) {
	if s.activity == nil {
		return
	}
	_ = s.activity.Create(ctx, &entry)
}

func (s *TicketService) publishTransition(ctx context.Context, ticket *domain.Ticket, eventType events.EventType, oldStatus domain.TicketStatus, actorID *string, comment string) {
	s.publishEvent(ctx, events.Event{
		Type:      eventType,
		SubjectID: ticket.ID,
		ActorID:   actorID,
		Payload: events.TicketStatusPayload{
			Number:    ticket.Number,
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Comment:   comment,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// stopAgingClock stamps aging_end and derives the stored duration when the
// clock was started. Tickets that never entered review keep a null duration.
func stopAgingClock(ticket *domain.Ticket, now time.Time) {
	end := now
	ticket.AgingEnd = &end
	if ticket.AgingStart != nil {
		minutes := domain.MinutesBetween(*ticket.AgingStart, end)
		ticket.AgingMinutes = &minutes
	}
}

func validateConditionalFields(input TicketCreateInput) error {
	switch {
	case input.DocumentType.RequiresAgreementTerms():
		terms := input.Agreement
		if terms == nil {
			return apperrors.NewValidationError("agreement terms required", nil)
		}
		if strings.TrimSpace(terms.CounterpartName) == "" {
			return apperrors.NewValidationError("counterpart name required", nil)
		}
		if terms.StartDate.IsZero() {
			return apperrors.NewValidationError("agreement start date required", nil)
		}
		if terms.IsAutoRenewal {
			if strings.TrimSpace(terms.RenewalPeriod) == "" {
				return apperrors.NewValidationError("renewal period required for auto-renewing agreements", nil)
			}
			if terms.RenewalNoticeDays <= 0 {
				return apperrors.NewValidationError("renewal notice days required for auto-renewing agreements", nil)
			}
		} else {
			if terms.EndDate == nil {
				return apperrors.NewValidationError("end date required for fixed-term agreements", nil)
			}
			if terms.TerminationNoticeDays <= 0 {
				return apperrors.NewValidationError("termination notice days required for fixed-term agreements", nil)
			}
		}
		if terms.EndDate != nil && terms.EndDate.Before(terms.StartDate) {
			return apperrors.NewValidationError("agreement end date precedes start date", nil)
		}
	case input.DocumentType == domain.DocTypePowerOfAttorney:
		terms := input.Attorney
		if terms == nil {
			return apperrors.NewValidationError("power-of-attorney terms required", nil)
		}
		if strings.TrimSpace(terms.Grantor) == "" || strings.TrimSpace(terms.Grantee) == "" {
			return apperrors.NewValidationError("grantor and grantee required", nil)
		}
		if terms.StartDate.IsZero() || terms.EndDate.IsZero() {
			return apperrors.NewValidationError("power-of-attorney start and end dates required", nil)
		}
		if terms.EndDate.Before(terms.StartDate) {
			return apperrors.NewValidationError("power-of-attorney end date precedes start date", nil)
		}
	}
	if input.Financial.HasImpact {
		if input.Financial.PaymentDirection != domain.PaymentInbound && input.Financial.PaymentDirection != domain.PaymentOutbound {
			return apperrors.NewValidationError("payment direction required for financial-impact tickets", nil)
		}
	}
	return nil
}
