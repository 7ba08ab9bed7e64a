package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/legal-desk/internal/domain"
	"github.com/spec-kit/legal-desk/internal/events"
	"github.com/spec-kit/legal-desk/internal/repository"
	apperrors "github.com/spec-kit/legal-desk/pkg/util"
)

// ContractService materializes contracts from done tickets and drives the
// contract lifecycle.
type ContractService struct {
	contracts  repository.ContractRepository
	divisions  repository.DivisionRepository
	sequences  repository.SequenceRepository
	activity   repository.ActivityRepository
	tickets    *TicketService
	settings   *SettingsService
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// ContractDependencies bundles collaborators for the contract service.
type ContractDependencies struct {
	ContractRepo  repository.ContractRepository
	DivisionRepo  repository.DivisionRepository
	SequenceRepo  repository.SequenceRepository
	ActivityRepo  repository.ActivityRepository
	TicketService *TicketService
	Settings      *SettingsService
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	Now           func() time.Time
}

// ContractView couples a contract with its computed traffic-light color.
type ContractView struct {
	Contract      domain.Contract
	Color         domain.StatusColor
	DaysRemaining int
}

// JobResult aggregates a batch job outcome.
type JobResult struct {
	Processed int
	Failed    int
}

// NewContractService constructs the service.
func NewContractService(deps ContractDependencies) *ContractService {
	svc := &ContractService{
		contracts:  deps.ContractRepo,
		divisions:  deps.DivisionRepo,
		sequences:  deps.SequenceRepo,
		activity:   deps.ActivityRepo,
		tickets:    deps.TicketService,
		settings:   deps.Settings,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// Materialize turns a done ticket of a contractable document type into a
// Contract. Callable only once per ticket; every guard fails before any write.
// A contract whose derived end date already passed is born EXPIRED and its
// ticket is auto-closed.
func (s *ContractService) Materialize(ctx context.Context, ticketID string, actorID *string) (*domain.Contract, error) {
	ticket, err := s.tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !ticket.DocumentType.Contractable() {
		return nil, apperrors.NewPreconditionFailed("document type does not produce a contract",
			map[string]any{"document_type": ticket.DocumentType})
	}
	if ticket.Status != domain.TicketStatusDone {
		return nil, apperrors.NewPreconditionFailed("ticket is not done",
			map[string]any{"status": ticket.Status})
	}
	existing, err := s.contracts.GetByTicketID(ctx, ticket.ID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewPreconditionFailed("ticket already has a contract",
			map[string]any{"contract_number": existing.Number})
	}

	division, err := s.divisions.GetByID(ctx, ticket.DivisionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("division", map[string]any{"id": ticket.DivisionID})
		}
		return nil, err
	}

	now := s.now()
	seq, err := s.sequences.Next(ctx, domain.NumberPrefixContract, division.Code, now)
	if err != nil {
		return nil, err
	}

	startDate, endDate := ticket.ContractDates()
	autoRenewal := ticket.AutoRenewing()
	creator := ticket.CreatedBy
	contract := &domain.Contract{
		Number:        domain.DocumentNumber(domain.NumberPrefixContract, division.Code, now, seq),
		TicketID:      ticket.ID,
		DivisionID:    ticket.DivisionID,
		DocumentType:  ticket.DocumentType,
		Description:   contractDescription(ticket),
		PICUserID:     &creator,
		StartDate:     startDate,
		EndDate:       endDate,
		IsAutoRenewal: autoRenewal,
		Status:        domain.InitialContractStatus(endDate, autoRenewal, now),
	}

	entry := &domain.ActivityLog{
		SubjectType: domain.SubjectContract,
		Event:       domain.EventContractMaterialized,
		ActorID:     actorID,
		Message:     fmt.Sprintf("contract %s materialized from ticket %s", contract.Number, ticket.Number),
	}
	if err := s.contracts.Create(ctx, contract, entry); err != nil {
		return nil, err
	}

	autoClosed := false
	if contract.Status == domain.ContractStatusExpired {
		reason := fmt.Sprintf("contract %s already expired at materialization", contract.Number)
		if err := s.tickets.AutoClose(ctx, ticket.ID, reason); err != nil {
			s.logger.Warn("auto-close after expired materialization failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		} else {
			autoClosed = true
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventContractMaterialized,
		SubjectID: contract.ID,
		ActorID:   actorID,
		Payload: events.ContractPayload{
			Number:    contract.Number,
			TicketID:  contract.TicketID,
			Status:    contract.Status,
			EndDate:   contract.EndDate,
			AutoClose: autoClosed,
		},
	})
	return contract, nil
}

// Terminate ends an active contract with a mandatory reason. The termination
// record is append-only; the linked ticket is closed if it was not already.
func (s *ContractService) Terminate(ctx context.Context, contractID string, actorID *string, reason string) (*domain.Contract, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("termination reason required", nil)
	}
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.Status != domain.ContractStatusActive {
		return nil, apperrors.NewPreconditionFailed("only active contracts can be terminated",
			map[string]any{"status": contract.Status})
	}

	now := s.now()
	oldStatus := contract.Status
	contract.Status = domain.ContractStatusTerminated
	contract.TerminatedAt = &now
	contract.TerminationReason = &reason

	entry := &domain.ActivityLog{
		SubjectType: domain.SubjectContract,
		SubjectID:   contract.ID,
		Event:       domain.EventContractTerminated,
		ActorID:     actorID,
		Message:     fmt.Sprintf("contract %s terminated: %s", contract.Number, reason),
	}
	if err := s.contracts.Transition(ctx, contract, oldStatus, entry); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.NewPreconditionFailed("contract status changed concurrently", nil)
		}
		return nil, err
	}

	closeReason := fmt.Sprintf("contract %s terminated", contract.Number)
	if err := s.tickets.AutoClose(ctx, contract.TicketID, closeReason); err != nil {
		s.logger.Warn("ticket close after termination failed",
			zap.String("ticket_id", contract.TicketID), zap.Error(err))
	}

	s.publishEvent(ctx, events.Event{
		Type:      events.EventContractTerminated,
		SubjectID: contract.ID,
		ActorID:   actorID,
		Payload: events.ContractPayload{
			Number:   contract.Number,
			TicketID: contract.TicketID,
			Status:   contract.Status,
			Reason:   reason,
		},
	})
	return contract, nil
}

// ExpireDueContracts transitions every active, non-auto-renewing contract
// whose end date passed to EXPIRED, closing linked tickets. Safe to run
// repeatedly: expired contracts are not matched again. Per-item failures are
// logged and counted, never aborting the sweep.
func (s *ContractService) ExpireDueContracts(ctx context.Context) (JobResult, error) {
	now := s.now()
	due, err := s.contracts.ListExpirable(ctx, now)
	if err != nil {
		return JobResult{}, err
	}

	var result JobResult
	for i := range due {
		contract := &due[i]
		oldStatus := contract.Status
		contract.Status = domain.ContractStatusExpired
		entry := &domain.ActivityLog{
			SubjectType: domain.SubjectContract,
			SubjectID:   contract.ID,
			Event:       domain.EventContractExpired,
			Message:     fmt.Sprintf("contract %s expired on %s", contract.Number, contract.EndDate.Format("2006-01-02")),
		}
		if err := s.contracts.Transition(ctx, contract, oldStatus, entry); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				continue
			}
			s.logger.Warn("expiry transition failed", zap.String("contract_id", contract.ID), zap.Error(err))
			result.Failed++
			continue
		}
		result.Processed++

		closeReason := fmt.Sprintf("contract %s expired", contract.Number)
		if err := s.tickets.AutoClose(ctx, contract.TicketID, closeReason); err != nil {
			s.logger.Warn("ticket close after expiry failed",
				zap.String("ticket_id", contract.TicketID), zap.Error(err))
		}
		s.publishEvent(ctx, events.Event{
			Type:      events.EventContractExpired,
			SubjectID: contract.ID,
			Payload: events.ContractPayload{
				Number:   contract.Number,
				TicketID: contract.TicketID,
				Status:   contract.Status,
				EndDate:  contract.EndDate,
			},
		})
	}
	return result, nil
}

// GetContract fetches a contract by id.
func (s *ContractService) GetContract(ctx context.Context, contractID string) (*domain.Contract, error) {
	return s.getContract(ctx, contractID)
}

// GetContractView fetches a contract with its computed traffic-light color.
func (s *ContractService) GetContractView(ctx context.Context, contractID string) (*ContractView, error) {
	contract, err := s.getContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	view := s.toView(ctx, *contract)
	return &view, nil
}

// ListContracts returns filtered contracts with computed status colors.
func (s *ContractService) ListContracts(ctx context.Context, filter repository.ContractFilter) ([]ContractView, error) {
	contracts, err := s.contracts.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := make([]ContractView, 0, len(contracts))
	for _, contract := range contracts {
		views = append(views, s.toView(ctx, contract))
	}
	return views, nil
}

// ListActivity returns a contract's immutable activity trail.
func (s *ContractService) ListActivity(ctx context.Context, contractID string, limit, offset int) ([]domain.ActivityLog, error) {
	return s.activity.ListBySubject(ctx, domain.SubjectContract, contractID, limit, offset)
}

func (s *ContractService) toView(ctx context.Context, contract domain.Contract) ContractView {
	now := s.now()
	cfg := s.settings.ReminderSettings(ctx)
	return ContractView{
		Contract:      contract,
		Color:         domain.ComputeStatusColor(&contract, cfg.WarningDays, cfg.CriticalDays, now),
		DaysRemaining: contract.DaysRemaining(now),
	}
}

func (s *ContractService) getContract(ctx context.Context, contractID string) (*domain.Contract, error) {
	contract, err := s.contracts.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("contract", map[string]any{"id": contractID})
		}
		return nil, err
	}
	return contract, nil
}

func (s *ContractService) publishEvent(ctx context.Context, event events.Event) {
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

// contractDescription synthesizes the one-line human-readable description from
// the type-specific parties.
func contractDescription(ticket *domain.Ticket) string {
	switch ticket.DocumentType {
	case domain.DocTypePowerOfAttorney:
		if ticket.Attorney != nil {
			return fmt.Sprintf("Power of attorney from %s to %s", ticket.Attorney.Grantor, ticket.Attorney.Grantee)
		}
	case domain.DocTypeNDA:
		if ticket.Agreement != nil {
			return fmt.Sprintf("NDA with %s", ticket.Agreement.CounterpartName)
		}
	default:
		if ticket.Agreement != nil {
			return fmt.Sprintf("Agreement with %s", ticket.Agreement.CounterpartName)
		}
	}
	return ticket.Title
}
