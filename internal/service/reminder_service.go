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
	"github.com/spec-kit/legal-desk/internal/notify"
	"github.com/spec-kit/legal-desk/internal/repository"
)

const reminderTemplateKey = "contract_expiry_reminder"

// reminderLookbehind widens the scan window so contracts that slipped past
// their end date during an outage still get a final reminder.
const reminderLookbehind = 7 * 24 * time.Hour

// ReminderService dispatches expiry reminders for contracts nearing their end
// date, at most once per day per (contract, recipient, channel).
type ReminderService struct {
	contracts     repository.ContractRepository
	users         repository.UserRepository
	reminderLogs  repository.ReminderLogRepository
	notifications repository.NotificationRepository
	settings      *SettingsService
	mailer        notify.Mailer
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	now           func() time.Time
}

// ReminderDependencies bundles collaborators for the reminder service.
type ReminderDependencies struct {
	ContractRepo     repository.ContractRepository
	UserRepo         repository.UserRepository
	ReminderLogRepo  repository.ReminderLogRepository
	NotificationRepo repository.NotificationRepository
	Settings         *SettingsService
	Mailer           notify.Mailer
	Dispatcher       events.Dispatcher
	Logger           *zap.Logger
	Now              func() time.Time
}

// ReminderResult aggregates a reminder run outcome.
type ReminderResult struct {
	Contracts int
	Sent      int
	Skipped   int
	Failed    int
}

// NewReminderService constructs the service.
func NewReminderService(deps ReminderDependencies) *ReminderService {
	svc := &ReminderService{
		contracts:     deps.ContractRepo,
		users:         deps.UserRepo,
		reminderLogs:  deps.ReminderLogRepo,
		notifications: deps.NotificationRepo,
		settings:      deps.Settings,
		mailer:        deps.Mailer,
		dispatcher:    deps.Dispatcher,
		logger:        deps.Logger,
		now:           deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// SendDueReminders scans active, non-auto-renewing, non-excluded contracts
// whose end date falls within the reminder window and notifies each contract's
// recipient set. Registered recipients are deduplicated against today's
// reminder log; a failed send releases the log slot so the next run retries.
// Failures are isolated per recipient and never abort the batch.
func (s *ReminderService) SendDueReminders(ctx context.Context) (ReminderResult, error) {
	now := s.now()
	cfg := s.settings.ReminderSettings(ctx)

	from := now.Add(-reminderLookbehind)
	to := now.AddDate(0, 0, cfg.WarningDays)
	contracts, err := s.contracts.ListDueForReminder(ctx, from, to, cfg.ExcludedDocTypes)
	if err != nil {
		return ReminderResult{}, err
	}

	var result ReminderResult
	result.Contracts = len(contracts)
	for i := range contracts {
		s.remindContract(ctx, &contracts[i], cfg, now, &result)
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventReminderBatchFinished,
		Payload: events.ReminderBatchPayload{
			Contracts: result.Contracts,
			Sent:      result.Sent,
			Skipped:   result.Skipped,
			Failed:    result.Failed,
		},
	})
	return result, nil
}

func (s *ReminderService) remindContract(ctx context.Context, contract *domain.Contract, cfg domain.ReminderSettings, now time.Time, result *ReminderResult) {
	for _, recipient := range s.recipientsFor(ctx, contract, cfg) {
		switch recipient.Kind {
		case domain.RecipientRegistered:
			s.sendToRegistered(ctx, contract, recipient, now, result)
		case domain.RecipientManual:
			// Manual PICs have no user id to key the dedup log on; they are
			// sent every run. Known gap inherited from the recipient model.
			if err := s.send(ctx, contract, recipient, now); err != nil {
				s.logger.Warn("reminder to manual recipient failed",
					zap.String("contract", contract.Number), zap.String("email", recipient.Email), zap.Error(err))
				result.Failed++
				continue
			}
			result.Sent++
		}
	}

	if cfg.LegalTeamEmail != "" {
		// Fixed legal-team copy, sent unconditionally and never deduplicated
		// against the user set.
		team := domain.ManualRecipient("Legal Team", cfg.LegalTeamEmail)
		if err := s.send(ctx, contract, team, now); err != nil {
			s.logger.Warn("reminder to legal team address failed",
				zap.String("contract", contract.Number), zap.Error(err))
			result.Failed++
		} else {
			result.Sent++
		}
	}
}

func (s *ReminderService) sendToRegistered(ctx context.Context, contract *domain.Contract, recipient domain.Recipient, now time.Time, result *ReminderResult) {
	reserved, err := s.reminderLogs.Reserve(ctx, contract.ID, *recipient.UserID, domain.ChannelEmail, now)
	if err != nil {
		s.logger.Warn("reminder log reservation failed",
			zap.String("contract", contract.Number), zap.String("user", *recipient.UserID), zap.Error(err))
		result.Failed++
		return
	}
	if !reserved {
		result.Skipped++
		return
	}
	if err := s.send(ctx, contract, recipient, now); err != nil {
		s.logger.Warn("reminder send failed",
			zap.String("contract", contract.Number), zap.String("user", *recipient.UserID), zap.Error(err))
		if releaseErr := s.reminderLogs.Release(ctx, contract.ID, *recipient.UserID, domain.ChannelEmail, now); releaseErr != nil {
			s.logger.Error("reminder log release failed", zap.Error(releaseErr))
		}
		result.Failed++
		return
	}
	result.Sent++

	notification := &domain.Notification{
		UserID: *recipient.UserID,
		Title:  fmt.Sprintf("Contract %s nearing expiry", contract.Number),
		Body:   fmt.Sprintf("%s ends on %s.", contract.Description, endDateLabel(contract)),
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		s.logger.Warn("in-app notification write failed",
			zap.String("user", *recipient.UserID), zap.Error(err))
	}
}

func (s *ReminderService) send(ctx context.Context, contract *domain.Contract, recipient domain.Recipient, now time.Time) error {
	return s.mailer.Send(ctx, notify.Message{
		TemplateKey: reminderTemplateKey,
		To:          recipient.Email,
		ToName:      recipient.Name,
		Subject:     fmt.Sprintf("Contract %s expires %s", contract.Number, endDateLabel(contract)),
		Data: map[string]any{
			"contract_number": contract.Number,
			"description":     contract.Description,
			"end_date":        endDateLabel(contract),
			"days_remaining":  contract.DaysRemaining(now),
		},
	})
}

// recipientsFor builds the deduplicated recipient set for a contract: the PIC,
// then the enabled role groups. Dedup keys on user id and lower-cased email.
func (s *ReminderService) recipientsFor(ctx context.Context, contract *domain.Contract, cfg domain.ReminderSettings) []domain.Recipient {
	var recipients []domain.Recipient
	seen := map[string]bool{}

	add := func(r domain.Recipient) {
		key := strings.ToLower(r.Email)
		if r.UserID != nil {
			key = *r.UserID
		}
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		recipients = append(recipients, r)
	}

	if contract.PICUserID != nil {
		user, err := s.users.GetByID(ctx, *contract.PICUserID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				s.logger.Warn("PIC lookup failed", zap.String("user", *contract.PICUserID), zap.Error(err))
			}
		} else {
			add(domain.RegisteredRecipient(user))
		}
	} else if contract.PICEmail != "" {
		add(domain.ManualRecipient(contract.PICName, contract.PICEmail))
	}

	if cfg.NotifyLegalRole {
		s.addRole(ctx, domain.RoleLegal, add)
	}
	if cfg.NotifyManagementRole {
		s.addRole(ctx, domain.RoleManagement, add)
	}
	return recipients
}

func (s *ReminderService) addRole(ctx context.Context, role domain.UserRole, add func(domain.Recipient)) {
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		s.logger.Warn("role listing failed", zap.String("role", string(role)), zap.Error(err))
		return
	}
	for i := range users {
		add(domain.RegisteredRecipient(&users[i]))
	}
}

func (s *ReminderService) publishEvent(ctx context.Context, event events.Event) {
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

func endDateLabel(contract *domain.Contract) string {
	if contract.EndDate == nil {
		return "n/a"
	}
	return contract.EndDate.Format("2006-01-02")
}
