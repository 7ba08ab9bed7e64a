package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/legal-desk/internal/domain"
	"github.com/spec-kit/legal-desk/internal/notify"
	"github.com/spec-kit/legal-desk/internal/repository"
)

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	nextID  int
	clock   func() time.Time
}

func newFakeTicketRepo(clock func() time.Time) *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}, clock: clock}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	ticket.CreatedAt = r.clock()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTicketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	for _, stored := range r.tickets {
		if stored.Number == number {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if filter.DivisionID != nil && stored.DivisionID != *filter.DivisionID {
			continue
		}
		result = append(result, *stored)
	}
	return result, nil
}

func (r *fakeTicketRepo) Transition(_ context.Context, ticket *domain.Ticket, expected domain.TicketStatus, _ *domain.ActivityLog) error {
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Status != expected {
		return repository.ErrStaleStatus
	}
	copied := *ticket
	copied.UpdatedAt = r.clock()
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) ListTerminalMissingAging(_ context.Context) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, stored := range r.tickets {
		if !stored.Status.Terminal() {
			continue
		}
		if stored.AgingMinutes != nil && *stored.AgingMinutes > 0 {
			continue
		}
		result = append(result, *stored)
	}
	return result, nil
}

func (r *fakeTicketRepo) SetAgingMinutes(_ context.Context, id string, minutes int64) error {
	stored, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.AgingMinutes = &minutes
	return nil
}

type fakeDivisionRepo struct {
	divisions []*domain.Division
}

func (r *fakeDivisionRepo) Create(_ context.Context, division *domain.Division) error {
	division.ID = fmt.Sprintf("division-%d", len(r.divisions)+1)
	r.divisions = append(r.divisions, division)
	return nil
}

func (r *fakeDivisionRepo) GetByID(_ context.Context, id string) (*domain.Division, error) {
	for _, division := range r.divisions {
		if division.ID == id {
			return division, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDivisionRepo) GetByCode(_ context.Context, code string) (*domain.Division, error) {
	for _, division := range r.divisions {
		if strings.EqualFold(division.Code, code) {
			return division, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeDivisionRepo) ListActive(_ context.Context) ([]domain.Division, error) {
	var result []domain.Division
	for _, division := range r.divisions {
		if division.IsActive {
			result = append(result, *division)
		}
	}
	return result, nil
}

type fakeSequenceRepo struct {
	counters map[string]int
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{counters: map[string]int{}}
}

func (r *fakeSequenceRepo) Next(_ context.Context, prefix, divisionCode string, asOf time.Time) (int, error) {
	key := prefix + "/" + domain.DivisionCode3(divisionCode) + "/" + domain.SequencePeriod(asOf)
	r.counters[key]++
	return r.counters[key], nil
}

type fakeContractRepo struct {
	contracts map[string]*domain.Contract
	nextID    int
	clock     func() time.Time
}

func newFakeContractRepo(clock func() time.Time) *fakeContractRepo {
	return &fakeContractRepo{contracts: map[string]*domain.Contract{}, clock: clock}
}

func (r *fakeContractRepo) Create(_ context.Context, contract *domain.Contract, _ *domain.ActivityLog) error {
	r.nextID++
	contract.ID = fmt.Sprintf("contract-%d", r.nextID)
	contract.CreatedAt = r.clock()
	contract.UpdatedAt = contract.CreatedAt
	copied := *contract
	r.contracts[contract.ID] = &copied
	return nil
}

func (r *fakeContractRepo) GetByID(_ context.Context, id string) (*domain.Contract, error) {
	stored, ok := r.contracts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeContractRepo) GetByTicketID(_ context.Context, ticketID string) (*domain.Contract, error) {
	for _, stored := range r.contracts {
		if stored.TicketID == ticketID {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeContractRepo) ListWithFilter(_ context.Context, _ repository.ContractFilter) ([]domain.Contract, error) {
	var result []domain.Contract
	for _, stored := range r.contracts {
		result = append(result, *stored)
	}
	return result, nil
}

func (r *fakeContractRepo) Transition(_ context.Context, contract *domain.Contract, expected domain.ContractStatus, _ *domain.ActivityLog) error {
	stored, ok := r.contracts[contract.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Status != expected {
		return repository.ErrStaleStatus
	}
	copied := *contract
	copied.UpdatedAt = r.clock()
	r.contracts[contract.ID] = &copied
	return nil
}

func (r *fakeContractRepo) ListExpirable(_ context.Context, before time.Time) ([]domain.Contract, error) {
	var result []domain.Contract
	for _, stored := range r.contracts {
		if stored.Status != domain.ContractStatusActive || stored.IsAutoRenewal || stored.EndDate == nil {
			continue
		}
		if stored.EndDate.Before(before.Truncate(24 * time.Hour)) {
			result = append(result, *stored)
		}
	}
	return result, nil
}

func (r *fakeContractRepo) ListDueForReminder(_ context.Context, from, to time.Time, excluded []domain.DocumentType) ([]domain.Contract, error) {
	skip := map[domain.DocumentType]bool{}
	for _, dt := range excluded {
		skip[dt] = true
	}
	var result []domain.Contract
	for _, stored := range r.contracts {
		if stored.Status != domain.ContractStatusActive || stored.IsAutoRenewal || stored.EndDate == nil {
			continue
		}
		if skip[stored.DocumentType] {
			continue
		}
		if stored.EndDate.Before(from) || stored.EndDate.After(to) {
			continue
		}
		result = append(result, *stored)
	}
	return result, nil
}

type fakeActivityRepo struct {
	entries []domain.ActivityLog
}

func (r *fakeActivityRepo) Create(_ context.Context, entry *domain.ActivityLog) error {
	entry.ID = fmt.Sprintf("activity-%d", len(r.entries)+1)
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeActivityRepo) ListBySubject(_ context.Context, subject domain.ActivitySubject, subjectID string, _, _ int) ([]domain.ActivityLog, error) {
	var result []domain.ActivityLog
	for _, entry := range r.entries {
		if entry.SubjectType == subject && entry.SubjectID == subjectID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.Attachment
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	attachment.ID = fmt.Sprintf("attachment-%d", len(r.attachments)+1)
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	var result []domain.Attachment
	for _, attachment := range r.attachments {
		if attachment.TicketID == ticketID {
			result = append(result, attachment)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	users []*domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range r.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.UserRole) ([]domain.User, error) {
	var result []domain.User
	for _, user := range r.users {
		if user.Role == role && user.Active {
			result = append(result, *user)
		}
	}
	return result, nil
}

type fakeReminderLogRepo struct {
	slots map[string]bool
}

func newFakeReminderLogRepo() *fakeReminderLogRepo {
	return &fakeReminderLogRepo{slots: map[string]bool{}}
}

func slotKey(contractID, userID string, channel domain.ReminderChannel, day time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s", contractID, userID, channel, day.Format("2006-01-02"))
}

func (r *fakeReminderLogRepo) Reserve(_ context.Context, contractID, userID string, channel domain.ReminderChannel, day time.Time) (bool, error) {
	key := slotKey(contractID, userID, channel, day)
	if r.slots[key] {
		return false, nil
	}
	r.slots[key] = true
	return true, nil
}

func (r *fakeReminderLogRepo) Release(_ context.Context, contractID, userID string, channel domain.ReminderChannel, day time.Time) error {
	delete(r.slots, slotKey(contractID, userID, channel, day))
	return nil
}

func (r *fakeReminderLogRepo) CountForDay(_ context.Context, day time.Time) (int, error) {
	count := 0
	suffix := day.Format("2006-01-02")
	for key := range r.slots {
		if strings.HasSuffix(key, suffix) {
			count++
		}
	}
	return count, nil
}

type fakeNotificationRepo struct {
	notifications []domain.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	notification.ID = fmt.Sprintf("notification-%d", len(r.notifications)+1)
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, _ bool, _, _ int) ([]domain.Notification, error) {
	var result []domain.Notification
	for _, notification := range r.notifications {
		if notification.UserID == userID {
			result = append(result, notification)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, _, _ string) error {
	return nil
}

type fakeSettingsRepo struct {
	values map[string]string
}

func (r *fakeSettingsRepo) Get(_ context.Context, key string) (string, bool, error) {
	if r.values == nil {
		return "", false, nil
	}
	value, found := r.values[key]
	return value, found, nil
}

func (r *fakeSettingsRepo) Set(_ context.Context, key, value string) error {
	if r.values == nil {
		r.values = map[string]string{}
	}
	r.values[key] = value
	return nil
}

func (r *fakeSettingsRepo) All(_ context.Context) (map[string]string, error) {
	return r.values, nil
}

type fakeMailer struct {
	sent    []notify.Message
	failFor map[string]bool
}

func (m *fakeMailer) Send(_ context.Context, msg notify.Message) error {
	if m.failFor[msg.To] {
		return fmt.Errorf("delivery to %s refused", msg.To)
	}
	m.sent = append(m.sent, msg)
	return nil
}
