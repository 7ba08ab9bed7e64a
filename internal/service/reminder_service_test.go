package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/legal-desk/internal/domain"
)

type reminderFixture struct {
	service   *ReminderService
	contracts *fakeContractRepo
	users     *fakeUserRepo
	logs      *fakeReminderLogRepo
	inbox     *fakeNotificationRepo
	mailer    *fakeMailer
	settings  *fakeSettingsRepo
	now       *time.Time
}

func newReminderFixture() *reminderFixture {
	now := testClock
	f := &reminderFixture{now: &now}
	clock := func() time.Time { return *f.now }

	f.contracts = newFakeContractRepo(clock)
	f.users = &fakeUserRepo{}
	f.logs = newFakeReminderLogRepo()
	f.inbox = &fakeNotificationRepo{}
	f.mailer = &fakeMailer{failFor: map[string]bool{}}
	f.settings = &fakeSettingsRepo{}

	f.service = NewReminderService(ReminderDependencies{
		ContractRepo:     f.contracts,
		UserRepo:         f.users,
		ReminderLogRepo:  f.logs,
		NotificationRepo: f.inbox,
		Settings:         NewSettingsService(f.settings, nil, zap.NewNop()),
		Mailer:           f.mailer,
		Logger:           zap.NewNop(),
		Now:              clock,
	})
	return f
}

func (f *reminderFixture) addUser(name, email string, role domain.UserRole) *domain.User {
	user := &domain.User{Name: name, Email: email, Role: role, Active: true}
	_ = f.users.Create(context.Background(), user)
	return user
}

func (f *reminderFixture) addContract(picUserID *string, daysToEnd int, docType domain.DocumentType) *domain.Contract {
	end := f.now.AddDate(0, 0, daysToEnd)
	contract := &domain.Contract{
		Number:       "CTR-LEG-26020001",
		TicketID:     "ticket-1",
		DivisionID:   "division-1",
		DocumentType: docType,
		Description:  "Agreement with Acme Corp",
		PICUserID:    picUserID,
		StartDate:    f.now.AddDate(-1, 0, 0),
		EndDate:      &end,
		Status:       domain.ContractStatusActive,
	}
	_ = f.contracts.Create(context.Background(), contract, nil)
	return contract
}

func TestSendDueRemindersOncePerDay(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	pic := f.addUser("Pat PIC", "pat@example.com", domain.RoleEmployee)
	f.addContract(&pic.ID, 20, domain.DocTypeAgreement)

	first, err := f.service.SendDueReminders(ctx)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Contracts != 1 || first.Sent != 1 || first.Skipped != 0 {
		t.Fatalf("first run = %+v, want one send", first)
	}
	if len(f.inbox.notifications) != 1 {
		t.Fatalf("in-app notifications = %d, want 1", len(f.inbox.notifications))
	}

	// same day again: slot already claimed
	second, err := f.service.SendDueReminders(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Sent != 0 || second.Skipped != 1 {
		t.Fatalf("second run = %+v, want one skip", second)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("mails sent = %d, want 1", len(f.mailer.sent))
	}

	// next day the slot is fresh
	*f.now = f.now.AddDate(0, 0, 1)
	third, err := f.service.SendDueReminders(ctx)
	if err != nil {
		t.Fatalf("third run: %v", err)
	}
	if third.Sent != 1 {
		t.Fatalf("third run = %+v, want one send", third)
	}
}

func TestSendDueRemindersFailureReleasesSlot(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	pic := f.addUser("Pat PIC", "pat@example.com", domain.RoleEmployee)
	f.addContract(&pic.ID, 20, domain.DocTypeAgreement)
	f.mailer.failFor["pat@example.com"] = true

	result, err := f.service.SendDueReminders(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Failed != 1 || result.Sent != 0 {
		t.Fatalf("result = %+v, want one failure", result)
	}
	count, _ := f.logs.CountForDay(ctx, *f.now)
	if count != 0 {
		t.Fatalf("log rows after failed send = %d, want 0 (slot released)", count)
	}

	// recovery on the next run of the same day
	f.mailer.failFor = map[string]bool{}
	result, err = f.service.SendDueReminders(ctx)
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("retry result = %+v, want one send", result)
	}
}

func TestSendDueRemindersWindowAndExclusions(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	pic := f.addUser("Pat PIC", "pat@example.com", domain.RoleEmployee)
	f.addContract(&pic.ID, 20, domain.DocTypeAgreement)   // inside window
	f.addContract(&pic.ID, 90, domain.DocTypeAgreement)   // beyond warning horizon
	f.addContract(&pic.ID, 20, domain.DocTypeNDA)         // excluded below
	_ = f.settings.Set(ctx, domain.SettingExcludedDocTypes, "NDA")

	result, err := f.service.SendDueReminders(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Contracts != 1 {
		t.Fatalf("contracts considered = %d, want 1", result.Contracts)
	}
}

func TestSendDueRemindersRoleFanOutAndDedup(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	// the PIC is also on the legal team: one reminder only
	pic := f.addUser("Lea Legal", "lea@example.com", domain.RoleLegal)
	f.addUser("Max Legal", "max@example.com", domain.RoleLegal)
	f.addUser("Mia Manager", "mia@example.com", domain.RoleManagement)
	f.addContract(&pic.ID, 20, domain.DocTypeAgreement)

	result, err := f.service.SendDueReminders(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// legal role enabled by default, management disabled
	if result.Sent != 2 {
		t.Fatalf("sent = %d, want 2 (PIC/legal dedup, no management)", result.Sent)
	}

	sentTo := map[string]bool{}
	for _, msg := range f.mailer.sent {
		sentTo[msg.To] = true
	}
	if !sentTo["lea@example.com"] || !sentTo["max@example.com"] || sentTo["mia@example.com"] {
		t.Fatalf("recipients = %v", sentTo)
	}
}

func TestSendDueRemindersManualPICAndTeamCopy(t *testing.T) {
	f := newReminderFixture()
	ctx := context.Background()

	contract := f.addContract(nil, 20, domain.DocTypeAgreement)
	contract.PICName = "External Counsel"
	contract.PICEmail = "counsel@partner.example"
	f.contracts.contracts[contract.ID].PICName = contract.PICName
	f.contracts.contracts[contract.ID].PICEmail = contract.PICEmail
	_ = f.settings.Set(ctx, domain.SettingNotifyLegal, "false")
	_ = f.settings.Set(ctx, domain.SettingLegalTeamEmail, "legal-team@example.com")

	result, err := f.service.SendDueReminders(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Sent != 2 {
		t.Fatalf("sent = %d, want manual PIC plus team copy", result.Sent)
	}

	// manual recipients carry no dedup identity: they are sent again same day
	result, err = f.service.SendDueReminders(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if result.Sent != 2 {
		t.Fatalf("second run sent = %d, want 2", result.Sent)
	}
}
