package domain

import "time"

// ReminderChannel enumerates delivery channels for expiry reminders.
type ReminderChannel string

const (
	ChannelEmail ReminderChannel = "EMAIL"
	ChannelInApp ReminderChannel = "IN_APP"
)

// ReminderLog is the dedup guard: at most one row may exist per
// (contract, user, channel, calendar day).
type ReminderLog struct {
	ID         string
	ContractID string
	UserID     string
	Channel    ReminderChannel
	SentOn     time.Time
	CreatedAt  time.Time
}

// RecipientKind tags the two reminder recipient variants.
type RecipientKind string

const (
	RecipientRegistered RecipientKind = "REGISTERED"
	RecipientManual     RecipientKind = "MANUAL"
)

// Recipient is a reminder target. Only registered recipients carry a user id
// and participate in dedup logging; manual recipients are an ad hoc name+email
// pair with no identity to key on.
type Recipient struct {
	Kind   RecipientKind
	UserID *string
	Name   string
	Email  string
}

// RegisteredRecipient builds a recipient backed by a directory user.
func RegisteredRecipient(u *User) Recipient {
	id := u.ID
	return Recipient{Kind: RecipientRegistered, UserID: &id, Name: u.Name, Email: u.Email}
}

// ManualRecipient builds an ad hoc recipient from a name+email pair.
func ManualRecipient(name, email string) Recipient {
	return Recipient{Kind: RecipientManual, Name: name, Email: email}
}

// Notification is an in-app message shown to a registered user.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	ReadAt    *time.Time
	CreatedAt time.Time
}
