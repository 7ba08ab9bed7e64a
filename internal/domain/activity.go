package domain

import "time"

// ActivitySubject identifies which aggregate an activity entry belongs to.
type ActivitySubject string

const (
	SubjectTicket   ActivitySubject = "TICKET"
	SubjectContract ActivitySubject = "CONTRACT"
)

// ActivityEvent captures what happened in an activity entry.
type ActivityEvent string

const (
	EventTicketCreated        ActivityEvent = "TICKET_CREATED"
	EventReviewStarted        ActivityEvent = "REVIEW_STARTED"
	EventTicketRejected       ActivityEvent = "TICKET_REJECTED"
	EventTicketCompleted      ActivityEvent = "TICKET_COMPLETED"
	EventTicketClosed         ActivityEvent = "TICKET_CLOSED"
	EventContractMaterialized ActivityEvent = "CONTRACT_MATERIALIZED"
	EventContractTerminated   ActivityEvent = "CONTRACT_TERMINATED"
	EventContractExpired      ActivityEvent = "CONTRACT_EXPIRED"
	EventReminderSent         ActivityEvent = "REMINDER_SENT"
)

// ActivityLog is an immutable audit trail entry appended by every transition.
type ActivityLog struct {
	ID          string
	SubjectType ActivitySubject
	SubjectID   string
	Event       ActivityEvent
	ActorID     *string
	Message     string
	CreatedAt   time.Time
}
