package events

import (
	"time"

	"github.com/spec-kit/legal-desk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketReviewStarted   EventType = "ticket_review_started"
	EventTicketRejected        EventType = "ticket_rejected"
	EventTicketCompleted       EventType = "ticket_completed"
	EventTicketClosed          EventType = "ticket_closed"
	EventContractMaterialized  EventType = "contract_materialized"
	EventContractTerminated    EventType = "contract_terminated"
	EventContractExpired       EventType = "contract_expired"
	EventReminderBatchFinished EventType = "reminder_batch_finished"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   *string     `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketStatusPayload accompanies ticket transition events.
type TicketStatusPayload struct {
	Number    string              `json:"number"`
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Number       string              `json:"number"`
	DivisionID   string              `json:"division_id"`
	DocumentType domain.DocumentType `json:"document_type"`
	Title        string              `json:"title"`
}

// ContractPayload accompanies contract lifecycle events.
type ContractPayload struct {
	Number    string                `json:"number"`
	TicketID  string                `json:"ticket_id"`
	Status    domain.ContractStatus `json:"status"`
	EndDate   *time.Time            `json:"end_date,omitempty"`
	Reason    string                `json:"reason,omitempty"`
	AutoClose bool                  `json:"auto_close,omitempty"`
}

// ReminderBatchPayload summarizes a reminder run.
type ReminderBatchPayload struct {
	Contracts int `json:"contracts"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}
