package domain

import "time"

// TicketStatus enumerates workflow states for legal-document tickets.
type TicketStatus string

const (
	TicketStatusOpen      TicketStatus = "OPEN"
	TicketStatusOnProcess TicketStatus = "ON_PROCESS"
	TicketStatusRejected  TicketStatus = "REJECTED"
	TicketStatusDone      TicketStatus = "DONE"
	TicketStatusClosed    TicketStatus = "CLOSED"
)

// DocumentType classifies the legal document a ticket requests.
type DocumentType string

const (
	DocTypeAgreement       DocumentType = "AGREEMENT"
	DocTypeNDA             DocumentType = "NDA"
	DocTypePowerOfAttorney DocumentType = "POWER_OF_ATTORNEY"
	DocTypeLegalOpinion    DocumentType = "LEGAL_OPINION"
	DocTypeStatementLetter DocumentType = "STATEMENT_LETTER"
	DocTypeOtherLetter     DocumentType = "OTHER_LETTER"
)

// PaymentDirection indicates which way money flows for tickets with financial impact.
type PaymentDirection string

const (
	PaymentInbound  PaymentDirection = "INBOUND"
	PaymentOutbound PaymentDirection = "OUTBOUND"
)

// AgreementTerms carries the fields mandatory for agreement and NDA tickets.
type AgreementTerms struct {
	CounterpartName       string
	StartDate             time.Time
	DurationText          string
	IsAutoRenewal         bool
	RenewalPeriod         string
	RenewalNoticeDays     int
	EndDate               *time.Time
	TerminationNoticeDays int
}

// AttorneyTerms carries the fields mandatory for power-of-attorney tickets.
type AttorneyTerms struct {
	Grantor   string
	Grantee   string
	StartDate time.Time
	EndDate   time.Time
}

// FinancialTerms is common to all document types.
type FinancialTerms struct {
	HasImpact            bool
	PaymentDirection     PaymentDirection
	RecurringDescription string
}

// CompletionChecklist records the three mandatory post-completion answers for
// agreement tickets, plus free-text remarks.
type CompletionChecklist struct {
	DraftReviewed     bool
	CounterpartSigned bool
	OriginalArchived  bool
	Remarks           string
}

// ChecklistAnswerCount is the exact number of answers a caller must supply
// when completing an agreement ticket.
const ChecklistAnswerCount = 3

// Ticket is the aggregate for legal-document requests.
type Ticket struct {
	ID              string
	Number          string
	DivisionID      string
	DocumentType    DocumentType
	Title           string
	Description     string
	Status          TicketStatus
	Agreement       *AgreementTerms
	Attorney        *AttorneyTerms
	Financial       FinancialTerms
	SLACompliant    bool
	Checklist       *CompletionChecklist
	CreatedBy       string
	ReviewedBy      *string
	ReviewedAt      *time.Time
	AgingStart      *time.Time
	AgingEnd        *time.Time
	AgingMinutes    *int64
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// allowedTransitions enumerates the reachable ticket status graph.
// DONE -> CLOSED is reserved for system auto-close (contract born expired,
// or contract terminated); it is never requested by a reviewer directly.
var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:      {TicketStatusOnProcess},
	TicketStatusOnProcess: {TicketStatusDone, TicketStatusRejected, TicketStatusClosed},
	TicketStatusDone:      {TicketStatusClosed},
	TicketStatusRejected:  {},
	TicketStatusClosed:    {},
}

// CanTransition reports whether the status graph permits current -> next.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Terminal reports whether the status ends the ticket's own workflow.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusDone || s == TicketStatusRejected || s == TicketStatusClosed
}

// TerminalStatuses lists every terminal ticket status.
func TerminalStatuses() []TicketStatus {
	return []TicketStatus{TicketStatusDone, TicketStatusRejected, TicketStatusClosed}
}

// Contractable reports whether completing a ticket of this type produces a Contract.
func (d DocumentType) Contractable() bool {
	switch d {
	case DocTypeAgreement, DocTypeNDA, DocTypePowerOfAttorney:
		return true
	}
	return false
}

// RequiresChecklist reports whether completion demands checklist answers.
func (d DocumentType) RequiresChecklist() bool {
	return d == DocTypeAgreement
}

// RequiresAgreementTerms reports whether the agreement field group is mandatory.
func (d DocumentType) RequiresAgreementTerms() bool {
	return d == DocTypeAgreement || d == DocTypeNDA
}

// ClosesWithoutContract reports whether the type skips DONE and closes directly.
func (d DocumentType) ClosesWithoutContract() bool {
	switch d {
	case DocTypeLegalOpinion, DocTypeStatementLetter, DocTypeOtherLetter:
		return true
	}
	return false
}

// ValidDocumentType reports whether the value is a known classification.
func ValidDocumentType(d DocumentType) bool {
	switch d {
	case DocTypeAgreement, DocTypeNDA, DocTypePowerOfAttorney,
		DocTypeLegalOpinion, DocTypeStatementLetter, DocTypeOtherLetter:
		return true
	}
	return false
}

// ContractDates derives the contract period from the type-specific field group.
// Power-of-attorney tickets use the grantor/grantee date pair; agreement and
// NDA tickets use the agreement period.
func (t *Ticket) ContractDates() (start time.Time, end *time.Time) {
	if t.DocumentType == DocTypePowerOfAttorney && t.Attorney != nil {
		endDate := t.Attorney.EndDate
		return t.Attorney.StartDate, &endDate
	}
	if t.Agreement != nil {
		return t.Agreement.StartDate, t.Agreement.EndDate
	}
	return time.Time{}, nil
}

// AutoRenewing reports whether the requested instrument renews automatically.
func (t *Ticket) AutoRenewing() bool {
	return t.Agreement != nil && t.Agreement.IsAutoRenewal
}
