package dto

import (
	"time"

	"github.com/spec-kit/legal-desk/internal/domain"
)

// DateLayout is the wire format for plain dates.
const DateLayout = "2006-01-02"

// AgreementTermsRequest carries the agreement/NDA field group.
type AgreementTermsRequest struct {
	CounterpartName       string `json:"counterpart_name"`
	StartDate             string `json:"start_date"`
	DurationText          string `json:"duration_text,omitempty"`
	IsAutoRenewal         bool   `json:"is_auto_renewal"`
	RenewalPeriod         string `json:"renewal_period,omitempty"`
	RenewalNoticeDays     int    `json:"renewal_notice_days,omitempty"`
	EndDate               string `json:"end_date,omitempty"`
	TerminationNoticeDays int    `json:"termination_notice_days,omitempty"`
}

// AttorneyTermsRequest carries the power-of-attorney field group.
type AttorneyTermsRequest struct {
	Grantor   string `json:"grantor"`
	Grantee   string `json:"grantee"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// FinancialTermsRequest carries the financial-impact flags common to all types.
type FinancialTermsRequest struct {
	HasImpact            bool   `json:"has_impact"`
	PaymentDirection     string `json:"payment_direction,omitempty"`
	RecurringDescription string `json:"recurring_description,omitempty"`
}

// CreateTicketRequest is the ticket creation payload.
type CreateTicketRequest struct {
	DivisionCode string                 `json:"division_code"`
	DocumentType string                 `json:"document_type"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	Agreement    *AgreementTermsRequest `json:"agreement,omitempty"`
	Attorney     *AttorneyTermsRequest  `json:"attorney,omitempty"`
	Financial    FinancialTermsRequest  `json:"financial"`
	SLACompliant bool                   `json:"sla_compliant"`
}

// RejectTicketRequest carries the mandatory rejection reason.
type RejectTicketRequest struct {
	Reason string `json:"reason"`
}

// CompleteTicketRequest carries the agreement completion checklist.
type CompleteTicketRequest struct {
	ChecklistAnswers []bool `json:"checklist_answers,omitempty"`
	Remarks          string `json:"remarks,omitempty"`
}

// AttachmentRequest defines uploaded document metadata.
type AttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type,omitempty"`
	SizeBytes  int64  `json:"size_bytes,omitempty"`
}

// TicketSummary is the list-view projection.
type TicketSummary struct {
	ID           string     `json:"id"`
	Number       string     `json:"number"`
	DivisionID   string     `json:"division_id"`
	DocumentType string     `json:"document_type"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	AgingDays    *int64     `json:"aging_days,omitempty"`
	CreatedBy    string     `json:"created_by"`
	ReviewedBy   *string    `json:"reviewed_by,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
}

// TicketDetail is the single-ticket projection.
type TicketDetail struct {
	TicketSummary
	Description     string                 `json:"description,omitempty"`
	Agreement       *AgreementTermsRequest `json:"agreement,omitempty"`
	Attorney        *AttorneyTermsRequest  `json:"attorney,omitempty"`
	Financial       FinancialTermsRequest  `json:"financial"`
	SLACompliant    bool                   `json:"sla_compliant"`
	Aging           *string                `json:"aging,omitempty"`
	RejectionReason *string                `json:"rejection_reason,omitempty"`
	Checklist       *ChecklistResponse     `json:"checklist,omitempty"`
}

// ChecklistResponse mirrors the stored completion checklist.
type ChecklistResponse struct {
	DraftReviewed     bool   `json:"draft_reviewed"`
	CounterpartSigned bool   `json:"counterpart_signed"`
	OriginalArchived  bool   `json:"original_archived"`
	Remarks           string `json:"remarks,omitempty"`
}

// AttachmentResponse mirrors stored attachment metadata.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	StorageKey string    `json:"storage_key"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type,omitempty"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedBy string    `json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// ActivityResponse mirrors an activity trail entry.
type ActivityResponse struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	ActorID   *string   `json:"actor_id,omitempty"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// AgreementTermsResponse renders stored agreement terms.
func AgreementTermsResponse(terms *domain.AgreementTerms) *AgreementTermsRequest {
	if terms == nil {
		return nil
	}
	out := &AgreementTermsRequest{
		CounterpartName:       terms.CounterpartName,
		StartDate:             terms.StartDate.Format(DateLayout),
		DurationText:          terms.DurationText,
		IsAutoRenewal:         terms.IsAutoRenewal,
		RenewalPeriod:         terms.RenewalPeriod,
		RenewalNoticeDays:     terms.RenewalNoticeDays,
		TerminationNoticeDays: terms.TerminationNoticeDays,
	}
	if terms.EndDate != nil {
		out.EndDate = terms.EndDate.Format(DateLayout)
	}
	return out
}

// AttorneyTermsResponse renders stored power-of-attorney terms.
func AttorneyTermsResponse(terms *domain.AttorneyTerms) *AttorneyTermsRequest {
	if terms == nil {
		return nil
	}
	return &AttorneyTermsRequest{
		Grantor:   terms.Grantor,
		Grantee:   terms.Grantee,
		StartDate: terms.StartDate.Format(DateLayout),
		EndDate:   terms.EndDate.Format(DateLayout),
	}
}
