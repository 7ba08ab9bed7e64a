package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/legal-desk/internal/api/dto"
	"github.com/spec-kit/legal-desk/internal/domain"
	"github.com/spec-kit/legal-desk/internal/repository"
	"github.com/spec-kit/legal-desk/internal/service"
	apperrors "github.com/spec-kit/legal-desk/pkg/util"
)

// ActorHeader identifies the acting user. Authentication itself is handled by
// the fronting gateway; the core only needs the identity.
const ActorHeader = "X-Actor-ID"

// TicketsHandler exposes the ticket workflow operations.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DivisionCode == "" || req.DocumentType == "" || req.Title == "" {
		return apperrors.NewValidationError("division_code, document_type, title required", nil)
	}

	input := service.TicketCreateInput{
		DivisionCode: req.DivisionCode,
		DocumentType: domain.DocumentType(strings.ToUpper(req.DocumentType)),
		Title:        req.Title,
		Description:  req.Description,
		SLACompliant: req.SLACompliant,
		Financial: domain.FinancialTerms{
			HasImpact:            req.Financial.HasImpact,
			PaymentDirection:     domain.PaymentDirection(strings.ToUpper(req.Financial.PaymentDirection)),
			RecurringDescription: req.Financial.RecurringDescription,
		},
	}
	if req.Agreement != nil {
		terms, err := agreementTermsFromRequest(req.Agreement)
		if err != nil {
			return err
		}
		input.Agreement = terms
	}
	if req.Attorney != nil {
		terms, err := attorneyTermsFromRequest(req.Attorney)
		if err != nil {
			return err
		}
		input.Attorney = terms
	}

	ticket, err := h.service.CreateTicket(c.Context(), actor, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.GetTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketFilter(c)
	tickets, err := h.service.ListTickets(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, h.ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// BeginReview POST /tickets/:id/review.
func (h *TicketsHandler) BeginReview(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.BeginReview(c.Context(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// Reject POST /tickets/:id/reject.
func (h *TicketsHandler) Reject(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.RejectTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Reject(c.Context(), c.Params("id"), actor, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// Complete POST /tickets/:id/complete.
func (h *TicketsHandler) Complete(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.CompleteTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	var checklist *service.CompletionInput
	if req.ChecklistAnswers != nil {
		checklist = &service.CompletionInput{Answers: req.ChecklistAnswers, Remarks: req.Remarks}
	}
	ticket, err := h.service.Complete(c.Context(), c.Params("id"), actor, checklist)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// Close POST /tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.CloseWithoutContract(c.Context(), c.Params("id"), actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": h.ticketDetail(ticket)})
}

// AddAttachment POST /tickets/:id/attachments.
func (h *TicketsHandler) AddAttachment(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.AttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	attachment, err := h.service.AddAttachment(c.Context(), c.Params("id"), actor, service.AttachmentInput{
		StorageKey: req.StorageKey,
		FileName:   req.FileName,
		MimeType:   req.MimeType,
		SizeBytes:  req.SizeBytes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": attachmentResponse(attachment)})
}

// ListAttachments GET /tickets/:id/attachments.
func (h *TicketsHandler) ListAttachments(c *fiber.Ctx) error {
	attachments, err := h.service.ListAttachments(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, attachmentResponse(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListActivity GET /tickets/:id/activity.
func (h *TicketsHandler) ListActivity(c *fiber.Ctx) error {
	entries, err := h.service.ListActivity(c.Context(), c.Params("id"), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activityResponses(entries)})
}

func (h *TicketsHandler) ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	summary := dto.TicketSummary{
		ID:           ticket.ID,
		Number:       ticket.Number,
		DivisionID:   ticket.DivisionID,
		DocumentType: string(ticket.DocumentType),
		Title:        ticket.Title,
		Status:       string(ticket.Status),
		CreatedBy:    ticket.CreatedBy,
		ReviewedBy:   ticket.ReviewedBy,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
		ReviewedAt:   ticket.ReviewedAt,
	}
	if _, days, ok := h.service.AgingDisplay(ticket); ok {
		summary.AgingDays = &days
	}
	return summary
}

func (h *TicketsHandler) ticketDetail(ticket *domain.Ticket) dto.TicketDetail {
	detail := dto.TicketDetail{
		TicketSummary:   h.ticketSummary(ticket),
		Description:     ticket.Description,
		Agreement:       dto.AgreementTermsResponse(ticket.Agreement),
		Attorney:        dto.AttorneyTermsResponse(ticket.Attorney),
		SLACompliant:    ticket.SLACompliant,
		RejectionReason: ticket.RejectionReason,
		Financial: dto.FinancialTermsRequest{
			HasImpact:            ticket.Financial.HasImpact,
			PaymentDirection:     string(ticket.Financial.PaymentDirection),
			RecurringDescription: ticket.Financial.RecurringDescription,
		},
	}
	if formatted, _, ok := h.service.AgingDisplay(ticket); ok {
		detail.Aging = &formatted
	}
	if cl := ticket.Checklist; cl != nil {
		detail.Checklist = &dto.ChecklistResponse{
			DraftReviewed:     cl.DraftReviewed,
			CounterpartSigned: cl.CounterpartSigned,
			OriginalArchived:  cl.OriginalArchived,
			Remarks:           cl.Remarks,
		}
	}
	return detail
}

func parseTicketFilter(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("division_id"); v != "" {
		filter.DivisionID = &v
	}
	if v := c.Query("created_by"); v != "" {
		filter.CreatedBy = &v
	}
	if v := c.Query("status"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.ToUpper(strings.TrimSpace(raw))))
		}
	}
	if v := c.Query("document_type"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			filter.DocumentTypes = append(filter.DocumentTypes, domain.DocumentType(strings.ToUpper(strings.TrimSpace(raw))))
		}
	}
	return filter
}

func agreementTermsFromRequest(req *dto.AgreementTermsRequest) (*domain.AgreementTerms, error) {
	start, err := parseDate(req.StartDate, "agreement.start_date")
	if err != nil {
		return nil, err
	}
	terms := &domain.AgreementTerms{
		CounterpartName:       req.CounterpartName,
		StartDate:             start,
		DurationText:          req.DurationText,
		IsAutoRenewal:         req.IsAutoRenewal,
		RenewalPeriod:         req.RenewalPeriod,
		RenewalNoticeDays:     req.RenewalNoticeDays,
		TerminationNoticeDays: req.TerminationNoticeDays,
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate, "agreement.end_date")
		if err != nil {
			return nil, err
		}
		terms.EndDate = &end
	}
	return terms, nil
}

func attorneyTermsFromRequest(req *dto.AttorneyTermsRequest) (*domain.AttorneyTerms, error) {
	start, err := parseDate(req.StartDate, "attorney.start_date")
	if err != nil {
		return nil, err
	}
	end, err := parseDate(req.EndDate, "attorney.end_date")
	if err != nil {
		return nil, err
	}
	return &domain.AttorneyTerms{
		Grantor:   req.Grantor,
		Grantee:   req.Grantee,
		StartDate: start,
		EndDate:   end,
	}, nil
}

func parseDate(value, field string) (time.Time, error) {
	parsed, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError("invalid date", map[string]any{"field": field, "value": value})
	}
	return parsed, nil
}

func attachmentResponse(attachment *domain.Attachment) dto.AttachmentResponse {
	return dto.AttachmentResponse{
		ID:         attachment.ID,
		StorageKey: attachment.StorageKey,
		FileName:   attachment.FileName,
		MimeType:   attachment.MimeType,
		SizeBytes:  attachment.SizeBytes,
		UploadedBy: attachment.UploadedBy,
		CreatedAt:  attachment.CreatedAt,
	}
}

func activityResponses(entries []domain.ActivityLog) []dto.ActivityResponse {
	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.ActivityResponse{
			ID:        entry.ID,
			Event:     string(entry.Event),
			ActorID:   entry.ActorID,
			Message:   entry.Message,
			CreatedAt: entry.CreatedAt,
		})
	}
	return items
}

// actorID extracts the acting user from the request headers.
func actorID(c *fiber.Ctx) (string, error) {
	actor := strings.TrimSpace(c.Get(ActorHeader))
	if actor == "" {
		return "", apperrors.NewValidationError(ActorHeader+" header required", nil)
	}
	return actor, nil
}
