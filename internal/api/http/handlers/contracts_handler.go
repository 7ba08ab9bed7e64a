package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/legal-desk/internal/api/dto"
	"github.com/spec-kit/legal-desk/internal/domain"
	"github.com/spec-kit/legal-desk/internal/repository"
	"github.com/spec-kit/legal-desk/internal/service"
	apperrors "github.com/spec-kit/legal-desk/pkg/util"
)

// ContractsHandler exposes contract materialization and lifecycle operations.
type ContractsHandler struct {
	service *service.ContractService
}

// NewContractsHandler constructs handler.
func NewContractsHandler(contractService *service.ContractService) *ContractsHandler {
	return &ContractsHandler{service: contractService}
}

// Materialize POST /tickets/:id/contract.
func (h *ContractsHandler) Materialize(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	contract, err := h.service.Materialize(c.Context(), c.Params("id"), &actor)
	if err != nil {
		return err
	}
	view, err := h.service.GetContractView(c.Context(), contract.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": contractResponse(view)})
}

// GetContract GET /contracts/:id.
func (h *ContractsHandler) GetContract(c *fiber.Ctx) error {
	view, err := h.service.GetContractView(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": contractResponse(view)})
}

// ListContracts GET /contracts.
func (h *ContractsHandler) ListContracts(c *fiber.Ctx) error {
	views, err := h.service.ListContracts(c.Context(), parseContractFilter(c))
	if err != nil {
		return err
	}
	items := make([]dto.ContractResponse, 0, len(views))
	for i := range views {
		items = append(items, contractResponse(&views[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Terminate POST /contracts/:id/terminate.
func (h *ContractsHandler) Terminate(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	var req dto.TerminateContractRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	contract, err := h.service.Terminate(c.Context(), c.Params("id"), &actor, req.Reason)
	if err != nil {
		return err
	}
	view, err := h.service.GetContractView(c.Context(), contract.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": contractResponse(view)})
}

// ListActivity GET /contracts/:id/activity.
func (h *ContractsHandler) ListActivity(c *fiber.Ctx) error {
	entries, err := h.service.ListActivity(c.Context(), c.Params("id"), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": activityResponses(entries)})
}

func parseContractFilter(c *fiber.Ctx) repository.ContractFilter {
	filter := repository.ContractFilter{
		Limit:  c.QueryInt("limit", 20),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("division_id"); v != "" {
		filter.DivisionID = &v
	}
	if v := c.Query("pic_user_id"); v != "" {
		filter.PICUserID = &v
	}
	if v := c.Query("status"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, domain.ContractStatus(strings.ToUpper(strings.TrimSpace(raw))))
		}
	}
	if v := c.Query("document_type"); v != "" {
		for _, raw := range strings.Split(v, ",") {
			filter.DocumentTypes = append(filter.DocumentTypes, domain.DocumentType(strings.ToUpper(strings.TrimSpace(raw))))
		}
	}
	return filter
}

func contractResponse(view *service.ContractView) dto.ContractResponse {
	contract := view.Contract
	out := dto.ContractResponse{
		ID:                contract.ID,
		Number:            contract.Number,
		TicketID:          contract.TicketID,
		DivisionID:        contract.DivisionID,
		DocumentType:      string(contract.DocumentType),
		Description:       contract.Description,
		PICUserID:         contract.PICUserID,
		PICName:           contract.PICName,
		PICEmail:          contract.PICEmail,
		StartDate:         contract.StartDate.Format(dto.DateLayout),
		IsAutoRenewal:     contract.IsAutoRenewal,
		Status:            string(contract.Status),
		StatusColor:       string(view.Color),
		DaysRemaining:     view.DaysRemaining,
		TerminatedAt:      contract.TerminatedAt,
		TerminationReason: contract.TerminationReason,
		CreatedAt:         contract.CreatedAt,
		UpdatedAt:         contract.UpdatedAt,
	}
	if contract.EndDate != nil {
		out.EndDate = contract.EndDate.Format(dto.DateLayout)
	}
	return out
}
