package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/legal-desk/internal/api/dto"
	"github.com/spec-kit/legal-desk/internal/service"
)

// JobsHandler triggers the batch jobs on demand. The scheduler runs the same
// jobs periodically; these endpoints exist for operators.
type JobsHandler struct {
	tickets   *service.TicketService
	contracts *service.ContractService
	reminders *service.ReminderService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(tickets *service.TicketService, contracts *service.ContractService, reminders *service.ReminderService) *JobsHandler {
	return &JobsHandler{tickets: tickets, contracts: contracts, reminders: reminders}
}

// BackfillAging POST /jobs/backfill-aging.
func (h *JobsHandler) BackfillAging(c *fiber.Ctx) error {
	updated, err := h.tickets.BackfillAging(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.JobResultResponse{Job: "backfill_aging", Processed: updated}})
}

// ExpireContracts POST /jobs/expire-contracts.
func (h *JobsHandler) ExpireContracts(c *fiber.Ctx) error {
	result, err := h.contracts.ExpireDueContracts(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.JobResultResponse{
		Job:       "expire_contracts",
		Processed: result.Processed,
		Failed:    result.Failed,
	}})
}

// SendReminders POST /jobs/send-reminders.
func (h *JobsHandler) SendReminders(c *fiber.Ctx) error {
	result, err := h.reminders.SendDueReminders(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.JobResultResponse{
		Job:       "send_reminders",
		Processed: result.Sent,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
	}})
}
