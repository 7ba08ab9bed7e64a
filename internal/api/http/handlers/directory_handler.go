package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/legal-desk/internal/api/dto"
	"github.com/spec-kit/legal-desk/internal/domain"
	"github.com/spec-kit/legal-desk/internal/repository"
	"github.com/spec-kit/legal-desk/internal/service"
	apperrors "github.com/spec-kit/legal-desk/pkg/util"
)

// DirectoryHandler serves the supporting lookups: divisions, users,
// notifications and reminder settings.
type DirectoryHandler struct {
	divisions     repository.DivisionRepository
	users         repository.UserRepository
	notifications repository.NotificationRepository
	settings      *service.SettingsService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(
	divisions repository.DivisionRepository,
	users repository.UserRepository,
	notifications repository.NotificationRepository,
	settings *service.SettingsService,
) *DirectoryHandler {
	return &DirectoryHandler{
		divisions:     divisions,
		users:         users,
		notifications: notifications,
		settings:      settings,
	}
}

// ListDivisions GET /divisions.
func (h *DirectoryHandler) ListDivisions(c *fiber.Ctx) error {
	divisions, err := h.divisions.ListActive(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.DivisionResponse, 0, len(divisions))
	for _, division := range divisions {
		items = append(items, dto.DivisionResponse{
			ID:       division.ID,
			Code:     division.Code,
			Name:     division.Name,
			IsActive: division.IsActive,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListUsers GET /users?role=LEGAL.
func (h *DirectoryHandler) ListUsers(c *fiber.Ctx) error {
	role := domain.UserRole(strings.ToUpper(c.Query("role")))
	if role == "" {
		return apperrors.NewValidationError("role query parameter required", nil)
	}
	users, err := h.users.ListByRole(c.Context(), role)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.UserResponse{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  string(user.Role),
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListNotifications GET /notifications.
func (h *DirectoryHandler) ListNotifications(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	notifications, err := h.notifications.ListByUser(c.Context(), actor, c.QueryBool("unread", false), c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(notifications))
	for _, notification := range notifications {
		items = append(items, dto.NotificationResponse{
			ID:        notification.ID,
			Title:     notification.Title,
			Body:      notification.Body,
			ReadAt:    notification.ReadAt,
			CreatedAt: notification.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkNotificationRead POST /notifications/:id/read.
func (h *DirectoryHandler) MarkNotificationRead(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Context(), c.Params("id"), actor); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": "ok"})
}

// GetSettings GET /settings.
func (h *DirectoryHandler) GetSettings(c *fiber.Ctx) error {
	values, err := h.settings.All(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": values})
}

// PutSetting PUT /settings.
func (h *DirectoryHandler) PutSetting(c *fiber.Ctx) error {
	var req dto.SettingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.settings.Set(c.Context(), req.Key, req.Value); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": "ok"})
}
