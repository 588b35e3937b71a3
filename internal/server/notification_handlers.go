package server

import (
	"mutuals/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
// Only unread notifications are returned, newest first.
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	userID := currentUserID(c)

	notifications, err := s.emitter.ListUnread(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(notifications)
}

// MarkNotificationsRead handles PUT /api/notifications/read
func (s *Server) MarkNotificationsRead(c *fiber.Ctx) error {
	userID := currentUserID(c)

	count, err := s.emitter.MarkAllRead(c.Context(), userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "all notifications marked as read",
		"count":  count,
	})
}
