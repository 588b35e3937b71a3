package server

import (
	"mutuals/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetActivities handles GET /api/activities
func (s *Server) GetActivities(c *fiber.Ctx) error {
	userID := currentUserID(c)
	limit, offset := pagination(c)

	activities, err := s.emitter.Activities(c.Context(), userID, limit, offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(activities)
}
