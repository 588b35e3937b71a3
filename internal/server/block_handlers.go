package server

import (
	"mutuals/internal/models"
	"mutuals/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// BlockUser handles POST /api/blocks/:userId
func (s *Server) BlockUser(c *fiber.Ctx) error {
	userID := currentUserID(c)
	targetUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.blockSvc.Block(c.Context(), userID, targetUserID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	observability.BlockOperations.WithLabelValues("block").Inc()
	return c.JSON(fiber.Map{"status": "User blocked successfully"})
}

// UnblockUser handles DELETE /api/blocks/:userId
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	userID := currentUserID(c)
	targetUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	if err := s.blockSvc.Unblock(c.Context(), userID, targetUserID); err != nil {
		return models.RespondWithAppError(c, err)
	}

	observability.BlockOperations.WithLabelValues("unblock").Inc()
	return c.JSON(fiber.Map{"status": "User unblocked successfully"})
}
