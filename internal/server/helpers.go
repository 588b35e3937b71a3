package server

import (
	"strconv"

	"mutuals/internal/models"

	"github.com/gofiber/fiber/v2"
)

// defaultPageSize matches the page size used across all paginated views.
const defaultPageSize = 10

// parseID reads a positive integer route parameter. On failure it writes the
// 400 response itself and returns a non-nil error so callers can bail out
// without touching the response again.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		appErr := models.NewValidationError("Invalid " + param)
		_ = models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		return 0, appErr
	}
	return uint(id), nil
}

// pagination reads the page query parameter and returns limit/offset.
func pagination(c *fiber.Ctx) (limit, offset int) {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	return defaultPageSize, (page - 1) * defaultPageSize
}

// currentUserID returns the authenticated caller's ID set by the auth middleware.
func currentUserID(c *fiber.Ctx) uint {
	return c.Locals("userID").(uint)
}

// publicUsers maps users to their public projections.
func publicUsers(users []models.User) []models.PublicUser {
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
