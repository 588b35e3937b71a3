package server

import (
	"strings"

	"mutuals/internal/cache"
	"mutuals/internal/models"
	"mutuals/internal/secrets"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers handles GET /api/users/search?q=...
// Queries containing "@" are treated as an exact email lookup; anything else
// matches as a case-insensitive substring of username or name.
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return models.RespondWithAppError(c, models.NewValidationError("Search query is required"))
	}
	limit, offset := pagination(c)

	key := cache.SearchKey(strings.ToLower(query), limit, offset)
	var cached []models.PublicUser
	if cache.GetJSON(c.Context(), s.redis, key, &cached) {
		return c.JSON(cached)
	}

	var results []models.PublicUser
	if strings.Contains(query, "@") {
		user, err := s.userRepo.GetByEmailHash(c.Context(), secrets.HashEmail(query))
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if user != nil {
			results = append(results, user.Public())
		}
	} else {
		users, err := s.userRepo.Search(c.Context(), query, limit, offset)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		results = publicUsers(users)
	}

	cache.SetJSON(c.Context(), s.redis, key, results)
	return c.JSON(results)
}
