package server

import (
	"mutuals/internal/cache"
	"mutuals/internal/models"

	"github.com/gofiber/fiber/v2"
)

// SendFriendRequest handles POST /api/friends/requests/:userId
func (s *Server) SendFriendRequest(c *fiber.Ctx) error {
	userID := currentUserID(c)
	targetUserID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	request, err := s.friendSvc.Send(c.Context(), userID, targetUserID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

// RespondFriendRequest handles PUT /api/friends/requests/:requestId
func (s *Server) RespondFriendRequest(c *fiber.Ctx) error {
	userID := currentUserID(c)
	requestID, err := s.parseID(c, "requestId")
	if err != nil {
		return nil
	}

	var req struct {
		Accept bool `json:"accept"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if err := s.friendSvc.Respond(c.Context(), userID, requestID, req.Accept); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{"status": "success"})
}

// GetFriends handles GET /api/friends
func (s *Server) GetFriends(c *fiber.Ctx) error {
	ctx := c.Context()
	userID := currentUserID(c)
	limit, offset := pagination(c)

	key := cache.FriendsKey(userID, limit, offset)
	var cached []models.PublicUser
	if cache.GetJSON(ctx, s.redis, key, &cached) {
		return c.JSON(cached)
	}

	friends, err := s.friendSvc.FriendsOf(ctx, userID, limit, offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	result := publicUsers(friends)
	cache.SetJSON(ctx, s.redis, key, result)
	return c.JSON(result)
}

// GetPendingRequests handles GET /api/friends/requests
func (s *Server) GetPendingRequests(c *fiber.Ctx) error {
	userID := currentUserID(c)
	limit, offset := pagination(c)

	requests, err := s.friendSvc.PendingFor(c.Context(), userID, limit, offset)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(requests)
}
