package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Register handles POST /api/auth/register
func (s *Server) Register(c *fiber.Ctx) error {
	var in service.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body", nil))
	}

	payload, err := s.authService.Register(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusCreated, "Account created", payload)
}

// Login handles POST /api/auth/login
func (s *Server) Login(c *fiber.Ctx) error {
	var in service.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body", nil))
	}

	payload, err := s.authService.Login(c.Context(), in)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Logged in", payload)
}

// Refresh handles POST /api/auth/refresh. The presented refresh token is
// consumed even when the rotation fails.
func (s *Server) Refresh(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body", nil))
	}

	pair, err := s.authService.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Token refreshed", pair)
}

// Logout handles POST /api/auth/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	user := s.currentUser(c)
	if err := s.authService.Logout(c.Context(), user.ID); err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Logged out", nil)
}

// Me handles GET /api/auth/me
func (s *Server) Me(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, "Current user", s.currentUser(c))
}
