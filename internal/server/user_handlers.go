package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListUsers handles GET /api/users. Admin only.
func (s *Server) ListUsers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	perPage := c.QueryInt("per_page", defaultPerPage)
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	users, meta, err := s.userService.List(c.Context(), s.currentUser(c), page, perPage)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.RespondPage(c, "Users retrieved", users, meta)
}

// GetUser handles GET /api/users/:id
func (s *Server) GetUser(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.userService.Get(c.Context(), id)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "User retrieved", user)
}

// UpdateProfile handles PUT /api/users/profile
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var patch service.ProfilePatch
	if err := c.BodyParser(&patch); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body", nil))
	}

	user, err := s.userService.UpdateProfile(c.Context(), s.currentUser(c).ID, patch)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Profile updated", user)
}

// UploadAvatar handles POST /api/users/avatar
func (s *Server) UploadAvatar(c *fiber.Ctx) error {
	upload, err := s.readUpload(c)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	result, err := s.imageService.Save(*upload, "avatar")
	if err != nil {
		return models.RespondWithError(c, err)
	}

	url := result.URL
	if result.ThumbnailURL != "" {
		url = result.ThumbnailURL
	}
	user, err := s.userService.SetAvatar(c.Context(), s.currentUser(c).ID, url)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Avatar uploaded", fiber.Map{
		"user":   user,
		"upload": result,
	})
}
