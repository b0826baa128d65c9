package server

import (
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

const categoriesCacheKey = "categories:all"

// ListCategories handles GET /api/categories. The list changes rarely so it
// is served cache-aside with a short TTL.
func (s *Server) ListCategories(c *fiber.Ctx) error {
	var categories []*models.Category
	err := cache.Aside(c.Context(), categoriesCacheKey, &categories, 5*time.Minute, func() error {
		fetched, err := s.categoryRepo.List(c.Context())
		if err != nil {
			return err
		}
		categories = fetched
		return nil
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, "Categories retrieved", categories)
}
