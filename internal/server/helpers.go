package server

import (
	"errors"
	"strings"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already committed the HTTP
// response. Handlers must return nil after seeing it so Fiber's
// ErrorHandler does not overwrite the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// parseID extracts a route parameter as a positive uint. On failure it
// writes a 400 response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c,
			models.NewValidationError("Invalid "+humanizeParam(param), nil))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a readable label,
// e.g. "id" to "ID" and "categoryId" to "category ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		return strings.ToLower(param[:len(param)-2]) + " ID"
	}
	return param
}

// parseBlogQuery reads the shared list query parameters. per_page defaults
// when absent but an explicit non-positive value is passed through for the
// service to reject.
func parseBlogQuery(c *fiber.Ctx) models.BlogQuery {
	q := models.BlogQuery{
		Page:      c.QueryInt("page", 1),
		PerPage:   c.QueryInt("per_page", defaultPerPage),
		Search:    strings.TrimSpace(c.Query("search")),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
		Status:    c.Query("status"),
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
	if raw := c.QueryInt("category_id", 0); raw > 0 {
		id := uint(raw)
		q.CategoryID = &id
	}
	if raw := c.QueryInt("author_id", 0); raw > 0 {
		id := uint(raw)
		q.AuthorID = &id
	}
	return q
}
