package models

import (
	"errors"
	"math"

	"github.com/gofiber/fiber/v2"
)

// Meta is pagination metadata returned with list responses.
type Meta struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewMeta computes pagination metadata from the post-filter total.
func NewMeta(page, perPage int, total int64) Meta {
	return Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: int(math.Ceil(float64(total) / float64(perPage))),
	}
}

// Envelope is the uniform response body for every endpoint.
type Envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message,omitempty"`
	Data    any                 `json:"data,omitempty"`
	Meta    *Meta               `json:"meta,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Respond writes a success envelope.
func Respond(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondPage writes a success envelope with pagination metadata.
func RespondPage(c *fiber.Ctx, message string, data any, meta Meta) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    &meta,
	})
}

// RespondWithError renders err into the failure envelope. AppError
// values carry their own HTTP status and field errors; anything else is
// treated as an internal error.
func RespondWithError(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		appErr = NewInternalError(err)
	}
	return c.Status(appErr.Status).JSON(Envelope{
		Success: false,
		Message: appErr.Message,
		Errors:  appErr.Fields,
	})
}
