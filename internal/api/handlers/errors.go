package handlers

import (
	"errors"

	"octofit/internal/logger"
	"octofit/internal/models"
	"octofit/internal/repository"
	"octofit/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Limits bounds the limit query parameter
type Limits struct {
	Default int
	Max     int
}

func (l Limits) resolve(c *fiber.Ctx) int {
	return service.ResolveLimit(c.Query("limit"), l.Default, l.Max)
}

// statusFor maps an error onto an HTTP status and a short label
func statusFor(err error) (int, string) {
	var (
		verr     *service.ValidationError
		fieldErr validator.ValidationErrors
		fiberErr *fiber.Error
	)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound, "Not found"
	case errors.As(err, &verr), errors.Is(err, repository.ErrUnknownField):
		return fiber.StatusBadRequest, "Invalid request"
	case errors.As(err, &fieldErr):
		return fiber.StatusBadRequest, "Validation failed"
	case errors.Is(err, repository.ErrDuplicate):
		return fiber.StatusConflict, "Conflict"
	case errors.As(err, &fiberErr):
		return fiberErr.Code, "Request failed"
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

// respondError writes err as an ErrorResponse with the mapped status
func respondError(c *fiber.Ctx, err error) error {
	code, label := statusFor(err)
	if code >= fiber.StatusInternalServerError {
		logger.Error("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(models.ErrorResponse{
		Error:   label,
		Message: err.Error(),
	})
}

// ErrorHandler is the fiber error handler for errors returned by handlers
// and middleware.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return respondError(c, err)
}

func parseBody(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return &service.ValidationError{Field: "body", Message: "invalid request body: " + err.Error()}
	}
	return nil
}
