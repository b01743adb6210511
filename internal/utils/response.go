package utils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the common error payload shape.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Details map[string][]string `json:"details,omitempty"`
}

// SendError sends an error JSON response with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	if message == "" {
		message = "error"
	}

	return c.Status(status).JSON(ErrorResponse{Error: message})
}

// SendValidationError sends a 400 with per-field details when the error is
// a validator.ValidationErrors, falling back to a plain message otherwise.
func SendValidationError(c *fiber.Ctx, message string, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return SendError(c, fiber.StatusBadRequest, message)
	}

	details := make(map[string][]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		field := fieldErr.Field()
		details[field] = append(details[field], fieldErr.Tag())
	}

	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   message,
		Details: details,
	})
}
