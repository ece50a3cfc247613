package utils

import "github.com/gofiber/fiber/v2"

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Respond sends a JSON response with the specified status code.
func Respond(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// Success sends a successful JSON response.
func Success(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusOK, data)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return Respond(c, fiber.StatusCreated, data)
}

// Error sends a JSON error response carrying a machine readable code.
func Error(c *fiber.Ctx, status int, code, message string) error {
	return Respond(c, status, ErrorBody{Error: message, Code: code})
}

// ValidationFailed sends a 400 listing every rejected field.
func ValidationFailed(c *fiber.Ctx, details []string) error {
	return Respond(c, fiber.StatusBadRequest, ErrorBody{
		Error:   "validation failed",
		Code:    "VALIDATION_FAILED",
		Details: details,
	})
}

// InternalError sends a JSON error response with status 500.
func InternalError(c *fiber.Ctx, message string) error {
	return Respond(c, fiber.StatusInternalServerError, ErrorBody{Error: message, Code: "INTERNAL"})
}
