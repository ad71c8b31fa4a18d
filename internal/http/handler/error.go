package handler

import (
	"github.com/gofiber/fiber/v2"

	"pdfviewer/internal/logging"
)

// errorPayload is the body of every non-2xx JSON response.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError responds with a machine-readable code and a safe message.
// Internal error text never reaches the client.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: logging.RequestID(c.UserContext()),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

func internalError(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

var fallbackErrors = map[int]errorEnvelope{
	fiber.StatusBadRequest:            {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:              {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {"FILE_TOO_LARGE", "request body too large"},
	fiber.StatusRequestTimeout:        {"REQUEST_TIMEOUT", "request timed out"},
}

// ErrorHandler maps errors that escape handlers, such as unknown routes or
// oversized bodies, onto the standard error payload.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}
		if env, ok := fallbackErrors[status]; ok {
			return writeError(c, status, env.Code, env.Message)
		}
		return writeError(c, status, "INTERNAL_ERROR", "internal server error")
	}
}
