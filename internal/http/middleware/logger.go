package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"pdfviewer/internal/logging"
)

// Logger writes one "http_request" entry per request once the handler chain
// has finished. 5xx responses are logged at warn level.
//
// Fields: request_id, method, path (no query string), status and latency in
// milliseconds.
func Logger(log *logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := statusOf(c, err)
		f := logging.Fields{
			"request_id": logging.RequestID(c.UserContext()),
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     status,
			"latency":    float64(time.Since(start).Microseconds()) / 1000,
		}
		if status >= fiber.StatusInternalServerError {
			log.Warn("http_request", f)
		} else {
			log.Info("http_request", f)
		}
		return err
	}
}

// statusOf reports the status the client will see, including errors that the
// app ErrorHandler has not written yet.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	if fe, ok := err.(*fiber.Error); ok {
		return fe.Code
	}
	return fiber.StatusInternalServerError
}
