// Package middleware provides request processing middleware for the fiber
// app.
package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request. Server errors are logged at
// error level, rejected requests at warn and the rest at info.
func RequestLogger(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			// Let the app's error handler write the response so the
			// logged status is the one the client sees.
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		entry := log.WithFields(logrus.Fields{
			"method":  c.Method(),
			"path":    c.Path(),
			"status":  status,
			"latency": time.Since(start).String(),
			"ip":      c.IP(),
		})
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			entry = entry.WithField("requestId", id)
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			entry.Error("request failed")
		case status >= fiber.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
		return nil
	}
}
