package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"resume-builder/internal/logging"
)

// RequestLogger attaches the request id to the user context and logs one
// line per request. Errors are rendered here so the logged status is final.
func RequestLogger(log logging.Logger, onError fiber.ErrorHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid := c.GetRespHeader(fiber.HeaderXRequestID)
		c.SetUserContext(logging.WithRequestID(c.UserContext(), rid))

		if err := c.Next(); err != nil {
			if herr := onError(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		args := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if status >= fiber.StatusInternalServerError {
			log.Warn(c.UserContext(), "request", args...)
		} else {
			log.Info(c.UserContext(), "request", args...)
		}
		return nil
	}
}
