package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"resume-builder/internal/adapter/repository"
	"resume-builder/internal/logging"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"
)

// ApiError is the body of every non-2xx JSON answer.
type ApiError struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func statusFor(err error) (int, ApiError) {
	var ferr *fiber.Error
	var verr *model.ValidationError
	switch {
	case errors.As(err, &ferr):
		return ferr.Code, ApiError{Error: ferr.Message}
	case errors.As(err, &verr):
		return fiber.StatusUnprocessableEntity, ApiError{Error: "invalid resume document", Details: verr.Problems}
	case errors.Is(err, usecase.ErrInvalidInput):
		return fiber.StatusBadRequest, ApiError{Error: err.Error()}
	case errors.Is(err, repository.ErrNotFound):
		return fiber.StatusNotFound, ApiError{Error: "Resume not found"}
	case errors.Is(err, repository.ErrNoDatabase), errors.Is(err, usecase.ErrPDFUnavailable):
		return fiber.StatusServiceUnavailable, ApiError{Error: err.Error()}
	}
	return fiber.StatusInternalServerError, ApiError{Error: "internal server error"}
}

// ErrorHandler turns handler errors into ApiError answers. Server side
// failures are logged with the request id.
func ErrorHandler(log logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, body := statusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error(c.UserContext(), "request failed", "method", c.Method(), "path", c.Path(), "error", err)
		}
		return c.Status(code).JSON(body)
	}
}
