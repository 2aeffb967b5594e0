package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"

	"filehub/internal/domain"
	"filehub/internal/http/middleware"
	"filehub/internal/service"
	"filehub/internal/storage"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// mapServiceError translates domain, service and storage errors into the
// standardized error response. Unrecognized errors surface as 500 without
// leaking details.
func mapServiceError(c *fiber.Ctx, err error) error {
	var (
		quotaErr    *service.QuotaError
		capErr      *storage.CapacityError
		stateErr    *domain.InvalidStateError
		transErr    *domain.TransitionError
		deniedErr   *service.AccessDeniedError
		validErr    *storage.ValidationError
		minioErr    minio.ErrorResponse
	)
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, storage.ErrUploadNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "id is required")
	case errors.As(err, &quotaErr), errors.As(err, &capErr):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "QUOTA_EXCEEDED", err.Error())
	case errors.As(err, &stateErr):
		return writeError(c, fiber.StatusConflict, "STATE_CONFLICT",
			fmt.Sprintf("file status is %s", stateErr.Current))
	case errors.As(err, &transErr):
		return writeError(c, fiber.StatusConflict, "STATE_CONFLICT",
			fmt.Sprintf("file status is %s", transErr.From))
	case errors.As(err, &deniedErr):
		return writeError(c, fiber.StatusForbidden, "ACCESS_DENIED", "access denied")
	case errors.As(err, &validErr), isDomainValidation(err):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.As(err, &minioErr):
		return writeError(c, fiber.StatusBadGateway, "STORE_ERROR", "object store request failed")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func isDomainValidation(err error) bool {
	return errors.Is(err, domain.ErrInvalidObjectKey) ||
		errors.Is(err, domain.ErrInvalidFilename) ||
		errors.Is(err, domain.ErrInvalidUploadID) ||
		errors.Is(err, domain.ErrInvalidETag) ||
		errors.Is(err, domain.ErrInvalidFileSize) ||
		errors.Is(err, domain.ErrInvalidStatus)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
