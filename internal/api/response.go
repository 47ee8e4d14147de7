package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/arqut/arqut-registry/internal/storage"
)

// ApiError is the body of every non-2xx response. Successful responses carry
// the entity itself, without an envelope, so clients can decode by status
// code alone.
type ApiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorResp returns an error response with the given status code
func ErrorResp(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(&ApiError{
		Code:    code,
		Message: message,
	})
}

// ErrorNotFoundResp returns a 404 Not Found error response
func ErrorNotFoundResp(c *fiber.Ctx, message string) error {
	return ErrorResp(c, fiber.StatusNotFound, message)
}

// ErrorConflictResp returns a 409 Conflict error response
func ErrorConflictResp(c *fiber.Ctx, message string) error {
	return ErrorResp(c, fiber.StatusConflict, message)
}

// ErrorBadRequestResp returns a 400 Bad Request error response
func ErrorBadRequestResp(c *fiber.Ctx, message string) error {
	return ErrorResp(c, fiber.StatusBadRequest, message)
}

// ErrorInternalServerErrorResp returns a 500 Internal Server Error response
func ErrorInternalServerErrorResp(c *fiber.Ctx, message string) error {
	return ErrorResp(c, fiber.StatusInternalServerError, message)
}

// storageErrorResp maps storage sentinel errors onto the status contract.
func storageErrorResp(c *fiber.Ctx, err error, what string) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrorNotFoundResp(c, what+" not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		return ErrorConflictResp(c, what+" already exists")
	default:
		return ErrorInternalServerErrorResp(c, "failed to access "+what)
	}
}
