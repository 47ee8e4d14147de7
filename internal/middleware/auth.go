package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/arqut/arqut-registry/internal/apikey"
)

// apiError matches the error body of the API layer
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorUnauthorizedResp returns a 401 Unauthorized error response
func ErrorUnauthorizedResp(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(&apiError{
		Code:    fiber.StatusUnauthorized,
		Message: message,
	})
}

// APIKeyAuth creates a middleware that validates API key authentication
func APIKeyAuth(apiKeyHash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return ErrorUnauthorizedResp(c, "Missing Authorization header")
		}

		// Check if it's Bearer token
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return ErrorUnauthorizedResp(c, "Invalid Authorization header format. Expected: Bearer <api_key>")
		}

		providedKey := parts[1]

		// Validate API key format
		if !apikey.ValidateFormat(providedKey) {
			return ErrorUnauthorizedResp(c, "Invalid API key format")
		}

		// Validate against hash
		if !apikey.Validate(providedKey, apiKeyHash) {
			return ErrorUnauthorizedResp(c, "Invalid API key")
		}

		// API key is valid, continue
		return c.Next()
	}
}
