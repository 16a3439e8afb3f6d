package middleware

import (
	"errors"
	"strings"

	"productapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Locals keys set by AuthRequired.
const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	EmailKey  = "email"
)

var (
	ErrMissingToken   = errors.New("no token provided")
	ErrMalformedToken = errors.New("invalid token format")
)

// TokenValidator verifies a raw bearer token.
type TokenValidator interface {
	ValidateToken(tokenString string) (*services.Claims, error)
}

// Authenticate extracts the bearer token from an Authorization header value
// and verifies it. Failures are ErrMissingToken, ErrMalformedToken or
// services.ErrInvalidToken.
func Authenticate(header string, tokens TokenValidator) (*services.Claims, error) {
	if header == "" {
		return nil, ErrMissingToken
	}

	// Expected format: "Bearer <token>"
	parts := strings.Fields(header)
	if len(parts) < 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, ErrMalformedToken
	}

	claims, err := tokens.ValidateToken(parts[1])
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
func AuthRequired(tokens TokenValidator, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := Authenticate(c.Get(fiber.HeaderAuthorization), tokens)
		switch {
		case err == nil:
		case errors.Is(err, ErrMissingToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "No token provided"})
		case errors.Is(err, ErrMalformedToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token format"})
		default:
			log.Debug("jwt validation failed", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Invalid or expired token"})
		}

		c.Locals(ClaimsKey, claims)
		c.Locals(UserIDKey, claims.Subject)
		c.Locals(EmailKey, claims.Email)
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthRequired.
func ClaimsFrom(c *fiber.Ctx) (*services.Claims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*services.Claims)
	return claims, ok
}
