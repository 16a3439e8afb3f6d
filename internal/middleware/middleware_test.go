package middleware_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"productapi/internal/middleware"
	"productapi/internal/models"
	"productapi/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test_jwt_secret"

func issue(t *testing.T, secret string, ttl time.Duration) string {
	t.Helper()
	token, err := services.NewTokenManager(secret, ttl).Issue(&models.User{ID: "u-1", Email: "a@b.com"})
	require.NoError(t, err)
	return token
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestAuthenticate(t *testing.T) {
	tokens := services.NewTokenManager(testSecret, time.Hour)
	valid := issue(t, testSecret, time.Hour)

	_, err := middleware.Authenticate("", tokens)
	assert.ErrorIs(t, err, middleware.ErrMissingToken)

	for _, header := range []string{"Bearer", "Bearer ", "Token " + valid, valid} {
		_, err = middleware.Authenticate(header, tokens)
		assert.ErrorIs(t, err, middleware.ErrMalformedToken, "header %q", header)
	}

	_, err = middleware.Authenticate("Bearer garbage", tokens)
	assert.ErrorIs(t, err, services.ErrInvalidToken)

	claims, err := middleware.Authenticate("bearer "+valid, tokens)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestAuthRequired(t *testing.T) {
	tokens := services.NewTokenManager(testSecret, time.Hour)

	app := fiber.New()
	app.Post("/protected", middleware.AuthRequired(tokens, zap.NewNop()), func(c *fiber.Ctx) error {
		claims, ok := middleware.ClaimsFrom(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.JSON(fiber.Map{
			"sub":     claims.Subject,
			"user_id": c.Locals(middleware.UserIDKey),
			"email":   c.Locals(middleware.EmailKey),
		})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantMsg    string
	}{
		{"no header", "", fiber.StatusUnauthorized, "No token provided"},
		{"scheme only", "Bearer", fiber.StatusUnauthorized, "Invalid token format"},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized, "Invalid token format"},
		{"bad signature", "Bearer " + issue(t, "another_secret", time.Hour), fiber.StatusForbidden, "Invalid or expired token"},
		{"expired", "Bearer " + issue(t, testSecret, -time.Minute), fiber.StatusForbidden, "Invalid or expired token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/protected", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantMsg, decode(t, resp.Body)["message"])
		})
	}

	req := httptest.NewRequest(fiber.MethodPost, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+issue(t, testSecret, time.Hour))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "u-1", body["sub"])
	assert.Equal(t, "u-1", body["user_id"])
	assert.Equal(t, "a@b.com", body["email"])
}

func TestRateLimiter(t *testing.T) {
	app := fiber.New()
	app.Post("/auth", middleware.NewRateLimiter(0.001, 2).Handler(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	var statuses []int
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/auth", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	assert.Equal(t, []int{fiber.StatusNoContent, fiber.StatusNoContent, fiber.StatusTooManyRequests}, statuses)
}

func TestRateLimiter_Disabled(t *testing.T) {
	app := fiber.New()
	app.Post("/auth", middleware.NewRateLimiter(0, 0).Handler(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/auth", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	}
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	app := fiber.New()
	app.Use(requestid.New(), middleware.RequestLogger(zap.New(core)))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error { return fiber.ErrNotFound })

	_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/missing", nil))
	require.NoError(t, err)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/ok", first["path"])
	assert.EqualValues(t, 200, first["status"])
	assert.NotEmpty(t, first["request_id"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.EqualValues(t, 404, entries[1].ContextMap()["status"])
}
