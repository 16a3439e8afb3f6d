// Package app assembles the HTTP application from its collaborators.
package app

import (
	"context"
	"time"

	"productapi/internal/config"
	"productapi/internal/handlers"
	"productapi/internal/middleware"
	"productapi/internal/notification"
	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Deps are the collaborators the HTTP layer is built on.
type Deps struct {
	Products repositories.ProductRepository
	Users    repositories.UserRepository
	Notifier notification.Notifier
	// Ping checks the store for /health. Nil means always healthy.
	Ping func(ctx context.Context) error
	Log  *zap.Logger
}

// New builds the Fiber app with every route mounted under cfg.APIPrefix.
func New(cfg *config.Config, deps Deps, authOpts ...services.AuthOption) *fiber.App {
	log := deps.Log

	tokens := services.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if cfg.Auth.BcryptRounds > 0 {
		authOpts = append([]services.AuthOption{services.WithBcryptCost(cfg.Auth.BcryptRounds)}, authOpts...)
	}
	authService := services.NewAuthService(deps.Users, tokens, deps.Notifier, cfg.Auth.OTPTTL, log, authOpts...)
	productService := services.NewProductService(deps.Products)

	app := fiber.New(fiber.Config{
		AppName:               "productapi",
		Immutable:             true,
		DisableStartupMessage: true,
		ErrorHandler:          handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger(log))

	app.Get("/health", healthHandler(deps.Ping, log))

	api := app.Group(cfg.APIPrefix)
	limiter := middleware.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst)
	handlers.NewAuthHandler(authService, log).RegisterRoutes(api, limiter.Handler())
	handlers.NewProductHandler(productService, validation.NewProductValidator()).
		RegisterRoutes(api, middleware.AuthRequired(tokens, log))

	return app
}

func healthHandler(ping func(ctx context.Context) error, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				log.Error("health check failed", zap.Error(err))
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unavailable",
				})
			}
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}
