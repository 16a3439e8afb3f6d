package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validation.RequestValidator
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validation.NewRequestValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes behind limiter.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, limiter fiber.Handler) {
	authRoutes := router.Group("/auth", limiter)
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/verify-otp", h.HandleVerifyOTP)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,maxbytes=72"`
}

// VerifyOTPRequest represents the request body for OTP verification.
type VerifyOTPRequest struct {
	Email string  `json:"email"`
	OTP   OTPCode `json:"otp"`
}

// OTPCode accepts the code as a JSON string or a non-negative JSON integer.
type OTPCode string

func (o *OTPCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = OTPCode(s)
		return nil
	}
	if _, err := strconv.ParseUint(string(data), 10, 64); err != nil {
		return fmt.Errorf("otp must be a string or integer, got %s", data)
	}
	*o = OTPCode(data)
	return nil
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
}

// HandleRegister stores a pending account and emails its OTP.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			return err
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  verrs,
		})
	}

	if err := h.authService.Register(c.UserContext(), req.Email, req.Password); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already registered"})
		}
		return err
	}

	return c.JSON(fiber.Map{"message": "OTP sent to email"})
}

// HandleVerifyOTP marks an account verified.
func (h *AuthHandler) HandleVerifyOTP(c *fiber.Ctx) error {
	var req VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	err := h.authService.VerifyOTP(c.UserContext(), req.Email, string(req.OTP))
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Account verified successfully"})
	case errors.Is(err, services.ErrOTPFieldsRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email and OTP are required"})
	case errors.Is(err, services.ErrInvalidOrExpiredOTP):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid or expired OTP"})
	default:
		return err
	}
}

// HandleLogin handles user login and issues a JWT token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	token, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{
			"message": "Login successful",
			"token":   token,
		})
	case errors.Is(err, services.ErrAccountUnavailable):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Email not verified or does not exist"})
	case errors.Is(err, services.ErrIncorrectPassword):
		h.log.Info("login rejected", zap.String("reason", "incorrect password"))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Incorrect password"})
	default:
		return err
	}
}
