package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"productapi/internal/models"
	"productapi/internal/notification"
	"productapi/internal/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrOTPFieldsRequired   = errors.New("email and otp are required")
	ErrInvalidOrExpiredOTP = errors.New("invalid or expired otp")
	// ErrAccountUnavailable does not say whether the account is missing or
	// merely unverified.
	ErrAccountUnavailable = errors.New("email not verified or does not exist")
	ErrIncorrectPassword  = errors.New("incorrect password")
)

const (
	otpMin = 100000
	otpMax = 999999
)

// AuthService handles registration, OTP verification and login.
type AuthService struct {
	userRepo   repositories.UserRepository
	tokens     *TokenManager
	notifier   notification.Notifier
	otpTTL     time.Duration
	bcryptCost int
	now        func() time.Time
	newOTP     func() (string, error)
	log        *zap.Logger
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithClock replaces the wall clock used for OTP expiry.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

// WithOTPGenerator replaces the random OTP source.
func WithOTPGenerator(gen func() (string, error)) AuthOption {
	return func(s *AuthService) { s.newOTP = gen }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.bcryptCost = cost }
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, tokens *TokenManager, notifier notification.Notifier, otpTTL time.Duration, log *zap.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		notifier:   notifier,
		otpTTL:     otpTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		newOTP:     GenerateOTP,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateOTP draws a six digit code uniformly from [100000, 999999].
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register stores an unverified user with a fresh OTP and sends the code
// to the user's email. The code itself is never returned.
func (s *AuthService) Register(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.newOTP()
	if err != nil {
		return err
	}
	expiresAt := s.now().UTC().Add(s.otpTTL)

	user := &models.User{
		Email:        email,
		Password:     string(hashedPassword),
		OTP:          &code,
		OTPExpiresAt: &expiresAt,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return err
		}
		return fmt.Errorf("failed to register user: %w", err)
	}

	err = s.notifier.SendOTP(ctx, notification.OTPMessage{
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to send otp to %s: %w", email, err)
	}

	s.log.Info("user registered, otp dispatched", zap.String("user_id", user.ID), zap.Time("otp_expires_at", expiresAt))
	return nil
}

// VerifyOTP confirms the email owner. A code works once and only before
// it expires.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) error {
	email = normalizeEmail(email)
	otp = strings.TrimSpace(otp)
	if email == "" || otp == "" {
		return ErrOTPFieldsRequired
	}

	if err := s.userRepo.VerifyOTP(ctx, email, otp, s.now().UTC()); err != nil {
		if errors.Is(err, repositories.ErrOTPMismatch) {
			return ErrInvalidOrExpiredOTP
		}
		return fmt.Errorf("failed to verify otp: %w", err)
	}
	return nil
}

// Login checks the password of a verified user and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrAccountUnavailable
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if !user.IsVerified {
		return "", ErrAccountUnavailable
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrIncorrectPassword
	}

	return s.tokens.Issue(user)
}
