package repositories

import (
	"context"
	"time"

	"productapi/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// VerifyOTP marks the user verified and clears the pending code in one
	// statement, provided email and otp match and the code expires after now.
	VerifyOTP(ctx context.Context, email, otp string, now time.Time) error
}
