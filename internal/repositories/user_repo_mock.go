package repositories

import (
	"context"
	"sync"
	"time"

	"productapi/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of UserRepository.
type MockUserRepository struct {
	users map[string]models.User // keyed by email
	mu    sync.Mutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]models.User),
	}
}

// Create adds a new user.
func (r *MockUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.Email]; ok {
		return ErrEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.Email] = *user
	return nil
}

// GetByEmail returns a user by email.
func (r *MockUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// VerifyOTP consumes a pending code under the repository lock.
func (r *MockUserRepository) VerifyOTP(_ context.Context, email, otp string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[email]
	if !ok || user.OTP == nil || *user.OTP != otp ||
		user.OTPExpiresAt == nil || !user.OTPExpiresAt.After(now) {
		return ErrOTPMismatch
	}
	user.IsVerified = true
	user.OTP = nil
	user.OTPExpiresAt = nil
	user.UpdatedAt = time.Now().UTC()
	r.users[email] = user
	return nil
}
