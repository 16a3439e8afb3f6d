package repositories

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSlugTaken       = errors.New("slug already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	// ErrOTPMismatch covers a wrong email, a wrong code, an expired code and
	// a code that was already consumed.
	ErrOTPMismatch = errors.New("no pending otp matches")
)
