package models

import "time"

// User is an account that can obtain bearer tokens once its email is verified.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password     string     `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	IsVerified   bool       `json:"is_verified" gorm:"column:is_verified;not null"`
	OTP          *string    `json:"-" gorm:"column:otp;type:varchar(6)"`
	OTPExpiresAt *time.Time `json:"-" gorm:"column:otp_expires_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
