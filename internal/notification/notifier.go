// Package notification delivers one-time passwords to users.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"
)

// OTPMessage is what a Notifier needs to deliver a verification code.
type OTPMessage struct {
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Notifier delivers OTP codes to their owners.
type Notifier interface {
	SendOTP(ctx context.Context, msg OTPMessage) error
}

// LogNotifier writes the issued code to the log instead of sending mail.
// Meant for local development only.
type LogNotifier struct {
	log *zap.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendOTP(_ context.Context, msg OTPMessage) error {
	n.log.Info("otp issued",
		zap.String("email", msg.Email),
		zap.String("otp", msg.Code),
		zap.Time("expires_at", msg.ExpiresAt),
	)
	return nil
}

const otpSubject = "Your OTP Code"

var otpTemplate = template.Must(template.New("otp").Parse(`
<div style="font-family: Arial, sans-serif; padding: 20px; background-color: #f9f9f9;">
    <div style="max-width: 500px; margin: auto; background-color: #ffffff; padding: 30px; border-radius: 8px;">
        <h2 style="text-align: center; color: #333;">OTP Verification</h2>
        <p style="font-size: 16px; color: #555;">Hello,</p>
        <p style="font-size: 16px; color: #555;">Your OTP code is:</p>
        <div style="text-align: center; margin: 20px 0;">
            <span style="font-size: 32px; color: #007BFF; font-weight: bold;">{{.Code}}</span>
        </div>
        <p style="font-size: 14px; color: #888;">This OTP is valid for the next {{.Minutes}} minutes. Do not share it with anyone.</p>
        <p style="font-size: 14px; color: #888;">If you did not request this, please ignore this email.</p>
        <hr style="margin: 20px 0;" />
        <p style="font-size: 12px; color: #ccc; text-align: center;">&copy; {{.Year}}</p>
    </div>
</div>
`))

// RenderOTPEmail renders the HTML body for msg as seen at now.
func RenderOTPEmail(msg OTPMessage, now time.Time) (string, error) {
	minutes := int(msg.ExpiresAt.Sub(now).Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}

	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, struct {
		Code    string
		Minutes int
		Year    int
	}{Code: msg.Code, Minutes: minutes, Year: now.Year()})
	if err != nil {
		return "", fmt.Errorf("render otp email: %w", err)
	}
	return buf.String(), nil
}
