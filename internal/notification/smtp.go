package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender is the part of *gomail.Dialer the SMTP notifier uses.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier emails the OTP through an SMTP relay.
type SMTPNotifier struct {
	sender   Sender
	from     string
	fromName string
	now      func() time.Time
	log      *zap.Logger
}

// NewSMTPNotifier creates an SMTPNotifier authenticating as user.
func NewSMTPNotifier(host string, port int, user, password, fromName string, log *zap.Logger) *SMTPNotifier {
	return NewSMTPNotifierWithSender(gomail.NewDialer(host, port, user, password), user, fromName, log)
}

// NewSMTPNotifierWithSender creates an SMTPNotifier over an existing sender.
func NewSMTPNotifierWithSender(sender Sender, from, fromName string, log *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		sender:   sender,
		from:     from,
		fromName: fromName,
		now:      time.Now,
		log:      log,
	}
}

func (n *SMTPNotifier) SendOTP(ctx context.Context, msg OTPMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := RenderOTPEmail(msg, n.now())
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.from, n.fromName)
	m.SetHeader("To", msg.Email)
	m.SetHeader("Subject", otpSubject)
	m.SetBody("text/html", body)

	if err := n.sender.DialAndSend(m); err != nil {
		return fmt.Errorf("send otp email to %s: %w", msg.Email, err)
	}
	n.log.Info("otp email sent", zap.String("email", msg.Email))
	return nil
}
