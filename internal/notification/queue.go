package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"productapi/pkg/rabbitmq"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Publisher puts a message body on a named queue.
type Publisher interface {
	Publish(queue string, body []byte) error
}

// QueueNotifier hands OTP messages to the broker; the mailer command
// delivers them.
type QueueNotifier struct {
	publisher Publisher
	queue     string
	log       *zap.Logger
}

// NewQueueNotifier creates a QueueNotifier publishing to queue.
func NewQueueNotifier(publisher Publisher, queue string, log *zap.Logger) *QueueNotifier {
	return &QueueNotifier{publisher: publisher, queue: queue, log: log}
}

func (n *QueueNotifier) SendOTP(_ context.Context, msg OTPMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal otp message: %w", err)
	}
	if err := n.publisher.Publish(n.queue, body); err != nil {
		return fmt.Errorf("queue otp for %s: %w", msg.Email, err)
	}
	n.log.Debug("otp queued", zap.String("email", msg.Email), zap.String("queue", n.queue))
	return nil
}

// DeliveryHandler decodes queued OTP messages and passes them to next.
// Undecodable messages and codes that expired by now() are dropped rather
// than redelivered.
func DeliveryHandler(next Notifier, now func() time.Time) rabbitmq.Handler {
	return func(ctx context.Context, d amqp.Delivery) error {
		var msg OTPMessage
		if err := json.Unmarshal(d.Body, &msg); err != nil {
			return errors.Join(rabbitmq.ErrDrop, fmt.Errorf("decode otp message: %w", err))
		}
		if msg.Email == "" || msg.Code == "" {
			return errors.Join(rabbitmq.ErrDrop, errors.New("otp message without email or code"))
		}
		if !msg.ExpiresAt.IsZero() && !msg.ExpiresAt.After(now()) {
			return errors.Join(rabbitmq.ErrDrop, fmt.Errorf("otp for %s expired at %s", msg.Email, msg.ExpiresAt.Format(time.RFC3339)))
		}
		return next.SendOTP(ctx, msg)
	}
}
