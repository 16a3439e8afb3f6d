package main

import (
	"context"
	"errors"
	"time"

	"productapi/internal/config"
	"productapi/internal/notification"
	"productapi/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const mailerRetryDelay = 5 * time.Second

func newMailerCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "mailer",
		Short: "Deliver queued OTP emails over SMTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithConfig(cmd.Context(), opts, runMailer)
		},
	}
}

func runMailer(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if cfg.SMTP.User == "" || cfg.SMTP.Password == "" {
		return errors.New("EMAIL_USER and EMAIL_PASS are required for the mailer")
	}

	client, err := rabbitmq.NewClient(rabbitmq.Config{
		URL:        cfg.RabbitMQ.URL,
		Queues:     []string{cfg.RabbitMQ.Queue},
		RetryDelay: mailerRetryDelay,
	}, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn("close rabbitmq", zap.Error(err))
		}
	}()

	smtp := notification.NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.FromName, log)
	return client.Consume(ctx, cfg.RabbitMQ.Queue, notification.DeliveryHandler(smtp, time.Now))
}
