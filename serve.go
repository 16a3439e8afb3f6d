package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"productapi/internal/app"
	"productapi/internal/config"
	"productapi/internal/database"
	"productapi/internal/notification"
	"productapi/internal/repositories"
	"productapi/pkg/rabbitmq"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithConfig(cmd.Context(), opts, runServe)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	deps, closeAll, err := buildDeps(cfg, log)
	if err != nil {
		return err
	}
	defer closeAll()

	application := app.New(cfg, deps)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.Addr()), zap.String("env", cfg.Env))
		serveErr <- application.Listen(cfg.Addr())
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := application.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server gracefully stopped")
	return nil
}

// buildDeps opens the store and the notifier. The returned func releases
// whatever was opened.
func buildDeps(cfg *config.Config, log *zap.Logger) (app.Deps, func(), error) {
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("close failed", zap.Error(err))
			}
		}
	}

	deps := app.Deps{Log: log}
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn("using in-memory store, data is lost on exit")
		deps.Products = repositories.NewMockProductRepository()
		deps.Users = repositories.NewMockUserRepository()
	} else {
		db, err := database.Open(cfg.DB, log)
		if err != nil {
			return deps, closeAll, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return deps, closeAll, err
		}
		closers = append(closers, sqlDB.Close)
		deps.Products = repositories.NewGORMProductRepository(db)
		deps.Users = repositories.NewGORMUserRepository(db)
		deps.Ping = database.Pinger(db)
	}

	notifier, closeNotifier, err := buildNotifier(cfg, log)
	if err != nil {
		closeAll()
		return deps, func() {}, err
	}
	if closeNotifier != nil {
		closers = append(closers, closeNotifier)
	}
	deps.Notifier = notifier
	return deps, closeAll, nil
}

func buildNotifier(cfg *config.Config, log *zap.Logger) (notification.Notifier, func() error, error) {
	switch cfg.Notifier.Driver {
	case config.NotifierLog:
		return notification.NewLogNotifier(log), nil, nil
	case config.NotifierSMTP:
		return notification.NewSMTPNotifier(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.FromName, log), nil, nil
	case config.NotifierRabbitMQ:
		client, err := rabbitmq.NewClient(rabbitmq.Config{
			URL:    cfg.RabbitMQ.URL,
			Queues: []string{cfg.RabbitMQ.Queue},
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return notification.NewQueueNotifier(client, cfg.RabbitMQ.Queue, log), client.Close, nil
	default:
		return nil, nil, errors.New("unsupported notifier " + cfg.Notifier.Driver)
	}
}
