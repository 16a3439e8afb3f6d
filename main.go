package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"productapi/internal/config"
	"productapi/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	envFile string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "productapi",
		Short:         "Product catalog API with email OTP sign-up",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithConfig(cmd.Context(), opts, runServe)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "path to env file (default: optional ./.env)")

	cmd.AddCommand(
		newServeCommand(opts),
		newMailerCommand(opts),
	)
	return cmd
}

// runWithConfig loads configuration and the logger, then hands both to run.
func runWithConfig(ctx context.Context, opts *options, run func(context.Context, *config.Config, *zap.Logger) error) error {
	var envFiles []string
	if opts.envFile != "" {
		envFiles = append(envFiles, opts.envFile)
	}
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	return run(ctx, cfg, log)
}
