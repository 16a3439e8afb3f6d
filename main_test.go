package main

import (
	"context"
	"testing"

	"productapi/internal/config"
	"productapi/internal/notification"
	"productapi/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand()

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "mailer"}, names)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("env-file"))
}

func TestRootCommand_BadEnvFile(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"serve", "--env-file", t.TempDir() + "/missing.env"})

	err := cmd.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "load config")
}

func TestBuildDeps_Memory(t *testing.T) {
	cfg := &config.Config{
		DB:       config.DBConfig{Driver: config.DriverMemory},
		Notifier: config.NotifierConfig{Driver: config.NotifierLog},
	}

	deps, closeAll, err := buildDeps(cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeAll()

	assert.IsType(t, &repositories.MockProductRepository{}, deps.Products)
	assert.IsType(t, &repositories.MockUserRepository{}, deps.Users)
	assert.IsType(t, &notification.LogNotifier{}, deps.Notifier)
	assert.Nil(t, deps.Ping)
}

func TestBuildDeps_SQLite(t *testing.T) {
	cfg := &config.Config{
		DB: config.DBConfig{
			Driver:      config.DriverSQLite,
			URL:         "file:maintest?mode=memory&cache=shared",
			AutoMigrate: true,
		},
		Notifier: config.NotifierConfig{Driver: config.NotifierSMTP},
		SMTP:     config.SMTPConfig{Host: "localhost", Port: 2525, User: "u", Password: "p"},
	}

	deps, closeAll, err := buildDeps(cfg, zap.NewNop())
	require.NoError(t, err)
	defer closeAll()

	assert.IsType(t, &repositories.GORMProductRepository{}, deps.Products)
	assert.IsType(t, &notification.SMTPNotifier{}, deps.Notifier)
	require.NotNil(t, deps.Ping)
	assert.NoError(t, deps.Ping(context.Background()))
}

func TestBuildNotifier_Unsupported(t *testing.T) {
	_, _, err := buildNotifier(&config.Config{Notifier: config.NotifierConfig{Driver: "pigeon"}}, zap.NewNop())
	assert.Error(t, err)
}

func TestRunMailer_RequiresCredentials(t *testing.T) {
	err := runMailer(context.Background(), &config.Config{}, zap.NewNop())
	assert.ErrorContains(t, err, "EMAIL_USER")
}
