package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10*time.Minute, cfg.Auth.OTPTTL)
	assert.Equal(t, NotifierLog, cfg.Notifier.Driver)
	assert.Equal(t, "otp_email_queue", cfg.RabbitMQ.Queue)
	assert.NotEmpty(t, cfg.Auth.JWTSecret, "development falls back to a local secret")
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("PORT", "8081")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:products.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_IN", "2h")
	t.Setenv("NOTIFIER", "smtp")
	t.Setenv("EMAIL_USER", "mailer@example.com")
	t.Setenv("EMAIL_PASS", "app-password")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8081", cfg.Addr())
	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "file:products.db", cfg.DB.URL)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "mailer@example.com", cfg.SMTP.User)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_RequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET is required")
}

func TestLoad_RejectsLogNotifierInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("NOTIFIER", "")
	require.NoError(t, os.Unsetenv("NOTIFIER"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `NOTIFIER "log"`)

	t.Setenv("NOTIFIER", "rabbitmq")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, NotifierRabbitMQ, cfg.Notifier.Driver)
}

func TestLoad_RejectsUnknownDrivers(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_DRIVER", "mongo")
	t.Setenv("NOTIFIER", "pigeon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported DB_DRIVER "mongo"`)
	assert.Contains(t, err.Error(), `unsupported NOTIFIER "pigeon"`)
}

func TestLoad_BadLifetime(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_EXPIRES_IN", "forever")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse JWT_EXPIRES_IN")
}

func TestParseLifetime(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "1d", want: 24 * time.Hour},
		{in: "7d", want: 7 * 24 * time.Hour},
		{in: "90m", want: 90 * time.Minute},
		{in: " 12h ", want: 12 * time.Hour},
		{in: "xd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLifetime(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OTP_QUEUE=from_file\n"), 0o600))
	t.Setenv("APP_ENV", "development")
	// Registers cleanup; the file must then supply the value.
	t.Setenv("OTP_QUEUE", "")
	require.NoError(t, os.Unsetenv("OTP_QUEUE"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_file", cfg.RabbitMQ.Queue)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
