package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  request_timeout: 5s
database:
  url: postgres://hms@db/hms
jwt:
  secret: file-secret
  expiry_minutes: 15
cors:
  allow_origins: ["https://clinic.example"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "postgres://hms@db/hms", cfg.Database.URL)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "file-secret", cfg.JWT.Secret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.Expiry())
	assert.Equal(t, []string{"https://clinic.example"}, cfg.CORS.AllowOrigins)
	assert.Equal(t, 12, cfg.Security.BcryptCost)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "jwt:\n  secret: file-secret\n")

	t.Setenv("HMS_JWT_SECRET", "env-secret")
	t.Setenv("HMS_SERVER_PORT", "7070")
	t.Setenv("HMS_DATABASE_MAX_OPEN_CONNS", "3")
	t.Setenv("HMS_RATE_LIMIT_LOGIN_BURST", "9")
	t.Setenv("HMS_REDIS_URL", "redis://cache:6379/0")
	t.Setenv("HMS_CORS_ALLOW_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.JWT.Secret)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Database.MaxOpenConns)
	assert.Equal(t, 9, cfg.RateLimit.LoginBurst)
	assert.Equal(t, "redis://cache:6379/0", cfg.Redis.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowOrigins)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("HMS_JWT_SECRET", "env-only")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 8080\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret is required")
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:    ServerConfig{Port: 8080},
			JWT:       JWTConfig{Secret: "s", ExpiryMinutes: 60},
			RateLimit: RateLimitConfig{LoginRPS: 1, LoginBurst: 5},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "blank secret", mutate: func(c *Config) { c.JWT.Secret = "  " }, wantErr: "jwt.secret"},
		{name: "zero expiry", mutate: func(c *Config) { c.JWT.ExpiryMinutes = 0 }, wantErr: "jwt.expiry_minutes"},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "server.port"},
		{name: "no login burst", mutate: func(c *Config) { c.RateLimit.LoginBurst = 0 }, wantErr: "rate_limit"},
		{name: "half bootstrap", mutate: func(c *Config) { c.Bootstrap.AdminUsername = "root" }, wantErr: "bootstrap"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
