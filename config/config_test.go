package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kochabx/authsvc/errors"
)

type server struct {
	Addr    string        `json:"addr" mapstructure:"addr" default:"127.0.0.1:3000"`
	Timeout time.Duration `json:"timeout" mapstructure:"timeout" default:"5s"`
}

type jwtConfig struct {
	Secret string `json:"secret" mapstructure:"secret" validate:"required"`
	TTL    int64  `json:"ttl" mapstructure:"ttl" default:"3600"`
}

type mock struct {
	Server  server    `json:"server" mapstructure:"server"`
	JWT     jwtConfig `json:"jwt" mapstructure:"jwt"`
	Enabled bool      `json:"enabled" mapstructure:"enabled"`
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
server:
  timeout: 10s
jwt:
  secret: from-file
`)

	cfg := new(mock)
	c := New(cfg, WithFile("config.yaml", dir), WithWatch(false))
	require.NoError(t, c.Load())

	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "from-file", cfg.JWT.Secret)
	assert.Equal(t, int64(3600), cfg.JWT.TTL)
	assert.NoError(t, c.Watch())
}

func TestEnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
server:
  addr: 0.0.0.0:8080
jwt:
  secret: from-file
`)
	t.Setenv("SERVER_ADDR", "127.0.0.1:9090")
	t.Setenv("JWT_SECRET_OVERRIDE", "from-env")

	cfg := new(mock)
	c := New(cfg,
		WithFile("config.yaml", dir),
		WithEnvBindings(map[string]string{"jwt.secret": "JWT_SECRET_OVERRIDE"}),
	)
	require.NoError(t, c.Load())

	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
}

func TestOptionalFile(t *testing.T) {
	t.Setenv("JWT_SECRET_ONLY", "env-only")

	cfg := new(mock)
	c := New(cfg,
		WithFile("missing.yaml", t.TempDir()),
		WithOptionalFile(),
		WithEnvBindings(map[string]string{"jwt.secret": "JWT_SECRET_ONLY"}),
		WithDefaults(map[string]any{"enabled": true}),
	)
	require.NoError(t, c.Load())

	assert.Equal(t, "env-only", cfg.JWT.Secret)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Addr)
}

func TestMissingFile(t *testing.T) {
	c := New(new(mock), WithFile("missing.yaml", t.TempDir()))

	err := c.Load()
	require.Error(t, err)
	assert.Equal(t, 404, errors.FromError(err).Code)
}

func TestValidationFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "server:\n  addr: 127.0.0.1:3000\n")

	err := New(new(mock), WithFile("config.yaml", dir)).Load()
	require.Error(t, err)

	e := errors.FromError(err)
	assert.Equal(t, 400, e.Code)
	assert.Contains(t, e.GetMetadata(), "secret")
}

func TestWatchReload(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "jwt:\n  secret: first\n")

	cfg := new(mock)
	c := New(cfg, WithFile("config.yaml", dir))
	require.NoError(t, c.Load())

	changed := make(chan struct{}, 1)
	c.OnChange(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, c.Watch())

	writeFile(t, dir, "config.yaml", "jwt:\n  secret: second\n")

	select {
	case <-changed:
		c.mu.RLock()
		assert.Equal(t, "second", cfg.JWT.Secret)
		c.mu.RUnlock()
	case <-time.After(5 * time.Second):
		t.Skip("file watch event not delivered on this platform")
	}
}

func TestWithoutValidator(t *testing.T) {
	cfg := new(mock)
	c := New(cfg, WithFile("missing.yaml", t.TempDir()), WithOptionalFile(), WithValidator(nil), WithWatch(false))

	require.NoError(t, c.Load())
	assert.Empty(t, cfg.JWT.Secret)
	assert.Equal(t, "127.0.0.1:3000", cfg.Server.Addr)
	assert.Empty(t, c.Viper().ConfigFileUsed())
	assert.NoError(t, c.Watch())
}
