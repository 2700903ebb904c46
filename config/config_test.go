package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, "http://localhost:8080", cfg.Client.BaseURL)
	assert.Equal(t, 8*time.Second, cfg.Client.CheckTimeout)
	assert.Equal(t, 10*time.Second, cfg.Client.GuardWaitTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Client.DemoWindow)
	assert.Equal(t, MirrorModeFile, cfg.Client.Mirror)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, "workdesk", cfg.Postgres.Name)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 5, cfg.Session.MaxLoginFailures)
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CLIENT_API_BASE_URL", "https://id.example.com")
	t.Setenv("CLIENT_CHECK_TIMEOUT", "3s")
	t.Setenv("CLIENT_MIRROR", "memory")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("SESSION_MAX_LOGIN_FAILURES", "3")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.Equal(t, "https://id.example.com", cfg.Client.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Client.CheckTimeout)
	assert.Equal(t, MirrorModeMemory, cfg.Client.Mirror)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 3, cfg.Session.MaxLoginFailures)
}

func TestMirrorMode_UnmarshalText(t *testing.T) {
	var m MirrorMode
	require.NoError(t, m.UnmarshalText([]byte("REDIS")))
	assert.Equal(t, MirrorModeRedis, m)

	assert.Error(t, m.UnmarshalText([]byte("s3")))
}

func TestSanitize_ClampsBadValues(t *testing.T) {
	cfg := AppConfig{
		Client:  ClientConfig{CheckTimeout: -1, GuardWaitTimeout: 0, DemoWindow: 0},
		Session: SessionConfig{TTL: 0, RememberedTTL: time.Minute, MaxLoginFailures: -2},
	}
	cfg.Sanitize()

	assert.Equal(t, 8*time.Second, cfg.Client.CheckTimeout)
	assert.Equal(t, 10*time.Second, cfg.Client.GuardWaitTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Client.DemoWindow)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, cfg.Session.TTL, cfg.Session.RememberedTTL)
	assert.Equal(t, 5, cfg.Session.MaxLoginFailures)
}

func TestDetectDevMode_NodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
}
