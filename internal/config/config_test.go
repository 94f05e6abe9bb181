package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "thecookiejar.app", cfg.Hosts.Public)
	assert.Equal(t, "creator.thecookiejar.app", cfg.Hosts.Creator)
	assert.Equal(t, []string{"www.thecookiejar.app"}, cfg.Hosts.PublicAliases)
	assert.Equal(t, []string{"localhost", "127.0.0.1"}, cfg.Hosts.Dev)
	assert.Equal(t, 720*time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, "cookiejar_session", cfg.Security.SessionCookie)
	assert.Equal(t, 6, cfg.Security.PasswordMinLength)
	assert.Equal(t, int64(50<<20), cfg.Upload.MaxFileBytes)
	assert.Equal(t, "games:ingest", cfg.Worker.Stream)
	assert.NotEmpty(t, cfg.Security.SessionSecret)
	assert.True(t, cfg.SecureCookies())
	assert.Equal(t, []string{"https://thecookiejar.app", "https://creator.thecookiejar.app", "https://www.thecookiejar.app"}, cfg.CORSOrigins())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("COOKIEJAR_POSTGRES_DSN", "postgres://cookie@db/cookiejar")
	t.Setenv("COOKIEJAR_HOSTS_DEV", "localhost,dev.cookiejar.test")
	t.Setenv("COOKIEJAR_SECURITY_SESSIONTTL", "1h")
	t.Setenv("COOKIEJAR_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://cookie@db/cookiejar", cfg.Postgres.DSN)
	assert.Equal(t, []string{"localhost", "dev.cookiejar.test"}, cfg.Hosts.Dev)
	assert.Equal(t, time.Hour, cfg.Security.SessionTTL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestProductionRequiresSecrets(t *testing.T) {
	t.Setenv("COOKIEJAR_ENVIRONMENT", "production")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sessionsecret")

	t.Setenv("COOKIEJAR_SECURITY_SESSIONSECRET", "s3cret")
	t.Setenv("COOKIEJAR_SECURITY_SIGNATURESECRET", "s1gned")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	cfg := AppConfig{
		Hosts:    HostsConfig{Public: "same.app", Creator: "same.app"},
		Security: SecurityConfig{SessionTTL: 0},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
	assert.Contains(t, err.Error(), "sessionttl")
}

func TestValidateComparesNormalizedHosts(t *testing.T) {
	cfg := AppConfig{
		Hosts:    HostsConfig{Public: "TheCookieJar.app", Creator: "thecookiejar.app:443"},
		Security: SecurityConfig{SessionTTL: time.Hour},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")

	cfg.Hosts = HostsConfig{
		Public:        "thecookiejar.app",
		PublicAliases: []string{"www.thecookiejar.app", "Creator.TheCookieJar.app"},
		Creator:       "creator.thecookiejar.app",
	}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publicaliases")

	cfg.Hosts.PublicAliases = []string{"www.thecookiejar.app"}
	assert.NoError(t, cfg.Validate())
}
