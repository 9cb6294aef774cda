package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(FileEnv, "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, 2025, cfg.Query.DefaultSeasonYear)
	assert.Equal(t, 100, cfg.Query.DefaultLimit)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "memory", cfg.Feedback.Backend)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
  cors_origins: ["https://xcri.example"]
database:
  host: yaml-host
  query_timeout: 2s
query:
  max_limit: 1000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv(FileEnv, path)
	t.Setenv("XCRI_DATABASE__HOST", "env-host")
	t.Setenv("XCRI_QUERY__DEFAULT_SEASON_YEAR", "2024")
	t.Setenv("XCRI_FEEDBACK__GITHUB_TOKEN", "token")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://xcri.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "env-host", cfg.Database.Host, "env overrides file")
	assert.Equal(t, 2*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 1000, cfg.Query.MaxLimit)
	assert.Equal(t, 2024, cfg.Query.DefaultSeasonYear)
	assert.Equal(t, "token", cfg.Feedback.GitHubToken)
	assert.Equal(t, 5432, cfg.Database.Port, "untouched defaults survive")
}

func TestLoadConfig_CORSFromEnvReplacesDefaults(t *testing.T) {
	t.Setenv(FileEnv, "")
	t.Setenv("XCRI_SERVER__CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv(FileEnv, filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "default limit above max",
			mutate:  func(c *Config) { c.Query.DefaultLimit = 10; c.Query.MaxLimit = 5 },
			wantErr: "exceeds query.max_limit",
		},
		{
			name:    "unknown limiter backend",
			mutate:  func(c *Config) { c.Feedback.Backend = "memcached" },
			wantErr: "feedback.backend",
		},
		{
			name:    "redis backend without address",
			mutate:  func(c *Config) { c.Feedback.Backend = "redis"; c.Redis.Addr = "" },
			wantErr: "redis.addr",
		},
		{
			name:    "idle above open",
			mutate:  func(c *Config) { c.Database.MaxIdleConns = 50 },
			wantErr: "max_idle_conns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
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

func TestFeedbackConfigured(t *testing.T) {
	cfg := Default()
	assert.False(t, cfg.FeedbackConfigured())

	cfg.Feedback.GitHubToken = "t"
	cfg.Feedback.GitHubRepo = "owner/repo"
	assert.True(t, cfg.FeedbackConfigured())

	cfg.Feedback.Enabled = false
	assert.False(t, cfg.FeedbackConfigured())
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Database.Password = "secret"

	pg := cfg.Database.Postgres()
	assert.Equal(t, "xcri_rankings", pg.Database)
	assert.Equal(t, 5*time.Second, pg.QueryTimeout)
	assert.Contains(t, pg.DSN(), "password=secret")

	opts := cfg.Logging.Options()
	assert.Nil(t, opts.File)
	assert.Equal(t, "json", opts.Encoding)

	cfg.Logging.File = "/var/log/xcri/api.log"
	opts = cfg.Logging.Options()
	require.NotNil(t, opts.File)
	assert.Equal(t, 100, opts.File.MaxSizeMB)
	assert.Equal(t, 14, opts.File.MaxAgeDays)
}
