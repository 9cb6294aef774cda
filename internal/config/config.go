package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"xcri-rankings/pkg/database"
	"xcri-rankings/pkg/logging"
)

const (
	// EnvPrefix scopes every environment override, e.g. XCRI_DATABASE__HOST.
	EnvPrefix = "XCRI_"
	// FileEnv points at an optional YAML config file.
	FileEnv = "XCRI_CONFIG"
)

// Config is the full service configuration
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Query    QueryConfig    `koanf:"query"`
	Logging  LoggingConfig  `koanf:"logging"`
	Feedback FeedbackConfig `koanf:"feedback"`
	Redis    RedisConfig    `koanf:"redis"`
}

// ServerConfig configures the HTTP listener and middleware
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	GzipMinSize       int           `koanf:"gzip_min_size"`
	ExposeErrors      bool          `koanf:"expose_errors"`
	TrustProxyHeaders bool          `koanf:"trust_proxy_headers"`
}

// DatabaseConfig configures the PostgreSQL pool
type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Database        string        `koanf:"database"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`
	StartupMaxWait  time.Duration `koanf:"startup_max_wait"`
}

// QueryConfig holds request defaults shared by every listing
type QueryConfig struct {
	DefaultSeasonYear int `koanf:"default_season_year"`
	DefaultLimit      int `koanf:"default_limit"`
	MaxLimit          int `koanf:"max_limit"`
}

// LoggingConfig configures pkg/logging
type LoggingConfig struct {
	Level      string `koanf:"level"`
	Encoding   string `koanf:"encoding"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

// FeedbackConfig configures the feedback side channel
type FeedbackConfig struct {
	Enabled     bool   `koanf:"enabled"`
	GitHubToken string `koanf:"github_token"`
	GitHubRepo  string `koanf:"github_repo"`
	GitHubAPI   string `koanf:"github_api"`
	HourlyLimit int    `koanf:"hourly_limit"`
	DailyLimit  int    `koanf:"daily_limit"`
	Backend     string `koanf:"backend"` // "memory" or "redis"
}

// RedisConfig configures the optional Redis rate-limit backend
type RedisConfig struct {
	Addr         string        `koanf:"addr"`
	Password     string        `koanf:"password"`
	DB           int           `koanf:"db"`
	PoolSize     int           `koanf:"pool_size"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	KeyPrefix    string        `koanf:"key_prefix"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8001,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
			GzipMinSize:     1000,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "xcri",
			Database:        "xcri_rankings",
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 10 * time.Minute,
			ConnectTimeout:  5 * time.Second,
			QueryTimeout:    5 * time.Second,
			StartupMaxWait:  30 * time.Second,
		},
		Query: QueryConfig{
			DefaultSeasonYear: 2025,
			DefaultLimit:      100,
			MaxLimit:          5000,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Encoding:   "json",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
		Feedback: FeedbackConfig{
			Enabled:     true,
			GitHubAPI:   "https://api.github.com",
			HourlyLimit: 3,
			DailyLimit:  10,
			Backend:     "memory",
		},
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			PoolSize:     10,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			KeyPrefix:    "xcri:feedback:",
		},
	}
}

// LoadConfig builds a Config by layering, lowest precedence first:
//  1. defaults
//  2. variables from a local .env file (if present)
//  3. YAML file named by XCRI_CONFIG
//  4. XCRI_* environment variables, "__" separating sections
func LoadConfig() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(FileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := *Default()
	// Decoding into a populated slice only overwrites a prefix, so start empty.
	defaultOrigins := cfg.Server.CORSOrigins
	cfg.Server.CORSOrigins = nil
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = defaultOrigins
	}

	return &cfg, nil
}

// envKey maps XCRI_SERVER__CORS_ORIGINS=a,b onto server.cors_origins=[a b].
func envKey(key, value string) (string, interface{}) {
	if key == FileEnv {
		return "", nil
	}
	path := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	path = strings.ReplaceAll(path, "__", ".")

	if path == "server.cors_origins" {
		return path, splitList(value)
	}
	return path, value
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, errors.New("database.host must not be empty"))
	}
	if c.Database.Database == "" {
		errs = append(errs, errors.New("database.database must not be empty"))
	}
	if c.Database.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("database.max_open_conns must be positive"))
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		errs = append(errs, errors.New("database.max_idle_conns must not exceed max_open_conns"))
	}
	if c.Database.QueryTimeout <= 0 {
		errs = append(errs, errors.New("database.query_timeout must be positive"))
	}
	if c.Query.DefaultLimit <= 0 || c.Query.MaxLimit <= 0 {
		errs = append(errs, errors.New("query limits must be positive"))
	}
	if c.Query.DefaultLimit > c.Query.MaxLimit {
		errs = append(errs, fmt.Errorf("query.default_limit %d exceeds query.max_limit %d", c.Query.DefaultLimit, c.Query.MaxLimit))
	}
	if c.Query.DefaultSeasonYear < 2000 {
		errs = append(errs, fmt.Errorf("query.default_season_year looks wrong: %d", c.Query.DefaultSeasonYear))
	}
	switch c.Feedback.Backend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("feedback.backend must be memory or redis, got %q", c.Feedback.Backend))
	}
	if c.Feedback.HourlyLimit <= 0 || c.Feedback.DailyLimit < c.Feedback.HourlyLimit {
		errs = append(errs, errors.New("feedback limits must be positive and daily_limit >= hourly_limit"))
	}
	if c.Feedback.Backend == "redis" && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when feedback.backend is redis"))
	}

	return errors.Join(errs...)
}

// FeedbackConfigured reports whether issues can be filed
func (c *Config) FeedbackConfigured() bool {
	return c.Feedback.Enabled && c.Feedback.GitHubToken != "" && c.Feedback.GitHubRepo != ""
}

// Postgres converts the database section for pkg/database
func (d DatabaseConfig) Postgres() *database.Config {
	return &database.Config{
		Host:            d.Host,
		Port:            d.Port,
		User:            d.User,
		Password:        d.Password,
		Database:        d.Database,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
		ConnectTimeout:  d.ConnectTimeout,
		QueryTimeout:    d.QueryTimeout,
		StartupMaxWait:  d.StartupMaxWait,
	}
}

// Options converts the logging section for pkg/logging. An empty file logs to stdout only.
func (l LoggingConfig) Options() logging.Options {
	opts := logging.Options{
		Level:    logging.ParseLevel(l.Level),
		Encoding: l.Encoding,
	}
	if l.File != "" {
		opts.File = &logging.FileOptions{
			Path:       l.File,
			MaxSizeMB:  l.MaxSizeMB,
			MaxBackups: l.MaxBackups,
			MaxAgeDays: l.MaxAgeDays,
			Compress:   true,
		}
	}
	return opts
}
