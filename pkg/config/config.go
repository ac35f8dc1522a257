package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config is the full runtime configuration, read once at boot from the
// environment (with .env support for local work).
type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Portal    PortalConfig
	Redis     RedisConfig
	Dashboard DashboardConfig
	Reports   ReportsConfig
	CORS      CORSConfig
	Log       LogConfig
}

// IsProduction reports whether the gateway runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// PortalConfig points the gateway at the legacy portal REST API.
type PortalConfig struct {
	BaseURL      string
	Timeout      time.Duration
	ServiceToken string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr renders the host:port pair the Redis client dials.
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs response caching for the student dashboard.
type DashboardConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// ReportsConfig configures asynchronous report generation.
type ReportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	JobTTL            time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// Load reads configuration from the environment and an optional .env file,
// then validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	seedDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{
		Env:       v.GetString("ENV"),
		Port:      v.GetInt("PORT"),
		APIPrefix: v.GetString("API_PREFIX"),
		Portal:    portalSection(v),
		Redis:     redisSection(v),
		Dashboard: dashboardSection(v),
		Reports:   reportsSection(v),
		CORS:      CORSConfig{AllowedOrigins: csvList(v.GetString("ALLOWED_ORIGINS"))},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func portalSection(v *viper.Viper) PortalConfig {
	return PortalConfig{
		BaseURL:      v.GetString("PORTAL_BASE_URL"),
		Timeout:      durationOr(v.GetString("PORTAL_TIMEOUT"), 5*time.Second),
		ServiceToken: v.GetString("PORTAL_SERVICE_TOKEN"),
	}
}

func redisSection(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}
}

func dashboardSection(v *viper.Viper) DashboardConfig {
	return DashboardConfig{
		CacheEnabled: v.GetBool("DASHBOARD_CACHE_ENABLED"),
		CacheTTL:     durationOr(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}
}

func reportsSection(v *viper.Viper) ReportsConfig {
	return ReportsConfig{
		Enabled:           v.GetBool("ENABLE_REPORTS"),
		StorageDir:        v.GetString("REPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("REPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      durationOr(v.GetString("REPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		JobTTL:            durationOr(v.GetString("REPORTS_JOB_TTL"), 24*time.Hour),
		CleanupInterval:   durationOr(v.GetString("REPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("REPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("REPORTS_WORKER_RETRIES"),
	}
}

// defaults holds the development value for every knob so a bare
// environment still boots.
var defaults = map[string]any{
	"ENV":        EnvDevelopment,
	"PORT":       8080,
	"API_PREFIX": "/api/v1",

	"PORTAL_BASE_URL":      "http://localhost:3000",
	"PORTAL_TIMEOUT":       "5s",
	"PORTAL_SERVICE_TOKEN": "",

	"REDIS_HOST":     "localhost",
	"REDIS_PORT":     6379,
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"DASHBOARD_CACHE_ENABLED": false,
	"DASHBOARD_CACHE_TTL":     "5m",

	"ENABLE_REPORTS":             false,
	"REPORTS_STORAGE_DIR":        "./exports",
	"REPORTS_SIGNED_URL_SECRET":  "dev_reports_secret",
	"REPORTS_SIGNED_URL_TTL":     "24h",
	"REPORTS_JOB_TTL":            "24h",
	"REPORTS_CLEANUP_INTERVAL":   "1h",
	"REPORTS_WORKER_CONCURRENCY": 1,
	"REPORTS_WORKER_RETRIES":     3,

	"ALLOWED_ORIGINS": "",
	"LOG_LEVEL":       "info",
	"LOG_FORMAT":      "json",
}

func seedDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// validate rejects configurations that would only fail later and further
// from the cause.
func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT %d out of range", c.Port)
	}
	parsed, err := url.Parse(c.Portal.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: PORTAL_BASE_URL %q is not an absolute URL", c.Portal.BaseURL)
	}
	if c.IsProduction() && c.Reports.Enabled && c.Reports.SignedURLSecret == "dev_reports_secret" {
		return fmt.Errorf("config: REPORTS_SIGNED_URL_SECRET must be set in production")
	}
	return nil
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func csvList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
