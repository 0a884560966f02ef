package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Store    StoreConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Analysis AnalysisConfig
	Feed     FeedConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// StoreConfig selects the tabular backend.
type StoreConfig struct {
	Driver        string
	RunMigrations bool
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// SQLiteConfig points at the local database file.
type SQLiteConfig struct {
	Path string
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr             string
	Password         string
	DB               int
	Enabled          bool
	ReportTTLSeconds int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level  string
	Output string
}

// AuthConfig defines API token parameters. An empty secret disables auth.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// AnalysisConfig parameterizes the report run.
type AnalysisConfig struct {
	FraudIncidentType    string
	TopN                 int
	Timezone             string
	StrictDates          bool
	CriticalExcludedType string
	CriticalTopN         int
}

// FeedConfig configures the vulnerability feed adapter.
type FeedConfig struct {
	URL             string
	TimeoutSeconds  int
	Limit           int
	CacheTTLSeconds int
	CacheSize       int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "incident-analytics"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
			RunMigrations: getEnvAsBool("STORE_RUN_MIGRATIONS", true),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "incidencias.db"),
		},
		Redis: RedisConfig{
			Addr:             getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:         os.Getenv("REDIS_PASSWORD"),
			DB:               redisDB,
			Enabled:          getEnvAsBool("REDIS_ENABLED", true),
			ReportTTLSeconds: getEnvAsInt("REDIS_REPORT_TTL_SECONDS", 600),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Output: getEnv("LOG_OUTPUT", "stdout"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("AUTH_JWT_SECRET"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Analysis: AnalysisConfig{
			FraudIncidentType:    getEnv("ANALYSIS_FRAUD_INCIDENT_TYPE", "5"),
			TopN:                 getEnvAsInt("ANALYSIS_TOP_N", 10),
			Timezone:             getEnv("ANALYSIS_TIMEZONE", "UTC"),
			StrictDates:          getEnvAsBool("ANALYSIS_STRICT_DATES", true),
			CriticalExcludedType: getEnv("ANALYSIS_CRITICAL_EXCLUDED_TYPE", "1"),
			CriticalTopN:         getEnvAsInt("ANALYSIS_CRITICAL_TOP_N", 5),
		},
		Feed: FeedConfig{
			URL:             getEnv("FEED_URL", "https://cve.circl.lu/api/last"),
			TimeoutSeconds:  getEnvAsInt("FEED_TIMEOUT_SECONDS", 10),
			Limit:           getEnvAsInt("FEED_LIMIT", 10),
			CacheTTLSeconds: getEnvAsInt("FEED_CACHE_TTL_SECONDS", 300),
			CacheSize:       getEnvAsInt("FEED_CACHE_SIZE", 16),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverSQLite:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.Store.Driver)
	}
	if _, err := c.Analysis.Location(); err != nil {
		return fmt.Errorf("invalid ANALYSIS_TIMEZONE: %w", err)
	}
	if c.Analysis.TopN <= 0 {
		return fmt.Errorf("invalid ANALYSIS_TOP_N %d", c.Analysis.TopN)
	}
	if strings.TrimSpace(c.Analysis.FraudIncidentType) == "" {
		return fmt.Errorf("ANALYSIS_FRAUD_INCIDENT_TYPE must not be empty")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Location resolves the analysis time zone.
func (a AnalysisConfig) Location() (*time.Location, error) {
	return time.LoadLocation(a.Timezone)
}

// ReportTTL returns how long a cached report stays valid.
func (r RedisConfig) ReportTTL() time.Duration {
	return time.Duration(r.ReportTTLSeconds) * time.Second
}

// Timeout returns the fixed timeout of one feed request.
func (f FeedConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long a fetched feed page is reused.
func (f FeedConfig) CacheTTL() time.Duration {
	return time.Duration(f.CacheTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
