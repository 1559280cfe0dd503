// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN for readings and auth tables.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// DBQueryTimeout bounds every datastore call (e.g. "5s").
	DBQueryTimeout string `mapstructure:"DB_QUERY_TIMEOUT"`

	// APIKey is the shared secret sensor nodes send in X-Api-Key. Ingestion fails closed when empty.
	APIKey string `mapstructure:"HOUSEMONITOR_API_KEY"`
	// APIURL is the base URL cmd/sensorpush posts readings to.
	APIURL string `mapstructure:"HOUSEMONITOR_API_URL"`
	// DashboardPassword is the plaintext dashboard password. Ignored when DashboardPasswordHash is set.
	DashboardPassword string `mapstructure:"HOUSEMONITOR_DASHBOARD_PASSWORD"`
	// DashboardPasswordHash is a bcrypt hash of the dashboard password (see cmd/seed -hash-password).
	DashboardPasswordHash string `mapstructure:"HOUSEMONITOR_DASHBOARD_PASSWORD_HASH"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`

	// SessionStore selects the browser session backend: "memory" or "redis".
	SessionStore string `mapstructure:"SESSION_STORE"`
	// RedisAddr is host:port of Redis; required when SessionStore is redis or login rate limiting is on.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	// CookieSecure sets the Secure flag on session and remember cookies. Only disable for local HTTP development.
	CookieSecure bool `mapstructure:"COOKIE_SECURE"`
	// ForceHTTPS redirects plain HTTP requests to https://.
	ForceHTTPS bool `mapstructure:"FORCE_HTTPS"`
	// Timezone is the IANA zone measured timestamps are interpreted in ("Local" by default).
	Timezone string `mapstructure:"TIMEZONE"`

	// ReadingsBackend selects where sensor readings live: "postgres" or "influx".
	ReadingsBackend string `mapstructure:"READINGS_BACKEND"`
	InfluxURL       string `mapstructure:"INFLUXDB_URL"`
	InfluxToken     string `mapstructure:"INFLUXDB_TOKEN"`
	InfluxOrg       string `mapstructure:"INFLUXDB_ORG"`
	InfluxBucket    string `mapstructure:"INFLUXDB_BUCKET"`

	// CORSAllowedOrigins is a comma-separated list; CORS is off when empty.
	CORSAllowedOrigins string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	// TrustedProxies is a comma-separated list of proxy IPs/CIDRs whose forwarding headers
	// are believed. When empty the client IP is always the socket peer.
	TrustedProxies string `mapstructure:"TRUSTED_PROXIES"`
	// LoginRateLimit is the max POST /login attempts per client per window; 0 disables limiting.
	LoginRateLimit  int    `mapstructure:"LOGIN_RATE_LIMIT"`
	LoginRateWindow string `mapstructure:"LOGIN_RATE_WINDOW"`

	// OTLPEndpoint is the OTLP gRPC collector; telemetry is a no-op when empty.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	ServiceName  string `mapstructure:"OTEL_SERVICE_NAME"`

	// KafkaBrokers is a comma-separated list of brokers for audit events; empty disables the Kafka sink.
	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group cmd/worker joins.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// Env is the application environment (e.g. "development", "production").
	Env      string `mapstructure:"APP_ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored. Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_QUERY_TIMEOUT", "5s")
	v.SetDefault("HOUSEMONITOR_API_KEY", "")
	v.SetDefault("HOUSEMONITOR_API_URL", "http://localhost:8080")
	v.SetDefault("HOUSEMONITOR_DASHBOARD_PASSWORD", "")
	v.SetDefault("HOUSEMONITOR_DASHBOARD_PASSWORD_HASH", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("SESSION_STORE", "memory")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("FORCE_HTTPS", false)
	v.SetDefault("TIMEZONE", "Local")
	v.SetDefault("READINGS_BACKEND", "postgres")
	v.SetDefault("INFLUXDB_URL", "")
	v.SetDefault("INFLUXDB_TOKEN", "")
	v.SetDefault("INFLUXDB_ORG", "")
	v.SetDefault("INFLUXDB_BUCKET", "housemonitor")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("LOGIN_RATE_LIMIT", 0)
	v.SetDefault("LOGIN_RATE_WINDOW", "1m")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "housemonitor")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "housemonitor-audit")
	v.SetDefault("KAFKA_GROUP_ID", "housemonitor-audit-worker")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))
	switch cfg.SessionStore {
	case "memory", "redis":
	default:
		return nil, errors.New("config: SESSION_STORE must be memory or redis")
	}
	if cfg.SessionStore == "redis" && cfg.RedisAddr == "" {
		return nil, errors.New("config: REDIS_ADDR must be set when SESSION_STORE=redis")
	}
	if cfg.LoginRateLimit < 0 {
		return nil, errors.New("config: LOGIN_RATE_LIMIT must not be negative")
	}
	if cfg.LoginRateLimit > 0 && cfg.RedisAddr == "" {
		return nil, errors.New("config: REDIS_ADDR must be set when LOGIN_RATE_LIMIT is enabled")
	}

	cfg.ReadingsBackend = strings.ToLower(strings.TrimSpace(cfg.ReadingsBackend))
	switch cfg.ReadingsBackend {
	case "postgres":
	case "influx":
		if cfg.InfluxURL == "" || cfg.InfluxToken == "" || cfg.InfluxOrg == "" {
			return nil, errors.New("config: INFLUXDB_URL, INFLUXDB_TOKEN and INFLUXDB_ORG must be set when READINGS_BACKEND=influx")
		}
	default:
		return nil, errors.New("config: READINGS_BACKEND must be postgres or influx")
	}

	if _, err := cfg.Location(); err != nil {
		return nil, errors.New("config: TIMEZONE must be a valid IANA zone name")
	}

	return &cfg, nil
}

// QueryTimeout parses DBQueryTimeout. Returns 5s if unset or invalid.
func (c *Config) QueryTimeout() time.Duration {
	d, err := time.ParseDuration(c.DBQueryTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// RateWindow parses LoginRateWindow. Returns 1m if unset or invalid.
func (c *Config) RateWindow() time.Duration {
	d, err := time.ParseDuration(c.LoginRateWindow)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// Location resolves Timezone. "" and "Local" map to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
func (c *Config) KafkaBrokersList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.KafkaBrokers)
}

// CORSOrigins returns the allowed CORS origins; nil means CORS is disabled.
func (c *Config) CORSOrigins() []string {
	if c == nil {
		return nil
	}
	return splitList(c.CORSAllowedOrigins)
}

// TrustedProxyList returns the configured proxy IPs/CIDRs; nil means none are trusted.
func (c *Config) TrustedProxyList() []string {
	if c == nil {
		return nil
	}
	return splitList(c.TrustedProxies)
}

// UsesRedis reports whether any component needs a Redis client.
func (c *Config) UsesRedis() bool {
	return c.SessionStore == "redis" || c.LoginRateLimit > 0
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
