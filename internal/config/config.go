// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	JWT       JWTConfig       `koanf:"jwt"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
	Sentry    SentryConfig    `koanf:"sentry"`
	Content   ContentConfig   `koanf:"content"`
	Seed      SeedConfig      `koanf:"seed"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
	KeyPrefix    string `koanf:"key_prefix"`
}

type JWTConfig struct {
	PrivateKeyPath     string        `koanf:"private_key_path"`
	PublicKeyPath      string        `koanf:"public_key_path"`
	AccessTokenExpire  time.Duration `koanf:"access_token_expire"`
	RefreshTokenExpire time.Duration `koanf:"refresh_token_expire"`
	Issuer             string        `koanf:"issuer"`
	Audience           string        `koanf:"audience"`
}

type RateLimitConfig struct {
	Requests         int           `koanf:"requests"`
	Window           time.Duration `koanf:"window"`
	Burst            int           `koanf:"burst"`
	UserRequests     int           `koanf:"user_requests"`
	UserBurst        int           `koanf:"user_burst"`
	LoginRequests    int           `koanf:"login_requests"`
	FeedbackRequests int           `koanf:"feedback_requests"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

type SentryConfig struct {
	DSN              string        `koanf:"dsn"`
	TracesSampleRate float64       `koanf:"traces_sample_rate"`
	FlushTimeout     time.Duration `koanf:"flush_timeout"`
}

// ContentConfig points at the headless CMS serving news and blog posts.
type ContentConfig struct {
	Enabled       bool          `koanf:"enabled"`
	ServiceDomain string        `koanf:"service_domain"`
	APIKey        string        `koanf:"api_key"`
	BaseURL       string        `koanf:"base_url"`
	Timeout       time.Duration `koanf:"timeout"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
}

// SeedConfig describes the bootstrap superuser created by --seed.
type SeedConfig struct {
	UserTypeName string `koanf:"user_type_name"`
	Username     string `koanf:"username"`
	Email        string `koanf:"email"`
	Password     string `koanf:"password"`
}

// Load layers defaults, the optional yaml file and the environment, in
// that order, then validates the result.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyReplacer), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	c := &Config{}
	if err := k.Unmarshal("", c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validate(c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":        "Staff Portal",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8080,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.auto_migrate":       true,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,
		"redis.key_prefix":     "staff-portal:",

		"jwt.access_token_expire":  "15m",
		"jwt.refresh_token_expire": "168h",
		"jwt.issuer":               "staff-portal",
		"jwt.audience":             "staff-portal-api",
		"jwt.private_key_path":     "keys/private.pem",
		"jwt.public_key_path":      "keys/public.pem",

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"rate_limit.user_requests":     120,
		"rate_limit.user_burst":        30,
		"rate_limit.login_requests":    10,
		"rate_limit.feedback_requests": 20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "staff-portal",

		"sentry.traces_sample_rate": 0.2,
		"sentry.flush_timeout":      "2s",

		"content.enabled":   false,
		"content.timeout":   "5s",
		"content.cache_ttl": "5m",

		"seed.user_type_name": "SuperAdmin",
		"seed.username":       "superuser",
	}

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"REDIS_URL":                   "redis.url",
	"REDIS_KEY_PREFIX":            "redis.key_prefix",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"JWT_PRIVATE_KEY_PATH":        "jwt.private_key_path",
	"JWT_PUBLIC_KEY_PATH":         "jwt.public_key_path",
	"JWT_ACCESS_TOKEN_EXPIRE":     "jwt.access_token_expire",
	"JWT_REFRESH_TOKEN_EXPIRE":    "jwt.refresh_token_expire",
	"JWT_ISSUER":                  "jwt.issuer",
	"JWT_AUDIENCE":                "jwt.audience",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
	"SENTRY_DSN":                  "sentry.dsn",
	"SENTRY_TRACES_SAMPLE_RATE":   "sentry.traces_sample_rate",
	"DATABASE_AUTO_MIGRATE":       "database.auto_migrate",
	"MICROCMS_ENABLED":            "content.enabled",
	"MICROCMS_SERVICE_DOMAIN":     "content.service_domain",
	"MICROCMS_API_KEY":            "content.api_key",
	"MICROCMS_BASE_URL":           "content.base_url",
	"CONTENT_CACHE_TTL":           "content.cache_ttl",
	"SEED_USER_TYPE":              "seed.user_type_name",
	"SEED_USERNAME":               "seed.username",
	"SEED_EMAIL":                  "seed.email",
	"SEED_PASSWORD":               "seed.password",
}

func envKeyReplacer(s string) string {
	if mapped, ok := envKeyMap[s]; ok {
		return mapped
	}
	return ""
}

type rule struct {
	broken bool
	msg    string
}

// validate reports every broken rule at once so a misconfigured deploy
// fails with the full list.
func validate(c *Config) error {
	rules := []rule{
		{c.Database.URL == "", "DATABASE_URL is required"},
		{c.Redis.URL == "", "REDIS_URL is required"},
		{c.JWT.PrivateKeyPath == "", "JWT_PRIVATE_KEY_PATH is required"},
		{c.JWT.PublicKeyPath == "", "JWT_PUBLIC_KEY_PATH is required"},
		{
			c.CORS.AllowCredentials && slices.Contains(c.CORS.AllowedOrigins, "*"),
			"CORS wildcard '*' cannot be used with allow_credentials",
		},
		{
			c.IsProduction() && c.Otel.Enabled && c.Otel.Insecure,
			"OTEL_INSECURE must be false in production",
		},
		{c.Server.ReadTimeout <= 0, "server.read_timeout must be positive"},
		{c.Server.WriteTimeout <= 0, "server.write_timeout must be positive"},
		{
			c.Content.Enabled && c.Content.ServiceDomain == "" && c.Content.BaseURL == "",
			"MICROCMS_SERVICE_DOMAIN is required when content is enabled",
		},
		{
			c.Content.Enabled && c.Content.APIKey == "",
			"MICROCMS_API_KEY is required when content is enabled",
		},
	}

	var errs []error
	for _, r := range rules {
		if r.broken {
			errs = append(errs, errors.New(r.msg))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
