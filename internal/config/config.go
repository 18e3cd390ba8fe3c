package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
	EnvTest        = "test"
)

type Config struct {
	// HTTP Server
	Port               string
	AppEnv             string
	RateLimitPerMinute int
	TrustedProxies     []string
	ShutdownTimeout    time.Duration

	// Logging
	LogLevel string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string

	// AMQP notifications (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Auth
	JWTSecret    string
	JWTExpiresIn time.Duration

	// Response cache
	CacheEnabled         bool
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
}

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8000"),
		AppEnv:             getEnv("APP_ENV", EnvDevelopment),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 60),
		TrustedProxies:     getEnvList("TRUSTED_PROXIES"),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/fintastic.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "fintastic"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "notifications"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		JWTExpiresIn: getEnvDuration("JWT_EXPIRES_IN", 30*24*time.Hour),

		CacheEnabled:         getEnvBool("CACHE_ENABLED", true),
		CacheTTL:             getEnvDuration("CACHE_TTL", 5*time.Minute),
		CacheMaxEntries:      getEnvInt("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: getEnvDuration("CACHE_CLEANUP_INTERVAL", time.Minute),
	}

	return cfg
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// CacheActive reports whether responses are cached. Development mode always
// bypasses the cache, whatever CACHE_ENABLED says.
func (c *Config) CacheActive() bool {
	return c.CacheEnabled && c.AppEnv != EnvDevelopment
}

// Validate validates the configuration of the API server and returns an
// error listing every problem.
func (c *Config) Validate() error {
	return combine(append(c.commonProblems(), c.serverProblems()...))
}

// ValidateWorker validates the settings the notification worker uses. The
// worker cannot run without a broker.
func (c *Config) ValidateWorker() error {
	errors := c.commonProblems()
	if c.AMQPURL == "" {
		errors = append(errors, "AMQP URL is required for the worker (set AMQP_URL)")
	}
	return combine(errors)
}

func combine(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// commonProblems checks the settings shared by every binary.
func (c *Config) commonProblems() []string {
	var errors []string

	validEnvs := []string{EnvProduction, EnvDevelopment, EnvTest}
	if !slices.Contains(validEnvs, c.AppEnv) {
		errors = append(errors, fmt.Sprintf("invalid app env '%s': must be one of %v", c.AppEnv, validEnvs))
	}

	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	if !slices.Contains(validLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}

	// AMQP is optional; when set it must be usable
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.ShutdownTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid shutdown timeout %v: must be at least 1 second", c.ShutdownTimeout))
	}
	return errors
}

func (c *Config) serverProblems() []string {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite"}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Auth
	switch {
	case c.JWTSecret == "":
		errors = append(errors, "JWT secret is required (set JWT_SECRET)")
	case c.IsProduction() && len(c.JWTSecret) < 32:
		errors = append(errors, "JWT secret must be at least 32 characters in production")
	}
	if c.JWTExpiresIn < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid JWT expiry %v: must be at least 1 minute", c.JWTExpiresIn))
	}

	// Cache
	if c.CacheEnabled {
		if c.CacheTTL < time.Second {
			errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
		} else if c.CacheTTL > 24*time.Hour {
			errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must be at most 24 hours", c.CacheTTL))
		}
		if c.CacheMaxEntries < 1 {
			errors = append(errors, fmt.Sprintf("invalid cache max entries %d: must be at least 1", c.CacheMaxEntries))
		}
		if c.CacheCleanupInterval < time.Second {
			errors = append(errors, fmt.Sprintf("invalid cache cleanup interval %v: must be at least 1 second", c.CacheCleanupInterval))
		}
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 request per minute", c.RateLimitPerMinute))
	}

	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid trusted proxy '%s': must be a CIDR", cidr))
		}
	}

	return errors
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
