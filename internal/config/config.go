package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	AutoMigrate bool
	LogLevel    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionCookieName string
	SessionTTLHours   int
	SessionSecure     bool

	BcryptCost int

	LoginRateLimit         int
	LoginRateWindowSeconds int

	// AuthPolicyPath points at an optional rego policy with deny rules that
	// run on top of the built-in permission checks. Empty disables the hook.
	AuthPolicyPath string
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:    addr,
		PostgresDSN: os.Getenv("POSTGRES_DSN"),
		AutoMigrate: envBoolDefault("AUTO_MIGRATE", false),
		LogLevel:    envDefault("LOG_LEVEL", "info"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envIntDefault("REDIS_DB", 0),

		SessionCookieName: envDefault("SESSION_COOKIE_NAME", "library_session"),
		SessionTTLHours:   envIntDefault("SESSION_TTL_HOURS", 24),
		SessionSecure:     envBoolDefault("SESSION_SECURE", false),

		BcryptCost: envIntDefault("BCRYPT_COST", 10),

		LoginRateLimit:         envIntDefault("LOGIN_RATE_LIMIT", 10),
		LoginRateWindowSeconds: envIntDefault("LOGIN_RATE_WINDOW_SECONDS", 60),

		AuthPolicyPath: os.Getenv("AUTH_POLICY_PATH"),
	}
}

func (c Config) SessionTTL() time.Duration {
	hours := c.SessionTTLHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func (c Config) LoginRateWindow() time.Duration {
	secs := c.LoginRateWindowSeconds
	if secs <= 0 {
		secs = 60
	}
	return time.Duration(secs) * time.Second
}

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func envBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	switch v {
	case "1", "true", "TRUE", "True", "yes", "YES", "Yes":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "No":
		return false
	default:
		return def
	}
}
