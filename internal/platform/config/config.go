// Package config はアプリケーション設定を .env と環境変数から読み込みます。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Auth       AuthConfig
	Pagination PaginationConfig
}

type ServerConfig struct {
	Port           string
	Env            string // dev or prod
	TrustedOrigins []string
}

type DatabaseConfig struct {
	Driver         string // postgres or sqlite
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	SQLitePath     string
	ConnectTimeout time.Duration
	RunMigrations  bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	PostTTL  time.Duration
}

type AuthConfig struct {
	JWTSecret     string
	JWTAlgorithm  string
	JWTExpiration time.Duration
	HeaderPrefix  string
}

type PaginationConfig struct {
	PageSize    int
	MaxPageSize int
}

// Load reads configuration from environment variables.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			Env:            getEnv("APP_ENV", "dev"),
			TrustedOrigins: getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Driver:         strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "blog"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			SQLitePath:     getEnv("SQLITE_PATH", "./blog.db"),
			ConnectTimeout: getDurationEnv("DB_CONNECT_TIMEOUT", 60*time.Second),
			RunMigrations:  getBoolEnv("RUN_MIGRATIONS", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			PostTTL:  getDurationEnv("POST_CACHE_TTL", 5*time.Minute),
		},
		Auth: AuthConfig{
			JWTSecret:     os.Getenv("JWT_SECRET"),
			JWTAlgorithm:  getEnv("JWT_ALGORITHM", "HS256"),
			JWTExpiration: getDurationEnv("JWT_EXPIRATION", 24*time.Hour),
			HeaderPrefix:  getEnv("AUTH_HEADER_PREFIX", "Bearer"),
		},
		Pagination: PaginationConfig{
			PageSize:    getIntEnv("PAGE_SIZE", 10),
			MaxPageSize: getIntEnv("MAX_PAGE_SIZE", 100),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver)
	}
	if c.Pagination.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.Pagination.PageSize)
	}
	if c.Pagination.MaxPageSize < c.Pagination.PageSize {
		return fmt.Errorf("MAX_PAGE_SIZE (%d) must not be smaller than PAGE_SIZE (%d)",
			c.Pagination.MaxPageSize, c.Pagination.PageSize)
	}
	return nil
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Enabled reports whether a Redis host is configured.
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

// getDurationEnv accepts Go duration syntax ("90s", "24h") or a plain number of seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
