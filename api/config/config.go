package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	AppEnv string
	Port   string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string

	AdminKey       string
	AllowedOrigins []string
	ResultTTL      time.Duration

	MediaBucket  string
	MediaPrefix  string
	MediaBaseURL string
	AWSRegion    string

	IdiomsFile string
	LogLevel   logrus.Level
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// DSN builds the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "sqlite" {
		if c.DatabaseURL != "" {
			return c.DatabaseURL
		}
		if c.DBName != "" {
			return c.DBName
		}
		return "file::memory:?cache=shared"
	}

	if c.DatabaseURL != "" {
		dsn := c.DatabaseURL
		if c.IsProduction() && !strings.Contains(dsn, "sslmode=") {
			if strings.Contains(dsn, "?") {
				dsn += "&sslmode=require"
			} else {
				dsn += "?sslmode=require"
			}
		}
		return dsn
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

// Load reads .env (outside production) and then the process environment.
func Load() (Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := Config{
		AppEnv:       os.Getenv("APP_ENV"),
		Port:         firstNonEmpty(os.Getenv("PORT"), os.Getenv("API_PORT"), "8888"),
		DBDriver:     strings.ToLower(firstNonEmpty(os.Getenv("DB_DRIVER"), "postgres")),
		DatabaseURL:  strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBHost:       os.Getenv("DB_HOST"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBName:       os.Getenv("DB_NAME"),
		DBPort:       os.Getenv("DB_PORT"),
		AdminKey:     strings.TrimSpace(os.Getenv("ADMIN_KEY")),
		MediaBucket:  strings.TrimSpace(os.Getenv("MEDIA_BUCKET")),
		MediaPrefix:  strings.TrimSpace(os.Getenv("MEDIA_PREFIX")),
		MediaBaseURL: strings.TrimSpace(os.Getenv("MEDIA_BASE_URL")),
		AWSRegion:    strings.TrimSpace(os.Getenv("AWS_REGION")),
		IdiomsFile:   strings.TrimSpace(os.Getenv("IDIOMS_FILE")),
		LogLevel:     logrus.InfoLevel,
	}

	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	cfg.AllowedOrigins = splitCSV(os.Getenv("ALLOWED_ORIGINS"))
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	if raw := strings.TrimSpace(os.Getenv("RESULT_TTL")); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RESULT_TTL %q: %w", raw, err)
		}
		cfg.ResultTTL = ttl
	}

	if raw := strings.TrimSpace(os.Getenv("LOG_LEVEL")); raw != "" {
		lvl, err := logrus.ParseLevel(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

// NewLogger returns the JSON logger the server and CLI share.
func (c Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(c.LogLevel)
	return logger
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
