package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// ErrMissingDatabaseURL is fatal at startup.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

// ErrMissingSessionSecret is only returned in production.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET is not set")

const devSessionSecret = "saree-one-dev-secret"

type Config struct {
	AppEnv        string
	Port          string
	LogLevel      string
	DatabaseURL   string
	SessionSecret []byte
	SessionTTL    time.Duration
	Location      *time.Location

	RedisAddr     string
	RedisPassword string

	RecomputeSchedule string
	LoginRatePerSec   float64
	LoginBurst        int

	SeedAdminEmail     string
	SeedAdminPassword  string
	SeedDriverPhone    string
	SeedDriverPassword string
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// Load reads .env (if any) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logrus.WithError(err).Warn(".env not loaded")
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "5000"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SessionTTL:         getDurationEnv("SESSION_TTL", 24, time.Hour),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RecomputeSchedule:  getEnv("RECOMPUTE_SCHEDULE", "0 3 * * *"),
		LoginRatePerSec:    getFloatEnv("LOGIN_RATE_PER_SEC", 1),
		LoginBurst:         getIntEnv("LOGIN_BURST", 5),
		SeedAdminEmail:     getEnv("SEED_ADMIN_EMAIL", "admin@saree.local"),
		SeedAdminPassword:  getEnv("SEED_ADMIN_PASSWORD", "change-me-admin"),
		SeedDriverPhone:    getEnv("SEED_DRIVER_PHONE", "+967771234567"),
		SeedDriverPassword: getEnv("SEED_DRIVER_PASSWORD", "change-me-driver"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	secret := getEnv("SESSION_SECRET", "")
	if secret == "" {
		if cfg.IsProduction() {
			return nil, ErrMissingSessionSecret
		}
		logrus.Warn("SESSION_SECRET not set, using development fallback")
		secret = devSessionSecret
	}
	cfg.SessionSecret = []byte(secret)

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "UTC"))
	if err != nil {
		logrus.WithError(err).Warn("unknown TIMEZONE, falling back to UTC")
		loc = time.UTC
	}
	cfg.Location = loc

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback int, unit time.Duration) time.Duration {
	return time.Duration(getIntEnv(key, fallback)) * unit
}
