package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingDatabaseURLIsFatal(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingDatabaseURL)
}

func TestLoad_SecretRequiredInProduction(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("APP_ENV", "production")
	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingSessionSecret)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("TIMEZONE", "")
	t.Setenv("SESSION_TTL", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, []byte(devSessionSecret), cfg.SessionSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestDialectorFor(t *testing.T) {
	assert.Equal(t, "postgres", dialectorFor("postgres://u:p@localhost/db").Name())
	assert.Equal(t, "postgres", dialectorFor("postgresql://localhost/db").Name())
	assert.Equal(t, "sqlite", dialectorFor("food_delivery.db").Name())
}
