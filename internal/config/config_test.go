package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, name := range []string{"PORT", "DB_DRIVER", "SQLITE_PATH", "JWT_SECRET", "VIEW_FLUSH_SECONDS", "MINIO_BUCKET"} {
		t.Setenv(name, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "./data/notespace.db", cfg.SQLitePath)
	assert.Equal(t, "notespace", cfg.MinioBucket)
	assert.Equal(t, time.Minute, cfg.ViewFlushInterval)
	assert.NotEmpty(t, cfg.JWTSecret, "a missing secret is replaced with a random one")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_HOST", "db:3306")
	t.Setenv("DB_NAME", "notespace")
	t.Setenv("JWT_SECRET", "fixed-secret")
	t.Setenv("VIEW_FLUSH_SECONDS", "30")

	cfg := LoadConfig()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "fixed-secret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Second, cfg.ViewFlushInterval)
	assert.Equal(t, "app:secret@tcp(db:3306)/notespace?parseTime=true&clientFoundRows=true", cfg.MySQLDSN())
}

func TestLoadConfigIgnoresBadFlushInterval(t *testing.T) {
	t.Setenv("VIEW_FLUSH_SECONDS", "not-a-number")
	cfg := LoadConfig()
	assert.Equal(t, time.Minute, cfg.ViewFlushInterval)
}
