package config

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Database configuration. Driver is "mysql" or "sqlite".
	DBDriver   string
	DBUser     string
	DBPassword string
	DBHost     string
	DBName     string
	SQLitePath string

	JWTSecret string

	// Redis buffers public-note view counters; empty disables it.
	RedisAddr         string
	RedisPassword     string
	ViewFlushInterval time.Duration

	// MinIO image uploads; empty endpoint disables the upload endpoint.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioPublicURL string
	MinioUseSSL    bool

	// OpenAI key for the note enhance endpoint; empty disables it.
	OpenAIKey string
}

func LoadConfig() *Config {
	cfg := &Config{
		Port: getenv("PORT", "8080"),

		DBDriver:   getenv("DB_DRIVER", "sqlite"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     os.Getenv("DB_HOST"),
		DBName:     os.Getenv("DB_NAME"),
		SQLitePath: getenv("SQLITE_PATH", "./data/notespace.db"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "notespace"),
		MinioPublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",

		OpenAIKey: os.Getenv("OPENAI_KEY"),
	}

	cfg.ViewFlushInterval = time.Minute
	if v := os.Getenv("VIEW_FLUSH_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.ViewFlushInterval = time.Duration(secs) * time.Second
		}
	}

	// A missing secret gets a random one so a dev instance still runs;
	// sessions then die with the process.
	if cfg.JWTSecret == "" {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err == nil {
			cfg.JWTSecret = hex.EncodeToString(buf)
		}
	}

	return cfg
}

// MySQLDSN builds the DSN for the mysql driver. clientFoundRows makes
// RowsAffected count matched rows, as sqlite does; without it a no-op
// update reports zero rows and looks like a missing record.
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ")/" + c.DBName + "?parseTime=true&clientFoundRows=true"
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
