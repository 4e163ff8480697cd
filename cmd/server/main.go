package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/notespace-app/notespace/internal/auth"
	"github.com/notespace-app/notespace/internal/config"
	"github.com/notespace-app/notespace/internal/handlers"
	"github.com/notespace-app/notespace/internal/store"
	"github.com/notespace-app/notespace/internal/uploads"
	"github.com/notespace-app/notespace/internal/views"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.LoadConfig()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		st  *store.Store
		err error
	)
	if cfg.DBDriver == "mysql" {
		st, err = store.Open("mysql", cfg.MySQLDSN())
	} else {
		if mkErr := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); mkErr != nil {
			log.Fatal().Err(mkErr).Msg("failed to create data directory")
		}
		st, err = store.Open("sqlite", cfg.SQLitePath)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer st.Close()

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, view counters fall back to the database")
			rdb = nil
		}
	}

	// The counter's flusher stops, and drains, when ctx is cancelled.
	viewCounter := views.New(rdb, st, log)
	viewCounter.Start(ctx, cfg.ViewFlushInterval)

	var uploader *uploads.Uploader
	if cfg.MinioEndpoint != "" {
		uploader, err = uploads.New(uploads.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			PublicURL: cfg.MinioPublicURL,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize object store")
		}
	}

	var aiClient *openai.Client
	if cfg.OpenAIKey != "" {
		aiClient = openai.NewClient(cfg.OpenAIKey)
	}

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	h := handlers.New(st, viewCounter, uploader, aiClient, log)
	a := handlers.NewAuthHandlers(h, jwtService)
	router := handlers.NewRouter(h, a, jwtService)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.DBDriver).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
}
