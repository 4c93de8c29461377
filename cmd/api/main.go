package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IlyasAtabaev731/shop-backend/internal/api"
	"github.com/IlyasAtabaev731/shop-backend/internal/config"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/password"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/ratelimit"
	"github.com/IlyasAtabaev731/shop-backend/internal/lib/secrets"
	"github.com/IlyasAtabaev731/shop-backend/internal/storage/postgres"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting application",
		slog.String("env", cfg.Env),
		slog.String("host", cfg.HTTPServer.Host),
		slog.Int("port", cfg.HTTPServer.Port),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := secrets.NewProvider(cfg.Secrets.Provider, cfg.Secrets.Path)
	if err != nil {
		log.Error("Invalid secrets provider", "error", err)
		os.Exit(1)
	}
	creds, err := provider.Resolve(ctx)
	if err != nil {
		log.Error("Failed to resolve secrets", "error", err)
		os.Exit(1)
	}

	dbUrl := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(creds.DBUser),
		url.QueryEscape(creds.DBPassword),
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.Db,
		cfg.Postgres.SSLMode,
	)

	storage, err := postgres.New(ctx, dbUrl, postgres.Options{
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	})
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer storage.Stop()

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RateLimit.RedisAddr,
			Password: cfg.RateLimit.RedisPassword,
			DB:       cfg.RateLimit.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("Redis is unreachable, requests will not be limited until it is back", "error", err)
		}

		limiter = ratelimit.New(ratelimit.NewRedisStore(rdb),
			ratelimit.Limit{Requests: cfg.RateLimit.PerHour, Window: time.Hour},
			ratelimit.Limit{Requests: cfg.RateLimit.PerDay, Window: 24 * time.Hour},
		)
	}

	apiServer := api.New(cfg, log, storage, password.NewBcrypt(), limiter, []byte(creds.JWTSecret))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		apiServer.MustStart()
	}()

	<-sigChan
	log.Info("Got signal to shutdown server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Stopping server error", "error", err)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger
	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
	return log
}
