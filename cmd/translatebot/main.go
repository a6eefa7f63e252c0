package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/larriantoniy/crosspost_translator/internal/adapters/discord"
	"github.com/larriantoniy/crosspost_translator/internal/adapters/store"
	"github.com/larriantoniy/crosspost_translator/internal/adapters/translator"
	"github.com/larriantoniy/crosspost_translator/internal/config"
	"github.com/larriantoniy/crosspost_translator/internal/metrics"
	"github.com/larriantoniy/crosspost_translator/internal/ports"
	"github.com/larriantoniy/crosspost_translator/internal/useCases"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := setupLogger(cfg.Env)
	logger.Info("starting translatebot", "env", cfg.Env, "replies_driver", cfg.Replies.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	replies, closeStore, err := newReplyStore(ctx, cfg.Replies)
	if err != nil {
		logger.Error("reply store init error", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	tr := translator.NewClient(&cfg.Translate, logger.With("component", "translator"))

	platform, err := discord.NewClient(cfg.Discord.Token, logger.With("component", "discord"))
	if err != nil {
		logger.Error("discord client init error", "error", err)
		os.Exit(1)
	}
	defer platform.Close()

	relay := useCases.NewRelay(logger, platform, tr, replies, useCases.RelayConfig{
		FromLanguage: cfg.Translate.FromLanguage,
		ToLanguage:   cfg.Translate.ToLanguage,
		ChunkLimit:   cfg.ChunkLimit,
	})
	runner := useCases.NewRunner(platform, relay, logger)

	if cfg.MetricsAddr != "" {
		srv := startMetrics(cfg.MetricsAddr, logger)
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if err := runner.Run(ctx); err != nil {
		logger.Error("runner.Run error", "error", err)
		os.Exit(1)
	}

	logger.Info("exit")
}

// newReplyStore выбирает хранилище связей оригинал → ответы по replies.driver
func newReplyStore(ctx context.Context, cfg config.RepliesConfig) (ports.ReplyStore, func(), error) {
	switch cfg.Driver {
	case config.DriverRedis:
		rs := store.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}), cfg.KeyPrefix)

		pingCtx, stop := context.WithTimeout(ctx, 5*time.Second)
		defer stop()
		if err := rs.Ping(pingCtx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return rs, func() { _ = rs.Close() }, nil
	case config.DriverMemory:
		return store.NewMemoryStore(), func() {}, nil
	default:
		return store.NewJSONFileStore(cfg.Path), func() {}, nil
	}
}

func startMetrics(addr string, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("metrics endpoint listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	return srv
}

func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		fallthrough
	default:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return logger
}
