// Command chatserver serves the chat timeline backed by PostgreSQL and a
// Redis cache of recent messages.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GetStream/stream-chat-core/api"
	"github.com/GetStream/stream-chat-core/config"
	"github.com/GetStream/stream-chat-core/postgres"
	"github.com/GetStream/stream-chat-core/redis"
	"github.com/GetStream/stream-chat-core/timeline"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to read settings from")
	flag.Parse()

	if err := run(*envFile); err != nil {
		slog.Error("Server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func run(envFile string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	cache, err := redis.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer cache.Close()

	srv := &http.Server{
		Addr: cfg.ListenAddr,
		Handler: &api.API{
			Logger:           logger,
			DB:               db,
			Cache:            cache,
			Timeline:         timeline.Timeline{Location: cfg.Location()},
			PageSize:         cfg.PageSize,
			MaxReactions:     cfg.MaxReactions,
			PaginationOffset: cfg.PaginationOffset,
		},
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", cfg.ListenAddr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
