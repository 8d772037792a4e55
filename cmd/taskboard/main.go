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

	"taskboard/internal/access"
	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/server"
	"taskboard/internal/service"
	"taskboard/internal/storage/sqlite"
	"taskboard/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	addrFlag := flag.String("addr", cfg.Addr, "HTTP listen address")
	dbFlag := flag.String("db", cfg.DBPath, "Path to sqlite database file")
	staticFlag := flag.String("static", cfg.StaticDir, "Directory with built frontend")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, "taskboard")
	if err != nil {
		logger.Error("unable to set up tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	store, err := sqlite.Open(*dbFlag, logger)
	if err != nil {
		logger.Error("unable to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	var revoker auth.Revoker = store
	if cfg.RedisURL != "" {
		client, err := auth.NewRedisClient(cfg.RedisURL)
		if err != nil {
			logger.Error("unable to configure redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Error("redis unreachable", slog.String("error", err.Error()))
			os.Exit(1)
		}
		revoker = auth.NewRedisRevoker(client)
		logger.Info("token revocation backed by redis")
	}

	policy := access.AuthorOnly
	if cfg.CommentDeleteByBoardCreator {
		policy = access.AuthorOrBoardCreator
	}

	svc := service.New(service.Options{
		Store:         store,
		Tokens:        auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		Revoker:       revoker,
		CommentPolicy: policy,
		Logger:        logger,
	})
	srv := server.New(svc, logger, *staticFlag)

	httpServer := &http.Server{
		Addr:    *addrFlag,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("failed to flush traces", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
