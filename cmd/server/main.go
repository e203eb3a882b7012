package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/mealplan/internal/auth"
	"github.com/JonMunkholm/mealplan/internal/config"
	"github.com/JonMunkholm/mealplan/internal/core"
	"github.com/JonMunkholm/mealplan/internal/logging"
	"github.com/JonMunkholm/mealplan/internal/mail"
	"github.com/JonMunkholm/mealplan/internal/store"
	"github.com/JonMunkholm/mealplan/internal/web"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())
	if cfg.Email.APIKey == "" {
		slog.Warn("SENDGRID_API_KEY is empty; exports will fail at delivery")
	}

	loc, err := cfg.Export.Location()
	if err != nil {
		slog.Error("invalid export timezone", "error", err)
		os.Exit(1)
	}

	if cfg.Database.MigrateOnStart {
		if err := store.Migrate(cfg.Database.URL); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	limiter := core.NewExportLimiter(cfg.Export.MaxConcurrent, cfg.Export.MaxWaitTime)
	service := core.NewService(
		store.New(pool),
		mail.NewSender(cfg.Email.APIKey, cfg.Email.BaseURL),
		core.ServiceConfig{
			From:          core.Address{Email: cfg.Email.FromEmail, Name: cfg.Email.FromName},
			Location:      loc,
			ExportTimeout: cfg.Export.Timeout,
			Limiter:       limiter,
		},
	)

	collections := core.Collections()
	slog.Info("collections registered", "count", len(collections))
	for _, def := range collections {
		slog.Debug("collection", "key", def.Key, "file", def.Filename, "order_by", def.OrderBy)
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience)
	server := web.NewServer(service, tokens, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if st := limiter.Status(); st.Active > 0 {
			slog.Info("waiting for exports to complete", "active", st.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("exports did not complete in time", "error", err)
			} else {
				slog.Info("all exports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
