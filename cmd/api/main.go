package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"placement/api/internal/app"
	"placement/api/internal/config"
	"placement/api/internal/email"
	"placement/api/internal/metrics"
	"placement/api/internal/search"
	"placement/api/internal/session"
	"placement/api/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "placement-api",
		Short:         "Placement cell company tracker API",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API (default)",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		newMigrateCmd(),
		newSeedCmd(),
		newProposalsCmd(),
	)
	return root
}

func newLogger(cfg config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
}

// openStore connects and migrates. The caller closes the returned db.
func openStore(ctx context.Context, cfg config.Config) (*sql.DB, *store.PostgresStore, error) {
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := store.ApplyMigrations(ctx, db, store.Migrations()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations failed: %w", err)
	}
	return db, store.NewPostgresStore(db), nil
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, dataStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	registry := metrics.New()
	mailer := email.NewService(email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
	if !mailer.IsConfigured() {
		logger.Info("smtp not configured, reviewer emails disabled")
	}

	opts := app.Options{
		Observer: registry,
		Notifier: email.NewProposalNotifier(mailer, dataStore),
		Search:   search.NewService(search.NewPgFTS(db), search.NewSubstring(dataStore), logger),
		Logger:   logger,
	}
	if strings.TrimSpace(cfg.RedisURL) != "" {
		logger.Info("using redis for session storage")
		redisStore, err := session.NewRedisStore(cfg.RedisURL, dataStore)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer redisStore.Close()
		opts.Sessions = redisStore
	} else {
		logger.Info("using postgres for session storage")
	}

	service := app.New(cfg, dataStore, opts)
	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin).
		WithLogger(logger).
		WithMetrics(registry)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("placement API listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-sigCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return nil
}
