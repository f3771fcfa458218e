package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/rehearse/internal/api"
	"github.com/MikeSquared-Agency/rehearse/internal/config"
	"github.com/MikeSquared-Agency/rehearse/internal/hermes"
	"github.com/MikeSquared-Agency/rehearse/internal/session"
	"github.com/MikeSquared-Agency/rehearse/internal/store"
	"github.com/MikeSquared-Agency/rehearse/internal/store/memory"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(parent context.Context) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)

	slog.Info("rehearse starting", "port", cfg.Port)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	var sessions session.Store
	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, sessions are kept in memory")
		sessions = memory.New()
	} else {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		slog.Info("database connected")
		sessions = db
	}

	// NATS/Hermes, optional: the API works without an event bus.
	var (
		pub          session.Publisher
		hermesClient *hermes.Client
	)
	if cfg.NatsURL != "" {
		c, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("NATS unavailable, running without events", "url", cfg.NatsURL, "error", err)
		} else {
			hermesClient = c
			pub = c
			defer hermesClient.Close()
			slog.Info("NATS connected", "url", cfg.NatsURL)
		}
	}

	svc := session.New(sessions, pub, newRand(cfg.RandomSeed), slog.Default(),
		session.WithRequiredExchanges(cfg.RequiredExchanges))

	if hermesClient != nil {
		if err := hermesClient.Subscribe(hermes.SubjectSessionCompleted, svc.HandleSessionCompleted); err != nil {
			return err
		}
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, cfg.APIToken, svc)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("rehearse ready", "port", cfg.Port, "required_exchanges", svc.RequiredExchanges())

	// Graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	slog.Info("rehearse stopped")
	return nil
}
