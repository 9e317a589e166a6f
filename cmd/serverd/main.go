// Package main runs the studio platform API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"

	app "github.com/atelierhq/studio-platform/internal/app"
	"github.com/atelierhq/studio-platform/internal/app/httpapi"
	"github.com/atelierhq/studio-platform/internal/app/session"
	"github.com/atelierhq/studio-platform/internal/app/storage/docstore"
	"github.com/atelierhq/studio-platform/internal/app/storage/postgres"
	"github.com/atelierhq/studio-platform/internal/config"
	"github.com/atelierhq/studio-platform/internal/middleware"
	"github.com/atelierhq/studio-platform/internal/relay"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	stores, closeStores, err := buildStores(cfg)
	if err != nil {
		return fmt.Errorf("configure stores: %w", err)
	}
	defer closeStores()

	application, err := app.New(stores, app.Options{
		SnapshotStore: buildSnapshotStore(cfg),
		SessionOpts:   []session.Option{session.WithReminderPeriod(cfg.Session.ReminderPeriod)},
	}, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	relayClient := relay.NewClient(cfg.Relay.Timeout, log)
	deps := httpapi.Deps{
		App:       application,
		Issuer:    middleware.NewTokenIssuer(cfg.Session.TokenSecret, cfg.Session.TokenTTL),
		Log:       log,
		CORS:      middleware.NewCORSMiddleware(cfg.Origins()),
		RateLimit: middleware.NewRateLimiter(cfg.RateLim.RequestsPerSecond, cfg.RateLim.Burst, log),
	}
	if cfg.Relay.ContactEndpoint != "" {
		deps.Contact = relay.NewContactRelay(relayClient, cfg.Relay.ContactEndpoint)
	}
	if cfg.Relay.ScheduleEndpoint != "" {
		deps.Schedule = relay.NewScheduleRelay(relayClient, cfg.Relay.ScheduleEndpoint)
	}
	if cfg.Relay.UploadEndpoint != "" {
		deps.Uploads = relay.NewUploadClient(relayClient, cfg.Relay.UploadEndpoint, cfg.Relay.UploadPreset)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      httpapi.NewHandler(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}
	application.Session.Mount()

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Addr).Info("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown incomplete")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application stop incomplete")
	}
	return nil
}

func buildStores(cfg *config.Config) (app.Stores, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		return app.Stores{}, noop, nil

	case config.BackendDocstore:
		client, err := docstore.NewClient(docstore.Config{
			URL:        cfg.Store.DocstoreURL,
			ServiceKey: cfg.Store.DocstoreKey,
			Timeout:    cfg.Store.Timeout,
		})
		if err != nil {
			return app.Stores{}, noop, err
		}
		store := docstore.New(client, nil)
		return app.Stores{
			Projects:   store,
			Founders:   store,
			Developers: store,
			Users:      store,
		}, noop, nil

	case config.BackendPostgres:
		store, err := postgres.Open(cfg.Store.PostgresDSN)
		if err != nil {
			return app.Stores{}, noop, err
		}
		return app.Stores{
			Projects:   store,
			Founders:   store,
			Developers: store,
			Users:      store,
		}, func() { store.Close() }, nil
	}

	return app.Stores{}, noop, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func buildSnapshotStore(cfg *config.Config) session.SnapshotStore {
	if cfg.Session.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Session.RedisAddr,
			Password: cfg.Session.RedisPassword,
		})
		return session.NewRedisStore(client)
	}
	if cfg.Session.SnapshotFile != "" {
		return session.NewFileStore(cfg.Session.SnapshotFile)
	}
	return session.NewMemoryStore()
}
