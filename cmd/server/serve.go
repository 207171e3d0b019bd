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

	"github.com/anonto42/yatube/internal/cache"
	"github.com/anonto42/yatube/internal/mailer"
	"github.com/anonto42/yatube/internal/models"
	"github.com/anonto42/yatube/internal/monitoring"
	"github.com/anonto42/yatube/internal/router"
	"github.com/anonto42/yatube/internal/storage"
	"github.com/anonto42/yatube/pkg/config"
	"github.com/anonto42/yatube/pkg/firebase"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server and the metrics endpoint",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	logger := config.NewLogger(cfg)

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize databases: %w", err)
	}
	defer db.CloseDB()

	if err := models.Migrate(db.SQL); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := newStorage(cfg, db)
	if err != nil {
		return err
	}
	m, err := newMailer(cfg, logger)
	if err != nil {
		return err
	}

	deps := router.Deps{
		Config:    cfg,
		Logger:    logger,
		DB:        db.SQL,
		Storage:   store,
		Mailer:    m,
		PageCache: cache.NewPageCache(cfg.CacheSize, cfg.CacheTime),
	}
	if cfg.FirebaseCredentialsPath != "" {
		verifier, err := firebase.NewVerifier(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseCheckRevoked, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize Firebase: %w", err)
		}
		deps.Firebase = verifier
	}

	e, err := router.NewServer(deps)
	if err != nil {
		return err
	}

	metrics := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           monitoring.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 2)
	go func() {
		logger.Info("Starting metrics server", slog.String("port", cfg.MetricsPort))
		if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("metrics server: %w", err)
		}
	}()
	go func() {
		logger.Info("Starting server", slog.String("port", cfg.Port), slog.String("env", cfg.Env))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err = <-errc:
		logger.Error("Server failed", slog.Any("error", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if serr := e.Shutdown(shutdownCtx); serr != nil {
		logger.Error("Error shutting down http server", slog.Any("error", serr))
	}
	if serr := metrics.Shutdown(shutdownCtx); serr != nil {
		logger.Error("Error shutting down metrics server", slog.Any("error", serr))
	}
	return err
}

func newStorage(cfg *config.Config, db *config.DB) (storage.Storage, error) {
	switch cfg.MediaBackend {
	case "local":
		return storage.NewLocal(cfg.MediaRoot)
	case "gridfs":
		if db.Mongo == nil {
			return nil, errors.New("MEDIA_BACKEND=gridfs requires MONGO_URI")
		}
		return storage.NewGridFS(db.Mongo.Database(cfg.MongoDatabase))
	default:
		return nil, fmt.Errorf("unsupported MEDIA_BACKEND %q", cfg.MediaBackend)
	}
}

func newMailer(cfg *config.Config, logger *slog.Logger) (mailer.Mailer, error) {
	switch cfg.EmailBackend {
	case "console":
		return mailer.NewConsole(logger), nil
	case "ses":
		return mailer.NewSES(cfg.EmailFrom)
	default:
		return nil, fmt.Errorf("unsupported EMAIL_BACKEND %q", cfg.EmailBackend)
	}
}
