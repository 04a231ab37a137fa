package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"boqrate/internal/config"
	"boqrate/internal/db"
	"boqrate/internal/explain"
	"boqrate/internal/logging"
	"boqrate/internal/migrations"
	"boqrate/internal/rate"
	"boqrate/internal/seed"
	"boqrate/internal/server"
	"boqrate/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Development: cfg.LogDevelopment,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dsn := cfg.SQLitePath
	if cfg.StoreDriver == config.DriverPostgres {
		dsn = cfg.DatabaseURL
	}
	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	database, err := db.Open(startCtx, cfg.StoreDriver, dsn)
	if err != nil {
		return err
	}
	defer database.Close()

	applied, err := migrations.Up(startCtx, database.DB.DB, database.Driver)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", zap.String("driver", database.Driver), zap.Int("count", applied))

	if cfg.SeedSampleData {
		stats, err := seed.Run(startCtx, database.DB)
		if err != nil {
			return err
		}
		logger.Info("sample data seeded", zap.Int("inserted", stats.Inserts), zap.Int("skipped", stats.Skipped))
	}

	engine := rate.NewEngine(
		rate.WithClassifier(rate.NewClassifierByName(cfg.Classifier)),
		rate.WithHandlingMethod(cfg.HandlingMethod),
	)
	gen := explain.NewGenerator(explain.Config{
		APIKey:   cfg.OpenAIAPIKey,
		Model:    cfg.OpenAIModel,
		Endpoint: cfg.OpenAIEndpoint,
	}, logger)
	explainer := explain.NewService(gen, cfg.ExplainTimeout, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewWithEngine(store.New(database.DB), engine, explainer, logger),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.ExplainTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreDriver),
			zap.String("classifier", cfg.Classifier),
			zap.String("handling_method", string(cfg.HandlingMethod)),
			zap.String("explanations", explainer.Provider()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
