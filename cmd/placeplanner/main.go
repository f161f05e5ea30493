package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"placeplanner/internal/store"
)

func main() {
	cfg, logger, err := loadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()

	db, dialect, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal(err, "open database")
	}
	defer db.Close()

	dataStore := store.New(db, dialect)
	if err := dataStore.Migrate(ctx); err != nil {
		logger.Fatal(err, "migrate database")
	}

	if err := seedCatalog(ctx, dataStore, cfg.Catalog.SeedPath); err != nil {
		logger.Fatal(err, "seed catalog")
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           newHTTPHandler(cfg, dataStore),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("database", dialect.String()).Msg("placeplanner listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "server forced to shutdown")
		return
	}

	logger.Info("placeplanner exited")
}
