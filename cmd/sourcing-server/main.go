package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"sourcing/db"
	"sourcing/db/migrations"
	"sourcing/internal/auth"
	"sourcing/internal/config"
	"sourcing/internal/handlers"
	"sourcing/internal/logger"
	"sourcing/internal/metrics"
)

const serviceName = "sourcing"

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	baseLogger := logger.Setup(cfg.Log.Level, cfg.Log.Format, serviceName)
	log.Info().Str("address", cfg.ServerAddress).Msg("sourcing service starting")

	dbConn, err := sqlx.Connect("postgres", cfg.Postgres.Conn)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer dbConn.Close()
	dbConn.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)

	if cfg.Postgres.RunMigrations {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := migrations.NewRunner(dbConn.DB).Ensure(ctx)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to apply schema")
		}
	}

	m := metrics.New()
	h := handlers.NewHandler(db.NewStorage(dbConn), m)
	router := handlers.NewRouter(h, auth.NewAuthenticator(cfg.JWTSecret), m, baseLogger)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("address", cfg.ServerAddress).Msg("starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
