package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tkallas/arved/internal/config"
	"github.com/tkallas/arved/internal/db"
	"github.com/tkallas/arved/internal/logger"
	"github.com/tkallas/arved/internal/server"
	"github.com/tkallas/arved/internal/services"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedFlag        = flag.Bool("seed", false, "Seed default VAT rates and company settings, then exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()
	logger.Setup(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	conn, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if cfg.App.Migrations || *migrateOnlyFlag {
		if err := db.Migrate(conn); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
	}
	if *migrateOnlyFlag {
		log.Info().Msg("migrations completed; exiting as requested")
		return
	}
	if *seedFlag {
		if err := db.Seed(conn); err != nil {
			log.Fatal().Err(err).Msg("seed failed")
		}
		log.Info().Msg("seed completed; exiting as requested")
		return
	}
	if err := db.Seed(conn); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	handler := server.New(conn, services.SystemClock)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.App.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}
