package main

import (
	"context"
	"os"
	"time"

	"shamba-backend/internal/app"
	"shamba-backend/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("App wiring failed")
	}
	defer a.Scheduler.Stop()

	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Ping(); err != nil {
			log.Fatal().Err(err).Msg("Database unreachable")
		}
	}
	backend := "postgres"
	if cfg.DatabaseURL == "" {
		backend = "sqlite (in-memory)"
	}
	log.Info().Str("backend", backend).Msg("Database connected")

	if a.Rdb != nil {
		if err := a.Rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis unreachable")
		}
		log.Info().Msg("Redis connected")
	}

	log.Info().Str("port", cfg.Port).Msg("Server listening")
	if err := a.Fiber.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
