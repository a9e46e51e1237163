package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidyalink/app/internal/config"
	"vidyalink/app/internal/devserver"
	"vidyalink/app/internal/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	fixtures, err := devserver.SeedFixtures()
	if err != nil {
		logger.Fatal().Err(err).Msg("seed fixtures failed")
	}

	srv := devserver.New(cfg.DevServer, cfg.Environment, fixtures, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("dev server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	logger.Info().Msg("dev server exited cleanly")
}
