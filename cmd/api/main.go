/* Copyright (c) 2025 BugBeheer contributors
 * SPDX-License-Identifier: BSD-3-Clause */
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ChielvanV/BugBeheer/internal/config"
	httpapi "github.com/ChielvanV/BugBeheer/internal/http"
	"github.com/ChielvanV/BugBeheer/internal/jobs"
	"github.com/ChielvanV/BugBeheer/internal/logger"
	"github.com/ChielvanV/BugBeheer/internal/repo"
	"github.com/ChielvanV/BugBeheer/internal/services"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AuthPassword == "" {
		log.Fatal().Msg("AUTH_PASSWORD must be set")
	}

	// DB
	db := repo.MustOpen(ctx, cfg, log)
	defer db.Close()
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}

	// Services
	repository := repo.NewRepository(db, log)
	svc := services.NewService(cfg, log, repository)
	sessions := services.NewSessions(cfg, log)

	// Warm the snapshot so views are served from a consistent state.
	{
		ctx2, cancel2 := context.WithTimeout(ctx, 20*time.Second)
		defer cancel2()
		if err := svc.RefreshSnapshot(ctx2); err != nil {
			log.Fatal().Err(err).Msg("initial snapshot load failed")
		}
	}

	// HTTP server (Gin)
	router := httpapi.NewRouter(cfg, log, svc, sessions)

	// Cron
	cron := jobs.New(cfg, log, svc, sessions)
	cron.Start()
	defer cron.Stop()

	// graceful shutdown
	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(cfg.HTTPAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("http server error")
		}
	}

	time.Sleep(500 * time.Millisecond)
}
