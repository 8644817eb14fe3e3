// Package main is the entry point of the wealthdesk reporting service.
//
// Startup order: configuration, logging, replica store, report services,
// replica refresher and scheduler, HTTP server. The process then waits for
// SIGINT/SIGTERM and shuts down in reverse order.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/masterc/wealthdesk/internal/config"
	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/modules/reports"
	"github.com/masterc/wealthdesk/internal/replica"
	"github.com/masterc/wealthdesk/internal/scheduler"
	"github.com/masterc/wealthdesk/internal/server"
	"github.com/masterc/wealthdesk/pkg/logger"
)

// Hourly, at minute 15
const integrityCheckSchedule = "0 15 * * * *"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting wealthdesk")

	// The store opens lazily: a missing replica only fails queries until a refresh installs one
	store, err := database.New(database.Config{
		Path: cfg.ReplicaPath(),
		Name: "replica",
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create replica store")
	}
	if !store.Available() {
		log.Warn().Str("path", store.Path()).Msg("Replica file not found, queries fail until it is refreshed")
	}

	reportService := reports.NewService(store, cfg.DisplayLimit, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var source replica.Source
	if cfg.Replica.Configured() {
		source, err = replica.NewSource(ctx, cfg.Replica)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure replica source")
		}
		log.Info().Str("source", source.Name()).Msg("Replica source configured")
	}
	refresher := replica.NewRefresher(store, source, log)

	sched := scheduler.New(log)
	checkJob := scheduler.NewCheckReplicaJob(store, log)
	if err := sched.AddJob(integrityCheckSchedule, checkJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register replica integrity check")
	}
	if cfg.RefreshSchedule != "" {
		if !refresher.Configured() {
			log.Fatal().Msg("WEALTHDESK_REFRESH_SCHEDULE is set but no replica source is configured")
		}
		if err := sched.AddJob(cfg.RefreshSchedule, replica.NewRefreshJob(refresher, 0)); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Invalid refresh schedule")
		}
	}
	sched.Start()

	if store.Available() {
		if err := sched.RunNow(checkJob); err != nil {
			log.Error().Err(err).Msg("Replica failed its startup integrity check")
		}
	}

	srv := server.New(server.Config{
		Log:       log,
		Store:     store,
		Reports:   reportService,
		Refresher: refresher,
		Scheduler: sched,
		DataDir:   cfg.DataDir,
		Port:      cfg.Port,
		DevMode:   cfg.LogLevel == "debug",
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	sched.Stop()

	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close replica store")
	}

	log.Info().Msg("Server stopped")
}
