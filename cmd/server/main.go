// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/poemgrid/internal/catalog"
	"github.com/codr1/poemgrid/internal/config"
	"github.com/codr1/poemgrid/internal/db"
	"github.com/codr1/poemgrid/internal/scheduler"
	"github.com/codr1/poemgrid/internal/viewer"
)

const viewerSweepJobName = "viewer_session_sweep"

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Features.EnableDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func main() {
	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogger(cfg)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	fetcher, err := catalog.NewFetcher(cfg.Catalog.Origin, &http.Client{Timeout: cfg.Catalog.Timeout}, cfg.Catalog.Concurrency)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create catalog fetcher")
	}
	refresher := scheduler.NewCatalogRefresher(fetcher, database, cfg.Catalog.Timeout*4)

	sessions := viewer.NewSessions(viewer.NewBroadcaster(), viewer.MountOptions{
		MaxSidePx: float64(cfg.Render.MaxSidePx),
		Debounce:  cfg.Render.ResizeDebounce,
	}, viewer.WithMaxSessions(cfg.Render.MaxSessions))

	if err := scheduler.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize scheduler")
	}
	svc, err := scheduler.ServiceInstance()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load scheduler")
	}
	if err := scheduler.RegisterCatalogRefreshJob(svc, refresher, cfg.Catalog.RefreshCron); err != nil {
		log.Fatal().Err(err).Msg("Failed to register catalog refresh job")
	}
	if _, err := scheduler.AddJob(viewerSweepJobName, "*/5 * * * *", func() {
		sessions.Sweep(10 * time.Minute)
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to register viewer sweep job")
	}

	refreshLimiter := newRefreshLimiter(cfg)
	defer refreshLimiter.Close()

	server := newServer(cfg, serverDeps{
		database:       database,
		sessions:       sessions,
		refresher:      refresher,
		refreshLimiter: refreshLimiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	if !cfg.Catalog.SkipInitialRefresh {
		g.Go(func() error {
			if _, err := refresher.Refresh(log.Logger.WithContext(ctx)); err != nil {
				log.Error().Err(err).Msg("Initial catalog refresh failed")
			}
			return nil
		})
	}

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Msg("Starting server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownTimeout := time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", 30)) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := scheduler.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}
