// cmd/server/server.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/poemgrid/internal/api"
	catalogapi "github.com/codr1/poemgrid/internal/api/catalog"
	"github.com/codr1/poemgrid/internal/api/poems"
	viewerapi "github.com/codr1/poemgrid/internal/api/viewer"
	"github.com/codr1/poemgrid/internal/config"
	"github.com/codr1/poemgrid/internal/db"
	"github.com/codr1/poemgrid/internal/ratelimit"
	"github.com/codr1/poemgrid/internal/scheduler"
	"github.com/codr1/poemgrid/internal/viewer"
)

type serverDeps struct {
	database       *db.DB
	sessions       *viewer.Sessions
	refresher      *scheduler.CatalogRefresher
	refreshLimiter *ratelimit.Limiter
}

func newServer(cfg *config.Config, deps serverDeps) *http.Server {
	router := http.NewServeMux()

	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)

	poems.InitHandlers(deps.database, deps.sessions, poems.Options{
		MaxSidePx:         float64(cfg.Render.MaxSidePx),
		ThumbnailSidePx:   float64(cfg.Render.ThumbnailSidePx),
		ClampCircleRadius: cfg.Render.ClampCircleRadius,
	})
	viewerapi.InitHandlers(deps.sessions)
	catalogapi.InitHandlers(deps.refresher, deps.refreshLimiter)

	registerRoutes(router, deps.database)

	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// newRefreshLimiter throttles manual catalog refreshes per client and globally.
func newRefreshLimiter(cfg *config.Config) *ratelimit.Limiter {
	limits := ratelimit.DefaultConfig()
	limits.Cooldown = cfg.Catalog.RefreshCooldown
	limits.MaxPerHour = cfg.Catalog.RefreshPerHour
	limits.GlobalPerHour = cfg.Catalog.RefreshGlobalPerHour
	limits.TrustProxy = cfg.Catalog.TrustProxy
	return ratelimit.New(limits)
}

func registerRoutes(mux *http.ServeMux, database *db.DB) {
	mux.HandleFunc("GET /{$}", poems.HandleIndexPage)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		count, err := database.Queries.CountPoems(ctx)
		if err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Health check failed")
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK %d poems", count)
	})

	// Poem routes
	mux.HandleFunc("GET /poems/{slug}", poems.HandlePoemPage)
	mux.HandleFunc("GET /api/v1/poems/{slug}/grid.png", poems.HandleGridPNG)
	mux.HandleFunc("GET /api/v1/poems/{slug}/grid.svg", poems.HandleGridSVG)
	mux.HandleFunc("GET /api/v1/poems/{slug}/cell", poems.HandleCellTooltip)
	mux.HandleFunc("GET /api/v1/poems/{slug}/legend", poems.HandleLegend)

	// Viewer routes
	mux.HandleFunc("POST /api/v1/viewer/{slug}/viewport", viewerapi.HandleViewport)
	mux.HandleFunc("GET /api/v1/viewer/{slug}/events", viewerapi.HandleEvents)

	// Catalog routes
	mux.HandleFunc("POST /api/v1/catalog/refresh", catalogapi.HandleRefresh)
}
