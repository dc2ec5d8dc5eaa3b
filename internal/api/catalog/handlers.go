// internal/api/catalog/handlers.go
package catalog

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/codr1/poemgrid/internal/api/apiutil"
	"github.com/codr1/poemgrid/internal/api/htmx"
	"github.com/codr1/poemgrid/internal/ratelimit"
	"github.com/codr1/poemgrid/internal/scheduler"
	poemstempl "github.com/codr1/poemgrid/internal/templates/components/poems"
)

// Refresher reloads the catalog on demand.
type Refresher interface {
	Refresh(ctx context.Context) (scheduler.RefreshResult, error)
}

var (
	refresher     Refresher
	limiter       *ratelimit.Limiter
	refresherOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
// A nil limiter leaves manual refreshes unthrottled.
func InitHandlers(r Refresher, l *ratelimit.Limiter) {
	if r == nil {
		return
	}
	refresherOnce.Do(func() {
		refresher = r
		limiter = l
	})
}

// POST /api/v1/catalog/refresh
func HandleRefresh(w http.ResponseWriter, r *http.Request) {
	handleRefresh(refresher, limiter, w, r)
}

func handleRefresh(refresher Refresher, limiter *ratelimit.Limiter, w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if refresher == nil {
		logger.Error().Msg("Catalog refresher not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if limiter != nil {
		ip := limiter.ClientIP(r)
		if result := limiter.Allow(ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("catalog_refresh", ip, result.Reason)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
			http.Error(w, "Too many refresh requests", http.StatusTooManyRequests)
			return
		}
	}

	result, err := refresher.Refresh(r.Context())
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadGateway, Message: "Catalog refresh failed", Err: err})
		return
	}

	if htmx.IsRequest(r) {
		htmx.Trigger(w, "catalog-refreshed")
		if err := apiutil.RenderHTML(r.Context(), w, poemstempl.RefreshStatus(result.BookCount, result.PoemCount), http.StatusOK); err != nil {
			apiutil.WriteError(w, r, err)
		}
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write refresh result")
	}
}
