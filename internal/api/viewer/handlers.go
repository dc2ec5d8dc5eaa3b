// internal/api/viewer/handlers.go
package viewer

import (
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/poemgrid/internal/api/apiutil"
	"github.com/codr1/poemgrid/internal/request"
	appviewer "github.com/codr1/poemgrid/internal/viewer"
)

const slugParam = "slug"

var (
	sessions     *appviewer.Sessions
	sessionsOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(s *appviewer.Sessions) {
	if s == nil {
		return
	}
	sessionsOnce.Do(func() {
		sessions = s
	})
}

type viewportRequest struct {
	Width float64 `json:"width"`
	DPR   float64 `json:"dpr"`
}

type viewportResponse struct {
	SessionID string  `json:"sessionId"`
	SidePx    float64 `json:"sidePx"`
}

// POST /api/v1/viewer/{slug}/viewport
func HandleViewport(w http.ResponseWriter, r *http.Request) {
	handleViewport(sessions, w, r)
}

func handleViewport(s *appviewer.Sessions, w http.ResponseWriter, r *http.Request) {
	mount, err := lookupMount(s, r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req viewportRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Invalid viewport", Err: err})
		return
	}
	if math.IsNaN(req.Width) || math.IsInf(req.Width, 0) || req.Width <= 0 {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "width", Reason: "must be a positive number"})
		return
	}

	mount.Resize(req.Width, req.DPR)
	resp := viewportResponse{SessionID: mount.ID(), SidePx: mount.SidePx()}
	if err := apiutil.WriteJSON(w, http.StatusAccepted, resp); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write viewport response")
	}
}

// GET /api/v1/viewer/{slug}/events
func HandleEvents(w http.ResponseWriter, r *http.Request) {
	handleEvents(sessions, w, r)
}

func handleEvents(s *appviewer.Sessions, w http.ResponseWriter, r *http.Request) {
	mount, err := lookupMount(s, r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	logger := log.Ctx(r.Context()).With().Str("session_id", mount.ID()).Logger()

	// The server write timeout would cut the stream.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logger.Debug().Err(err).Msg("Could not clear write deadline for event stream")
	}

	logger.Debug().Msg("Viewer event stream opened")
	s.Broadcaster().ServeSSE(w, r, mount.ID(),
		func(c *appviewer.Client) {
			mount.Touch()
			if err := mount.Publish(mount.Frame()); err != nil {
				logger.Error().Err(err).Msg("Failed to publish current frame")
			}
		},
		func() {
			mount.Touch()
			logger.Debug().Msg("Viewer event stream closed")
		},
	)
}

func lookupMount(s *appviewer.Sessions, r *http.Request) (*appviewer.Mount, error) {
	if s == nil {
		return nil, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Viewer not initialized"}
	}
	id, present, ok := request.SessionIDFromRequest(r)
	if !present {
		return nil, apiutil.FieldError{Field: request.SessionParam, Reason: "is required"}
	}
	if !ok {
		return nil, apiutil.FieldError{Field: request.SessionParam, Reason: "must be a session id"}
	}
	mount, ok := s.Get(id)
	if !ok || mount.Slug() != strings.TrimSpace(r.PathValue(slugParam)) {
		return nil, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Viewer session not found"}
	}
	return mount, nil
}
