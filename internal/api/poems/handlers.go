// internal/api/poems/handlers.go
package poems

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/poemgrid/internal/api/apiutil"
	"github.com/codr1/poemgrid/internal/api/htmx"
	"github.com/codr1/poemgrid/internal/catalog"
	appdb "github.com/codr1/poemgrid/internal/db"
	"github.com/codr1/poemgrid/internal/surface"
	poemstempl "github.com/codr1/poemgrid/internal/templates/components/poems"
	"github.com/codr1/poemgrid/internal/templates/layouts"
	appviewer "github.com/codr1/poemgrid/internal/viewer"
	"github.com/codr1/poemgrid/internal/wordgrid"
)

const (
	slugParam        = "slug"
	poemQueryTimeout = 5 * time.Second
	maxRequestSidePx = 4096
	maxDevicePixels  = 4

	viewFull      = "full"
	viewThumbnail = "thumbnail"
)

// Store is the read side of the catalog store.
type Store interface {
	GetPoem(ctx context.Context, slug string) (catalog.Poem, error)
	LoadCatalog(ctx context.Context) ([]catalog.Book, error)
}

// Options sizes the rendered views.
type Options struct {
	MaxSidePx         float64
	ThumbnailSidePx   float64
	ClampCircleRadius bool
}

type handlerState struct {
	store       Store
	sessions    *appviewer.Sessions
	opts        Options
	fullView    *wordgrid.Engine
	thumbnailer *wordgrid.Engine
}

var (
	state     *handlerState
	stateOnce sync.Once
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(store Store, sessions *appviewer.Sessions, opts Options) {
	if store == nil || sessions == nil {
		return
	}
	stateOnce.Do(func() {
		state = newHandlerState(store, sessions, opts)
	})
}

func newHandlerState(store Store, sessions *appviewer.Sessions, opts Options) *handlerState {
	if opts.MaxSidePx <= 0 {
		opts.MaxSidePx = appviewer.DefaultMaxSidePx
	}
	if opts.ThumbnailSidePx <= 0 {
		opts.ThumbnailSidePx = 150
	}
	full := wordgrid.FullView
	full.ClampCircleRadius = opts.ClampCircleRadius
	return &handlerState{
		store:       store,
		sessions:    sessions,
		opts:        opts,
		fullView:    wordgrid.New(full),
		thumbnailer: wordgrid.New(wordgrid.Thumbnail),
	}
}

func loadState(w http.ResponseWriter, r *http.Request) *handlerState {
	if state == nil {
		log.Ctx(r.Context()).Error().Msg("Poem handlers not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil
	}
	return state
}

// /
func HandleIndexPage(w http.ResponseWriter, r *http.Request) {
	s := loadState(w, r)
	if s == nil {
		return
	}
	s.handleIndexPage(w, r)
}

func (s *handlerState) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), poemQueryTimeout)
	defer cancel()

	books, err := s.store.LoadCatalog(ctx)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load catalog", Err: err})
		return
	}

	page := layouts.Base("Word matrices", poemstempl.IndexPage(books, int(s.opts.ThumbnailSidePx)))
	if err := apiutil.RenderHTML(r.Context(), w, page, http.StatusOK); err != nil {
		apiutil.WriteError(w, r, err)
	}
}

// /poems/{slug}
func HandlePoemPage(w http.ResponseWriter, r *http.Request) {
	s := loadState(w, r)
	if s == nil {
		return
	}
	s.handlePoemPage(w, r)
}

func (s *handlerState) handlePoemPage(w http.ResponseWriter, r *http.Request) {
	poem, err := s.loadPoem(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	mount, err := s.sessions.Open(r.Context(), poem.Slug, wordgrid.Tokenize(poem.Text))
	if errors.Is(err, appviewer.ErrSessionLimit) {
		w.Header().Set("Retry-After", "30")
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusServiceUnavailable, Message: "Too many open viewers, try again shortly", Err: err})
		return
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to render poem", Err: err})
		return
	}
	frame := mount.Frame()
	log.Ctx(r.Context()).Debug().
		Str("poem_slug", poem.Slug).
		Str("session_id", mount.ID()).
		Int("word_count", len(mount.Words())).
		Msg("Opened viewer session")

	view := poemstempl.PoemView{
		Poem:        poem,
		SessionID:   mount.ID(),
		SVG:         frame.SVG,
		Legend:      frame.Legend,
		Empty:       frame.Empty,
		AxisSpacePx: s.fullView.Config().AxisSpacePx,
	}
	page := layouts.Base(poem.Title, poemstempl.PoemPage(view))
	if err := apiutil.RenderHTML(r.Context(), w, page, http.StatusOK); err != nil {
		apiutil.WriteError(w, r, err)
	}
}

// /api/v1/poems/{slug}/grid.png
func HandleGridPNG(w http.ResponseWriter, r *http.Request) {
	s := loadState(w, r)
	if s == nil {
		return
	}
	s.handleGridPNG(w, r)
}

func (s *handlerState) handleGridPNG(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseGridRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	raster, err := surface.NewRaster(req.side, req.dpr)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Image size is too small", Err: err})
		return
	}
	defer raster.Close()

	matched, drawErr := req.engine.Draw(r.Context(), raster, req.words, req.dpr)
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to encode image", Err: err})
		return
	}
	writeGridHeaders(w, "image/png", matched, drawErr)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write image")
	}
}

// /api/v1/poems/{slug}/grid.svg
func HandleGridSVG(w http.ResponseWriter, r *http.Request) {
	s := loadState(w, r)
	if s == nil {
		return
	}
	s.handleGridSVG(w, r)
}

func (s *handlerState) handleGridSVG(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseGridRequest(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var buf bytes.Buffer
	canvas := surface.NewSVG(&buf, req.side)
	matched, drawErr := req.engine.Draw(r.Context(), canvas, req.words, req.dpr)
	if err := canvas.Close(); err != nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to encode image", Err: err})
		return
	}
	writeGridHeaders(w, "image/svg+xml", matched, drawErr)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write image")
	}
}

// /api/v1/poems/{slug}/cell
func HandleCellTooltip(w http.ResponseWriter, r *http.Request) {
	s := loadState(w, r)
	if s == nil {
		return
	}
	s.handleCellTooltip(w, r)
}

func (s *handlerState) handleCellTooltip(w http.ResponseWriter, r *http.Request) {
	poem, err := s.loadPoem(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var values [4]float64
	for i, name := range []string{"x", "y", "left", "top"} {
		if values[i], err = apiutil.RequiredFloatQuery(r, name); err != nil {
			apiutil.WriteError(w, r, err)
			return
		}
	}
	width, err := apiutil.RequiredFloatQuery(r, "width")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	engine := s.fullView
	if r.URL.Query().Get("view") == viewThumbnail {
		engine = s.thumbnailer
	}
	words := wordgrid.Tokenize(poem.Text)
	rect := wordgrid.DisplayRect{Left: values[2], Top: values[3], Width: width, Height: width}
	cell, ok := engine.MapPointer(values[0], values[1], rect, len(words))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, wordgrid.TooltipText(words, cell))
}

// /api/v1/poems/{slug}/legend
func HandleLegend(w http.ResponseWriter, r *http.Request) {
	s := loadState(w, r)
	if s == nil {
		return
	}
	s.handleLegend(w, r)
}

type legendResponse struct {
	Text    string          `json:"text"`
	Entries []legendPayload `json:"entries"`
}

type legendPayload struct {
	Label      string `json:"label"`
	Color      string `json:"color"`
	Background string `json:"background,omitempty"`
	Padding    string `json:"padding,omitempty"`
}

func (s *handlerState) handleLegend(w http.ResponseWriter, r *http.Request) {
	poem, err := s.loadPoem(r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	matched, err := s.fullView.MatchedColors(r.Context(), wordgrid.Tokenize(poem.Text))
	noWords := errors.Is(err, wordgrid.ErrEmptyInput)
	legend := wordgrid.BuildLegend(matched, s.fullView.Oracle())

	if strings.Contains(r.Header.Get("Accept"), "application/json") && !htmx.IsRequest(r) {
		resp := legendResponse{Text: legend.String(), Entries: make([]legendPayload, 0, len(legend.Entries))}
		if noWords {
			resp.Text = ""
		}
		for _, entry := range legend.Entries {
			resp.Entries = append(resp.Entries, legendPayload{
				Label:      entry.Label,
				Color:      entry.TextColor,
				Background: entry.Background,
				Padding:    entry.Padding,
			})
		}
		if err := apiutil.WriteJSON(w, http.StatusOK, resp); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write legend")
		}
		return
	}

	if noWords {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		return
	}
	if err := apiutil.RenderHTML(r.Context(), w, poemstempl.Legend(legend), http.StatusOK); err != nil {
		apiutil.WriteError(w, r, err)
	}
}

type gridRequest struct {
	words  []string
	engine *wordgrid.Engine
	side   float64
	dpr    float64
}

func (s *handlerState) parseGridRequest(r *http.Request) (gridRequest, error) {
	poem, err := s.loadPoem(r)
	if err != nil {
		return gridRequest{}, err
	}

	req := gridRequest{words: wordgrid.Tokenize(poem.Text)}
	defaultSide := s.opts.MaxSidePx
	switch view := strings.TrimSpace(r.URL.Query().Get("view")); view {
	case "", viewFull:
		req.engine = s.fullView
	case viewThumbnail:
		req.engine = s.thumbnailer
		defaultSide = s.opts.ThumbnailSidePx
	default:
		return gridRequest{}, apiutil.FieldError{Field: "view", Reason: "must be full or thumbnail"}
	}

	if req.side, err = apiutil.FloatQuery(r, "side", defaultSide); err != nil {
		return gridRequest{}, err
	}
	if math.IsNaN(req.side) || req.side < 1 || req.side > maxRequestSidePx {
		return gridRequest{}, apiutil.FieldError{Field: "side", Reason: "must be between 1 and 4096"}
	}
	if req.dpr, err = apiutil.FloatQuery(r, "dpr", 1); err != nil {
		return gridRequest{}, err
	}
	if math.IsNaN(req.dpr) || req.dpr <= 0 {
		req.dpr = 1
	}
	req.dpr = math.Min(req.dpr, maxDevicePixels)
	// The backing buffer, not the display side, is what costs memory.
	if limit := s.maxBufferSidePx(); req.side*req.dpr > limit {
		return gridRequest{}, apiutil.FieldError{
			Field:  "side",
			Reason: fmt.Sprintf("times dpr must not exceed %g pixels", limit),
		}
	}
	return req, nil
}

// maxBufferSidePx bounds side*dpr at the largest full view on the densest display.
func (s *handlerState) maxBufferSidePx() float64 {
	return math.Max(s.opts.MaxSidePx, s.opts.ThumbnailSidePx) * maxDevicePixels
}

func (s *handlerState) loadPoem(r *http.Request) (catalog.Poem, error) {
	slug := strings.TrimSpace(r.PathValue(slugParam))
	if slug == "" {
		return catalog.Poem{}, apiutil.FieldError{Field: slugParam, Reason: "is required"}
	}

	ctx, cancel := context.WithTimeout(r.Context(), poemQueryTimeout)
	defer cancel()

	poem, err := s.store.GetPoem(ctx, slug)
	if errors.Is(err, appdb.ErrPoemNotFound) {
		return catalog.Poem{}, apiutil.HandlerError{Status: http.StatusNotFound, Message: "Poem not found", Err: err}
	}
	if err != nil {
		return catalog.Poem{}, apiutil.HandlerError{Status: http.StatusInternalServerError, Message: "Failed to load poem", Err: err}
	}
	return poem, nil
}

// writeGridHeaders describes the render outcome. An empty matrix is still a 200.
func writeGridHeaders(w http.ResponseWriter, contentType string, matched []string, drawErr error) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	switch {
	case errors.Is(drawErr, wordgrid.ErrEmptyInput):
		w.Header().Set("X-Grid-State", "empty")
	case errors.Is(drawErr, wordgrid.ErrDegenerateGeometry):
		w.Header().Set("X-Grid-State", "degenerate")
	default:
		w.Header().Set("X-Grid-State", "drawn")
	}
	if len(matched) > 0 {
		w.Header().Set("X-Matched-Colors", strings.Join(matched, ","))
	}
}
