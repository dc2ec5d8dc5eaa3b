package viewer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/poemgrid/internal/surface"
	"github.com/codr1/poemgrid/internal/wordgrid"
)

// DefaultMaxSidePx caps the full-view side.
const DefaultMaxSidePx = 700

// FrameEvent names the SSE event carrying a re-rendered frame.
const FrameEvent = "frame"

// Viewport is the client's layout size. A zero width means "not reported yet" and
// renders at the maximum side.
type Viewport struct {
	WidthPx          float64
	DevicePixelRatio float64
}

// Frame is one full-view render of a mount.
type Frame struct {
	Seq     int64
	SidePx  float64
	SVG     string
	Matched []string
	Legend  wordgrid.Legend
	// Empty is set when there was nothing to draw; SVG is then the bare wrapper.
	Empty bool
}

type MountOptions struct {
	MaxSidePx float64
	Debounce  time.Duration
	Engine    *wordgrid.Engine
}

func (o MountOptions) withDefaults() MountOptions {
	if o.MaxSidePx <= 0 {
		o.MaxSidePx = DefaultMaxSidePx
	}
	if o.Debounce == 0 {
		o.Debounce = DefaultResizeDebounce
	}
	if o.Engine == nil {
		o.Engine = wordgrid.New(wordgrid.FullView)
	}
	return o
}

// Mount is the full view of one document in one browser session. It owns the word
// sequence, the last reported viewport and the resize debouncer.
type Mount struct {
	id          string
	slug        string
	words       []string
	opts        MountOptions
	broadcaster *Broadcaster
	debouncer   *Debouncer
	logger      zerolog.Logger

	mu       sync.Mutex
	viewport Viewport
	frame    Frame
	seq      int64
	lastSeen time.Time
	closed   bool
}

func newMount(id, slug string, words []string, b *Broadcaster, opts MountOptions) *Mount {
	m := &Mount{
		id:          id,
		slug:        slug,
		words:       words,
		opts:        opts.withDefaults(),
		broadcaster: b,
		lastSeen:    time.Now(),
		logger: log.With().
			Str("component", "viewer_mount").
			Str("session_id", id).
			Str("poem_slug", slug).
			Logger(),
	}
	m.debouncer = NewDebouncer(m.opts.Debounce, m.renderAndPublish)
	return m
}

func (m *Mount) ID() string {
	return m.id
}

func (m *Mount) Slug() string {
	return m.slug
}

func (m *Mount) Words() []string {
	return m.words
}

// Viewport returns the last reported viewport.
func (m *Mount) Viewport() Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// Frame returns the last rendered frame.
func (m *Mount) Frame() Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.frame
}

// SidePx is the full-view side for the current viewport.
func (m *Mount) SidePx() float64 {
	return m.sideFor(m.Viewport())
}

func (m *Mount) sideFor(vp Viewport) float64 {
	if vp.WidthPx <= 0 {
		return m.opts.MaxSidePx
	}
	return wordgrid.DisplaySide(vp.WidthPx, m.opts.MaxSidePx)
}

// Resize records a new viewport and schedules a debounced re-render. Only the last
// viewport of a burst is rendered.
func (m *Mount) Resize(widthPx, devicePixelRatio float64) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.viewport = Viewport{WidthPx: widthPx, DevicePixelRatio: devicePixelRatio}
	m.lastSeen = time.Now()
	m.mu.Unlock()

	m.debouncer.Trigger()
}

// RenderNow renders the current viewport synchronously and stores the frame.
func (m *Mount) RenderNow(ctx context.Context) (Frame, error) {
	vp := m.Viewport()
	side := m.sideFor(vp)

	var buf bytes.Buffer
	canvas := surface.NewSVG(&buf, side)
	matched, drawErr := m.opts.Engine.Draw(ctx, canvas, m.words, vp.DevicePixelRatio)
	if err := canvas.Close(); err != nil {
		return Frame{}, fmt.Errorf("close svg: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.frame = Frame{
		Seq:     m.seq,
		SidePx:  side,
		SVG:     surface.Inline(buf.String()),
		Matched: matched,
		Legend:  wordgrid.BuildLegend(matched, m.opts.Engine.Oracle()),
		Empty:   drawErr != nil,
	}
	return m.frame, nil
}

// Publish sends frame to the session's SSE clients.
func (m *Mount) Publish(frame Frame) error {
	data, err := EncodeFrame(frame)
	if err != nil {
		return err
	}
	m.broadcaster.Publish(m.id, Event{Name: FrameEvent, Data: data})
	return nil
}

func (m *Mount) renderAndPublish() {
	ctx := m.logger.WithContext(context.Background())
	frame, err := m.RenderNow(ctx)
	if err != nil {
		m.logger.Error().Err(err).Msg("Failed to render resized view")
		return
	}
	if err := m.Publish(frame); err != nil {
		m.logger.Error().Err(err).Msg("Failed to publish resized view")
		return
	}
	m.logger.Debug().Int64("seq", frame.Seq).Float64("side_px", frame.SidePx).Msg("Published resized view")
}

// Touch marks the mount as in use.
func (m *Mount) Touch() {
	m.mu.Lock()
	m.lastSeen = time.Now()
	m.mu.Unlock()
}

func (m *Mount) idleSince() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSeen
}

// Close cancels any pending re-render.
func (m *Mount) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.debouncer.Stop()
}

type legendMessage struct {
	Label      string `json:"label"`
	Color      string `json:"color"`
	Background string `json:"background,omitempty"`
	Padding    string `json:"padding,omitempty"`
}

type frameMessage struct {
	Seq    int64           `json:"seq"`
	SidePx float64         `json:"sidePx"`
	SVG    string          `json:"svg"`
	Legend []legendMessage `json:"legend"`
	Empty  bool            `json:"empty"`
}

// EncodeFrame is the JSON payload of a frame event.
func EncodeFrame(frame Frame) (string, error) {
	msg := frameMessage{
		Seq:    frame.Seq,
		SidePx: frame.SidePx,
		SVG:    frame.SVG,
		Legend: make([]legendMessage, 0, len(frame.Legend.Entries)),
		Empty:  frame.Empty,
	}
	for _, entry := range frame.Legend.Entries {
		msg.Legend = append(msg.Legend, legendMessage{
			Label:      entry.Label,
			Color:      entry.TextColor,
			Background: entry.Background,
			Padding:    entry.Padding,
		})
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	return string(data), nil
}
