// Package wordgrid renders word-matrix visualizations: every word of a text is both
// a row and a column, and cells light up where the row word equals the column word.
package wordgrid

import (
	"errors"
	"image/color"
)

var (
	// ErrEmptyInput means there are no words to draw.
	ErrEmptyInput = errors.New("word sequence is empty")
	// ErrDegenerateGeometry means the requested size leaves no room for cells.
	ErrDegenerateGeometry = errors.New("grid has no drawable area")
)

// Config parameterizes an engine instance. The full view and thumbnails differ only
// in these values.
type Config struct {
	Name                string
	AxisSpacePx         float64
	CircleRadiusDivisor float64
	DrawLegend          bool
	DrawAxisLabels      bool
	// ClampCircleRadius bounds the overlay circle to half a cell. Off by default: the
	// radius is cell*N/divisor, which outgrows the cell as N grows.
	ClampCircleRadius bool
	// EmptyFill is painted over the canvas when there is nothing to draw. Nil leaves
	// the surface cleared.
	EmptyFill color.Color
}

var (
	FullView = Config{
		Name:                "full",
		AxisSpacePx:         50,
		CircleRadiusDivisor: 8,
		DrawLegend:          true,
		DrawAxisLabels:      true,
	}
	Thumbnail = Config{
		Name:                "thumbnail",
		AxisSpacePx:         0,
		CircleRadiusDivisor: 6,
		EmptyFill:           color.NRGBA{R: 0xf0, G: 0xf0, B: 0xf0, A: 0xff},
	}
)

// Engine draws word matrices for one Config.
type Engine struct {
	cfg    Config
	oracle ColorOracle
}

type Option func(*Engine)

// WithOracle replaces the CSS color oracle.
func WithOracle(oracle ColorOracle) Option {
	return func(e *Engine) {
		if oracle != nil {
			e.oracle = oracle
		}
	}
}

func New(cfg Config, opts ...Option) *Engine {
	if cfg.CircleRadiusDivisor <= 0 {
		cfg.CircleRadiusDivisor = FullView.CircleRadiusDivisor
	}
	e := &Engine{cfg: cfg, oracle: defaultOracle}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Config() Config {
	return e.cfg
}

func (e *Engine) Oracle() ColorOracle {
	return e.oracle
}

// Geometry computes the layout for this engine's axis margin.
func (e *Engine) Geometry(requestedSidePx float64, wordCount int, devicePixelRatio float64) (Geometry, error) {
	return ComputeGeometry(requestedSidePx, wordCount, devicePixelRatio, e.cfg.AxisSpacePx)
}

// MapPointer maps a client-space pointer position to a cell using this engine's
// axis margin.
func (e *Engine) MapPointer(pointerX, pointerY float64, rect DisplayRect, wordCount int) (Cell, bool) {
	return MapPointerToCell(pointerX, pointerY, rect, e.cfg.AxisSpacePx, wordCount)
}
