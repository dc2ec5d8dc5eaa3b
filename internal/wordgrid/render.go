package wordgrid

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	overlayAlpha     uint8 = 0x55
	overlayLineWidth       = 0.3
	labelOffsetPx          = 20
)

var (
	backgroundColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	labelInkColor    = color.NRGBA{A: 0xff}
	placeholderColor = color.NRGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
	nonColorMatch    = color.NRGBA{A: 0xff}
	overlayStroke    = color.NRGBA{A: 0xff}
)

type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignRight
)

// TextStyle describes a label. Text is vertically centered on the anchor point.
// Rotated text is turned 90 degrees counter-clockwise around the anchor before
// alignment is applied along the rotated baseline.
type TextStyle struct {
	SizePx  float64
	Color   color.Color
	Align   TextAlign
	Rotated bool
}

// Surface is a drawing target addressed in display pixels. Implementations apply the
// device pixel ratio themselves.
type Surface interface {
	Side() float64
	Clear()
	FillRect(x, y, w, h float64, c color.Color)
	Circle(cx, cy, r float64, fill, stroke color.Color, lineWidth float64)
	FillText(text string, x, y float64, style TextStyle)
}

// Draw computes the geometry from the surface side and renders words onto it.
func (e *Engine) Draw(ctx context.Context, s Surface, words []string, devicePixelRatio float64) ([]string, error) {
	g, err := e.Geometry(s.Side(), len(words), devicePixelRatio)
	if err != nil {
		e.renderEmpty(s)
		log.Ctx(ctx).Debug().Err(err).Str("view", e.cfg.Name).Int("word_count", len(words)).Msg("Word matrix left empty")
		return nil, err
	}
	return e.Render(ctx, s, words, g)
}

// Render paints the word matrix and returns the matched colors in first-seen
// row-major order. Views without a legend return nil. Empty input and degenerate
// geometry leave the surface in its empty state and return a sentinel error.
func (e *Engine) Render(ctx context.Context, s Surface, words []string, g Geometry) ([]string, error) {
	logger := log.Ctx(ctx).With().Str("component", "wordgrid").Str("view", e.cfg.Name).Logger()

	if err := validateGeometry(words, g); err != nil {
		e.renderEmpty(s)
		logger.Debug().Err(err).Int("word_count", len(words)).Msg("Word matrix left empty")
		return nil, err
	}

	n := len(words)
	lowered := make([]string, n)
	colors := make([]ColorResolution, n)
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
		colors[i] = e.oracle.Resolve(lowered[i])
	}

	s.Clear()
	s.FillRect(0, 0, g.CanvasSidePx, g.CanvasSidePx, backgroundColor)

	if e.cfg.DrawAxisLabels && g.AxisSpacePx > 0 {
		e.drawAxisLabels(s, lowered, colors, g)
	}

	for i := 0; i < n; i++ {
		x, y, side := g.CellRect(i, i)
		fill := color.Color(placeholderColor)
		if colors[i].Valid {
			fill = colors[i].NRGBA()
		}
		s.FillRect(x, y, side, side, fill)
	}

	radius := e.overlayRadius(g)
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			if lowered[row] != lowered[col] {
				continue
			}
			x, y, side := g.CellRect(row, col)
			res := colors[col]
			if !res.Valid {
				if row == col {
					continue
				}
				s.FillRect(x, y, side, side, nonColorMatch)
				continue
			}

			s.FillRect(x, y, side, side, res.NRGBA())
			cx, cy := g.CellCenter(row, col)
			s.Circle(cx, cy, radius, res.WithAlphaSuffix(overlayAlpha), overlayStroke, overlayLineWidth)
		}
	}

	var matched []string
	if e.cfg.DrawLegend {
		matched = scanMatchedColors(lowered, colors)
	}

	logger.Debug().
		Int("word_count", n).
		Float64("cell_size_px", g.CellSizePx).
		Int("matched_colors", len(matched)).
		Msg("Word matrix rendered")
	return matched, nil
}

// MatchedColors returns the colors Render would report for words without drawing
// anything. Views without a legend return nil; empty input returns ErrEmptyInput.
func (e *Engine) MatchedColors(ctx context.Context, words []string) ([]string, error) {
	if len(words) == 0 {
		log.Ctx(ctx).Debug().Err(ErrEmptyInput).Str("view", e.cfg.Name).Msg("No words to match")
		return nil, ErrEmptyInput
	}
	if !e.cfg.DrawLegend {
		return nil, nil
	}
	lowered := make([]string, len(words))
	colors := make([]ColorResolution, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
		colors[i] = e.oracle.Resolve(lowered[i])
	}
	return scanMatchedColors(lowered, colors), nil
}

// scanMatchedColors walks the grid row-major and collects each matched word that
// resolves to a color, once, in first-seen order.
func scanMatchedColors(lowered []string, colors []ColorResolution) []string {
	var matched []string
	seen := make(map[string]struct{})
	for row := range lowered {
		for col := range lowered {
			if lowered[row] != lowered[col] || !colors[col].Valid {
				continue
			}
			word := lowered[col]
			if _, ok := seen[word]; !ok {
				seen[word] = struct{}{}
				matched = append(matched, word)
			}
		}
	}
	return matched
}

func (e *Engine) drawAxisLabels(s Surface, words []string, colors []ColorResolution, g Geometry) {
	size := g.FontSizePx()
	anchor := g.AxisSpacePx/2 + labelOffsetPx
	for i, word := range words {
		ink := color.Color(labelInkColor)
		if colors[i].Valid {
			ink = colors[i].NRGBA()
		}
		label := DisplayLabel(word)
		center := g.CellOrigin(i) + g.CellSizePx/2

		s.FillText(label, anchor, center, TextStyle{SizePx: size, Color: ink, Align: AlignRight})
		s.FillText(label, center, anchor, TextStyle{SizePx: size, Color: ink, Align: AlignLeft, Rotated: true})
	}
}

func (e *Engine) overlayRadius(g Geometry) float64 {
	radius := g.CellSizePx * float64(g.WordCount) / e.cfg.CircleRadiusDivisor
	if e.cfg.ClampCircleRadius {
		radius = math.Min(radius, g.CellSizePx/2)
	}
	return radius
}

func (e *Engine) renderEmpty(s Surface) {
	s.Clear()
	if e.cfg.EmptyFill != nil {
		s.FillRect(0, 0, s.Side(), s.Side(), e.cfg.EmptyFill)
	}
}

func validateGeometry(words []string, g Geometry) error {
	if len(words) == 0 {
		return ErrEmptyInput
	}
	if g.CellSizePx <= 0 || g.GridSidePx <= 0 {
		return ErrDegenerateGeometry
	}
	if g.WordCount != len(words) {
		return fmt.Errorf("geometry computed for %d words, got %d: %w", g.WordCount, len(words), ErrDegenerateGeometry)
	}
	return nil
}
