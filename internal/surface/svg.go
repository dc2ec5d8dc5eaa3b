package surface

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"

	"github.com/codr1/poemgrid/internal/wordgrid"
)

// svgUnitsPerPx is the viewBox resolution. svgo takes integer coordinates, so the
// viewBox counts hundredths of a display pixel to keep fractional cells aligned.
const svgUnitsPerPx = 100

// SVG writes the matrix as a vector document sized in display pixels. The device
// pixel ratio does not apply.
type SVG struct {
	canvas *svg.SVG
	side   float64
	closed bool
}

var _ wordgrid.Surface = (*SVG)(nil)

// NewSVG starts a document of sidePx by sidePx on w. Close must be called to finish it.
func NewSVG(w io.Writer, sidePx float64) *SVG {
	canvas := svg.New(w)
	side := int(math.Round(sidePx))
	canvas.Startview(side, side, 0, 0, units(sidePx), units(sidePx))
	return &SVG{canvas: canvas, side: sidePx}
}

func (s *SVG) Side() float64 {
	return s.side
}

// Clear is a no-op: a document only ever holds one render pass.
func (s *SVG) Clear() {}

func (s *SVG) FillRect(x, y, w, h float64, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := units(x), units(y)
	s.canvas.Rect(x0, y0, units(x+w)-x0, units(y+h)-y0, fillAttrs(c)...)
}

func (s *SVG) Circle(cx, cy, r float64, fill, stroke color.Color, lineWidth float64) {
	if r <= 0 {
		return
	}
	attrs := fillAttrs(fill)
	if stroke != nil && lineWidth > 0 {
		hex, _ := hexAndOpacity(stroke)
		attrs = append(attrs,
			fmt.Sprintf(`stroke="%s"`, hex),
			fmt.Sprintf(`stroke-width="%d"`, units(lineWidth)),
		)
	}
	s.canvas.Circle(units(cx), units(cy), units(r), attrs...)
}

func (s *SVG) FillText(text string, x, y float64, style wordgrid.TextStyle) {
	if text == "" || style.SizePx <= 0 {
		return
	}
	anchor := "start"
	if style.Align == wordgrid.AlignRight {
		anchor = "end"
	}
	ux, uy := units(x), units(y)
	attrs := append(fillAttrs(style.Color),
		`font-family="monospace"`,
		fmt.Sprintf(`font-size="%d"`, units(style.SizePx)),
		`dominant-baseline="central"`,
		fmt.Sprintf(`text-anchor="%s"`, anchor),
	)
	if style.Rotated {
		attrs = append(attrs, fmt.Sprintf(`transform="rotate(-90 %d %d)"`, ux, uy))
	}
	s.canvas.Text(ux, uy, text, attrs...)
}

// Close ends the document. It is safe to call more than once.
func (s *SVG) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.canvas.End()
	return nil
}

func units(px float64) int {
	return int(math.Round(px * svgUnitsPerPx))
}

func fillAttrs(c color.Color) []string {
	if c == nil {
		return []string{`fill="none"`}
	}
	hex, opacity := hexAndOpacity(c)
	attrs := []string{fmt.Sprintf(`fill="%s"`, hex)}
	if opacity < 1 {
		attrs = append(attrs, fmt.Sprintf(`fill-opacity="%s"`, strconv.FormatFloat(opacity, 'f', 3, 64)))
	}
	return attrs
}

func hexAndOpacity(c color.Color) (string, float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), float64(n.A) / 255
}

// Inline strips the XML prolog and generator comment so the document can be
// embedded in an HTML page.
func Inline(doc string) string {
	if i := strings.Index(doc, "<svg"); i > 0 {
		return doc[i:]
	}
	return doc
}
