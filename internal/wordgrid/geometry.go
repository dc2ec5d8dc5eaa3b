package wordgrid

import (
	"math"
)

const (
	minFontSizePx = 6
	maxFontSizePx = 14
)

// Geometry is the derived layout of one render pass. All lengths are display pixels.
type Geometry struct {
	CanvasSidePx float64
	AxisSpacePx  float64
	GridSidePx   float64
	CellSizePx   float64
	ScaleFactor  float64
	WordCount    int
}

// ComputeGeometry derives the grid layout for wordCount words on a square of
// requestedSidePx display pixels. GridSidePx is re-derived from the cell size so that
// CellSizePx*WordCount == GridSidePx holds exactly.
func ComputeGeometry(requestedSidePx float64, wordCount int, devicePixelRatio float64, axisSpacePx float64) (Geometry, error) {
	if wordCount <= 0 {
		return Geometry{}, ErrEmptyInput
	}
	if math.IsNaN(requestedSidePx) || math.IsInf(requestedSidePx, 0) {
		return Geometry{}, ErrDegenerateGeometry
	}
	if math.IsNaN(devicePixelRatio) || devicePixelRatio <= 0 {
		devicePixelRatio = 1
	}

	gridSide := math.Max(0, requestedSidePx-axisSpacePx)
	if gridSide <= 0 {
		return Geometry{}, ErrDegenerateGeometry
	}
	cell := gridSide / float64(wordCount)
	if cell <= 0 || math.IsInf(cell, 0) {
		return Geometry{}, ErrDegenerateGeometry
	}

	return Geometry{
		CanvasSidePx: requestedSidePx,
		AxisSpacePx:  axisSpacePx,
		GridSidePx:   cell * float64(wordCount),
		CellSizePx:   cell,
		ScaleFactor:  devicePixelRatio,
		WordCount:    wordCount,
	}, nil
}

// BufferSidePx is the side of the backing pixel buffer. It is the only place the
// device pixel ratio enters the math.
func (g Geometry) BufferSidePx() int {
	return int(math.Floor(g.CanvasSidePx * g.ScaleFactor))
}

// CellOrigin is the top (or left) edge of row (or column) i.
func (g Geometry) CellOrigin(i int) float64 {
	return g.AxisSpacePx + float64(i)*g.CellSizePx
}

// CellRect returns the top-left corner and side of cell (row, col).
func (g Geometry) CellRect(row, col int) (x, y, side float64) {
	return g.CellOrigin(col), g.CellOrigin(row), g.CellSizePx
}

// CellCenter returns the display-pixel center of cell (row, col).
func (g Geometry) CellCenter(row, col int) (x, y float64) {
	half := g.CellSizePx / 2
	return g.CellOrigin(col) + half, g.CellOrigin(row) + half
}

// FontSizePx is the label font size: the cell size clamped to [6, 14], whole pixels.
func (g Geometry) FontSizePx() float64 {
	return math.Max(minFontSizePx, math.Floor(math.Min(maxFontSizePx, g.CellSizePx)))
}

// DisplaySide picks the full-view side for a viewport: 90% of its width, capped at
// maxSidePx.
func DisplaySide(viewportWidthPx, maxSidePx float64) float64 {
	return math.Min(maxSidePx, math.Floor(viewportWidthPx*0.9))
}
