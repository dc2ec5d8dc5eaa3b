package wordgrid

import (
	"math"
	"strings"
)

// Cell identifies a grid cell by its row and column word indices.
type Cell struct {
	Row int
	Col int
}

// IsDiagonal reports whether the cell pairs a word with itself.
func (c Cell) IsDiagonal() bool {
	return c.Row == c.Col
}

// IsMatch reports whether the row word equals the column word, ignoring case.
func (c Cell) IsMatch(words []string) bool {
	return strings.ToLower(words[c.Row]) == strings.ToLower(words[c.Col])
}

// DisplayRect is the on-screen rectangle of a drawn surface in client coordinates.
type DisplayRect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// MapPointerToCell converts a pointer position in client coordinates to the grid
// cell under it. The cell size is recomputed from the displayed width so the mapping
// stays correct after a resize that has not been re-rendered yet.
func MapPointerToCell(pointerX, pointerY float64, rect DisplayRect, axisSpacePx float64, wordCount int) (Cell, bool) {
	if wordCount <= 0 {
		return Cell{}, false
	}

	x := pointerX - rect.Left
	y := pointerY - rect.Top
	if x < axisSpacePx || y < axisSpacePx {
		return Cell{}, false
	}

	gridSide := math.Max(0, rect.Width-axisSpacePx)
	if gridSide <= 0 {
		return Cell{}, false
	}
	cell := gridSide / float64(wordCount)

	col := math.Floor((x - axisSpacePx) / cell)
	row := math.Floor((y - axisSpacePx) / cell)
	if col < 0 || col >= float64(wordCount) || row < 0 || row >= float64(wordCount) {
		return Cell{}, false
	}
	return Cell{Row: int(row), Col: int(col)}, true
}

// TooltipText is the hover text for a cell: "<columnWord>, <rowWord>".
func TooltipText(words []string, c Cell) string {
	if c.Row < 0 || c.Col < 0 || c.Row >= len(words) || c.Col >= len(words) {
		return ""
	}
	return words[c.Col] + ", " + words[c.Row]
}
