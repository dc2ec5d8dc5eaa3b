package wordgrid

import (
	"errors"
	"testing"
)

func TestComputeGeometryFullView(t *testing.T) {
	g, err := ComputeGeometry(700, 13, 2, 50)
	if err != nil {
		t.Fatalf("ComputeGeometry() error = %v", err)
	}
	if g.CanvasSidePx != 700 || g.AxisSpacePx != 50 {
		t.Fatalf("unexpected canvas/axis: %+v", g)
	}
	if g.CellSizePx != 50 {
		t.Fatalf("CellSizePx = %v, want 50", g.CellSizePx)
	}
	if g.BufferSidePx() != 1400 {
		t.Fatalf("BufferSidePx() = %d, want 1400", g.BufferSidePx())
	}
	if g.FontSizePx() != 14 {
		t.Fatalf("FontSizePx() = %v, want 14", g.FontSizePx())
	}
}

func TestComputeGeometryNoDrift(t *testing.T) {
	for _, side := range []float64{150, 333, 650.5, 700} {
		for n := 1; n <= 500; n++ {
			g, err := ComputeGeometry(side, n, 1, 50)
			if err != nil {
				t.Fatalf("ComputeGeometry(%v, %d) error = %v", side, n, err)
			}
			if g.CellSizePx*float64(n) != g.GridSidePx {
				t.Fatalf("side %v n %d: cell*n = %v, grid = %v", side, n, g.CellSizePx*float64(n), g.GridSidePx)
			}
		}
	}
}

func TestComputeGeometryErrors(t *testing.T) {
	tests := []struct {
		name  string
		side  float64
		words int
		axis  float64
		want  error
	}{
		{name: "no_words", side: 700, words: 0, axis: 50, want: ErrEmptyInput},
		{name: "side_equals_axis", side: 50, words: 3, axis: 50, want: ErrDegenerateGeometry},
		{name: "side_below_axis", side: 20, words: 3, axis: 50, want: ErrDegenerateGeometry},
		{name: "zero_thumbnail", side: 0, words: 3, axis: 0, want: ErrDegenerateGeometry},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ComputeGeometry(test.side, test.words, 1, test.axis)
			if !errors.Is(err, test.want) {
				t.Fatalf("ComputeGeometry() error = %v, want %v", err, test.want)
			}
		})
	}
}

func TestComputeGeometryDefaultsScale(t *testing.T) {
	for _, ratio := range []float64{0, -1} {
		g, err := ComputeGeometry(150, 3, ratio, 0)
		if err != nil {
			t.Fatalf("ComputeGeometry() error = %v", err)
		}
		if g.ScaleFactor != 1 {
			t.Fatalf("ScaleFactor = %v for ratio %v, want 1", g.ScaleFactor, ratio)
		}
		if g.BufferSidePx() != 150 {
			t.Fatalf("BufferSidePx() = %d, want 150", g.BufferSidePx())
		}
	}
}

func TestGeometryFontSizeClamp(t *testing.T) {
	tests := []struct {
		words int
		want  float64
	}{
		{words: 10, want: 14},
		{words: 65, want: 10},
		{words: 500, want: 6},
	}
	for _, test := range tests {
		g, err := ComputeGeometry(700, test.words, 1, 50)
		if err != nil {
			t.Fatalf("ComputeGeometry() error = %v", err)
		}
		if got := g.FontSizePx(); got != test.want {
			t.Fatalf("FontSizePx() with %d words = %v, want %v", test.words, got, test.want)
		}
	}
}

func TestDisplaySide(t *testing.T) {
	if got := DisplaySide(1920, 700); got != 700 {
		t.Fatalf("DisplaySide(1920) = %v, want 700", got)
	}
	if got := DisplaySide(375, 700); got != 337 {
		t.Fatalf("DisplaySide(375) = %v, want 337", got)
	}
}
