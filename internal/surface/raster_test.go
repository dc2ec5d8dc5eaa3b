package surface

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/codr1/poemgrid/internal/wordgrid"
)

func TestNewRasterScalesBuffer(t *testing.T) {
	r, err := NewRaster(150, 2)
	if err != nil {
		t.Fatalf("NewRaster() error = %v", err)
	}
	defer r.Close()

	if got := r.Image().Bounds(); got != image.Rect(0, 0, 300, 300) {
		t.Fatalf("buffer bounds = %v, want 300x300", got)
	}
	if r.Side() != 150 {
		t.Fatalf("Side() = %v, want 150", r.Side())
	}
}

func TestNewRasterRejectsEmpty(t *testing.T) {
	if _, err := NewRaster(0, 1); !errors.Is(err, ErrEmptySurface) {
		t.Fatalf("NewRaster(0) error = %v, want ErrEmptySurface", err)
	}
}

func TestRasterFillRectUsesDisplayPixels(t *testing.T) {
	r, err := NewRaster(100, 2)
	if err != nil {
		t.Fatalf("NewRaster() error = %v", err)
	}
	defer r.Close()

	r.FillRect(50, 50, 50, 50, color.NRGBA{R: 0xff, A: 0xff})

	if got := r.Image().RGBAAt(150, 150); got != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Fatalf("inside pixel = %v, want red", got)
	}
	if got := r.Image().RGBAAt(90, 90); got.A != 0 {
		t.Fatalf("outside pixel = %v, want untouched", got)
	}
}

func TestRasterCircleStroke(t *testing.T) {
	r, err := NewRaster(100, 1)
	if err != nil {
		t.Fatalf("NewRaster() error = %v", err)
	}
	defer r.Close()

	r.FillRect(0, 0, 100, 100, color.White)
	r.Circle(50, 50, 20, color.NRGBA{B: 0xff, A: 0x55}, color.Black, 2)

	center := r.Image().RGBAAt(50, 50)
	if center.B <= center.R || center.R == 0xff {
		t.Fatalf("center = %v, want tinted blue", center)
	}
	ring := r.Image().RGBAAt(70, 50)
	if ring.R > 0x80 {
		t.Fatalf("ring pixel = %v, want dark stroke", ring)
	}
	if got := r.Image().RGBAAt(5, 5); got != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Fatalf("corner = %v, want white", got)
	}
}

func TestRasterRotatedTextGoesUp(t *testing.T) {
	r, err := NewRaster(100, 1)
	if err != nil {
		t.Fatalf("NewRaster() error = %v", err)
	}
	defer r.Close()

	r.FillText("mmmm", 50, 60, wordgrid.TextStyle{SizePx: 14, Color: color.Black, Rotated: true})

	above, below := 0, 0
	bounds := r.Image().Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if r.Image().RGBAAt(x, y).A == 0 {
				continue
			}
			if y < 60 {
				above++
			} else {
				below++
			}
		}
	}
	if above == 0 || below != 0 {
		t.Fatalf("rotated text pixels above=%d below=%d, want all above the anchor", above, below)
	}
}

func TestRasterRenderThumbnail(t *testing.T) {
	r, err := NewRaster(150, 1)
	if err != nil {
		t.Fatalf("NewRaster() error = %v", err)
	}
	defer r.Close()

	engine := wordgrid.New(wordgrid.Thumbnail)
	if _, err := engine.Draw(context.Background(), r, []string{"red", "blue", "red"}, 1); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	img := r.Image()
	if got := img.RGBAAt(25, 25); got != (color.RGBA{R: 0xff, A: 0xff}) {
		t.Fatalf("cell (0,0) = %v, want red", got)
	}
	if got := img.RGBAAt(75, 75); got != (color.RGBA{B: 0xff, A: 0xff}) {
		t.Fatalf("cell (1,1) = %v, want blue", got)
	}
	if got := img.RGBAAt(75, 25); got != (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
		t.Fatalf("cell (0,1) = %v, want background", got)
	}

	var buf bytes.Buffer
	if err := r.EncodePNG(&buf); err != nil {
		t.Fatalf("EncodePNG() error = %v", err)
	}
	decoded, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if decoded.Bounds().Dx() != 150 {
		t.Fatalf("png width = %d, want 150", decoded.Bounds().Dx())
	}
}
