// Package surface provides the drawing targets the word matrix is rendered onto.
package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/codr1/poemgrid/internal/wordgrid"
)

// Bezier control distance for a quarter circle.
const kappa = 0.5522847498

var ErrEmptySurface = errors.New("surface has no pixels")

var (
	monoFont     *opentype.Font
	monoFontErr  error
	monoFontOnce sync.Once
)

func loadMonoFont() (*opentype.Font, error) {
	monoFontOnce.Do(func() {
		monoFont, monoFontErr = opentype.Parse(gomono.TTF)
	})
	return monoFont, monoFontErr
}

// Raster is an RGBA pixel buffer sized side*ratio. Callers draw in display pixels;
// every operation is scaled by the device pixel ratio, like a pre-scaled canvas.
type Raster struct {
	img   *image.RGBA
	side  float64
	scale float64
	font  *opentype.Font
	faces map[float64]font.Face
}

var _ wordgrid.Surface = (*Raster)(nil)

// NewRaster allocates a buffer of floor(sidePx*devicePixelRatio) pixels per side.
func NewRaster(sidePx, devicePixelRatio float64) (*Raster, error) {
	if math.IsNaN(devicePixelRatio) || devicePixelRatio <= 0 {
		devicePixelRatio = 1
	}
	bufferSide := int(math.Floor(sidePx * devicePixelRatio))
	if bufferSide <= 0 {
		return nil, ErrEmptySurface
	}
	f, err := loadMonoFont()
	if err != nil {
		return nil, fmt.Errorf("load monospace font: %w", err)
	}
	return &Raster{
		img:   image.NewRGBA(image.Rect(0, 0, bufferSide, bufferSide)),
		side:  sidePx,
		scale: devicePixelRatio,
		font:  f,
		faces: make(map[float64]font.Face),
	}, nil
}

func (r *Raster) Side() float64 {
	return r.side
}

// Image exposes the backing buffer.
func (r *Raster) Image() *image.RGBA {
	return r.img
}

func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

// Close releases cached font faces.
func (r *Raster) Close() error {
	var errs []error
	for size, face := range r.faces {
		if err := face.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.faces, size)
	}
	return errors.Join(errs...)
}

func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (r *Raster) FillRect(x, y, w, h float64, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	x0, y0 := x*r.scale, y*r.scale
	x1, y1 := (x+w)*r.scale, (y+h)*r.scale
	r.fillPath(x0, y0, x1, y1, c, func(z *vector.Rasterizer, ox, oy float64) {
		z.MoveTo(float32(x0-ox), float32(y0-oy))
		z.LineTo(float32(x1-ox), float32(y0-oy))
		z.LineTo(float32(x1-ox), float32(y1-oy))
		z.LineTo(float32(x0-ox), float32(y1-oy))
		z.ClosePath()
	})
}

func (r *Raster) Circle(cx, cy, radius float64, fill, stroke color.Color, lineWidth float64) {
	if radius <= 0 {
		return
	}
	dcx, dcy, dr := cx*r.scale, cy*r.scale, radius*r.scale

	if fill != nil {
		r.fillPath(dcx-dr, dcy-dr, dcx+dr, dcy+dr, fill, func(z *vector.Rasterizer, ox, oy float64) {
			addCircle(z, dcx-ox, dcy-oy, dr, true)
		})
	}

	if stroke == nil || lineWidth <= 0 {
		return
	}
	half := lineWidth * r.scale / 2
	outer := dr + half
	inner := math.Max(0, dr-half)
	r.fillPath(dcx-outer, dcy-outer, dcx+outer, dcy+outer, stroke, func(z *vector.Rasterizer, ox, oy float64) {
		addCircle(z, dcx-ox, dcy-oy, outer, true)
		if inner > 0 {
			addCircle(z, dcx-ox, dcy-oy, inner, false)
		}
	})
}

func (r *Raster) FillText(text string, x, y float64, style wordgrid.TextStyle) {
	if text == "" || style.SizePx <= 0 {
		return
	}
	face, err := r.face(style.SizePx)
	if err != nil {
		return
	}
	mask, mid := renderTextMask(face, text)
	if mask == nil {
		return
	}
	width := mask.Bounds().Dx()

	ax := int(math.Round(x * r.scale))
	ay := int(math.Round(y * r.scale))
	ink := image.NewUniform(style.Color)

	if !style.Rotated {
		left := ax
		if style.Align == wordgrid.AlignRight {
			left -= width
		}
		dst := mask.Bounds().Add(image.Pt(left, ay-mid))
		draw.DrawMask(r.img, dst, ink, image.Point{}, mask, image.Point{}, draw.Over)
		return
	}

	rotated := rotateCounterClockwise(mask)
	top := ay - width
	if style.Align == wordgrid.AlignRight {
		top = ay
	}
	dst := rotated.Bounds().Add(image.Pt(ax-mid, top))
	draw.DrawMask(r.img, dst, ink, image.Point{}, rotated, image.Point{}, draw.Over)
}

func (r *Raster) face(sizePx float64) (font.Face, error) {
	size := sizePx * r.scale
	if face, ok := r.faces[size]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(r.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, err
	}
	r.faces[size] = face
	return face, nil
}

// fillPath rasterizes a path inside the device-space box [minX,maxX]x[minY,maxY] into
// a mask and composites c through it. build receives the box origin so the path can
// be expressed relative to the mask.
func (r *Raster) fillPath(minX, minY, maxX, maxY float64, c color.Color, build func(z *vector.Rasterizer, ox, oy float64)) {
	bounds := image.Rect(
		int(math.Floor(minX)), int(math.Floor(minY)),
		int(math.Ceil(maxX)), int(math.Ceil(maxY)),
	)
	if bounds.Empty() || bounds.Intersect(r.img.Bounds()).Empty() {
		return
	}

	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	build(z, float64(bounds.Min.X), float64(bounds.Min.Y))

	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	draw.DrawMask(r.img, bounds, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

func addCircle(z *vector.Rasterizer, cx, cy, radius float64, clockwise bool) {
	x, y, rr := float32(cx), float32(cy), float32(radius)
	k := float32(kappa) * rr

	z.MoveTo(x+rr, y)
	if clockwise {
		z.CubeTo(x+rr, y+k, x+k, y+rr, x, y+rr)
		z.CubeTo(x-k, y+rr, x-rr, y+k, x-rr, y)
		z.CubeTo(x-rr, y-k, x-k, y-rr, x, y-rr)
		z.CubeTo(x+k, y-rr, x+rr, y-k, x+rr, y)
	} else {
		z.CubeTo(x+rr, y-k, x+k, y-rr, x, y-rr)
		z.CubeTo(x-k, y-rr, x-rr, y-k, x-rr, y)
		z.CubeTo(x-rr, y+k, x-k, y+rr, x, y+rr)
		z.CubeTo(x+k, y+rr, x+rr, y+k, x+rr, y)
	}
	z.ClosePath()
}

// renderTextMask draws text into an alpha mask with the baseline at the ascent. mid
// is the row that lines up with the middle of the em box.
func renderTextMask(face font.Face, text string) (*image.Alpha, int) {
	metrics := face.Metrics()
	ascent := metrics.Ascent.Ceil()
	descent := metrics.Descent.Ceil()
	width := font.MeasureString(face, text).Ceil()
	if width <= 0 || ascent+descent <= 0 {
		return nil, 0
	}

	mask := image.NewAlpha(image.Rect(0, 0, width, ascent+descent))
	drawer := font.Drawer{
		Dst:  mask,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.P(0, ascent),
	}
	drawer.DrawString(text)
	return mask, (ascent + descent) / 2
}

// rotateCounterClockwise turns a mask 90 degrees so text reads bottom to top.
func rotateCounterClockwise(src *image.Alpha) *image.Alpha {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewAlpha(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetAlpha(y, w-1-x, src.AlphaAt(x, y))
		}
	}
	return dst
}
