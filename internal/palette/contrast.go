package palette

import (
	"fmt"
	"math"

	"github.com/codr1/poemgrid/internal/wordgrid"
)

// MinLabelContrast is the WCAG AA ratio for large text, which axis labels and
// legend entries are measured against.
const MinLabelContrast = 3.0

const (
	darkTextColor  = "#000000"
	lightTextColor = "#ffffff"
	// CanvasColor is the background every grid is drawn on.
	CanvasColor = "#ffffff"
)

// ContrastRatio returns the WCAG contrast ratio between two colors. Alpha is ignored.
func ContrastRatio(textColor, backgroundColor string) (float64, error) {
	textL, err := relativeLuminance(textColor)
	if err != nil {
		return 0, err
	}
	backgroundL, err := relativeLuminance(backgroundColor)
	if err != nil {
		return 0, err
	}
	lightest := math.Max(textL, backgroundL)
	darkest := math.Min(textL, backgroundL)
	return (lightest + 0.05) / (darkest + 0.05), nil
}

// ReadableOn reports whether color, drawn as a label on the grid canvas, reaches
// MinLabelContrast.
func ReadableOn(color, background string) (bool, float64, error) {
	ratio, err := ContrastRatio(color, background)
	if err != nil {
		return false, 0, err
	}
	return ratio >= MinLabelContrast, ratio, nil
}

// BestTextColor picks black or white text for a plate of the given color.
func BestTextColor(backgroundColor string) (string, error) {
	dark, err := ContrastRatio(darkTextColor, backgroundColor)
	if err != nil {
		return "", err
	}
	light, err := ContrastRatio(lightTextColor, backgroundColor)
	if err != nil {
		return "", err
	}
	if light > dark {
		return lightTextColor, nil
	}
	return darkTextColor, nil
}

func relativeLuminance(color string) (float64, error) {
	res := wordgrid.ResolveColor(color)
	if !res.Valid {
		return 0, fmt.Errorf("invalid color: %s", color)
	}

	rl := srgbToLinear(float64(res.R) / 255)
	gl := srgbToLinear(float64(res.G) / 255)
	bl := srgbToLinear(float64(res.B) / 255)

	return 0.2126*rl + 0.7152*gl + 0.0722*bl, nil
}

func srgbToLinear(value float64) float64 {
	if value <= 0.03928 {
		return value / 12.92
	}
	return math.Pow((value+0.055)/1.055, 2.4)
}
