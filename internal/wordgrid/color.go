package wordgrid

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// ColorResolution is the outcome of testing a string as a color specification.
// The zero value is Invalid.
type ColorResolution struct {
	Valid      bool
	Normalized string
	R, G, B    uint8
	Alpha      float64
}

// ColorOracle decides whether a string is a legal color and normalizes it.
type ColorOracle interface {
	Resolve(s string) ColorResolution
}

// CSSColors accepts the same forms as a browser style parser: named and system
// colors, hex notation, rgb()/rgba() and hsl()/hsla().
type CSSColors struct{}

// Resolve implements ColorOracle.
func (CSSColors) Resolve(s string) ColorResolution {
	return ResolveColor(s)
}

var defaultOracle ColorOracle = CSSColors{}

// Opaque reports whether the color has full alpha.
func (c ColorResolution) Opaque() bool {
	return c.Valid && c.Alpha >= 1
}

// NRGBA returns the resolved color as a non-premultiplied image color.
// Invalid resolutions return the zero (fully transparent) color.
func (c ColorResolution) NRGBA() color.NRGBA {
	if !c.Valid {
		return color.NRGBA{}
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alphaByte(c.Alpha)}
}

// WithAlphaSuffix mirrors appending a two-digit alpha suffix to the normalized hex
// form. Translucent colors have no hex form, so they are returned unchanged.
func (c ColorResolution) WithAlphaSuffix(alpha uint8) color.NRGBA {
	out := c.NRGBA()
	if c.Opaque() {
		out.A = alpha
	}
	return out
}

// ResolveColor tests s against the CSS color grammar. It never fails: anything that
// is not a color resolves to the zero ColorResolution.
func ResolveColor(s string) ColorResolution {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return ColorResolution{}
	}

	switch {
	case strings.HasPrefix(spec, "#"):
		return resolveHex(spec[1:])
	case strings.HasSuffix(spec, ")"):
		return resolveFunctional(spec)
	}

	if named, ok := colornames.Map[spec]; ok {
		return newResolution(named.R, named.G, named.B, 1)
	}
	if rgb, ok := extraNamedColors[spec]; ok {
		return newResolution(rgb[0], rgb[1], rgb[2], 1)
	}
	if rgb, ok := systemColors[spec]; ok {
		return newResolution(rgb[0], rgb[1], rgb[2], 1)
	}
	switch spec {
	case "transparent":
		return newResolution(0, 0, 0, 0)
	case "currentcolor":
		return newResolution(0, 0, 0, 1)
	}
	return ColorResolution{}
}

func newResolution(r, g, b uint8, alpha float64) ColorResolution {
	a8 := alphaByte(alpha)
	res := ColorResolution{Valid: true, R: r, G: g, B: b, Alpha: float64(a8) / 255}
	if a8 == 0xff {
		res.Normalized = fmt.Sprintf("#%02x%02x%02x", r, g, b)
	} else {
		res.Normalized = fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatAlpha(a8))
	}
	return res
}

// resolveHex handles #rgb, #rgba, #rrggbb and #rrggbbaa. Short forms duplicate each
// nibble before the channels are read.
func resolveHex(digits string) ColorResolution {
	for _, ch := range digits {
		if !isHexDigit(ch) {
			return ColorResolution{}
		}
	}

	var alphaDigits string
	switch len(digits) {
	case 3:
		digits = expandShortHex(digits)
	case 4:
		expanded := expandShortHex(digits)
		digits, alphaDigits = expanded[:6], expanded[6:]
	case 6:
	case 8:
		digits, alphaDigits = digits[:6], digits[6:]
	default:
		return ColorResolution{}
	}

	parsed, err := colorful.Hex("#" + digits)
	if err != nil {
		return ColorResolution{}
	}
	r, g, b := parsed.RGB255()

	alpha := 1.0
	if alphaDigits != "" {
		a, err := strconv.ParseUint(alphaDigits, 16, 8)
		if err != nil {
			return ColorResolution{}
		}
		alpha = float64(a) / 255
	}
	return newResolution(r, g, b, alpha)
}

func expandShortHex(digits string) string {
	var b strings.Builder
	b.Grow(len(digits) * 2)
	for i := 0; i < len(digits); i++ {
		b.WriteByte(digits[i])
		b.WriteByte(digits[i])
	}
	return b.String()
}

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f')
}

func resolveFunctional(spec string) ColorResolution {
	open := strings.IndexByte(spec, '(')
	if open <= 0 {
		return ColorResolution{}
	}
	name := strings.TrimSpace(spec[:open])
	channels, alpha, ok := splitFunctionalArgs(spec[open+1 : len(spec)-1])
	if !ok {
		return ColorResolution{}
	}

	switch name {
	case "rgb", "rgba":
		return resolveRGB(channels, alpha)
	case "hsl", "hsla":
		return resolveHSL(channels, alpha)
	}
	return ColorResolution{}
}

// splitFunctionalArgs accepts both the legacy comma syntax "a, b, c[, alpha]" and the
// space syntax "a b c[ / alpha]". The two cannot be mixed.
func splitFunctionalArgs(body string) ([]string, string, bool) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, "", false
	}

	if strings.Contains(body, ",") {
		if strings.Contains(body, "/") {
			return nil, "", false
		}
		parts := strings.Split(body, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
			if parts[i] == "" || strings.ContainsAny(parts[i], " \t") {
				return nil, "", false
			}
		}
		switch len(parts) {
		case 3:
			return parts, "", true
		case 4:
			return parts[:3], parts[3], true
		}
		return nil, "", false
	}

	alpha := ""
	if slash := strings.IndexByte(body, '/'); slash >= 0 {
		alpha = strings.TrimSpace(body[slash+1:])
		body = body[:slash]
		if alpha == "" || strings.ContainsAny(alpha, " \t/") {
			return nil, "", false
		}
	}
	parts := strings.Fields(body)
	if len(parts) != 3 {
		return nil, "", false
	}
	return parts, alpha, true
}

func resolveRGB(channels []string, alphaArg string) ColorResolution {
	var rgb [3]uint8
	for i, arg := range channels {
		value, percent, ok := parseNumber(arg)
		if !ok {
			return ColorResolution{}
		}
		if percent {
			value = value * 255 / 100
		}
		rgb[i] = uint8(math.Round(clamp(value, 0, 255)))
	}
	alpha, ok := parseAlpha(alphaArg)
	if !ok {
		return ColorResolution{}
	}
	return newResolution(rgb[0], rgb[1], rgb[2], alpha)
}

func resolveHSL(channels []string, alphaArg string) ColorResolution {
	hue, ok := parseHue(channels[0])
	if !ok {
		return ColorResolution{}
	}
	saturation, _, ok := parseNumber(channels[1])
	if !ok {
		return ColorResolution{}
	}
	lightness, _, ok := parseNumber(channels[2])
	if !ok {
		return ColorResolution{}
	}
	alpha, ok := parseAlpha(alphaArg)
	if !ok {
		return ColorResolution{}
	}

	c := colorful.Hsl(hue, clamp(saturation, 0, 100)/100, clamp(lightness, 0, 100)/100)
	r, g, b := c.Clamped().RGB255()
	return newResolution(r, g, b, alpha)
}

func parseNumber(arg string) (float64, bool, bool) {
	percent := strings.HasSuffix(arg, "%")
	arg = strings.TrimSuffix(arg, "%")
	value, err := strconv.ParseFloat(arg, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false, false
	}
	return value, percent, true
}

func parseAlpha(arg string) (float64, bool) {
	if arg == "" {
		return 1, true
	}
	value, percent, ok := parseNumber(arg)
	if !ok {
		return 0, false
	}
	if percent {
		value /= 100
	}
	return clamp(value, 0, 1), true
}

func parseHue(arg string) (float64, bool) {
	scale := 1.0
	for _, unit := range []struct {
		suffix string
		scale  float64
	}{
		{"deg", 1},
		{"grad", 360.0 / 400.0},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	} {
		if strings.HasSuffix(arg, unit.suffix) {
			arg = strings.TrimSuffix(arg, unit.suffix)
			scale = unit.scale
			break
		}
	}
	value, percent, ok := parseNumber(arg)
	if !ok || percent {
		return 0, false
	}
	hue := math.Mod(value*scale, 360)
	if hue < 0 {
		hue += 360
	}
	return hue, true
}

func clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

func alphaByte(alpha float64) uint8 {
	return uint8(math.Round(clamp(alpha, 0, 1) * 255))
}

// formatAlpha prints the shortest decimal that maps back to the same alpha byte.
func formatAlpha(a8 uint8) string {
	alpha := float64(a8) / 255
	for digits := 1; digits < 4; digits++ {
		scale := math.Pow(10, float64(digits))
		rounded := math.Round(alpha*scale) / scale
		if alphaByte(rounded) == a8 {
			return strconv.FormatFloat(rounded, 'f', -1, 64)
		}
	}
	return strconv.FormatFloat(math.Round(alpha*10000)/10000, 'f', -1, 64)
}
