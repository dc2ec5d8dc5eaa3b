package wordgrid

import (
	"strings"
)

const (
	legendPlateColor       = "#aaa"
	legendFallbackText     = "#fff"
	legendPadding          = "0 2px"
	legendBrightnessCutoff = 240
)

// LegendEntry is one styled legend label.
type LegendEntry struct {
	Label      string
	TextColor  string
	Background string
	Padding    string
}

// Legend is the ordered swatch list for the matched colors of a render.
type Legend struct {
	Entries []LegendEntry
}

// Brightness is the perceived brightness (R*299 + G*587 + B*114) / 1000.
func Brightness(r, g, b uint8) float64 {
	return (float64(r)*299 + float64(g)*587 + float64(b)*114) / 1000
}

// BuildLegend styles each matched color. Very light colors get a grey plate so they
// stay readable on a light page; colors without an opaque RGB form fall back to white
// text on the plate.
func BuildLegend(matched []string, oracle ColorOracle) Legend {
	if oracle == nil {
		oracle = defaultOracle
	}
	legend := Legend{Entries: make([]LegendEntry, 0, len(matched))}
	for _, word := range matched {
		entry := LegendEntry{Label: word}
		res := oracle.Resolve(word)
		switch {
		case !res.Opaque():
			entry.TextColor = legendFallbackText
			entry.Background = legendPlateColor
			entry.Padding = legendPadding
		default:
			entry.TextColor = res.Normalized
			if Brightness(res.R, res.G, res.B) > legendBrightnessCutoff {
				entry.Background = legendPlateColor
				entry.Padding = legendPadding
			}
		}
		legend.Entries = append(legend.Entries, entry)
	}
	return legend
}

// Empty reports whether there is nothing to show.
func (l Legend) Empty() bool {
	return len(l.Entries) == 0
}

// String is the plain-text form, "[red, blue]".
func (l Legend) String() string {
	labels := make([]string, len(l.Entries))
	for i, entry := range l.Entries {
		labels[i] = entry.Label
	}
	return "[" + strings.Join(labels, ", ") + "]"
}
