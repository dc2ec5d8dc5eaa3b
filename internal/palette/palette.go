// Package palette reports the colors used by a rendered word-matrix SVG and the
// named colors closest to each.
package palette

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/codr1/poemgrid/internal/wordgrid"
)

// Usage counts one color on one paint attribute.
type Usage struct {
	Attribute string
	Color     string
	Count     int
}

// Match is a named color and its CIE Lab distance from the query color.
type Match struct {
	Name     string
	Hex      string
	Distance float64
}

var paintAttrRegex = regexp.MustCompile(`\b(fill|stroke)=["'](#[0-9a-fA-F]{3,8}|[a-zA-Z]+)["']`)

// Analyze counts fill and stroke colors, most used first.
func Analyze(doc []byte) []Usage {
	counts := make(map[[2]string]int)
	for _, match := range paintAttrRegex.FindAllSubmatch(doc, -1) {
		counts[[2]string{string(match[1]), string(match[2])}]++
	}

	usage := make([]Usage, 0, len(counts))
	for key, n := range counts {
		usage = append(usage, Usage{Attribute: key[0], Color: key[1], Count: n})
	}
	sort.Slice(usage, func(i, j int) bool {
		if usage[i].Count != usage[j].Count {
			return usage[i].Count > usage[j].Count
		}
		if usage[i].Attribute != usage[j].Attribute {
			return usage[i].Attribute < usage[j].Attribute
		}
		return usage[i].Color < usage[j].Color
	})
	return usage
}

// Nearest returns the n named colors perceptually closest to value. value is any
// color string the word-matrix color oracle accepts; its alpha is ignored.
func Nearest(value string, n int) ([]Match, error) {
	res := wordgrid.ResolveColor(value)
	if !res.Valid {
		return nil, fmt.Errorf("unrecognized color %q", value)
	}
	input := colorful.Color{R: float64(res.R) / 255, G: float64(res.G) / 255, B: float64(res.B) / 255}

	matches := make([]Match, 0, len(colornames.Map))
	for name, rgba := range colornames.Map {
		ref, ok := colorful.MakeColor(rgba)
		if !ok {
			continue
		}
		matches = append(matches, Match{
			Name:     name,
			Hex:      ref.Hex(),
			Distance: input.DistanceLab(ref),
		})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].Name < matches[j].Name
	})
	if n > 0 && n < len(matches) {
		matches = matches[:n]
	}
	return matches, nil
}
