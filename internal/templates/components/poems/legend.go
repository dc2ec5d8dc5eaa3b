package poems

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/poemgrid/internal/wordgrid"
)

// Legend renders the matched colors as "[a, b]" with each label in its own color.
// A poem with words but no matched colors renders "[]".
func Legend(legend wordgrid.Legend) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, LegendHTML(legend))
		return err
	})
}

func LegendHTML(legend wordgrid.Legend) string {
	var b strings.Builder
	b.WriteString("[")
	for i, entry := range legend.Entries {
		if i > 0 {
			b.WriteString(", ")
		}
		style := "color:" + entry.TextColor
		if entry.Background != "" {
			style += ";background:" + entry.Background
		}
		if entry.Padding != "" {
			style += ";padding:" + entry.Padding
		}
		b.WriteString(`<span style="` + templ.EscapeString(style) + `">`)
		b.WriteString(templ.EscapeString(entry.Label))
		b.WriteString(`</span>`)
	}
	b.WriteString("]")
	return b.String()
}
