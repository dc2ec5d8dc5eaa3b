package poems

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/codr1/poemgrid/internal/catalog"
)

// IndexPage lists every book with a thumbnail per poem.
func IndexPage(books []catalog.Book, thumbnailSidePx int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Word matrices</h1>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div id="catalog">`+buildCatalogHTML(books, thumbnailSidePx)+`</div>`); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<form hx-post="/api/v1/catalog/refresh" hx-target="#catalog-status" hx-swap="innerHTML"><button type="submit">Refresh catalog</button> <span id="catalog-status"></span></form>`)
		return err
	})
}

// RefreshStatus is the fragment returned to the refresh button.
func RefreshStatus(bookCount, poemCount int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, fmt.Sprintf(`Loaded %d poems from %d books. <a href="/">Reload</a>`, poemCount, bookCount))
		return err
	})
}

func buildCatalogHTML(books []catalog.Book, thumbnailSidePx int) string {
	if len(books) == 0 {
		return `<p>No poems loaded yet.</p>`
	}

	var b strings.Builder
	for _, book := range books {
		b.WriteString(`<section><h2>` + templ.EscapeString(book.Title) + `</h2>`)
		if len(book.Poems) == 0 {
			b.WriteString(`<p>No poems.</p></section>`)
			continue
		}
		b.WriteString(`<div class="thumbs">`)
		for _, poem := range book.Poems {
			b.WriteString(buildThumbnailHTML(poem, thumbnailSidePx))
		}
		b.WriteString(`</div></section>`)
	}
	return b.String()
}

func buildThumbnailHTML(poem catalog.Poem, sidePx int) string {
	slug := url.PathEscape(poem.Slug)
	title := templ.EscapeString(poem.Title)
	return fmt.Sprintf(
		`<a class="thumb" href="/poems/%s"><img src="/api/v1/poems/%s/grid.png?view=thumbnail&amp;side=%d" width="%d" height="%d" alt="%s" loading="lazy">%s</a>`,
		slug, slug, sidePx, sidePx, sidePx, title, title,
	)
}
