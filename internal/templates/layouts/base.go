package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

const baseStyles = `body{font-family:Georgia,serif;margin:0 auto;max-width:760px;padding:1rem;color:#222;background:#fff}` +
	`a{color:#225}h1{font-size:1.6rem}h2{font-size:1.2rem;margin-top:2rem}` +
	`.thumbs{display:flex;flex-wrap:wrap;gap:12px}.thumb{width:150px;font-size:.8rem;text-decoration:none}` +
	`.thumb img{display:block;width:150px;height:150px;border:1px solid #eee}` +
	`#word-grid svg{display:block}#grid-tooltip{position:absolute;pointer-events:none;background:#fff;border:1px solid #999;padding:2px 4px;font:12px monospace}` +
	`#grid-legend{font-family:monospace;margin-top:.5rem}`

// Base wraps content in the page shell.
func Base(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<meta name="viewport" content="width=device-width, initial-scale=1">`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<title>`+templ.EscapeString(title)+`</title>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<script src="https://unpkg.com/htmx.org@1.9.12"></script>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<style>`+baseStyles+`</style></head><body>`); err != nil {
			return err
		}
		if content != nil {
			if err := content.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
