// Package views renders the results dashboard as HTML components.
package views

import (
	"context"
	"io"

	"github.com/a-h/templ"

	appI18n "github.com/pavelanni/mockinterview/internal/i18n"
)

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f5f6f8;color:#1f2933}
header{background:#1f2933;color:#fff;padding:1rem 2rem}header a{color:#fff;text-decoration:none}
main{max-width:1100px;margin:0 auto;padding:1.5rem 2rem}
.cards{display:flex;gap:1rem;margin-bottom:1.5rem}.card{flex:1;background:#fff;border-radius:6px;padding:1rem}
.card b{display:block;font-size:1.6rem}
form.filters{display:flex;gap:.5rem;margin-bottom:1rem}form.filters input{flex:1}
table{width:100%;border-collapse:collapse;background:#fff}th,td{padding:.5rem;border-bottom:1px solid #e4e7eb;text-align:left}
.cat-excellent{color:#0b7a3e}.cat-good{color:#2563eb}.cat-average{color:#b45309}.cat-poor{color:#b91c1c}
.question{background:#fff;border-radius:6px;padding:1rem;margin-bottom:1rem}
.answer{white-space:pre-wrap;background:#f5f6f8;padding:.75rem;border-radius:4px}
.timeout{color:#b91c1c;font-weight:600}.review{font-style:italic}`

// page writes HTML and keeps the first write error.
type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *page) attr(name, value string) {
	p.raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

func (p *page) href(u templ.SafeURL) {
	p.attr("href", string(u))
}

func (p *page) render(ctx context.Context, c templ.Component) {
	if p.err == nil {
		p.err = c.Render(ctx, p.w)
	}
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<!DOCTYPE html><html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		p.text(title + " | " + appI18n.T(ctx, "AppTitle"))
		p.raw(`</title><style>` + styles + `</style></head><body><header><a`)
		p.href(templ.URL("/dashboard"))
		p.raw(`>`)
		p.text(appI18n.T(ctx, "AppTitle"))
		p.raw(`</a></header><main>`)
		p.render(ctx, body)
		p.raw(`</main></body></html>`)
		return p.err
	})
}
