package layouts

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"finitefield.org/imast-web/internal/admin/httpserver/middleware"
	"finitefield.org/imast-web/internal/admin/templates/helpers"
)

// ProductName appears in every admin page title.
const ProductName = "iMast Admin"

// Base wraps body in the admin shell: head, sidebar, environment badge and main region.
func Base(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		info := middleware.RequestInfoFromContext(ctx)
		m := helpers.NewMarkup(w)
		m.Raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		m.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.Rawf(`<title>%s | %s</title>`, title, ProductName)
		m.Rawf(`<link rel="stylesheet" href="%s">`, helpers.JoinBase(info.BasePath, "/static/admin.css"))
		m.Raw(`<script src="https://unpkg.com/htmx.org@1.9.12" defer></script>`)
		m.Raw(`</head><body class="admin">`)

		m.Raw(`<aside class="sidebar"><p class="brand">iMast</p>`)
		m.Rawf(`<span class="env-badge" data-env="%s">%s</span>`, info.Environment, info.Environment)
		m.Raw(`<nav aria-label="Admin"><ul>`)
		for _, item := range helpers.Sidebar {
			active := helpers.NavActive(ctx, item.Suffix)
			m.Rawf(`<li><a class="%s" href="%s"`, helpers.NavClass(active), helpers.Href(ctx, item.Suffix))
			if active {
				m.Raw(` aria-current="page"`)
			}
			m.Rawf(`>%s</a></li>`, item.Label)
		}
		m.Raw(`</ul></nav></aside>`)

		m.Raw(`<main class="content">`)
		m.Render(ctx, body)
		m.Raw(`</main></body></html>`)
		return m.Err()
	})
}
