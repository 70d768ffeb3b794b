package inventory

import (
	"context"
	"io"

	"github.com/a-h/templ"

	admininventory "finitefield.org/imast-web/internal/admin/inventory"
	"finitefield.org/imast-web/internal/admin/templates/helpers"
	"finitefield.org/imast-web/internal/admin/templates/layouts"
)

// Index renders the content inventory page.
func Index(data PageData) templ.Component {
	return layouts.Base(data.Title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(w)
		m.Rawf(`<h1>%s</h1>`, data.Title)
		m.Rawf(`<form id="inventory-filters" class="filters" method="get" action="%s" hx-get="%s" hx-target="#inventory-table" hx-select="#inventory-table" hx-swap="outerHTML" hx-push-url="true">`, data.Endpoint, data.Endpoint)
		filterSelect(m, "type", "Type", data.Types)
		filterSelect(m, "status", "Status", data.Statuses)
		m.Rawf(`<label>Search <input type="search" name="q" value="%s"></label>`, data.Query.Search)
		m.Raw(`<button type="submit">Apply</button></form>`)
		m.Render(ctx, Table(data.Table))
		return m.Err()
	}))
}

// Table renders the inventory table and its pager.
func Table(data TableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(w)
		m.Rawf(`<section id="inventory-table" class="panel" data-total="%d">`, data.Total)
		switch {
		case data.Error != "":
			m.Rawf(`<p class="panel-error" role="alert">%s</p>`, data.Error)
		case len(data.Rows) == 0:
			m.Raw(`<p class="panel-empty">No documents match these filters.</p>`)
		default:
			m.Raw(`<table class="inventory"><thead><tr><th>Title</th><th>Type</th><th>Status</th><th>Path</th><th>Modules</th><th>Updated</th></tr></thead><tbody>`)
			for _, row := range data.Rows {
				m.Rawf(`<tr data-id="%s"><td>%s</td><td>%s</td>`, row.ID, row.Title, row.Type)
				m.Rawf(`<td><span class="%s">%s</span></td><td><code>%s</code></td>`, row.StatusClass, row.Status, row.Path)
				m.Rawf(`<td class="modules">%d`, row.Modules)
				if row.Diagnostics > 0 {
					m.Rawf(` <span class="badge badge--danger" title="Unknown module types">%d unknown</span>`, row.Diagnostics)
				}
				m.Rawf(`</td><td>%s</td></tr>`, row.Updated)
			}
			m.Raw(`</tbody></table>`)
		}
		if data.PrevURL != "" || data.NextURL != "" {
			m.Raw(`<nav class="pager" aria-label="Pagination">`)
			if data.PrevURL != "" {
				m.Rawf(`<a rel="prev" href="%s">Previous</a>`, data.PrevURL)
			}
			m.Rawf(`<span>Page %d</span>`, data.Page)
			if data.NextURL != "" {
				m.Rawf(`<a rel="next" href="%s">Next</a>`, data.NextURL)
			}
			m.Raw(`</nav>`)
		}
		m.Raw(`</section>`)
		return m.Err()
	})
}

func filterSelect(m *helpers.Markup, name, label string, options []admininventory.Option) {
	m.Rawf(`<label>%s <select name="%s"><option value="">All</option>`, label, name)
	for _, opt := range options {
		m.Rawf(`<option value="%s"`, opt.Value)
		if opt.Selected {
			m.Raw(` selected`)
		}
		m.Rawf(`>%s (%d)</option>`, opt.Label, opt.Count)
	}
	m.Raw(`</select></label>`)
}
