package dashboard

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"finitefield.org/imast-web/internal/admin/templates/helpers"
	"finitefield.org/imast-web/internal/admin/templates/layouts"
)

// Index renders the full dashboard page.
func Index(data PageData) templ.Component {
	return layouts.Base(data.Title, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(w)
		m.Rawf(`<h1>%s</h1>`, data.Title)
		m.Raw(`<div class="dashboard-grid">`)
		m.Render(ctx, KPIFragment(data.KPIFragment))
		m.Render(ctx, AlertsFragment(data.AlertsFragment))
		m.Render(ctx, activityFeed(data.Activity, data))
		m.Raw(`</div>`)
		return m.Err()
	}))
}

// KPIFragment renders the metric table; htmx re-fetches it on the poll interval.
func KPIFragment(data KPIFragmentData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(w)
		m.Rawf(`<section id="dashboard-kpis" class="panel" hx-get="%s" hx-trigger="every %ds" hx-swap="outerHTML">`, data.Endpoint, data.Poll)
		m.Raw(`<h2>Key metrics</h2>`)
		switch {
		case data.Error != "":
			m.Rawf(`<p class="panel-error" role="alert">%s</p>`, data.Error)
		case len(data.KPIs) == 0:
			m.Raw(`<p class="panel-empty">No metrics available.</p>`)
		default:
			m.Raw(`<table class="kpi-table"><thead><tr><th>Metric</th><th>Value</th><th>Change</th><th>Trend</th></tr></thead><tbody>`)
			for _, kpi := range data.KPIs {
				m.Rawf(`<tr data-kpi="%s"><th scope="row">%s</th><td class="kpi-value">%s</td>`, kpi.ID, kpi.Label, kpi.Value)
				m.Rawf(`<td><span class="%s">%s</span></td>`, helpers.BadgeClass(kpi.Trend), kpi.DeltaText)
				m.Rawf(`<td><svg class="sparkline" viewBox="0 0 100 100" preserveAspectRatio="none" aria-hidden="true"><polyline points="%s"></polyline></svg></td></tr>`, kpi.Points)
			}
			m.Raw(`</tbody></table>`)
		}
		m.Raw(`</section>`)
		return m.Err()
	})
}

// AlertsFragment renders the alert list; htmx re-fetches it on the poll interval.
func AlertsFragment(data AlertsFragmentData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(w)
		m.Rawf(`<section id="dashboard-alerts" class="panel" hx-get="%s" hx-trigger="every %ds" hx-swap="outerHTML">`, data.Endpoint, data.Poll)
		m.Raw(`<h2>Alerts</h2>`)
		switch {
		case data.Error != "":
			m.Rawf(`<p class="panel-error" role="alert">%s</p>`, data.Error)
		case len(data.Alerts) == 0:
			m.Raw(`<p class="panel-empty">No open alerts.</p>`)
		default:
			m.Raw(`<ul class="alert-list">`)
			for _, alert := range data.Alerts {
				m.Rawf(`<li class="alert alert--%s" data-alert="%s"><p class="alert-title">%s</p><p>%s</p>`, alert.Severity, alert.ID, alert.Title, alert.Message)
				if alert.ActionURL != "" {
					m.Rawf(`<a href="%s">%s</a>`, alert.ActionURL, alert.Action)
				}
				m.Rawf(`<time datetime="%s">%s</time></li>`, helpers.Date(alert.CreatedAt, "2006-01-02T15:04:05Z07:00"), helpers.Relative(alert.CreatedAt, data.Now))
			}
			m.Raw(`</ul>`)
		}
		m.Raw(`</section>`)
		return m.Err()
	})
}

func activityFeed(items []ActivityItem, data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := helpers.NewMarkup(w)
		m.Raw(`<section id="dashboard-activity" class="panel"><h2>Recent activity</h2>`)
		if len(items) == 0 {
			m.Raw(`<p class="panel-empty">Nothing has happened yet.</p>`)
		} else {
			m.Raw(`<ol class="activity-feed">`)
			for _, item := range items {
				m.Rawf(`<li data-activity="%s"><span class="activity-icon" aria-hidden="true">%s</span>`, item.ID, item.Icon)
				if item.LinkURL != "" {
					m.Rawf(`<a href="%s">%s</a>`, item.LinkURL, item.Title)
				} else {
					m.Text(item.Title)
				}
				m.Rawf(`<p>%s</p><span class="activity-time">%s</span></li>`, item.Detail, helpers.Relative(item.Occurred, data.Now))
			}
			m.Raw(`</ol>`)
		}
		m.Raw(`</section>`)
		return m.Err()
	})
}
