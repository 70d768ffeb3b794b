package ui

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	admindashboard "finitefield.org/imast-web/internal/admin/dashboard"
	custommw "finitefield.org/imast-web/internal/admin/httpserver/middleware"
	admininventory "finitefield.org/imast-web/internal/admin/inventory"
	dashboardtpl "finitefield.org/imast-web/internal/admin/templates/dashboard"
	inventorytpl "finitefield.org/imast-web/internal/admin/templates/inventory"
	"finitefield.org/imast-web/internal/platform/observability"
)

const (
	alertsLimit   = 5
	activityLimit = 10

	kpiErrorMessage       = "Metrics are unavailable right now."
	alertsErrorMessage    = "Alerts are unavailable right now."
	inventoryErrorMessage = "The content inventory could not be loaded."
)

// Dependencies collects external services required by the UI handlers.
type Dependencies struct {
	DashboardService admindashboard.Service
	InventoryService admininventory.Service
	Now              func() time.Time
}

// Handlers exposes HTTP handlers for admin UI pages and fragments.
type Handlers struct {
	dashboard admindashboard.Service
	inventory admininventory.Service
	now       func() time.Time
}

// NewHandlers wires the UI handler set, falling back to the static demo services.
func NewHandlers(deps Dependencies) *Handlers {
	h := &Handlers{
		dashboard: deps.DashboardService,
		inventory: deps.InventoryService,
		now:       deps.Now,
	}
	if h.dashboard == nil {
		h.dashboard = admindashboard.NewStaticService()
	}
	if h.inventory == nil {
		h.inventory = admininventory.NewStaticService()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Dashboard renders the full dashboard page.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)
	base := custommw.RequestInfoFromContext(ctx).BasePath
	now := h.now()

	kpis, kpiErr := h.dashboard.FetchKPIs(ctx)
	if kpiErr != nil {
		logger.Warn("admin: fetch kpis failed", zap.Error(kpiErr))
	}
	alerts, alertsErr := h.dashboard.FetchAlerts(ctx, alertsLimit)
	if alertsErr != nil {
		logger.Warn("admin: fetch alerts failed", zap.Error(alertsErr))
	}
	activity, err := h.dashboard.FetchActivity(ctx, activityLimit)
	if err != nil {
		logger.Warn("admin: fetch activity failed", zap.Error(err))
		activity = nil
	}

	data := dashboardtpl.BuildPageData(base, now, kpis, alerts, activity)
	if kpiErr != nil {
		data.KPIFragment.Error = kpiErrorMessage
	}
	if alertsErr != nil {
		data.AlertsFragment.Error = alertsErrorMessage
	}
	render(w, r, dashboardtpl.Index(data))
}

// KPIFragment renders the metrics table for htmx polling.
func (h *Handlers) KPIFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	base := custommw.RequestInfoFromContext(ctx).BasePath

	kpis, err := h.dashboard.FetchKPIs(ctx)
	data := dashboardtpl.KPIFragmentPayload(base, kpis)
	if err != nil {
		observability.FromContext(ctx).Warn("admin: fetch kpis failed", zap.Error(err))
		data.Error = kpiErrorMessage
	}
	render(w, r, dashboardtpl.KPIFragment(data))
}

// AlertsFragment renders the alert list for htmx polling.
func (h *Handlers) AlertsFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	base := custommw.RequestInfoFromContext(ctx).BasePath

	alerts, err := h.dashboard.FetchAlerts(ctx, alertsLimit)
	data := dashboardtpl.AlertsFragmentPayload(base, h.now(), alerts)
	if err != nil {
		observability.FromContext(ctx).Warn("admin: fetch alerts failed", zap.Error(err))
		data.Error = alertsErrorMessage
	}
	render(w, r, dashboardtpl.AlertsFragment(data))
}

// Inventory renders the content inventory page, or only its table for htmx filter requests.
func (h *Handlers) Inventory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	base := custommw.RequestInfoFromContext(ctx).BasePath
	query := parseInventoryQuery(r)

	result, err := h.inventory.List(ctx, query)
	data := inventorytpl.BuildPageData(base, query, result)
	if err != nil {
		observability.FromContext(ctx).Error("admin: list inventory failed", zap.Error(err))
		data.Table.Error = inventoryErrorMessage
	}

	info := custommw.HTMXInfoFromContext(ctx)
	if info.IsHTMX && info.Target == "inventory-table" {
		render(w, r, inventorytpl.Table(data.Table))
		return
	}
	render(w, r, inventorytpl.Index(data))
}

func parseInventoryQuery(r *http.Request) admininventory.Query {
	values := r.URL.Query()
	query := admininventory.Query{
		Type:   strings.TrimSpace(values.Get("type")),
		Status: admininventory.Status(strings.TrimSpace(values.Get("status"))),
		Search: strings.TrimSpace(values.Get("q")),
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		query.Page = page
	}
	return query
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	templ.Handler(component).ServeHTTP(w, r)
}
