package dashboard

import (
	"fmt"
	"strings"
	"time"

	admindashboard "finitefield.org/imast-web/internal/admin/dashboard"
	"finitefield.org/imast-web/internal/admin/templates/helpers"
)

// PageData represents the full dashboard SSR payload.
type PageData struct {
	Title              string
	KPIFragment        KPIFragmentData
	AlertsFragment     AlertsFragmentData
	Activity           []ActivityItem
	KPIEndpoint        string
	AlertsEndpoint     string
	PollIntervalSecond int
	Now                time.Time
}

// KPIFragmentData holds the KPI cards payload.
type KPIFragmentData struct {
	KPIs     []KPIView
	Error    string
	Endpoint string
	Poll     int
}

// KPIView is the rendered representation of a metric card.
type KPIView struct {
	ID        string
	Label     string
	Value     string
	DeltaText string
	Trend     string
	Points    string
	UpdatedAt time.Time
}

// AlertsFragmentData holds the alerts list payload.
type AlertsFragmentData struct {
	Alerts   []AlertView
	Error    string
	Endpoint string
	Poll     int
	Now      time.Time
}

// AlertView represents a single alert entry.
type AlertView struct {
	ID        string
	Severity  string
	Title     string
	Message   string
	ActionURL string
	Action    string
	CreatedAt time.Time
}

// ActivityItem represents a recent update displayed on the dashboard.
type ActivityItem struct {
	ID       string
	Icon     string
	Title    string
	Detail   string
	Occurred time.Time
	LinkURL  string
}

const pollIntervalSeconds = 60

// BuildPageData prepares the template payload for SSR rendering.
func BuildPageData(basePath string, now time.Time, kpis []admindashboard.KPI, alerts []admindashboard.Alert, activity []admindashboard.ActivityItem) PageData {
	return PageData{
		Title:              "Dashboard",
		KPIFragment:        KPIFragmentPayload(basePath, kpis),
		AlertsFragment:     AlertsFragmentPayload(basePath, now, alerts),
		Activity:           ActivityFeedPayload(activity),
		KPIEndpoint:        helpers.JoinBase(basePath, "/fragments/kpi"),
		AlertsEndpoint:     helpers.JoinBase(basePath, "/fragments/alerts"),
		PollIntervalSecond: pollIntervalSeconds,
		Now:                now,
	}
}

// KPIFragmentPayload prepares KPI data for rendering.
func KPIFragmentPayload(basePath string, list []admindashboard.KPI) KPIFragmentData {
	views := make([]KPIView, 0, len(list))
	for _, item := range list {
		views = append(views, KPIView{
			ID:        item.ID,
			Label:     item.Label,
			Value:     item.Value,
			DeltaText: item.DeltaText,
			Trend:     string(item.Trend),
			Points:    sparklinePoints(item.Sparkline),
			UpdatedAt: item.UpdatedAt,
		})
	}
	return KPIFragmentData{
		KPIs:     views,
		Endpoint: helpers.JoinBase(basePath, "/fragments/kpi"),
		Poll:     pollIntervalSeconds,
	}
}

// AlertsFragmentPayload prepares alerts data for rendering.
func AlertsFragmentPayload(basePath string, now time.Time, list []admindashboard.Alert) AlertsFragmentData {
	views := make([]AlertView, 0, len(list))
	for _, item := range list {
		views = append(views, AlertView{
			ID:        item.ID,
			Severity:  item.Severity,
			Title:     item.Title,
			Message:   item.Message,
			ActionURL: item.ActionURL,
			Action:    item.Action,
			CreatedAt: item.CreatedAt,
		})
	}
	return AlertsFragmentData{
		Alerts:   views,
		Endpoint: helpers.JoinBase(basePath, "/fragments/alerts"),
		Poll:     pollIntervalSeconds,
		Now:      now,
	}
}

// ActivityFeedPayload prepares activity items for rendering.
func ActivityFeedPayload(list []admindashboard.ActivityItem) []ActivityItem {
	result := make([]ActivityItem, 0, len(list))
	for _, item := range list {
		result = append(result, ActivityItem{
			ID:       item.ID,
			Icon:     item.Icon,
			Title:    item.Title,
			Detail:   item.Detail,
			Occurred: item.Occurred,
			LinkURL:  item.LinkURL,
		})
	}
	return result
}

// sparklinePoints scales values into a 100x100 SVG polyline.
func sparklinePoints(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	if len(values) == 1 {
		return "0,50 100,50"
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	points := make([]string, 0, len(values))
	last := len(values) - 1
	for i, v := range values {
		x := float64(i) / float64(last) * 100
		y := 100 - ((v - lo) / span * 100)
		points = append(points, fmt.Sprintf("%.1f,%.1f", x, y))
	}
	return strings.Join(points, " ")
}
