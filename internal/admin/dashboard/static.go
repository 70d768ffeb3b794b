package dashboard

import (
	"context"
	"time"
)

// StaticService provides canned responses for the demo dashboard and tests.
type StaticService struct {
	KPIs     []KPI
	Alerts   []Alert
	Activity []ActivityItem
}

// NewStaticService returns a StaticService populated with sample data.
func NewStaticService() *StaticService {
	now := time.Now()
	return &StaticService{
		KPIs: []KPI{
			{
				ID:        "published-pages",
				Label:     "Published pages",
				Value:     "42",
				DeltaText: "+3 this month",
				Trend:     TrendUp,
				Sparkline: []float64{31, 33, 35, 36, 38, 39, 42},
				UpdatedAt: now,
			},
			{
				ID:        "blog-posts",
				Label:     "Blog posts",
				Value:     "118",
				DeltaText: "+6 this month",
				Trend:     TrendUp,
				Sparkline: []float64{96, 100, 104, 108, 111, 115, 118},
				UpdatedAt: now,
			},
			{
				ID:        "leads",
				Label:     "Contact leads",
				Value:     "57",
				DeltaText: "-4 vs last week",
				Trend:     TrendDown,
				Sparkline: []float64{12, 9, 11, 8, 7, 6, 4},
				UpdatedAt: now,
			},
			{
				ID:        "conversion",
				Label:     "Conversion rate",
				Value:     "2.4%",
				DeltaText: "unchanged",
				Trend:     TrendFlat,
				Sparkline: []float64{2.3, 2.5, 2.4, 2.4, 2.3, 2.4, 2.4},
				UpdatedAt: now,
			},
		},
		Alerts: []Alert{
			{
				ID:        "alert-unknown-module",
				Severity:  "danger",
				Title:     "Unknown module type",
				Message:   `The page "solutions/inventory" contains a "pricing-table" block that no component renders.`,
				ActionURL: "/admin/content?type=solution",
				Action:    "Review solution pages",
				CreatedAt: now.Add(-20 * time.Minute),
			},
			{
				ID:        "alert-missing-description",
				Severity:  "warning",
				Title:     "Missing meta descriptions",
				Message:   "4 published pages fall back to the site description.",
				ActionURL: "/admin/content?status=published",
				Action:    "Open inventory",
				CreatedAt: now.Add(-3 * time.Hour),
			},
			{
				ID:        "alert-drafts",
				Severity:  "info",
				Title:     "Drafts awaiting review",
				Message:   "2 blog drafts have not been updated for 14 days.",
				ActionURL: "/admin/content?type=blog&status=draft",
				Action:    "Review drafts",
				CreatedAt: now.Add(-26 * time.Hour),
			},
		},
		Activity: []ActivityItem{
			{
				ID:       "activity-publish",
				Icon:     "📝",
				Title:    "Published \"Launching Inventory Cloud\"",
				Detail:   "Blog post by Aya Tanaka",
				Occurred: now.Add(-15 * time.Minute),
				LinkURL:  "/blog/launching-inventory-cloud",
			},
			{
				ID:       "activity-case-study",
				Icon:     "📁",
				Title:    "Updated case study",
				Detail:   "Harbor Logistics: testimonial block added",
				Occurred: now.Add(-2 * time.Hour),
				LinkURL:  "/case-studies/harbor-logistics",
			},
			{
				ID:       "activity-policy",
				Icon:     "🔒",
				Title:    "Privacy policy revised",
				Detail:   "Contact address updated",
				Occurred: now.Add(-30 * time.Hour),
				LinkURL:  "/policies/privacy",
			},
		},
	}
}

// FetchKPIs returns configured KPI cards.
func (s *StaticService) FetchKPIs(ctx context.Context) ([]KPI, error) {
	if len(s.KPIs) == 0 {
		return []KPI{}, nil
	}
	return s.KPIs, nil
}

// FetchAlerts returns configured alert entries.
func (s *StaticService) FetchAlerts(ctx context.Context, limit int) ([]Alert, error) {
	if limit > 0 && len(s.Alerts) > limit {
		return s.Alerts[:limit], nil
	}
	return s.Alerts, nil
}

// FetchActivity returns configured activity feed entries.
func (s *StaticService) FetchActivity(ctx context.Context, limit int) ([]ActivityItem, error) {
	if limit > 0 && len(s.Activity) > limit {
		return s.Activity[:limit], nil
	}
	return s.Activity, nil
}
