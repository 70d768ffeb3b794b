package httpserver_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/imast-web/internal/admin/dashboard"
	"finitefield.org/imast-web/internal/admin/testutil"
)

func get(t *testing.T, url string, htmx bool) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestDashboardRenders(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp, body := get(t, ts.URL+"/admin", false)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store, max-age=0", resp.Header.Get("Cache-Control"))

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Dashboard | iMast Admin", doc.Find("title").First().Text())
	require.Equal(t, "Dashboard", doc.Find("h1").First().Text())
	require.Greater(t, doc.Find("table").Length(), 0, "dashboard should render metrics table")
	require.Equal(t, 3, doc.Find("#dashboard-alerts li").Length())
	require.Equal(t, "test", doc.Find(".env-badge").Text())

	active := doc.Find(`a[aria-current="page"]`)
	require.Equal(t, "Dashboard", active.Text())
}

func TestFragmentsRequireHTMX(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)

	resp, _ := get(t, ts.URL+"/admin/fragments/kpi", false)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := get(t, ts.URL+"/admin/fragments/kpi", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Values("Vary"), "HX-Request")

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, 0, doc.Find("title").Length())
	require.Equal(t, 4, doc.Find("#dashboard-kpis tbody tr").Length())
}

func TestAlertsFragmentShowsServiceError(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t, testutil.WithDashboardService(failingDashboard{}))
	resp, body := get(t, ts.URL+"/admin/fragments/alerts", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Alerts are unavailable right now.", doc.Find(".panel-error").Text())
}

func TestInventoryFilters(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	resp, body := get(t, ts.URL+"/admin/content?type=blog&status=draft", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, "Content | iMast Admin", doc.Find("title").Text())
	rows := doc.Find("table.inventory tbody tr")
	require.Equal(t, 1, rows.Length())
	require.Equal(t, "blog-roadmap", rows.AttrOr("data-id", ""))

	selected := doc.Find(`select[name="type"] option[selected]`)
	require.Equal(t, "blog", selected.AttrOr("value", ""))
	require.Equal(t, "Content", doc.Find(`a[aria-current="page"]`).Text())
}

func TestInventoryHTMXReturnsTableOnly(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t)
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/admin/content?type=solution", nil)
	require.NoError(t, err)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "inventory-table")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	doc := testutil.ParseHTML(t, body)
	require.Equal(t, 0, doc.Find("form").Length())
	require.Equal(t, "1 unknown", doc.Find(`tr[data-id="solution-inventory"] .badge--danger`).Text())
}

func TestCustomBasePathAndStaticAssets(t *testing.T) {
	t.Parallel()

	ts := testutil.NewServer(t, testutil.WithBasePath("/ops/"))

	resp, body := get(t, ts.URL+"/ops", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := testutil.ParseHTML(t, body)
	href, _ := doc.Find(`link[rel="stylesheet"]`).Attr("href")
	require.Equal(t, "/ops/static/admin.css", href)

	resp, _ = get(t, ts.URL+href, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, resp.Header.Get("Content-Type"), "text/css")
}

type failingDashboard struct{}

func (failingDashboard) FetchKPIs(context.Context) ([]dashboard.KPI, error) {
	return nil, errors.New("metrics backend down")
}

func (failingDashboard) FetchAlerts(context.Context, int) ([]dashboard.Alert, error) {
	return nil, errors.New("alerts backend down")
}

func (failingDashboard) FetchActivity(context.Context, int) ([]dashboard.ActivityItem, error) {
	return nil, nil
}
