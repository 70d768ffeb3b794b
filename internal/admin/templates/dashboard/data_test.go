package dashboard

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	admindashboard "finitefield.org/imast-web/internal/admin/dashboard"
)

func TestSparklinePoints(t *testing.T) {
	require.Equal(t, "", sparklinePoints(nil))
	require.Equal(t, "0,50 100,50", sparklinePoints([]float64{3}))
	require.Equal(t, "0.0,100.0 50.0,0.0 100.0,50.0", sparklinePoints([]float64{0, 10, 5}))
	require.Equal(t, "0.0,100.0 100.0,100.0", sparklinePoints([]float64{7, 7}))
}

func TestBuildPageDataEndpoints(t *testing.T) {
	data := BuildPageData("/ops/", time.Now(), nil, nil, nil)
	require.Equal(t, "/ops/fragments/kpi", data.KPIEndpoint)
	require.Equal(t, "/ops/fragments/alerts", data.AlertsFragment.Endpoint)
	require.Equal(t, 60, data.KPIFragment.Poll)
}

func TestKPIFragmentRendersTable(t *testing.T) {
	svc := admindashboard.NewStaticService()
	frag := KPIFragmentPayload("/admin", svc.KPIs)

	var buf bytes.Buffer
	require.NoError(t, KPIFragment(frag).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)

	section := doc.Find("#dashboard-kpis")
	hxGet, _ := section.Attr("hx-get")
	require.Equal(t, "/admin/fragments/kpi", hxGet)
	require.Equal(t, 4, doc.Find("table.kpi-table tbody tr").Length())
	require.Equal(t, "Published pages", doc.Find(`tr[data-kpi="published-pages"] th`).Text())
}

func TestAlertsFragmentEscapesContent(t *testing.T) {
	frag := AlertsFragmentPayload("/admin", time.Now(), []admindashboard.Alert{{
		ID:       "a1",
		Severity: "danger",
		Title:    "<script>alert(1)</script>",
		Message:  `Block "x" failed`,
	}})

	var buf bytes.Buffer
	require.NoError(t, AlertsFragment(frag).Render(context.Background(), &buf))
	require.NotContains(t, buf.String(), "<script>")
	require.Contains(t, buf.String(), "&lt;script&gt;")
}

func TestEmptyFragments(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, KPIFragment(KPIFragmentPayload("/admin", nil)).Render(context.Background(), &buf))
	require.Contains(t, buf.String(), "No metrics available.")
}
