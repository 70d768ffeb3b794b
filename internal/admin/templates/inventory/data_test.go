package inventory

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	admininventory "finitefield.org/imast-web/internal/admin/inventory"
)

func TestPageURLKeepsFilters(t *testing.T) {
	state := QueryState{Type: "blog", Status: "draft", Search: "road map"}
	require.Equal(t, "/admin/content?page=2&q=road+map&status=draft&type=blog", pageURL("/admin/content", state, 2))
	require.Equal(t, "/admin/content", pageURL("/admin/content", QueryState{}, 1))
}

func TestTableRendersRowsAndPager(t *testing.T) {
	now := time.Now()
	docs := make([]admininventory.Document, 0, 3)
	for i, slug := range []string{"a", "b", "c"} {
		docs = append(docs, admininventory.Document{
			ID:        slug,
			Slug:      slug,
			Type:      "page",
			Title:     "Page " + slug,
			Status:    admininventory.StatusPublished,
			Path:      "/" + slug,
			UpdatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	docs[1].Diagnostics = 2

	query := admininventory.Query{Page: 1, PageSize: 2}
	result, err := admininventory.NewStaticServiceWith(docs).List(context.Background(), query)
	require.NoError(t, err)

	data := BuildPageData("/admin", query, result)
	var buf bytes.Buffer
	require.NoError(t, Table(data.Table).Render(context.Background(), &buf))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Equal(t, 2, doc.Find("table.inventory tbody tr").Length())
	require.Equal(t, "2 unknown", doc.Find(`tr[data-id="b"] .badge--danger`).Text())
	next, ok := doc.Find(`a[rel="next"]`).Attr("href")
	require.True(t, ok)
	require.Equal(t, "/admin/content?page=2", next)
	require.Zero(t, doc.Find(`a[rel="prev"]`).Length())
}

func TestTableEmptyState(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table(TableData{}).Render(context.Background(), &buf))
	require.Contains(t, buf.String(), "No documents match these filters.")
}
