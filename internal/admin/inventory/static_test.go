package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStaticServiceFiltersByTypeAndStatus(t *testing.T) {
	svc := NewStaticService()

	res, err := svc.List(context.Background(), Query{Type: "BLOG"})
	require.NoError(t, err)
	require.Equal(t, 3, res.Pagination.TotalItems)
	for _, doc := range res.Documents {
		require.Equal(t, "blog", doc.Type)
	}

	res, err = svc.List(context.Background(), Query{Type: "blog", Status: StatusDraft})
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	require.Equal(t, "draft-roadmap", res.Documents[0].Slug)

	var selected []string
	for _, opt := range res.Filters.TypeOptions {
		if opt.Selected {
			selected = append(selected, opt.Value)
		}
	}
	require.Equal(t, []string{"blog"}, selected)
}

func TestStaticServiceSearchAndSort(t *testing.T) {
	now := time.Now()
	svc := NewStaticServiceWith([]Document{
		{Slug: "old", Title: "Old cloud post", Type: "blog", Status: StatusPublished, UpdatedAt: now.Add(-time.Hour)},
		{Slug: "new", Title: "New Cloud post", Type: "blog", Status: StatusPublished, UpdatedAt: now},
		{Slug: "other", Title: "Unrelated", Type: "page", Status: StatusPublished, UpdatedAt: now},
	})

	res, err := svc.List(context.Background(), Query{Search: "cloud"})
	require.NoError(t, err)
	require.Len(t, res.Documents, 2)
	require.Equal(t, "new", res.Documents[0].Slug)
	require.Equal(t, "old", res.Documents[1].Slug)
}

func TestStaticServicePagination(t *testing.T) {
	svc := NewStaticService()

	res, err := svc.List(context.Background(), Query{Page: 2, PageSize: 4})
	require.NoError(t, err)
	require.Len(t, res.Documents, 4)
	require.NotNil(t, res.Pagination.NextPage)
	require.Equal(t, 3, *res.Pagination.NextPage)
	require.NotNil(t, res.Pagination.PrevPage)
	require.Equal(t, 1, *res.Pagination.PrevPage)

	res, err = svc.List(context.Background(), Query{Page: 10, PageSize: 4})
	require.NoError(t, err)
	require.Empty(t, res.Documents)
	require.Nil(t, res.Pagination.NextPage)
}

func TestStaticServiceUnknownFilterMatchesNothing(t *testing.T) {
	res, err := NewStaticService().List(context.Background(), Query{Status: "archived"})
	require.NoError(t, err)
	require.Empty(t, res.Documents)
	require.Len(t, res.Filters.StatusOptions, 2)
}
