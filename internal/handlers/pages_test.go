package handlers

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/imast-web/internal/cms"
	"finitefield.org/imast-web/internal/modules"
	"finitefield.org/imast-web/internal/pages"
	"finitefield.org/imast-web/internal/platform/config"
	"finitefield.org/imast-web/internal/seo"
)

var testLayout = Layout{Lang: "en", SiteName: "iMast"}

func TestBuildSEODataOmitsEmptyGraph(t *testing.T) {
	meta := seo.Meta{Title: "About", Robots: seo.RobotsNoIndex, Keywords: []string{"a", "b"}}
	data := BuildSEOData(meta, "")
	require.Empty(t, data.JSONLD)
	require.Equal(t, "a, b", data.Keywords)
	require.Equal(t, seo.RobotsNoIndex, data.Robots)

	data = BuildSEOData(meta, `{"@context":"https://schema.org"}`)
	require.Equal(t, []template.JS{`{"@context":"https://schema.org"}`}, data.JSONLD)
}

func TestBuildPageDataStates(t *testing.T) {
	sec, ok := pages.SectionByName("blog")
	require.True(t, ok)

	notFound := BuildPageData(testLayout, pages.Result{Outcome: pages.OutcomeNotFound, Section: sec, Path: "/blog/x"})
	require.Nil(t, notFound.Content)
	require.Equal(t, NotFoundMessage, notFound.Message)

	failed := BuildPageData(testLayout, pages.Result{Outcome: pages.OutcomeFailed, Section: sec, Path: "/blog/x"})
	require.Equal(t, FailedMessage, failed.Message)

	doc := cms.Document{Title: "Hello", Status: cms.StatusDraft}
	empty := BuildPageData(testLayout, pages.Result{Outcome: pages.OutcomeEmpty, Section: sec, Path: "/blog/hello", Document: &doc})
	require.NotNil(t, empty.Content)
	require.True(t, empty.Content.Draft)
	require.Equal(t, pages.EmptyMessage, empty.Message)
	require.Equal(t, "/blog", empty.Nav[3].Href)
	require.True(t, empty.Nav[3].Active)
}

func TestBuildPageDataCountsWordsOutsideDiagnostics(t *testing.T) {
	doc := cms.Document{Title: "Hello", Status: cms.StatusPublished}
	res := pages.Result{
		Outcome:  pages.OutcomeOK,
		Path:     "/about",
		Document: &doc,
		Blocks: []modules.Block{
			{HTML: "<p>one two <strong>three</strong></p>"},
			{HTML: "<div>ignored words here</div>", Diagnostic: true},
		},
	}
	data := BuildPageData(testLayout, res)
	require.Equal(t, 3, data.Content.Words)
	require.Empty(t, data.Message)
}

func TestBuildIndexData(t *testing.T) {
	res := pages.IndexResult{Outcome: pages.OutcomeEmpty, Page: 1, Pages: 1}
	data := BuildIndexData(testLayout, "/blog", res)
	require.NotNil(t, data.Index)
	require.Equal(t, "No posts have been published yet.", data.Message)

	data = BuildIndexData(testLayout, "/blog", pages.IndexResult{Outcome: pages.OutcomeFailed})
	require.Nil(t, data.Index)
	require.Equal(t, FailedMessage, data.Message)
}

func TestAnalyticsFromConfig(t *testing.T) {
	a := AnalyticsFromConfig(config.AnalyticsConfig{GTMContainerID: "GTM-1"})
	require.True(t, a.Enabled())
	require.False(t, Analytics{}.Enabled())
}
