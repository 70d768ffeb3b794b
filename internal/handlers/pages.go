package handlers

import (
	"html/template"
	"strings"
	"time"

	"finitefield.org/imast-web/internal/modules"
	"finitefield.org/imast-web/internal/nav"
	"finitefield.org/imast-web/internal/pages"
	"finitefield.org/imast-web/internal/seo"
)

// SEOData is the head-tag view model shared by every page.
type SEOData struct {
	Title       string
	Description string
	Canonical   string
	Robots      string
	Keywords    string
	OG          seo.OpenGraph
	Twitter     seo.Twitter
	// JSONLD entries are emitted verbatim inside application/ld+json script tags.
	JSONLD []template.JS
}

// BuildSEOData copies resolved metadata and the optional JSON-LD graph.
func BuildSEOData(meta seo.Meta, schemaJSON string) SEOData {
	data := SEOData{
		Title:       meta.Title,
		Description: meta.Description,
		Canonical:   meta.Canonical,
		Robots:      meta.Robots,
		Keywords:    meta.KeywordList(),
		OG:          meta.OG,
		Twitter:     meta.Twitter,
	}
	if schemaJSON != "" {
		// seo.JSON escapes <, > and & so the payload cannot close the script element.
		data.JSONLD = []template.JS{template.JS(schemaJSON)}
	}
	return data
}

// PageData is the generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SiteName  string
	SEO       SEOData
	Analytics Analytics

	Path        string
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	// Outcome-specific payloads; at most one is set.
	Content *ContentView
	Index   *IndexView
	Message string
}

// ContentView is a composed CMS document ready for the page template.
type ContentView struct {
	Section     string
	Title       string
	Excerpt     string
	Author      string
	Category    string
	Image       string
	PublishedAt time.Time
	Draft       bool
	Blocks      []modules.Block
	// Words counts the visible words across rendered blocks.
	Words int
}

// IndexView is the blog listing payload.
type IndexView struct {
	Posts   []pages.PostSummary
	Page    int
	Pages   int
	Total   int
	PrevURL string
	NextURL string
}

// User-facing copy for the fallback states.
const (
	NotFoundMessage = "The page you are looking for does not exist or has moved."
	FailedMessage   = "We could not load this page right now. Please try again shortly."
)

// Layout is the site-wide input shared by every page view model.
type Layout struct {
	Lang      string
	SiteName  string
	Analytics Analytics
}

// BuildPageData converts a composed page into the layout view model.
func BuildPageData(layout Layout, res pages.Result) PageData {
	data := PageData{
		Title:       res.Meta.Title,
		Lang:        layout.Lang,
		SiteName:    layout.SiteName,
		SEO:         BuildSEOData(res.Meta, res.SchemaJSON()),
		Analytics:   layout.Analytics,
		Path:        res.Path,
		Nav:         nav.Build(res.Path),
		Breadcrumbs: res.Breadcrumbs,
	}
	if res.Document == nil {
		data.Message = statusMessage(res.Outcome)
		return data
	}
	doc := res.Document
	data.Content = &ContentView{
		Section:     res.Section.Name,
		Title:       doc.DisplayTitle(),
		Excerpt:     doc.Excerpt,
		Author:      doc.Author,
		Category:    doc.Category,
		Image:       firstNonEmpty(doc.Image, doc.OGImage),
		PublishedAt: doc.PublishedTime(),
		Draft:       !doc.Published(),
		Blocks:      res.Blocks,
		Words:       countWords(res.Blocks),
	}
	if res.Outcome == pages.OutcomeEmpty {
		data.Message = pages.EmptyMessage
	}
	return data
}

// BuildIndexData converts a composed blog listing into the layout view model.
func BuildIndexData(layout Layout, path string, res pages.IndexResult) PageData {
	data := PageData{
		Title:       res.Meta.Title,
		Lang:        layout.Lang,
		SiteName:    layout.SiteName,
		SEO:         BuildSEOData(res.Meta, res.SchemaJSON()),
		Analytics:   layout.Analytics,
		Path:        path,
		Nav:         nav.Build(path),
		Breadcrumbs: res.Breadcrumbs,
	}
	switch res.Outcome {
	case pages.OutcomeOK, pages.OutcomeEmpty:
		data.Index = &IndexView{
			Posts:   res.Posts,
			Page:    res.Page,
			Pages:   res.Pages,
			Total:   res.Total,
			PrevURL: res.PrevURL,
			NextURL: res.NextURL,
		}
		if res.Outcome == pages.OutcomeEmpty {
			data.Message = "No posts have been published yet."
		}
	default:
		data.Message = statusMessage(res.Outcome)
	}
	return data
}

func statusMessage(outcome pages.Outcome) string {
	if outcome == pages.OutcomeFailed {
		return FailedMessage
	}
	return NotFoundMessage
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func countWords(blocks []modules.Block) int {
	n := 0
	for _, b := range blocks {
		if b.Diagnostic {
			continue
		}
		n += len(strings.Fields(seo.PlainText(string(b.HTML), 0)))
	}
	return n
}
