package pages

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"finitefield.org/imast-web/internal/cms"
	"finitefield.org/imast-web/internal/nav"
	"finitefield.org/imast-web/internal/seo"
)

// PostSummary is one entry of the blog index.
type PostSummary struct {
	Title       string
	Href        string
	Excerpt     string
	Author      string
	Category    string
	Image       string
	PublishedAt time.Time
}

// IndexResult is a composed blog listing page.
type IndexResult struct {
	Outcome     Outcome
	Meta        seo.Meta
	Schema      map[string]any
	Posts       []PostSummary
	Page        int
	Pages       int
	Total       int
	PrevURL     string
	NextURL     string
	Breadcrumbs []nav.Crumb
	Err         error
}

// StatusCode maps the outcome to an HTTP status.
func (r IndexResult) StatusCode() int {
	return Result{Outcome: r.Outcome}.StatusCode()
}

// SchemaJSON returns the JSON-LD graph, or "" when none is emitted.
func (r IndexResult) SchemaJSON() string {
	return Result{Schema: r.Schema}.SchemaJSON()
}

// BlogIndex lists published posts for the given 1-based page.
func (c *Composer) BlogIndex(ctx context.Context, page, limit int) IndexResult {
	blog, _ := SectionByName("blog")
	if page < 1 {
		page = 1
	}
	res := IndexResult{
		Page:        page,
		Pages:       1,
		Meta:        seo.NotFoundMeta(c.site),
		Breadcrumbs: nav.Breadcrumbs(blog.IndexPath(), ""),
	}

	list, err := c.source.ListBlogs(ctx, cms.ListBlogsOptions{Status: cms.StatusPublished, Page: page, Limit: limit})
	if err != nil {
		c.loggerFor(ctx).Error("pages: blog index fetch failed", zap.Int("page", page), zap.Error(err))
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}
	res.Total = list.Total
	res.Pages = list.Pages()
	if page > res.Pages {
		res.Outcome = OutcomeNotFound
		return res
	}

	for _, doc := range list.Items {
		if !doc.Published() {
			continue
		}
		res.Posts = append(res.Posts, PostSummary{
			Title:       doc.DisplayTitle(),
			Href:        blog.Path(doc.Slug),
			Excerpt:     seo.PlainText(firstNonEmpty(doc.Excerpt, doc.MetaDescription), 200),
			Author:      doc.Author,
			Category:    doc.Category,
			Image:       firstNonEmpty(doc.Image, doc.OGImage),
			PublishedAt: doc.PublishedTime(),
		})
	}
	res.Outcome = OutcomeOK
	if len(res.Posts) == 0 {
		res.Outcome = OutcomeEmpty
	}
	if page > 1 {
		res.PrevURL = pageURL(blog.IndexPath(), page-1)
	}
	if page < res.Pages {
		res.NextURL = pageURL(blog.IndexPath(), page+1)
	}

	canonical := seo.CanonicalURL(c.site.BaseURL, "", blog.Prefix, "")
	if page > 1 {
		canonical = fmt.Sprintf("%s?page=%d", canonical, page)
	}
	title := "Blog"
	if page > 1 {
		title = fmt.Sprintf("Blog (page %d)", page)
	}
	res.Meta = seo.NewMeta(c.site, seo.Page{
		Title:     title,
		Excerpt:   fmt.Sprintf("Insights and updates from the %s team.", c.site.Name),
		Canonical: canonical,
		OGType:    "website",
	})
	res.Schema = seo.Graph(
		seo.BreadcrumbList(breadcrumbItems(c.site.BaseURL, res.Breadcrumbs, canonical)),
		seo.WebPage(seo.WebPageInput{
			Name:        title,
			Description: res.Meta.Description,
			URL:         canonical,
			Language:    c.site.Lang,
			SiteName:    c.site.Name,
		}),
	)
	return res
}

func pageURL(base string, page int) string {
	if page <= 1 {
		return base
	}
	return fmt.Sprintf("%s?page=%d", base, page)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
