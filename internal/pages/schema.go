package pages

import (
	"strings"
	"time"

	"finitefield.org/imast-web/internal/cms"
	"finitefield.org/imast-web/internal/modules"
	"finitefield.org/imast-web/internal/nav"
	"finitefield.org/imast-web/internal/seo"
)

const defaultApplicationCategory = "BusinessApplication"

// schema assembles the breadcrumb and type-specific nodes for a published document.
func (c *Composer) schema(section Section, doc cms.Document, meta seo.Meta, crumbs []nav.Crumb) map[string]any {
	nodes := []map[string]any{
		seo.BreadcrumbList(breadcrumbItems(c.site.BaseURL, crumbs, meta.Canonical)),
	}
	logo := seo.AbsoluteURL(c.site.BaseURL, c.site.LogoURL)
	name := doc.DisplayTitle()

	switch section.Schema {
	case SchemaArticle:
		nodes = append(nodes, seo.Article(seo.ArticleInput{
			Headline:      name,
			Description:   meta.Description,
			URL:           meta.Canonical,
			Image:         meta.Image,
			AuthorName:    doc.Author,
			PublisherName: c.site.Name,
			PublisherLogo: logo,
			DatePublished: isoDate(doc.PublishedTime()),
			DateModified:  isoDate(doc.UpdatedTime()),
			Section:       doc.Category,
			Keywords:      meta.Keywords,
		}))
	case SchemaService:
		nodes = append(nodes, seo.Service(seo.ServiceInput{
			Name:         name,
			Description:  meta.Description,
			URL:          meta.Canonical,
			Image:        meta.Image,
			ServiceType:  doc.Category,
			ProviderName: c.site.Name,
			ProviderURL:  seo.CanonicalURL(c.site.BaseURL, "", "", ""),
		}))
	case SchemaSolution:
		category := doc.Category
		if category == "" {
			category = defaultApplicationCategory
		}
		nodes = append(nodes,
			seo.SoftwareApplication(seo.SoftwareApplicationInput{
				Name:                name,
				Description:         meta.Description,
				URL:                 meta.Canonical,
				Image:               meta.Image,
				ApplicationCategory: category,
				OperatingSystem:     "Web",
			}),
			seo.Product(name, meta.Description, meta.Canonical, meta.Image, doc.ID, c.site.Name),
		)
	default:
		nodes = append(nodes, seo.WebPage(seo.WebPageInput{
			Name:        name,
			Description: meta.Description,
			URL:         meta.Canonical,
			Image:       meta.Image,
			Language:    c.site.Lang,
			SiteName:    c.site.Name,
			SiteURL:     seo.CanonicalURL(c.site.BaseURL, "", "", ""),
		}))
	}

	if section.FixedSlug != "" {
		home := seo.CanonicalURL(c.site.BaseURL, "", "", "")
		nodes = append(nodes,
			seo.Organization(c.site.Name, home, logo),
			seo.WebSite(c.site.Name, home, ""),
		)
	}
	if faq := seo.FAQPage(faqQuestions(doc.Layout)); faq != nil {
		nodes = append(nodes, faq)
	}
	return seo.Graph(nodes...)
}

func breadcrumbItems(baseURL string, crumbs []nav.Crumb, canonical string) []seo.BreadcrumbItem {
	items := make([]seo.BreadcrumbItem, 0, len(crumbs))
	for i, crumb := range crumbs {
		item := seo.AbsoluteURL(baseURL, crumb.Href)
		if i == len(crumbs)-1 && canonical != "" {
			item = canonical
		}
		items = append(items, seo.BreadcrumbItem{Name: crumb.Label, Item: item})
	}
	return items
}

// faqQuestions collects question/answer pairs from every faq block in the layout.
func faqQuestions(layout []cms.LayoutEntry) []seo.Question {
	var out []seo.Question
	for _, entry := range modules.SortLayout(layout) {
		if !strings.EqualFold(strings.TrimSpace(entry.Module.Type), "faq") {
			continue
		}
		for _, item := range modules.Content(entry.Module.Content).Items("items") {
			out = append(out, seo.Question{
				Question: item.String("question"),
				Answer:   seo.PlainText(item.String("answer"), 0),
			})
		}
	}
	return out
}

func isoDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
