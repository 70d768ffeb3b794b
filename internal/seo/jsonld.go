package seo

import (
	"encoding/json"
	"strings"
)

const schemaContext = "https://schema.org"

// JSON marshals v to a compact JSON string. It returns an empty string on error.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Graph combines nodes under one @context/@graph envelope. Per-node @context keys are
// dropped and nil nodes skipped. It returns nil when no nodes remain.
func Graph(nodes ...map[string]any) map[string]any {
	graph := make([]map[string]any, 0, len(nodes))
	for _, node := range nodes {
		if len(node) == 0 {
			continue
		}
		clean := make(map[string]any, len(node))
		for k, v := range node {
			if k == "@context" {
				continue
			}
			clean[k] = v
		}
		graph = append(graph, clean)
	}
	if len(graph) == 0 {
		return nil
	}
	return map[string]any{
		"@context": schemaContext,
		"@graph":   graph,
	}
}

// Organization returns a minimal Organization schema.
func Organization(name, url, logoURL string) map[string]any {
	m := node("Organization")
	set(m, "name", name)
	set(m, "url", url)
	set(m, "logo", logoURL)
	return m
}

// WebSite returns a minimal WebSite schema with optional SearchAction.
func WebSite(name, url, searchActionURL string) map[string]any {
	m := node("WebSite")
	set(m, "name", name)
	set(m, "url", url)
	if searchActionURL != "" {
		m["potentialAction"] = map[string]any{
			"@type":       "SearchAction",
			"target":      searchActionURL + "{search_term_string}",
			"query-input": "required name=search_term_string",
		}
	}
	return m
}

// BreadcrumbItem maps name and absolute item URL.
type BreadcrumbItem struct {
	Name string
	Item string
}

// BreadcrumbList builds schema.org BreadcrumbList. The last crumb may omit its URL.
func BreadcrumbList(items []BreadcrumbItem) map[string]any {
	el := make([]map[string]any, 0, len(items))
	for i, it := range items {
		entry := map[string]any{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     it.Name,
		}
		set(entry, "item", it.Item)
		el = append(el, entry)
	}
	m := node("BreadcrumbList")
	m["itemListElement"] = el
	return m
}

// ArticleInput describes an article, blog post or case study.
type ArticleInput struct {
	Headline      string
	Description   string
	URL           string
	Image         string
	AuthorName    string
	PublisherName string
	PublisherLogo string
	DatePublished string
	DateModified  string
	Section       string
	Keywords      []string
}

// Article returns an Article schema payload.
func Article(in ArticleInput) map[string]any {
	m := node("Article")
	set(m, "headline", in.Headline)
	set(m, "description", in.Description)
	set(m, "url", in.URL)
	set(m, "image", in.Image)
	set(m, "datePublished", in.DatePublished)
	set(m, "dateModified", in.DateModified)
	set(m, "articleSection", in.Section)
	if in.URL != "" {
		m["mainEntityOfPage"] = map[string]any{"@type": "WebPage", "@id": in.URL}
	}
	if in.AuthorName != "" {
		m["author"] = map[string]any{"@type": "Person", "name": in.AuthorName}
	}
	if in.PublisherName != "" {
		publisher := map[string]any{"@type": "Organization", "name": in.PublisherName}
		if in.PublisherLogo != "" {
			publisher["logo"] = map[string]any{"@type": "ImageObject", "url": in.PublisherLogo}
		}
		m["publisher"] = publisher
	}
	if kw := strings.Join(in.Keywords, ", "); kw != "" {
		m["keywords"] = kw
	}
	return m
}

// WebPageInput describes a generic page.
type WebPageInput struct {
	Name        string
	Description string
	URL         string
	Image       string
	Language    string
	SiteName    string
	SiteURL     string
}

// WebPage returns a WebPage schema payload.
func WebPage(in WebPageInput) map[string]any {
	m := node("WebPage")
	set(m, "name", in.Name)
	set(m, "description", in.Description)
	set(m, "url", in.URL)
	set(m, "inLanguage", in.Language)
	if in.Image != "" {
		m["primaryImageOfPage"] = map[string]any{"@type": "ImageObject", "url": in.Image}
	}
	if in.SiteName != "" {
		site := map[string]any{"@type": "WebSite", "name": in.SiteName}
		set(site, "url", in.SiteURL)
		m["isPartOf"] = site
	}
	return m
}

// Product returns a minimal product schema payload.
func Product(name, description, url, imageURL, sku, brand string) map[string]any {
	m := node("Product")
	set(m, "name", name)
	set(m, "description", description)
	set(m, "url", url)
	set(m, "image", imageURL)
	set(m, "sku", sku)
	if brand != "" {
		m["brand"] = map[string]any{"@type": "Brand", "name": brand}
	}
	return m
}

// ServiceInput describes a professional service offering.
type ServiceInput struct {
	Name         string
	Description  string
	URL          string
	Image        string
	ServiceType  string
	ProviderName string
	ProviderURL  string
	AreaServed   string
}

// Service returns a Service schema payload.
func Service(in ServiceInput) map[string]any {
	m := node("Service")
	set(m, "name", in.Name)
	set(m, "description", in.Description)
	set(m, "url", in.URL)
	set(m, "image", in.Image)
	set(m, "serviceType", in.ServiceType)
	set(m, "areaServed", in.AreaServed)
	if in.ProviderName != "" {
		provider := map[string]any{"@type": "Organization", "name": in.ProviderName}
		set(provider, "url", in.ProviderURL)
		m["provider"] = provider
	}
	return m
}

// SoftwareApplicationInput describes a software product page.
type SoftwareApplicationInput struct {
	Name                string
	Description         string
	URL                 string
	Image               string
	ApplicationCategory string
	OperatingSystem     string
	Price               string
	PriceCurrency       string
}

// SoftwareApplication returns a SoftwareApplication schema payload.
func SoftwareApplication(in SoftwareApplicationInput) map[string]any {
	m := node("SoftwareApplication")
	set(m, "name", in.Name)
	set(m, "description", in.Description)
	set(m, "url", in.URL)
	set(m, "image", in.Image)
	set(m, "applicationCategory", in.ApplicationCategory)
	set(m, "operatingSystem", in.OperatingSystem)
	if in.Price != "" {
		offer := map[string]any{"@type": "Offer", "price": in.Price}
		set(offer, "priceCurrency", in.PriceCurrency)
		m["offers"] = offer
	}
	return m
}

// Question is one FAQ entry.
type Question struct {
	Question string
	Answer   string
}

// FAQPage returns an FAQPage node, or nil when no complete question/answer pair exists.
func FAQPage(questions []Question) map[string]any {
	entities := make([]map[string]any, 0, len(questions))
	for _, q := range questions {
		question := strings.TrimSpace(q.Question)
		answer := strings.TrimSpace(q.Answer)
		if question == "" || answer == "" {
			continue
		}
		entities = append(entities, map[string]any{
			"@type": "Question",
			"name":  question,
			"acceptedAnswer": map[string]any{
				"@type": "Answer",
				"text":  answer,
			},
		})
	}
	if len(entities) == 0 {
		return nil
	}
	m := node("FAQPage")
	m["mainEntity"] = entities
	return m
}

func node(typ string) map[string]any {
	return map[string]any{
		"@context": schemaContext,
		"@type":    typ,
	}
}

func set(m map[string]any, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		m[key] = value
	}
}
