package seo

import (
	"net/url"
	"strings"
)

// NotFoundTitle is the title used for missing or failed pages.
const NotFoundTitle = "Page Not Found"

// RobotsNoIndex keeps a page out of search indexes.
const RobotsNoIndex = "noindex, nofollow"

// Site carries the site-wide values injected at startup.
type Site struct {
	Name               string
	BaseURL            string
	DefaultTitle       string
	DefaultDescription string
	DefaultImage       string
	LogoURL            string
	TwitterHandle      string
	Lang               string
}

type OpenGraph struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Type        string `json:"type,omitempty"`
	URL         string `json:"url,omitempty"`
	SiteName    string `json:"siteName,omitempty"`
}

type Twitter struct {
	Card        string `json:"card"`
	Site        string `json:"site,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

type Meta struct {
	Title       string
	Description string
	Canonical   string
	Image       string
	Keywords    []string
	Robots      string
	OG          OpenGraph
	Twitter     Twitter
}

// NoIndex reports whether the page asks crawlers to skip it.
func (m Meta) NoIndex() bool {
	return strings.Contains(m.Robots, "noindex")
}

// KeywordList joins keywords for the meta tag.
func (m Meta) KeywordList() string {
	return strings.Join(m.Keywords, ", ")
}

// Page is the document-derived input to NewMeta.
type Page struct {
	Title           string
	MetaTitle       string
	MetaDescription string
	Excerpt         string
	Image           string
	OGImage         string
	Keywords        []string
	Canonical       string
	OGType          string
	NoIndex         bool
}

// NewMeta applies the title, description and image fallback chains.
func NewMeta(site Site, page Page) Meta {
	title := ResolveTitle(site, page.MetaTitle, page.Title)
	description := ResolveDescription(site, page.MetaDescription, page.Excerpt)
	image := AbsoluteURL(site.BaseURL, firstNonEmpty(page.OGImage, page.Image, site.DefaultImage))
	ogType := firstNonEmpty(page.OGType, "website")

	meta := Meta{
		Title:       title,
		Description: description,
		Canonical:   page.Canonical,
		Image:       image,
		Keywords:    cleanKeywords(page.Keywords),
		OG: OpenGraph{
			Title:       title,
			Description: description,
			Image:       image,
			Type:        ogType,
			URL:         page.Canonical,
			SiteName:    site.Name,
		},
		Twitter: Twitter{
			Card:        "summary_large_image",
			Site:        site.TwitterHandle,
			Title:       title,
			Description: description,
			Image:       image,
		},
	}
	if page.NoIndex {
		meta.Robots = RobotsNoIndex
	}
	return meta
}

// NotFoundMeta is the safe metadata returned when a page is missing or could not be loaded.
func NotFoundMeta(site Site) Meta {
	description := site.DefaultDescription
	image := AbsoluteURL(site.BaseURL, site.DefaultImage)
	return Meta{
		Title:       NotFoundTitle,
		Description: description,
		Image:       image,
		Robots:      RobotsNoIndex,
		OG: OpenGraph{
			Title:       NotFoundTitle,
			Description: description,
			Image:       image,
			Type:        "website",
			SiteName:    site.Name,
		},
		Twitter: Twitter{
			Card:        "summary",
			Site:        site.TwitterHandle,
			Title:       NotFoundTitle,
			Description: description,
		},
	}
}

// ResolveTitle returns metaTitle, then title, then the site default.
func ResolveTitle(site Site, metaTitle, title string) string {
	return firstNonEmpty(metaTitle, title, site.DefaultTitle, site.Name)
}

// ResolveDescription returns metaDescription, then excerpt, then the site default.
func ResolveDescription(site Site, metaDescription, excerpt string) string {
	return firstNonEmpty(metaDescription, PlainText(excerpt, 300), site.DefaultDescription)
}

// CanonicalURL returns explicit when set, otherwise {base}/{section}/{slug}. An empty
// section addresses top-level pages and an empty slug addresses the section root.
func CanonicalURL(baseURL, explicit, section, slug string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return AbsoluteURL(baseURL, explicit)
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	var parts []string
	for _, p := range []string{section, slug} {
		if p = strings.Trim(strings.TrimSpace(p), "/"); p != "" {
			parts = append(parts, url.PathEscape(p))
		}
	}
	if len(parts) == 0 {
		return base + "/"
	}
	return base + "/" + strings.Join(parts, "/")
}

// AbsoluteURL resolves ref against baseURL; absolute refs are returned unchanged.
func AbsoluteURL(baseURL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if strings.HasPrefix(ref, "/") {
		return base + ref
	}
	return base + "/" + ref
}

func cleanKeywords(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		key := strings.ToLower(k)
		if k == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, k)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
