package pages

import (
	"strings"
)

// Source selects which content API collection a section reads from.
type Source string

const (
	SourcePage  Source = "page"
	SourceBlog  Source = "blog"
	SourceStory Source = "story"
)

// SchemaKind selects the type-specific JSON-LD nodes of a section.
type SchemaKind string

const (
	SchemaWebPage  SchemaKind = "webpage"
	SchemaArticle  SchemaKind = "article"
	SchemaService  SchemaKind = "service"
	SchemaSolution SchemaKind = "solution"
)

// Section describes one route family of the public site.
type Section struct {
	Name string
	// Prefix is the first path segment; empty for top-level pages.
	Prefix string
	Source Source
	// Types lists the accepted document type discriminators, matched case-insensitively.
	Types  []string
	Schema SchemaKind
	OGType string
	// Excluded slugs always resolve to not found on this section.
	Excluded []string
	// FixedSlug pins the section to a single document (the home page).
	FixedSlug string
}

var sections = []Section{
	{Name: "home", Source: SourcePage, Types: []string{"page", "home"}, Schema: SchemaWebPage, OGType: "website", FixedSlug: "home"},
	{Name: "page", Source: SourcePage, Types: []string{"page"}, Schema: SchemaWebPage, OGType: "website", Excluded: []string{"home"}},
	{Name: "blog", Prefix: "blog", Source: SourceBlog, Types: []string{"blog"}, Schema: SchemaArticle, OGType: "article"},
	{Name: "case-study", Prefix: "case-studies", Source: SourceStory, Types: []string{"case-study"}, Schema: SchemaArticle, OGType: "article"},
	{Name: "policy", Prefix: "policies", Source: SourcePage, Types: []string{"policy"}, Schema: SchemaWebPage, OGType: "website"},
	{Name: "service", Prefix: "services", Source: SourcePage, Types: []string{"service"}, Schema: SchemaService, OGType: "website"},
	{Name: "solution", Prefix: "solutions", Source: SourcePage, Types: []string{"solution"}, Schema: SchemaSolution, OGType: "website"},
}

// Sections returns the route sections in routing order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// SectionByName finds a section by name or path prefix.
func SectionByName(name string) (Section, bool) {
	name = strings.ToLower(strings.Trim(strings.TrimSpace(name), "/"))
	for _, s := range sections {
		if s.Name == name || (s.Prefix != "" && s.Prefix == name) {
			return s, true
		}
	}
	return Section{}, false
}

// Path returns the site-relative path for slug.
func (s Section) Path(slug string) string {
	if s.FixedSlug != "" {
		return "/"
	}
	if s.Prefix == "" {
		return "/" + slug
	}
	return "/" + s.Prefix + "/" + slug
}

// IndexPath returns the section landing path ("/blog"), or "/" for top-level sections.
func (s Section) IndexPath() string {
	if s.Prefix == "" {
		return "/"
	}
	return "/" + s.Prefix
}

func (s Section) excluded(slug string) bool {
	for _, ex := range s.Excluded {
		if strings.EqualFold(ex, slug) {
			return true
		}
	}
	return false
}

// accepts reports whether a document type matches the section discriminator. Blog posts
// come from a dedicated collection and may omit their type.
func (s Section) accepts(docType string) bool {
	docType = strings.TrimSpace(docType)
	if docType == "" {
		return s.Source == SourceBlog
	}
	for _, t := range s.Types {
		if strings.EqualFold(t, docType) {
			return true
		}
	}
	return false
}
