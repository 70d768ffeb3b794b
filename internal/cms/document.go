package cms

import (
	"strings"
	"time"
)

// Status is the publication state of a CMS document.
type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
)

// Document is a page, blog post or story as served by the content API.
type Document struct {
	ID              string        `json:"_id,omitempty" yaml:"_id,omitempty"`
	Slug            string        `json:"slug" yaml:"slug"`
	Type            string        `json:"type,omitempty" yaml:"type,omitempty"`
	Title           string        `json:"title,omitempty" yaml:"title,omitempty"`
	MetaTitle       string        `json:"metaTitle,omitempty" yaml:"metaTitle,omitempty"`
	MetaDescription string        `json:"metaDescription,omitempty" yaml:"metaDescription,omitempty"`
	Excerpt         string        `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
	Status          Status        `json:"status,omitempty" yaml:"status,omitempty"`
	CanonicalURL    string        `json:"canonicalUrl,omitempty" yaml:"canonicalUrl,omitempty"`
	Image           string        `json:"image,omitempty" yaml:"image,omitempty"`
	OGImage         string        `json:"ogImage,omitempty" yaml:"ogImage,omitempty"`
	Keywords        []string      `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Author          string        `json:"author,omitempty" yaml:"author,omitempty"`
	Category        string        `json:"category,omitempty" yaml:"category,omitempty"`
	PublishedAt     string        `json:"publishedAt,omitempty" yaml:"publishedAt,omitempty"`
	UpdatedAt       string        `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	Layout          []LayoutEntry `json:"layout" yaml:"layout"`
}

// LayoutEntry is one ordered content block of a document. Malformed entries decode
// without error and carry the problem in Module.Invalid.
type LayoutEntry struct {
	Order  float64 `json:"order" yaml:"order"`
	Module Module  `json:"module" yaml:"module"`
}

// Module references a registered block type and carries its content payload.
type Module struct {
	ID      string         `json:"_id,omitempty" yaml:"_id,omitempty"`
	Type    string         `json:"type" yaml:"type"`
	Content map[string]any `json:"content,omitempty" yaml:"content,omitempty"`
	// Invalid describes why the block payload could not be decoded; empty when well formed.
	Invalid string `json:"-" yaml:"-"`
}

// Published reports whether the document is live.
func (d Document) Published() bool {
	return strings.EqualFold(strings.TrimSpace(string(d.Status)), string(StatusPublished))
}

// PublishedTime parses PublishedAt, returning the zero time when absent or malformed.
func (d Document) PublishedTime() time.Time {
	return parseContentDate(d.PublishedAt)
}

// UpdatedTime parses UpdatedAt, falling back to PublishedTime.
func (d Document) UpdatedTime() time.Time {
	if t := parseContentDate(d.UpdatedAt); !t.IsZero() {
		return t
	}
	return d.PublishedTime()
}

// DisplayTitle returns the title or a prettified slug.
func (d Document) DisplayTitle() string {
	return firstNonEmpty(strings.TrimSpace(d.Title), prettifySlug(d.Slug))
}

// BlogList is one page of blog posts.
type BlogList struct {
	Items []Document `json:"items"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
	Total int        `json:"total"`
}

// Pages returns the number of pages implied by Total and Limit.
func (l BlogList) Pages() int {
	if l.Limit <= 0 || l.Total <= 0 {
		return 1
	}
	return (l.Total + l.Limit - 1) / l.Limit
}

// ListBlogsOptions controls blog listing requests.
type ListBlogsOptions struct {
	Status Status
	Page   int
	Limit  int
}

const (
	defaultListPage  = 1
	defaultListLimit = 10
)

func (o ListBlogsOptions) normalized() ListBlogsOptions {
	if o.Page <= 0 {
		o.Page = defaultListPage
	}
	if o.Limit <= 0 {
		o.Limit = defaultListLimit
	}
	o.Status = Status(strings.ToLower(strings.TrimSpace(string(o.Status))))
	return o
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	parts := strings.Split(strings.TrimSpace(slug), "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
