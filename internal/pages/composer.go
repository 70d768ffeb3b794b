package pages

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"finitefield.org/imast-web/internal/cms"
	"finitefield.org/imast-web/internal/modules"
	"finitefield.org/imast-web/internal/nav"
	"finitefield.org/imast-web/internal/platform/requestctx"
	"finitefield.org/imast-web/internal/seo"
)

// ContentSource is the subset of the content API the composer needs.
type ContentSource interface {
	GetPage(ctx context.Context, slug string) (cms.Document, error)
	GetBlog(ctx context.Context, slug string) (cms.Document, error)
	GetStory(ctx context.Context, slug string) (cms.Document, error)
	ListBlogs(ctx context.Context, opts cms.ListBlogsOptions) (cms.BlogList, error)
}

// Outcome classifies a composed page.
type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeEmpty    Outcome = "empty"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
)

// EmptyMessage is shown for documents without layout blocks.
const EmptyMessage = "No content has been published for this page yet."

// Result is a fully composed page.
type Result struct {
	Outcome     Outcome
	Section     Section
	Slug        string
	Path        string
	Document    *cms.Document
	Meta        seo.Meta
	Schema      map[string]any
	Blocks      []modules.Block
	Breadcrumbs []nav.Crumb
	Err         error
}

// StatusCode maps the outcome to an HTTP status.
func (r Result) StatusCode() int {
	switch r.Outcome {
	case OutcomeNotFound:
		return http.StatusNotFound
	case OutcomeFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}

// SchemaJSON returns the JSON-LD graph, or "" when none is emitted.
func (r Result) SchemaJSON() string {
	if r.Schema == nil {
		return ""
	}
	return seo.JSON(r.Schema)
}

// Composer turns CMS documents into rendered pages with metadata.
type Composer struct {
	source   ContentSource
	renderer *modules.Renderer
	site     seo.Site
	logger   *zap.Logger
	tracer   trace.Tracer
}

// Option customises a Composer.
type Option func(*Composer)

// WithLogger sets the fallback logger used outside request contexts.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a Composer.
func New(source ContentSource, renderer *modules.Renderer, site seo.Site, opts ...Option) *Composer {
	c := &Composer{
		source:   source,
		renderer: renderer,
		site:     site,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer("finitefield.org/imast-web/internal/pages"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Site returns the injected site configuration.
func (c *Composer) Site() seo.Site {
	return c.site
}

// Compose fetches, guards, renders and describes one page. It never returns an error:
// failures are reported through the Outcome and carry safe fallback metadata.
func (c *Composer) Compose(ctx context.Context, section Section, slug string) Result {
	ctx, span := c.tracer.Start(ctx, "pages.Compose", trace.WithAttributes(
		attribute.String("pages.section", section.Name),
		attribute.String("pages.slug", slug),
	))
	defer span.End()

	res := c.load(ctx, section, slug)
	span.SetAttributes(attribute.String("pages.outcome", string(res.Outcome)))
	if res.Outcome == OutcomeFailed {
		span.SetStatus(codes.Error, "content fetch failed")
	}
	if res.Document == nil {
		return res
	}

	if len(res.Document.Layout) == 0 {
		res.Outcome = OutcomeEmpty
		return res
	}
	res.Blocks = c.renderer.RenderLayout(ctx, res.Document.Layout)
	span.SetAttributes(attribute.Int("pages.blocks", len(res.Blocks)))
	return res
}

// ComposeByName resolves the section by name before composing.
func (c *Composer) ComposeByName(ctx context.Context, sectionName, slug string) (Result, bool) {
	section, ok := SectionByName(sectionName)
	if !ok {
		return Result{}, false
	}
	return c.Compose(ctx, section, slug), true
}

// Metadata returns only the page metadata, with the same fallback semantics as Compose.
func (c *Composer) Metadata(ctx context.Context, section Section, slug string) seo.Meta {
	return c.load(ctx, section, slug).Meta
}

// load fetches the document and builds everything except the rendered blocks.
func (c *Composer) load(ctx context.Context, section Section, slug string) Result {
	slug = normalizeSlug(slug)
	if section.FixedSlug != "" {
		slug = section.FixedSlug
	}
	res := Result{
		Section: section,
		Slug:    slug,
		Path:    section.Path(slug),
		Meta:    seo.NotFoundMeta(c.site),
	}

	if slug == "" || section.excluded(slug) {
		res.Outcome = OutcomeNotFound
		return res
	}

	doc, err := c.fetch(ctx, section, slug)
	switch {
	case errors.Is(err, cms.ErrNotFound):
		res.Outcome = OutcomeNotFound
		return res
	case err != nil:
		c.loggerFor(ctx).Error("pages: content fetch failed",
			zap.String("section", section.Name),
			zap.String("slug", slug),
			zap.Error(err),
		)
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	case !section.accepts(doc.Type):
		res.Outcome = OutcomeNotFound
		return res
	}

	res.Outcome = OutcomeOK
	res.Document = &doc
	canonical := c.canonical(section, slug, doc)
	res.Breadcrumbs = nav.Breadcrumbs(res.Path, doc.DisplayTitle())
	res.Meta = seo.NewMeta(c.site, seo.Page{
		Title:           doc.Title,
		MetaTitle:       doc.MetaTitle,
		MetaDescription: doc.MetaDescription,
		Excerpt:         doc.Excerpt,
		Image:           doc.Image,
		OGImage:         doc.OGImage,
		Keywords:        doc.Keywords,
		Canonical:       canonical,
		OGType:          section.OGType,
		NoIndex:         !doc.Published(),
	})
	if doc.Published() {
		res.Schema = c.schema(section, doc, res.Meta, res.Breadcrumbs)
	}
	return res
}

// normalizeSlug applies the content client's slug rules so exclusions see the slug that
// would actually be fetched. Nested or traversal slugs become "" and resolve to not found.
func normalizeSlug(slug string) string {
	slug = strings.Trim(strings.ToLower(strings.TrimSpace(slug)), "/")
	if strings.ContainsAny(slug, "/\\") || strings.Contains(slug, "..") {
		return ""
	}
	return slug
}

func (c *Composer) fetch(ctx context.Context, section Section, slug string) (cms.Document, error) {
	switch section.Source {
	case SourceBlog:
		return c.source.GetBlog(ctx, slug)
	case SourceStory:
		return c.source.GetStory(ctx, slug)
	default:
		return c.source.GetPage(ctx, slug)
	}
}

func (c *Composer) canonical(section Section, slug string, doc cms.Document) string {
	if section.FixedSlug != "" {
		return seo.CanonicalURL(c.site.BaseURL, doc.CanonicalURL, "", "")
	}
	return seo.CanonicalURL(c.site.BaseURL, doc.CanonicalURL, section.Prefix, slug)
}

func (c *Composer) loggerFor(ctx context.Context) *zap.Logger {
	if logger := requestctx.Logger(ctx); logger != requestctx.NoopLogger() {
		return logger
	}
	return c.logger
}
