package pages

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"finitefield.org/imast-web/internal/cms"
	"finitefield.org/imast-web/internal/modules"
	"finitefield.org/imast-web/internal/seo"
)

var testSite = seo.Site{
	Name:               "iMast",
	BaseURL:            "https://imast.example.com",
	DefaultTitle:       "iMast | Digital Solutions",
	DefaultDescription: "Websites and software for growing businesses.",
	DefaultImage:       "/assets/img/og-default.png",
	LogoURL:            "/assets/img/logo.png",
	Lang:               "en",
}

type fakeSource struct {
	pages   map[string]cms.Document
	blogs   map[string]cms.Document
	stories map[string]cms.Document
	list    cms.BlogList
	err     error
	calls   []string
}

func (f *fakeSource) get(kind string, docs map[string]cms.Document, slug string) (cms.Document, error) {
	f.calls = append(f.calls, kind+":"+slug)
	if f.err != nil {
		return cms.Document{}, f.err
	}
	doc, ok := docs[slug]
	if !ok {
		return cms.Document{}, cms.ErrNotFound
	}
	return doc, nil
}

func (f *fakeSource) GetPage(_ context.Context, slug string) (cms.Document, error) {
	return f.get("page", f.pages, slug)
}

func (f *fakeSource) GetBlog(_ context.Context, slug string) (cms.Document, error) {
	return f.get("blog", f.blogs, slug)
}

func (f *fakeSource) GetStory(_ context.Context, slug string) (cms.Document, error) {
	return f.get("story", f.stories, slug)
}

func (f *fakeSource) ListBlogs(_ context.Context, opts cms.ListBlogsOptions) (cms.BlogList, error) {
	f.calls = append(f.calls, "list")
	if f.err != nil {
		return cms.BlogList{}, f.err
	}
	list := f.list
	list.Page, list.Limit = opts.Page, opts.Limit
	return list, nil
}

func newTestComposer(t *testing.T, src *fakeSource) *Composer {
	t.Helper()
	reg, err := modules.NewDefaultRegistry(modules.Deps{})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return New(src, modules.NewRenderer(reg), testSite)
}

func section(t *testing.T, name string) Section {
	t.Helper()
	s, ok := SectionByName(name)
	if !ok {
		t.Fatalf("unknown section %s", name)
	}
	return s
}

func published(typ, title string, layout ...cms.LayoutEntry) cms.Document {
	return cms.Document{Type: typ, Title: title, Status: cms.StatusPublished, Layout: layout}
}

func block(order float64, typ string, content map[string]any) cms.LayoutEntry {
	return cms.LayoutEntry{Order: order, Module: cms.Module{Type: typ, Content: content}}
}

func TestComposeHomeSlugExcludedOnDefaultRoute(t *testing.T) {
	src := &fakeSource{pages: map[string]cms.Document{"home": published("page", "Home", block(0, "hero", nil))}}
	c := newTestComposer(t, src)

	for _, slug := range []string{"HOME", "home/", "/home", " /Home/ ", "//home//", "pages/home", "..\\home"} {
		res := c.Compose(context.Background(), section(t, "page"), slug)
		if res.Outcome != OutcomeNotFound || res.StatusCode() != http.StatusNotFound {
			t.Fatalf("slug %q: expected not found, got %s", slug, res.Outcome)
		}
		if res.Meta.Title != seo.NotFoundTitle || !res.Meta.NoIndex() {
			t.Fatalf("slug %q: expected fallback meta, got %+v", slug, res.Meta)
		}
	}
	if len(src.calls) != 0 {
		t.Fatalf("expected no fetch, got %v", src.calls)
	}

	home := c.Compose(context.Background(), section(t, "home"), "")
	if home.Outcome != OutcomeOK || home.Meta.Canonical != "https://imast.example.com/" {
		t.Fatalf("expected home page at root, got %s %q", home.Outcome, home.Meta.Canonical)
	}
}

func TestComposeTypeMismatchIsNotFound(t *testing.T) {
	src := &fakeSource{pages: map[string]cms.Document{
		"web-design": published("service", "Web Design", block(0, "hero", nil)),
	}}
	c := newTestComposer(t, src)

	if res := c.Compose(context.Background(), section(t, "page"), "web-design"); res.Outcome != OutcomeNotFound {
		t.Fatalf("expected type mismatch to be not found, got %s", res.Outcome)
	}
	if res := c.Compose(context.Background(), section(t, "service"), "web-design"); res.Outcome != OutcomeOK {
		t.Fatalf("expected service route to accept, got %s", res.Outcome)
	}
	src.pages["web-design"] = published("SERVICE", "Web Design", block(0, "hero", nil))
	if res := c.Compose(context.Background(), section(t, "services"), "web-design"); res.Outcome != OutcomeOK {
		t.Fatalf("expected case-insensitive discriminator, got %s", res.Outcome)
	}
}

func TestComposeEmptyLayout(t *testing.T) {
	src := &fakeSource{pages: map[string]cms.Document{"about": published("page", "About")}}
	res := newTestComposer(t, src).Compose(context.Background(), section(t, "page"), "about")

	if res.Outcome != OutcomeEmpty || res.StatusCode() != http.StatusOK {
		t.Fatalf("expected empty outcome, got %s", res.Outcome)
	}
	if len(res.Blocks) != 0 {
		t.Fatalf("expected no blocks, got %d", len(res.Blocks))
	}
	if res.Meta.Title != "About" {
		t.Fatalf("expected metadata for empty page, got %q", res.Meta.Title)
	}
}

func TestComposeDraftHasNoSchema(t *testing.T) {
	doc := published("blog", "Draft Post", block(0, "richtext", map[string]any{"body": "Hi"}))
	doc.Status = cms.StatusDraft
	src := &fakeSource{blogs: map[string]cms.Document{"draft-post": doc}}

	res := newTestComposer(t, src).Compose(context.Background(), section(t, "blog"), "draft-post")
	if res.Outcome != OutcomeOK {
		t.Fatalf("expected draft to render, got %s", res.Outcome)
	}
	if res.Schema != nil || res.SchemaJSON() != "" {
		t.Fatalf("expected no JSON-LD for drafts, got %v", res.Schema)
	}
	if !res.Meta.NoIndex() {
		t.Fatal("expected drafts to be noindex")
	}
}

func TestComposeTitleFallsBackToSiteDefault(t *testing.T) {
	doc := published("page", "", block(0, "hero", nil))
	src := &fakeSource{pages: map[string]cms.Document{"untitled": doc}}

	res := newTestComposer(t, src).Compose(context.Background(), section(t, "page"), "untitled")
	if res.Meta.Title != testSite.DefaultTitle {
		t.Fatalf("expected site default title, got %q", res.Meta.Title)
	}
	if res.Meta.Description != testSite.DefaultDescription {
		t.Fatalf("expected default description, got %q", res.Meta.Description)
	}
	if res.Meta.Image != "https://imast.example.com/assets/img/og-default.png" {
		t.Fatalf("expected default image, got %q", res.Meta.Image)
	}
}

func TestComposeFetchFailure(t *testing.T) {
	src := &fakeSource{err: &cms.StatusError{Code: 502, Endpoint: "pages"}}
	c := newTestComposer(t, src)

	res := c.Compose(context.Background(), section(t, "policy"), "privacy")
	if res.Outcome != OutcomeFailed || res.StatusCode() != http.StatusServiceUnavailable {
		t.Fatalf("expected failed outcome, got %s", res.Outcome)
	}
	var statusErr *cms.StatusError
	if !errors.As(res.Err, &statusErr) {
		t.Fatalf("expected underlying error, got %v", res.Err)
	}
	meta := c.Metadata(context.Background(), section(t, "policy"), "privacy")
	if meta.Title != seo.NotFoundTitle || !meta.NoIndex() {
		t.Fatalf("expected fallback metadata, got %+v", meta)
	}
}

func TestComposeRendersSortedBlocksWithDiagnostics(t *testing.T) {
	src := &fakeSource{stories: map[string]cms.Document{
		"acme": published("case-study", "Acme",
			block(2, "cta", map[string]any{"title": "Next"}),
			block(1, "hero", map[string]any{"title": "Acme story"}),
			block(1, "timeline", nil),
		),
	}}
	res := newTestComposer(t, src).Compose(context.Background(), section(t, "case-studies"), "acme")

	var types []string
	for _, b := range res.Blocks {
		types = append(types, b.Type)
	}
	if diff := cmp.Diff([]string{"hero", "timeline", "cta"}, types); diff != "" {
		t.Fatalf("block order (-want +got):\n%s", diff)
	}
	if !res.Blocks[1].Diagnostic {
		t.Fatal("expected unknown block to degrade to a diagnostic")
	}
}

func TestComposeSchemaGraph(t *testing.T) {
	doc := published("blog", "Launch Day",
		block(0, "faq", map[string]any{"items": []any{
			map[string]any{"question": "When?", "answer": "<p>Today</p>"},
		}}),
	)
	doc.Author = "Rina"
	doc.PublishedAt = "2024-05-01"
	doc.Keywords = []string{"launch"}
	src := &fakeSource{blogs: map[string]cms.Document{"launch-day": doc}}

	res := newTestComposer(t, src).Compose(context.Background(), section(t, "blog"), "launch-day")
	if res.Meta.Canonical != "https://imast.example.com/blog/launch-day" {
		t.Fatalf("unexpected canonical %q", res.Meta.Canonical)
	}

	var graph struct {
		Context string           `json:"@context"`
		Graph   []map[string]any `json:"@graph"`
	}
	if err := json.Unmarshal([]byte(res.SchemaJSON()), &graph); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var types []string
	for _, node := range graph.Graph {
		types = append(types, node["@type"].(string))
	}
	if diff := cmp.Diff([]string{"BreadcrumbList", "Article", "FAQPage"}, types); diff != "" {
		t.Fatalf("node types (-want +got):\n%s", diff)
	}
	article := graph.Graph[1]
	if article["datePublished"] != "2024-05-01T00:00:00Z" || article["keywords"] != "launch" {
		t.Fatalf("unexpected article node %v", article)
	}
	if !strings.Contains(res.SchemaJSON(), `"text":"Today"`) {
		t.Fatalf("expected plain-text FAQ answer, got %s", res.SchemaJSON())
	}
}

func TestComposeSolutionAndServiceNodes(t *testing.T) {
	src := &fakeSource{pages: map[string]cms.Document{
		"planner": published("solution", "Planner", block(0, "hero", nil)),
		"seo":     published("service", "SEO", block(0, "hero", nil)),
	}}
	c := newTestComposer(t, src)

	res := c.Compose(context.Background(), section(t, "solution"), "planner")
	if got := nodeTypes(t, res.Schema); !cmp.Equal(got, []string{"BreadcrumbList", "SoftwareApplication", "Product"}) {
		t.Fatalf("unexpected solution nodes %v", got)
	}
	res = c.Compose(context.Background(), section(t, "service"), "seo")
	if got := nodeTypes(t, res.Schema); !cmp.Equal(got, []string{"BreadcrumbList", "Service"}) {
		t.Fatalf("unexpected service nodes %v", got)
	}
}

func nodeTypes(t *testing.T, graph map[string]any) []string {
	t.Helper()
	nodes, ok := graph["@graph"].([]map[string]any)
	if !ok {
		t.Fatalf("unexpected graph shape %T", graph["@graph"])
	}
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n["@type"].(string))
	}
	return out
}

func TestBlogIndex(t *testing.T) {
	draft := cms.Document{Slug: "wip", Status: cms.StatusDraft}
	src := &fakeSource{list: cms.BlogList{
		Items: []cms.Document{
			{Slug: "launch-day", Title: "Launch Day", Status: cms.StatusPublished, Excerpt: "<b>Big</b> news"},
			draft,
		},
		Total: 25,
	}}
	c := newTestComposer(t, src)

	res := c.BlogIndex(context.Background(), 2, 10)
	if res.Outcome != OutcomeOK || res.Pages != 3 {
		t.Fatalf("unexpected index %+v", res)
	}
	if len(res.Posts) != 1 || res.Posts[0].Href != "/blog/launch-day" || res.Posts[0].Excerpt != "Big news" {
		t.Fatalf("unexpected posts %+v", res.Posts)
	}
	if res.PrevURL != "/blog" || res.NextURL != "/blog?page=3" {
		t.Fatalf("unexpected pagination %q %q", res.PrevURL, res.NextURL)
	}
	if res.Meta.Canonical != "https://imast.example.com/blog?page=2" {
		t.Fatalf("unexpected canonical %q", res.Meta.Canonical)
	}

	if res := c.BlogIndex(context.Background(), 9, 10); res.Outcome != OutcomeNotFound {
		t.Fatalf("expected out-of-range page to be not found, got %s", res.Outcome)
	}

	src.err = errors.New("timeout")
	if res := c.BlogIndex(context.Background(), 1, 10); res.Outcome != OutcomeFailed {
		t.Fatalf("expected failure, got %s", res.Outcome)
	}
}
