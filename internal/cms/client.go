package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ErrNotFound is returned when a CMS resource cannot be located.
var ErrNotFound = errors.New("cms: not found")

// StatusError reports an unexpected HTTP status from the content API.
type StatusError struct {
	Code     int
	Endpoint string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cms: %s returned status %d", e.Endpoint, e.Code)
}

const (
	defaultTimeout  = 5 * time.Second
	maxResponseSize = 4 << 20
	instrumentation = "finitefield.org/imast-web/internal/cms"

	collectionPages   = "pages"
	collectionBlogs   = "blogs"
	collectionStories = "stories"
)

// Client provides read-only access to the content API. Without a base URL it serves
// YAML fixtures from a local content directory.
type Client struct {
	baseURL    string
	token      string
	contentDir string
	http       *http.Client

	tracer  trace.Tracer
	latency metric.Float64Histogram
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends a bearer token on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = strings.TrimSpace(token) }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithContentDir sets the fixture directory used when no base URL is configured.
func WithContentDir(dir string) Option {
	return func(c *Client) {
		if dir = strings.TrimSpace(dir); dir != "" {
			c.contentDir = dir
		}
	}
}

// NewClient constructs a Client with the provided base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		contentDir: "content",
		http:       &http.Client{Timeout: defaultTimeout},
		tracer:     otel.Tracer(instrumentation),
	}
	for _, opt := range opts {
		opt(c)
	}
	latency, err := otel.Meter(instrumentation).Float64Histogram(
		"cms.fetch.duration",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency of content API fetches"),
	)
	if err == nil {
		c.latency = latency
	}
	return c
}

// Remote reports whether the client talks to a content API rather than fixtures.
func (c *Client) Remote() bool {
	return c != nil && c.baseURL != ""
}

// GetPage fetches a page document by slug.
func (c *Client) GetPage(ctx context.Context, slug string) (Document, error) {
	return c.getDocument(ctx, "GetPage", collectionPages, slug)
}

// GetBlog fetches a blog post by slug.
func (c *Client) GetBlog(ctx context.Context, slug string) (Document, error) {
	return c.getDocument(ctx, "GetBlog", collectionBlogs, slug)
}

// GetStory fetches a story (case study) by slug.
func (c *Client) GetStory(ctx context.Context, slug string) (Document, error) {
	return c.getDocument(ctx, "GetStory", collectionStories, slug)
}

// ListBlogs returns one page of blog posts filtered by status.
func (c *Client) ListBlogs(ctx context.Context, opts ListBlogsOptions) (list BlogList, err error) {
	opts = opts.normalized()
	ctx, finish := c.start(ctx, "ListBlogs", attribute.Int("cms.page", opts.Page), attribute.Int("cms.limit", opts.Limit))
	defer func() { finish(err) }()

	if !c.Remote() {
		return listFixtureBlogs(c.contentDir, opts)
	}

	query := url.Values{}
	if opts.Status != "" {
		query.Set("status", string(opts.Status))
	}
	query.Set("page", strconv.Itoa(opts.Page))
	query.Set("limit", strconv.Itoa(opts.Limit))

	body, err := c.get(ctx, query, collectionBlogs)
	if err != nil {
		return BlogList{}, err
	}
	list, err = decodeBlogList(body)
	if err != nil {
		return BlogList{}, fmt.Errorf("cms: decode blog list: %w", err)
	}
	if list.Page == 0 {
		list.Page = opts.Page
	}
	if list.Limit == 0 {
		list.Limit = opts.Limit
	}
	if list.Total == 0 {
		list.Total = len(list.Items)
	}
	return list, nil
}

func (c *Client) getDocument(ctx context.Context, op, collection, slug string) (doc Document, err error) {
	slug = sanitizeSlug(slug)
	ctx, finish := c.start(ctx, op, attribute.String("cms.slug", slug))
	defer func() { finish(err) }()

	if slug == "" {
		return Document{}, ErrNotFound
	}
	if !c.Remote() {
		return readFixture(c.contentDir, collection, slug)
	}

	body, err := c.get(ctx, nil, collection, "slug", slug)
	if err != nil {
		return Document{}, err
	}
	doc, err = decodeDocument(body)
	if err != nil {
		return Document{}, err
	}
	if doc.Slug == "" {
		doc.Slug = slug
	}
	return doc, nil
}

func (c *Client) get(ctx context.Context, query url.Values, segments ...string) ([]byte, error) {
	endpoint, err := url.JoinPath(c.baseURL, segments...)
	if err != nil {
		return nil, fmt.Errorf("cms: build endpoint: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("cms: build request: %w", err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cms: request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, &StatusError{Code: resp.StatusCode, Endpoint: endpoint}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("cms: read %s: %w", endpoint, err)
	}
	return body, nil
}

func (c *Client) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	began := time.Now()
	source := "fixture"
	if c.Remote() {
		source = "remote"
	}
	attrs = append(attrs, attribute.String("cms.source", source))
	ctx, span := c.tracer.Start(ctx, "cms."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrNotFound):
			outcome = "not_found"
		case err != nil:
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("cms.outcome", outcome))
		span.End()
		if c.latency != nil {
			c.latency.Record(ctx, float64(time.Since(began))/float64(time.Millisecond),
				metric.WithAttributes(attribute.String("operation", op), attribute.String("outcome", outcome)))
		}
	}
}

// decodeDocument accepts a bare document or one wrapped in {"data": ...}.
func decodeDocument(body []byte) (Document, error) {
	payload, err := unwrapData(body)
	if err != nil {
		return Document{}, err
	}
	var doc Document
	if err := json.Unmarshal(payload, &doc); err != nil {
		return Document{}, fmt.Errorf("cms: decode document: %w", err)
	}
	return doc, nil
}

func decodeBlogList(body []byte) (BlogList, error) {
	payload, err := unwrapData(body)
	if errors.Is(err, ErrNotFound) {
		return BlogList{Items: []Document{}}, nil
	}
	if err != nil {
		return BlogList{}, err
	}
	if payload[0] == '[' {
		var items []Document
		if err := json.Unmarshal(payload, &items); err != nil {
			return BlogList{}, err
		}
		var meta struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
		}
		_ = json.Unmarshal(bytes.TrimSpace(body), &meta)
		return BlogList{Items: items, Page: meta.Page, Limit: meta.Limit, Total: meta.Total}, nil
	}
	var list BlogList
	if err := json.Unmarshal(payload, &list); err != nil {
		return BlogList{}, err
	}
	if list.Items == nil {
		list.Items = []Document{}
	}
	return list, nil
}

func unwrapData(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrNotFound
	}
	if trimmed[0] != '{' {
		return trimmed, nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("cms: decode envelope: %w", err)
	}
	if envelope.Data == nil {
		return trimmed, nil
	}
	data := bytes.TrimSpace(envelope.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, ErrNotFound
	}
	return data, nil
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" || strings.Contains(slug, "..") {
		return ""
	}
	if strings.ContainsAny(slug, "/\\") || strings.ContainsRune(slug, os.PathSeparator) {
		return ""
	}
	return slug
}
