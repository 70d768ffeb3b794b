package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"finitefield.org/imast-web/internal/handlers"
	"finitefield.org/imast-web/internal/pages"
	"finitefield.org/imast-web/internal/platform/httpx"
	"finitefield.org/imast-web/internal/seo"
)

func (s *server) homeHandler(w http.ResponseWriter, r *http.Request) {
	home, _ := pages.SectionByName("home")
	s.renderResult(w, r, s.site.Composer.Compose(r.Context(), home, ""))
}

func (s *server) pageHandler(section pages.Section) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := chi.URLParam(r, "slug")
		s.renderResult(w, r, s.site.Composer.Compose(r.Context(), section, slug))
	}
}

func (s *server) renderResult(w http.ResponseWriter, r *http.Request, res pages.Result) {
	var modified time.Time
	if res.Document != nil {
		modified = res.Document.UpdatedTime()
		if modified.IsZero() {
			modified = res.Document.PublishedTime()
		}
	}
	s.render(w, r, res.StatusCode(), handlers.BuildPageData(s.layout, res), modified)
}

// blogIndexHandler serves /blog?page=N. Malformed page numbers resolve to not found.
func (s *server) blogIndexHandler(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.notFoundHandler(w, r)
			return
		}
		page = n
	}
	res := s.site.Composer.BlogIndex(r.Context(), page, s.site.Config.CMS.BlogPageSize)
	s.render(w, r, res.StatusCode(), handlers.BuildIndexData(s.layout, r.URL.Path, res), time.Time{})
}

func (s *server) notFoundHandler(w http.ResponseWriter, r *http.Request) {
	res := pages.Result{
		Outcome: pages.OutcomeNotFound,
		Path:    r.URL.Path,
		Meta:    seo.NotFoundMeta(s.site.Composer.Site()),
	}
	s.renderResult(w, r, res)
}

func (s *server) apiNotFound(w http.ResponseWriter, r *http.Request) {
	httpx.WriteError(r.Context(), w, httpx.NewError("not_found", "resource not found", http.StatusNotFound))
}

type metaResponse struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Canonical   string        `json:"canonical,omitempty"`
	Image       string        `json:"image,omitempty"`
	Keywords    []string      `json:"keywords,omitempty"`
	Robots      string        `json:"robots,omitempty"`
	OG          seo.OpenGraph `json:"openGraph"`
	Twitter     seo.Twitter   `json:"twitter"`
}

type seoResponse struct {
	Section string         `json:"section"`
	Slug    string         `json:"slug"`
	Outcome pages.Outcome  `json:"outcome"`
	Meta    metaResponse   `json:"meta"`
	Schema  map[string]any `json:"schema,omitempty"`
	Blocks  []string       `json:"blocks,omitempty"`
}

// seoHandler previews the metadata and JSON-LD graph a page would emit.
func (s *server) seoHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	section, ok := pages.SectionByName(chi.URLParam(r, "section"))
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("unknown_section", "unknown section", http.StatusNotFound).
			WithDetails(map[string]any{"section": chi.URLParam(r, "section")}))
		return
	}
	res := s.site.Composer.Compose(ctx, section, chi.URLParam(r, "slug"))
	if res.Outcome == pages.OutcomeFailed {
		httpx.WriteError(ctx, w, httpx.NewError("content_unavailable", "content service unavailable", http.StatusServiceUnavailable))
		return
	}

	blocks := make([]string, 0, len(res.Blocks))
	for _, b := range res.Blocks {
		blocks = append(blocks, b.Type)
	}
	httpx.WriteJSON(w, res.StatusCode(), seoResponse{
		Section: section.Name,
		Slug:    res.Slug,
		Outcome: res.Outcome,
		Meta: metaResponse{
			Title:       res.Meta.Title,
			Description: res.Meta.Description,
			Canonical:   res.Meta.Canonical,
			Image:       res.Meta.Image,
			Keywords:    res.Meta.Keywords,
			Robots:      res.Meta.Robots,
			OG:          res.Meta.OG,
			Twitter:     res.Meta.Twitter,
		},
		Schema: res.Schema,
		Blocks: blocks,
	})
}
