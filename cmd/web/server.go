package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"finitefield.org/imast-web/internal/app"
	"finitefield.org/imast-web/internal/format"
	"finitefield.org/imast-web/internal/handlers"
	"finitefield.org/imast-web/internal/middleware"
	"finitefield.org/imast-web/internal/pages"
	"finitefield.org/imast-web/internal/platform/observability"
	"finitefield.org/imast-web/internal/platform/requestctx"
)

// server holds the public site's handlers and template cache.
type server struct {
	site   *app.Site
	logger *zap.Logger
	layout handlers.Layout

	templatesDir string
	publicDir    string
	devMode      bool
	tmplCache    *template.Template
}

func newServer(site *app.Site, logger *zap.Logger) (*server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := site.Config
	s := &server{
		site:   site,
		logger: logger,
		layout: handlers.Layout{
			Lang:      cfg.Site.Lang,
			SiteName:  cfg.Site.Name,
			Analytics: handlers.AnalyticsFromConfig(cfg.Analytics),
		},
		templatesDir: cfg.Server.TemplatesDir,
		publicDir:    cfg.Server.PublicDir,
		devMode:      cfg.Server.DevMode,
	}
	if !s.devMode {
		// Parse templates once in production
		tc, err := s.parseTemplates()
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		s.tmplCache = tc
	}
	return s, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(chimw.RealIP)
	r.Use(observability.TraceMiddleware(s.site.Config.Observability.ProjectID))
	r.Use(observability.InjectLoggerMiddleware(s.logger))
	r.Use(observability.RequestLoggerMiddleware())
	r.Use(observability.RecoveryMiddleware(s.logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/assets/*", middleware.AssetsWithCache(filepath.Join(s.publicDir, "assets"), "/assets"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/seo/{section}/{slug}", s.seoHandler)
		r.NotFound(s.apiNotFound)
	})

	r.Get("/", s.homeHandler)
	r.Get("/blog", s.blogIndexHandler)
	for _, section := range pages.Sections() {
		if section.FixedSlug != "" {
			continue
		}
		pattern := "/{slug}"
		if section.Prefix != "" {
			pattern = "/" + section.Prefix + "/{slug}"
		}
		r.Get(pattern, s.pageHandler(section))
	}
	r.NotFound(s.notFoundHandler)
	return r
}

func (s *server) parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"now":         time.Now,
		"fmtDate":     format.FmtDate,
		"isoDate":     format.ISODate,
		"readingTime": format.ReadingTime,
	}
	// Recursively discover and parse all .tmpl files. Note: ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(s.templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", s.templatesDir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}

// render executes the base layout into a buffer so the response can carry a content
// ETag. In dev mode, templates are reparsed on each request.
func (s *server) render(w http.ResponseWriter, r *http.Request, status int, data handlers.PageData, lastModified time.Time) {
	t := s.tmplCache
	if s.devMode {
		tc, err := s.parseTemplates()
		if err != nil {
			s.renderError(w, r, "template parse error", err)
			return
		}
		t = tc
	}
	if t == nil {
		http.Error(w, "template not initialized", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		s.renderError(w, r, "template exec error", err)
		return
	}
	if data.Content != nil && data.Content.Draft {
		middleware.WritePrivate(w, r, status, buf.Bytes())
		return
	}
	middleware.WriteCached(w, r, status, buf.Bytes(), lastModified)
}

func (s *server) renderError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	logger := requestctx.Logger(r.Context())
	if logger == requestctx.NoopLogger() {
		logger = s.logger
	}
	logger.Error(msg, zap.Error(err))
	if s.devMode {
		http.Error(w, fmt.Sprintf("%s: %v", msg, err), http.StatusInternalServerError)
		return
	}
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
