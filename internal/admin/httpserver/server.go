package httpserver

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	admindashboard "finitefield.org/imast-web/internal/admin/dashboard"
	custommw "finitefield.org/imast-web/internal/admin/httpserver/middleware"
	"finitefield.org/imast-web/internal/admin/httpserver/ui"
	admininventory "finitefield.org/imast-web/internal/admin/inventory"
	"finitefield.org/imast-web/internal/admin/public"
	"finitefield.org/imast-web/internal/admin/templates/helpers"
	"finitefield.org/imast-web/internal/platform/observability"
)

// Config holds runtime options for the admin HTTP server.
type Config struct {
	Address          string
	BasePath         string
	Environment      string
	DashboardService admindashboard.Service
	InventoryService admininventory.Service
	Logger           *zap.Logger
	Now              func() time.Time
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) *http.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	basePath := custommw.NormalizeBasePath(cfg.BasePath)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(observability.InjectLoggerMiddleware(logger))
	router.Use(observability.RequestLoggerMiddleware())
	router.Use(observability.RecoveryMiddleware(logger))
	router.Use(chimw.Timeout(60 * time.Second))
	router.Use(custommw.RequestInfoMiddleware(basePath, cfg.Environment))
	router.Use(custommw.HTMX())

	staticContent, err := public.StaticFS()
	if err != nil {
		logger.Fatal("admin: embed static", zap.Error(err))
	}
	staticPrefix := helpers.JoinBase(basePath, "/static") + "/"
	router.Handle(staticPrefix+"*", http.StripPrefix(staticPrefix, http.FileServer(http.FS(staticContent))))

	handlers := ui.NewHandlers(ui.Dependencies{
		DashboardService: cfg.DashboardService,
		InventoryService: cfg.InventoryService,
		Now:              cfg.Now,
	})
	mountAdminRoutes(router, basePath, handlers)

	return &http.Server{
		Addr:              cfg.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          log.New(observability.NewPrintfAdapter(logger.Named("http")), "", 0),
	}
}

func mountAdminRoutes(router chi.Router, base string, h *ui.Handlers) {
	if base != "/" {
		router.With(custommw.NoStore()).Get(base, h.Dashboard)
	}

	router.Route(base, func(r chi.Router) {
		r.Use(custommw.NoStore())

		r.Get("/", h.Dashboard)
		r.Get("/content", h.Inventory)
		RegisterFragment(r, "/fragments/kpi", h.KPIFragment)
		RegisterFragment(r, "/fragments/alerts", h.AlertsFragment)
	})
}

// RegisterFragment registers a GET handler intended for htmx fragment rendering.
func RegisterFragment(r chi.Router, pattern string, handler http.HandlerFunc) {
	r.With(custommw.RequireHTMX()).Get(pattern, handler)
}
