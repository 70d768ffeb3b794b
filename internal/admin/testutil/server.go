package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"finitefield.org/imast-web/internal/admin/dashboard"
	"finitefield.org/imast-web/internal/admin/httpserver"
	"finitefield.org/imast-web/internal/admin/inventory"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithBasePath sets a custom base path for the admin routes.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithDashboardService wires a custom dashboard service implementation.
func WithDashboardService(service dashboard.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.DashboardService = service
	}
}

// WithInventoryService wires a custom inventory service implementation.
func WithInventoryService(service inventory.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.InventoryService = service
	}
}

// WithClock pins the time used for relative timestamps.
func WithClock(now time.Time) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Now = func() time.Time { return now }
	}
}

// NewServer constructs an httptest server running the admin HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := httpserver.Config{
		Address:          ":0",
		BasePath:         "/admin",
		Environment:      "test",
		DashboardService: dashboard.NewStaticService(),
		InventoryService: inventory.NewStaticService(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv := httpserver.New(cfg)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
