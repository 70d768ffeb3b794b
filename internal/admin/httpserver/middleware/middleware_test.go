package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMXMiddleware(t *testing.T) {
	base := HTMX()

	t.Run("detects htmx", func(t *testing.T) {
		handler := base(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := HTMXInfoFromContext(r.Context())
			if !info.IsHTMX || info.Target != "dashboard-kpis" {
				t.Fatalf("unexpected htmx info %+v", info)
			}
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/admin/fragments/kpi", nil)
		req.Header.Set("HX-Request", "true")
		req.Header.Set("HX-Target", "dashboard-kpis")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
	})

	t.Run("RequireHTMX blocks non-htmx", func(t *testing.T) {
		handler := base(RequireHTMX()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))
		req := httptest.NewRequest(http.MethodGet, "/admin/fragments/kpi", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})
}

func TestNoStoreMiddleware(t *testing.T) {
	handler := NoStore()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rr.Header().Get("Cache-Control"); got != "no-store, max-age=0" {
		t.Fatalf("unexpected Cache-Control: %s", got)
	}
	if got := rr.Header().Get("Pragma"); got != "no-cache" {
		t.Fatalf("unexpected Pragma: %s", got)
	}
}

func TestRequestInfoMiddleware(t *testing.T) {
	var got RequestInfo
	handler := RequestInfoMiddleware("admin/", "")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = RequestInfoFromContext(r.Context())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/admin/content", nil))

	if got.BasePath != "/admin" || got.Path != "/admin/content" || got.Environment != "Development" {
		t.Fatalf("unexpected request info %+v", got)
	}
}

func TestNormalizeBasePath(t *testing.T) {
	cases := map[string]string{"": "/admin", "/": "/", "ops": "/ops", "/ops//": "/ops"}
	for in, want := range cases {
		if got := NormalizeBasePath(in); got != want {
			t.Fatalf("NormalizeBasePath(%q) = %q, want %q", in, got, want)
		}
	}
}
