package middleware

import (
	"context"
	"net/http"
	"strings"
)

type requestInfoKey struct{}

const defaultEnvironment = "Development"

// RequestInfo holds lightweight request metadata exposed to templates.
type RequestInfo struct {
	Path        string
	BasePath    string
	Environment string
}

// RequestInfoMiddleware annotates the context with the request path, the admin base
// path and the deployment environment label.
func RequestInfoMiddleware(basePath, environment string) func(http.Handler) http.Handler {
	base := NormalizeBasePath(basePath)
	env := strings.TrimSpace(environment)
	if env == "" {
		env = defaultEnvironment
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			info := RequestInfo{Path: r.URL.Path, BasePath: base, Environment: env}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestInfoKey{}, info)))
		})
	}
}

// RequestInfoFromContext returns the metadata stored by RequestInfoMiddleware.
func RequestInfoFromContext(ctx context.Context) RequestInfo {
	info, ok := ctx.Value(requestInfoKey{}).(RequestInfo)
	if !ok {
		return RequestInfo{Path: "/", BasePath: "/", Environment: defaultEnvironment}
	}
	return info
}

// NormalizeBasePath ensures a leading slash and strips trailing ones; empty means "/admin".
func NormalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/admin"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p != "/" {
		p = strings.TrimRight(p, "/")
		if p == "" {
			return "/"
		}
	}
	return p
}
