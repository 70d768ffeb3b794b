package helpers

import (
	"context"
	"strings"

	"finitefield.org/imast-web/internal/admin/httpserver/middleware"
)

// NavItem is one sidebar entry, relative to the admin base path.
type NavItem struct {
	Label  string
	Suffix string
}

// Sidebar lists the admin screens.
var Sidebar = []NavItem{
	{Label: "Dashboard", Suffix: "/"},
	{Label: "Content", Suffix: "/content"},
}

// Href joins the admin base path from ctx with suffix.
func Href(ctx context.Context, suffix string) string {
	return JoinBase(middleware.RequestInfoFromContext(ctx).BasePath, suffix)
}

// NavActive reports whether the current request should highlight the menu item.
func NavActive(ctx context.Context, suffix string) bool {
	info := middleware.RequestInfoFromContext(ctx)
	current := normalizeRoute(info.Path)
	target := normalizeRoute(JoinBase(info.BasePath, suffix))
	if suffix == "/" || suffix == "" {
		return current == target
	}
	return current == target || strings.HasPrefix(current, target+"/")
}

// JoinBase joins an admin base path and a route suffix, collapsing duplicate slashes.
func JoinBase(base, suffix string) string {
	base = strings.TrimSpace(base)
	if base == "/" {
		base = ""
	}
	if !strings.HasPrefix(suffix, "/") {
		suffix = "/" + suffix
	}
	path := base + suffix
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func normalizeRoute(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
