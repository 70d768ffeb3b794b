package nav

import (
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Item represents a top-level navigation item.
type Item struct {
	Path  string // e.g. "/services"
	Label string
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/services", Label: "Services"},
	{Path: "/solutions", Label: "Solutions"},
	{Path: "/case-studies", Label: "Case Studies"},
	{Path: "/blog", Label: "Blog"},
	{Path: "/about", Label: "About"},
	{Path: "/contact", Label: "Contact"},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		items = append(items, RenderedItem{
			Href:   it.Path,
			Label:  it.Label,
			Active: isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path, starting with Home.
// Known sections use their nav label; the final crumb uses leaf when provided.
func Breadcrumbs(currentPath, leaf string) []Crumb {
	if currentPath == "" {
		currentPath = "/"
	}
	crumbs := []Crumb{{Href: "/", Label: "Home", Active: currentPath == "/"}}
	clean := path.Clean("/" + strings.Trim(currentPath, "/"))
	if clean == "/" {
		return crumbs
	}

	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, part := range parts {
		href += "/" + part
		label := labelFor(href, part)
		last := i == len(parts)-1
		if last && strings.TrimSpace(leaf) != "" {
			label = strings.TrimSpace(leaf)
		}
		crumbs = append(crumbs, Crumb{Href: href, Label: label, Active: last})
	}
	return crumbs
}

func labelFor(href, segment string) string {
	for _, it := range Main {
		if it.Path == href {
			return it.Label
		}
	}
	return TitleFromSegment(segment)
}

// TitleFromSegment turns "case-studies" into "Case Studies".
func TitleFromSegment(seg string) string {
	s := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(seg))
	if s == "" {
		return ""
	}
	return cases.Title(language.English).String(s)
}
