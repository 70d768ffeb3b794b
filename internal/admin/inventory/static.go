package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultPageSize = 20

// StaticService serves a canned document inventory.
type StaticService struct {
	documents []Document
}

// NewStaticService returns a StaticService with sample documents.
func NewStaticService() *StaticService {
	now := time.Now()
	docs := []Document{
		{ID: "page-home", Slug: "home", Type: "home", Title: "Home", Status: StatusPublished, Path: "/", ModuleCount: 4, UpdatedAt: now.Add(-48 * time.Hour)},
		{ID: "page-about", Slug: "about", Type: "page", Title: "About us", Status: StatusPublished, Path: "/about", ModuleCount: 3, UpdatedAt: now.Add(-96 * time.Hour)},
		{ID: "page-contact", Slug: "contact", Type: "page", Title: "Contact", Status: StatusPublished, Path: "/contact", UpdatedAt: now.Add(-240 * time.Hour)},
		{ID: "service-web", Slug: "web-development", Type: "service", Title: "Web development", Status: StatusPublished, Path: "/services/web-development", ModuleCount: 2, UpdatedAt: now.Add(-72 * time.Hour)},
		{ID: "solution-inventory", Slug: "inventory", Type: "solution", Title: "Inventory Cloud", Status: StatusPublished, Path: "/solutions/inventory", ModuleCount: 2, Diagnostics: 1, UpdatedAt: now.Add(-20 * time.Minute)},
		{ID: "policy-privacy", Slug: "privacy", Type: "policy", Title: "Privacy Policy", Status: StatusPublished, Path: "/policies/privacy", ModuleCount: 1, UpdatedAt: now.Add(-30 * time.Hour)},
		{ID: "policy-terms", Slug: "terms", Type: "policy", Title: "Terms of Use", Status: StatusPublished, Path: "/policies/terms", ModuleCount: 1, UpdatedAt: now.Add(-720 * time.Hour)},
		{ID: "blog-launch", Slug: "launching-inventory-cloud", Type: "blog", Title: "Launching Inventory Cloud", Status: StatusPublished, Path: "/blog/launching-inventory-cloud", ModuleCount: 1, UpdatedAt: now.Add(-15 * time.Minute)},
		{ID: "blog-cms", Slug: "choosing-a-cms", Type: "blog", Title: "Choosing a headless CMS", Status: StatusPublished, Path: "/blog/choosing-a-cms", ModuleCount: 1, UpdatedAt: now.Add(-500 * time.Hour)},
		{ID: "blog-roadmap", Slug: "draft-roadmap", Type: "blog", Title: "Roadmap 2025", Status: StatusDraft, Path: "/blog/draft-roadmap", ModuleCount: 1, UpdatedAt: now.Add(-400 * time.Hour)},
		{ID: "story-harbor", Slug: "harbor-logistics", Type: "case-study", Title: "Harbor Logistics cut order handling time by 40%", Status: StatusPublished, Path: "/case-studies/harbor-logistics", ModuleCount: 2, UpdatedAt: now.Add(-2 * time.Hour)},
	}
	return NewStaticServiceWith(docs)
}

// NewStaticServiceWith wraps the supplied documents.
func NewStaticServiceWith(docs []Document) *StaticService {
	return &StaticService{documents: append([]Document(nil), docs...)}
}

// List filters by type, status and a case-insensitive title/slug search, newest first.
func (s *StaticService) List(_ context.Context, query Query) (ListResult, error) {
	filtered := s.filter(query)
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].UpdatedAt.After(filtered[j].UpdatedAt)
	})

	total := len(filtered)
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	pagination := Pagination{Page: page, PageSize: pageSize, TotalItems: total}
	if end < total {
		next := page + 1
		pagination.NextPage = &next
	}
	if page > 1 {
		prev := page - 1
		pagination.PrevPage = &prev
	}

	return ListResult{
		Documents:  append([]Document(nil), filtered[start:end]...),
		Pagination: pagination,
		Filters:    s.buildFilterSummary(query),
	}, nil
}

func (s *StaticService) filter(query Query) []Document {
	typ := strings.ToLower(strings.TrimSpace(query.Type))
	status := Status(strings.ToLower(strings.TrimSpace(string(query.Status))))
	search := strings.ToLower(strings.TrimSpace(query.Search))

	results := make([]Document, 0, len(s.documents))
	for _, doc := range s.documents {
		if typ != "" && !strings.EqualFold(doc.Type, typ) {
			continue
		}
		if status != "" && doc.Status != status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(doc.Title), search) && !strings.Contains(doc.Slug, search) {
			continue
		}
		results = append(results, doc)
	}
	return results
}

func (s *StaticService) buildFilterSummary(query Query) FilterSummary {
	typeCounts := map[string]int{}
	statusCounts := map[Status]int{}
	for _, doc := range s.documents {
		typeCounts[doc.Type]++
		statusCounts[doc.Status]++
	}

	types := make([]string, 0, len(typeCounts))
	for t := range typeCounts {
		types = append(types, t)
	}
	sort.Strings(types)

	caser := cases.Title(language.English)
	summary := FilterSummary{}
	for _, t := range types {
		summary.TypeOptions = append(summary.TypeOptions, Option{
			Value:    t,
			Label:    caser.String(strings.ReplaceAll(t, "-", " ")),
			Count:    typeCounts[t],
			Selected: strings.EqualFold(query.Type, t),
		})
	}
	for _, st := range []Status{StatusPublished, StatusDraft} {
		summary.StatusOptions = append(summary.StatusOptions, Option{
			Value:    string(st),
			Label:    caser.String(string(st)),
			Count:    statusCounts[st],
			Selected: strings.EqualFold(string(query.Status), string(st)),
		})
	}
	return summary
}
