package inventory

import (
	"context"
	"time"
)

// Service exposes the content inventory for the admin UI.
type Service interface {
	// List returns a paginated set of documents matching the query.
	List(ctx context.Context, query Query) (ListResult, error)
}

// Status mirrors the CMS publication status.
type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
)

// Query captures filters and pagination arguments for listing documents.
type Query struct {
	Type     string
	Status   Status
	Search   string
	Page     int
	PageSize int
}

// ListResult represents a paginated inventory response.
type ListResult struct {
	Documents  []Document
	Pagination Pagination
	Filters    FilterSummary
}

// Pagination captures pagination metadata.
type Pagination struct {
	Page       int
	PageSize   int
	TotalItems int
	NextPage   *int
	PrevPage   *int
}

// FilterSummary exposes the selectable filter values with counts over the full inventory.
type FilterSummary struct {
	TypeOptions   []Option
	StatusOptions []Option
}

// Option represents a selectable filter value.
type Option struct {
	Value    string
	Label    string
	Count    int
	Selected bool
}

// Document is one row of the inventory table.
type Document struct {
	ID          string
	Slug        string
	Type        string
	Title       string
	Status      Status
	Path        string
	ModuleCount int
	// Diagnostics counts layout entries whose module type has no registered component.
	Diagnostics int
	UpdatedAt   time.Time
}
