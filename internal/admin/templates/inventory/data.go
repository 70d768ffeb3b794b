package inventory

import (
	"net/url"
	"strconv"
	"time"

	admininventory "finitefield.org/imast-web/internal/admin/inventory"
	"finitefield.org/imast-web/internal/admin/templates/helpers"
)

// PageData is the content inventory SSR payload.
type PageData struct {
	Title    string
	Endpoint string
	Query    QueryState
	Table    TableData
	Types    []admininventory.Option
	Statuses []admininventory.Option
}

// QueryState echoes the submitted filters back into the form.
type QueryState struct {
	Type   string
	Status string
	Search string
}

// TableData holds the inventory rows and pagination links.
type TableData struct {
	Rows    []Row
	Error   string
	Total   int
	Page    int
	PrevURL string
	NextURL string
}

// Row is one rendered inventory entry.
type Row struct {
	ID          string
	Title       string
	Type        string
	Status      string
	StatusClass string
	Path        string
	Modules     int
	Diagnostics int
	Updated     string
	UpdatedAt   time.Time
}

// BuildPageData prepares the inventory template payload.
func BuildPageData(basePath string, query admininventory.Query, result admininventory.ListResult) PageData {
	endpoint := helpers.JoinBase(basePath, "/content")
	state := QueryState{Type: query.Type, Status: string(query.Status), Search: query.Search}
	return PageData{
		Title:    "Content",
		Endpoint: endpoint,
		Query:    state,
		Table:    TablePayload(endpoint, state, result),
		Types:    result.Filters.TypeOptions,
		Statuses: result.Filters.StatusOptions,
	}
}

// TablePayload converts a list result into table rows.
func TablePayload(endpoint string, state QueryState, result admininventory.ListResult) TableData {
	rows := make([]Row, 0, len(result.Documents))
	for _, doc := range result.Documents {
		rows = append(rows, Row{
			ID:          doc.ID,
			Title:       doc.Title,
			Type:        doc.Type,
			Status:      string(doc.Status),
			StatusClass: helpers.BadgeClass(string(doc.Status)),
			Path:        doc.Path,
			Modules:     doc.ModuleCount,
			Diagnostics: doc.Diagnostics,
			Updated:     helpers.Date(doc.UpdatedAt, "2006-01-02"),
			UpdatedAt:   doc.UpdatedAt,
		})
	}
	table := TableData{
		Rows:  rows,
		Total: result.Pagination.TotalItems,
		Page:  result.Pagination.Page,
	}
	if p := result.Pagination.PrevPage; p != nil {
		table.PrevURL = pageURL(endpoint, state, *p)
	}
	if p := result.Pagination.NextPage; p != nil {
		table.NextURL = pageURL(endpoint, state, *p)
	}
	return table
}

func pageURL(endpoint string, state QueryState, page int) string {
	values := url.Values{}
	if state.Type != "" {
		values.Set("type", state.Type)
	}
	if state.Status != "" {
		values.Set("status", state.Status)
	}
	if state.Search != "" {
		values.Set("q", state.Search)
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if len(values) == 0 {
		return endpoint
	}
	return endpoint + "?" + values.Encode()
}
