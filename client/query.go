package client

import (
	"net/url"
	"strconv"
)

// QueryState is the value object behind every list request. Setters return a
// copy so callers can treat states as immutable snapshots.
type QueryState struct {
	Page       int
	PerPage    int
	Search     string
	SortBy     string
	SortOrder  string
	Status     string
	CategoryID uint
	AuthorID   uint
}

// DefaultQueryState matches the server's listing defaults.
func DefaultQueryState() QueryState {
	return QueryState{
		Page:      1,
		PerPage:   10,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// WithSearch sets the search term and rewinds to the first page.
func (q QueryState) WithSearch(term string) QueryState {
	q.Search = term
	q.Page = 1
	return q
}

// WithSort sets the sort field and direction and rewinds to the first page.
func (q QueryState) WithSort(field, order string) QueryState {
	q.SortBy = field
	q.SortOrder = order
	q.Page = 1
	return q
}

// WithStatus filters by status. An empty value clears the filter.
func (q QueryState) WithStatus(status string) QueryState {
	q.Status = status
	q.Page = 1
	return q
}

// WithCategory filters by category ID. Zero clears the filter.
func (q QueryState) WithCategory(id uint) QueryState {
	q.CategoryID = id
	q.Page = 1
	return q
}

// WithAuthor filters by author ID. Zero clears the filter.
func (q QueryState) WithAuthor(id uint) QueryState {
	q.AuthorID = id
	q.Page = 1
	return q
}

// WithPage moves to the given page, keeping all other state.
func (q QueryState) WithPage(page int) QueryState {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

// WithPerPage sets the page size and rewinds to the first page.
func (q QueryState) WithPerPage(perPage int) QueryState {
	q.PerPage = perPage
	q.Page = 1
	return q
}

// Params encodes the state as list query parameters. Zero-valued filters are
// omitted.
func (q QueryState) Params() url.Values {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("per_page", strconv.Itoa(q.PerPage))
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sort_order", q.SortOrder)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.CategoryID != 0 {
		params.Set("category_id", strconv.FormatUint(uint64(q.CategoryID), 10))
	}
	if q.AuthorID != 0 {
		params.Set("author_id", strconv.FormatUint(uint64(q.AuthorID), 10))
	}
	return params
}
