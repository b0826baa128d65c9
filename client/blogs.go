package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"inkwell/internal/models"
)

// BlogStore caches the last fetched page of blogs alongside its query state.
// Every navigation action produces the next query state and re-fetches; the
// cached list is only patched in place after confirmed mutations. Responses
// are sequence-stamped so a slow, superseded fetch cannot overwrite the
// result of a newer one.
type BlogStore struct {
	client *Client

	mu      sync.Mutex
	issued  uint64 // last sequence handed to a fetch
	applied uint64 // sequence of the currently visible result
	query   QueryState
	blogs   []*models.Blog
	meta    models.Meta
}

// NewBlogStore creates a store with default query state.
func NewBlogStore(c *Client) *BlogStore {
	return &BlogStore{client: c, query: DefaultQueryState()}
}

// Blogs returns the cached list. The slice is a snapshot copy.
func (s *BlogStore) Blogs() []*models.Blog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Blog, len(s.blogs))
	copy(out, s.blogs)
	return out
}

// Meta returns the pagination metadata of the last completed list fetch.
func (s *BlogStore) Meta() models.Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// Query returns the current query state snapshot.
func (s *BlogStore) Query() QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Fetch re-derives the list from the server using the current query state.
func (s *BlogStore) Fetch(ctx context.Context) error {
	s.mu.Lock()
	q := s.query
	s.mu.Unlock()
	return s.fetch(ctx, "/blogs", q)
}

// Search sets the term, rewinds to page one and fetches.
func (s *BlogStore) Search(ctx context.Context, term string) error {
	q := s.transition(func(q QueryState) QueryState { return q.WithSearch(term) })
	params := q.Params()
	params.Set("q", term)
	return s.fetchWithParams(ctx, "/blogs/search", q, params)
}

// SortBy sets the sort field and direction and fetches.
func (s *BlogStore) SortBy(ctx context.Context, field, order string) error {
	return s.fetch(ctx, "/blogs", s.transition(func(q QueryState) QueryState {
		return q.WithSort(field, order)
	}))
}

// FilterByCategory restricts the list to one category. Zero clears it.
func (s *BlogStore) FilterByCategory(ctx context.Context, categoryID uint) error {
	return s.fetch(ctx, "/blogs", s.transition(func(q QueryState) QueryState {
		return q.WithCategory(categoryID)
	}))
}

// FilterByStatus restricts the list to one status. Empty clears it.
func (s *BlogStore) FilterByStatus(ctx context.Context, status string) error {
	return s.fetch(ctx, "/blogs", s.transition(func(q QueryState) QueryState {
		return q.WithStatus(status)
	}))
}

// GoToPage moves to the given page and fetches.
func (s *BlogStore) GoToPage(ctx context.Context, page int) error {
	return s.fetch(ctx, "/blogs", s.transition(func(q QueryState) QueryState {
		return q.WithPage(page)
	}))
}

// SetPerPage changes the page size and fetches from page one.
func (s *BlogStore) SetPerPage(ctx context.Context, perPage int) error {
	return s.fetch(ctx, "/blogs", s.transition(func(q QueryState) QueryState {
		return q.WithPerPage(perPage)
	}))
}

// FetchMine loads the caller's own blogs, drafts included.
func (s *BlogStore) FetchMine(ctx context.Context) error {
	s.mu.Lock()
	q := s.query
	s.mu.Unlock()
	return s.fetch(ctx, "/blogs/my-blogs", q)
}

// Reset restores the default query state without fetching.
func (s *BlogStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = DefaultQueryState()
	s.blogs = nil
	s.meta = models.Meta{}
}

// Get fetches a single blog by ID. Each call counts a view server-side.
func (s *BlogStore) Get(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	if _, err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/blogs/%d", id), nil, nil, &blog); err != nil {
		return nil, err
	}
	return &blog, nil
}

// GetBySlug fetches a single blog by slug.
func (s *BlogStore) GetBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	var blog models.Blog
	if _, err := s.client.do(ctx, http.MethodGet, "/blogs/slug/"+url.PathEscape(slug), nil, nil, &blog); err != nil {
		return nil, err
	}
	return &blog, nil
}

// BlogDraft is the request body for creating or updating a blog.
type BlogDraft struct {
	Title      string   `json:"title,omitempty"`
	Content    string   `json:"content,omitempty"`
	Excerpt    string   `json:"excerpt,omitempty"`
	Thumbnail  string   `json:"thumbnail,omitempty"`
	CategoryID *uint    `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Status     string   `json:"status,omitempty"`
}

// Create posts a new blog and prepends the confirmed result to the cached
// list. Pagination meta is not touched; only a list fetch refreshes it.
func (s *BlogStore) Create(ctx context.Context, draft BlogDraft) (*models.Blog, error) {
	var blog models.Blog
	if _, err := s.client.do(ctx, http.MethodPost, "/blogs", nil, draft, &blog); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.blogs = append([]*models.Blog{&blog}, s.blogs...)
	s.mu.Unlock()
	return &blog, nil
}

// Update sends a partial update and replaces the cached entry in place.
func (s *BlogStore) Update(ctx context.Context, id uint, draft BlogDraft) (*models.Blog, error) {
	var blog models.Blog
	if _, err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/blogs/%d", id), nil, draft, &blog); err != nil {
		return nil, err
	}

	s.mu.Lock()
	for i, cached := range s.blogs {
		if cached.ID == id {
			s.blogs[i] = &blog
			break
		}
	}
	s.mu.Unlock()
	return &blog, nil
}

// Delete removes the blog server-side and drops it from the cached list.
func (s *BlogStore) Delete(ctx context.Context, id uint) error {
	if _, err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/blogs/%d", id), nil, nil, nil); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.blogs[:0]
	for _, cached := range s.blogs {
		if cached.ID != id {
			kept = append(kept, cached)
		}
	}
	s.blogs = kept
	s.mu.Unlock()
	return nil
}

// UploadThumbnail uploads an image for the blog and returns the updated blog.
func (s *BlogStore) UploadThumbnail(ctx context.Context, id uint, filename string, content []byte) (*models.Blog, error) {
	var result struct {
		Blog *models.Blog `json:"blog"`
	}
	err := s.client.upload(ctx, fmt.Sprintf("/blogs/%d/thumbnail", id), filename, content, &result)
	if err != nil {
		return nil, err
	}

	if result.Blog != nil {
		s.mu.Lock()
		for i, cached := range s.blogs {
			if cached.ID == id {
				s.blogs[i] = result.Blog
				break
			}
		}
		s.mu.Unlock()
	}
	return result.Blog, nil
}

// transition applies a pure query-state reducer under the lock and returns
// the new state.
func (s *BlogStore) transition(apply func(QueryState) QueryState) QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = apply(s.query)
	return s.query
}

func (s *BlogStore) fetch(ctx context.Context, path string, q QueryState) error {
	return s.fetchWithParams(ctx, path, q, q.Params())
}

// fetchWithParams runs a stamped list request. A response whose stamp is
// older than the applied one arrived out of order and is discarded.
func (s *BlogStore) fetchWithParams(ctx context.Context, path string, q QueryState, params url.Values) error {
	s.mu.Lock()
	s.issued++
	stamp := s.issued
	s.mu.Unlock()

	var blogs []*models.Blog
	meta, err := s.client.do(ctx, http.MethodGet, path, params, nil, &blogs)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if stamp < s.applied {
		return nil
	}
	s.applied = stamp
	s.blogs = blogs
	if meta != nil {
		s.meta = *meta
	}
	return nil
}
