package client

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"inkwell/internal/models"
)

// UserStore caches the last fetched page of users. Listing requires an admin
// session; profile operations act on the authenticated user.
type UserStore struct {
	client *Client

	mu      sync.Mutex
	issued  uint64
	applied uint64
	query   QueryState
	users   []*models.User
	meta    models.Meta
}

// NewUserStore creates a store with default query state.
func NewUserStore(c *Client) *UserStore {
	return &UserStore{client: c, query: DefaultQueryState()}
}

// Users returns the cached list snapshot.
func (s *UserStore) Users() []*models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.User, len(s.users))
	copy(out, s.users)
	return out
}

// Meta returns the pagination metadata of the last completed fetch.
func (s *UserStore) Meta() models.Meta {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.meta
}

// Fetch loads the current page of users.
func (s *UserStore) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	stamp := s.issued
	q := s.query
	s.mu.Unlock()

	var users []*models.User
	meta, err := s.client.do(ctx, http.MethodGet, "/users", q.Params(), nil, &users)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if stamp < s.applied {
		return nil
	}
	s.applied = stamp
	s.users = users
	if meta != nil {
		s.meta = *meta
	}
	return nil
}

// GoToPage moves to the given page and fetches.
func (s *UserStore) GoToPage(ctx context.Context, page int) error {
	s.mu.Lock()
	s.query = s.query.WithPage(page)
	s.mu.Unlock()
	return s.Fetch(ctx)
}

// Get fetches a single user by ID.
func (s *UserStore) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if _, err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile changes the authenticated user's name or bio. Nil fields are
// left unchanged.
func (s *UserStore) UpdateProfile(ctx context.Context, name, bio *string) (*models.User, error) {
	body := map[string]*string{}
	if name != nil {
		body["name"] = name
	}
	if bio != nil {
		body["bio"] = bio
	}

	var user models.User
	if _, err := s.client.do(ctx, http.MethodPut, "/users/profile", nil, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UploadAvatar uploads a profile image and returns the updated user.
func (s *UserStore) UploadAvatar(ctx context.Context, filename string, content []byte) (*models.User, error) {
	var result struct {
		User *models.User `json:"user"`
	}
	if err := s.client.upload(ctx, "/users/avatar", filename, content, &result); err != nil {
		return nil, err
	}
	return result.User, nil
}

// Categories fetches the static category list.
func (c *Client) Categories(ctx context.Context) ([]*models.Category, error) {
	var categories []*models.Category
	if _, err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
