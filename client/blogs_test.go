package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listEnvelope(blogs []*models.Blog, meta models.Meta) envelope {
	raw, _ := json.Marshal(blogs)
	return envelope{Success: true, Data: raw, Meta: &meta}
}

func blogWithTitle(id uint, title string) *models.Blog {
	return &models.Blog{ID: id, Title: title, Status: "published"}
}

func TestBlogStoreFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blogs", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		writeEnvelope(w, http.StatusOK, listEnvelope(
			[]*models.Blog{blogWithTitle(1, "First"), blogWithTitle(2, "Second")},
			models.Meta{Page: 1, PerPage: 10, Total: 2, TotalPages: 1},
		))
	}))
	defer srv.Close()

	store := NewBlogStore(New(srv.URL))
	require.NoError(t, store.Fetch(context.Background()))

	blogs := store.Blogs()
	require.Len(t, blogs, 2)
	assert.Equal(t, "First", blogs[0].Title)
	assert.Equal(t, int64(2), store.Meta().Total)
}

func TestBlogStoreSearchSendsQueryTerm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/blogs/search", r.URL.Path)
		assert.Equal(t, "vue", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		writeEnvelope(w, http.StatusOK, listEnvelope(
			[]*models.Blog{blogWithTitle(1, "Vue 3")},
			models.Meta{Page: 1, PerPage: 10, Total: 1, TotalPages: 1},
		))
	}))
	defer srv.Close()

	store := NewBlogStore(New(srv.URL))
	store.transition(func(q QueryState) QueryState { return q.WithPage(4) })

	require.NoError(t, store.Search(context.Background(), "vue"))
	assert.Equal(t, 1, store.Query().Page, "search rewinds to the first page")
	require.Len(t, store.Blogs(), 1)
}

// A slow response for a superseded query must not overwrite the result of a
// newer one, no matter when it arrives.
func TestBlogStoreDiscardsStaleResponse(t *testing.T) {
	slowArrived := make(chan struct{})
	releaseSlow := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search") == "slow" {
			close(slowArrived)
			<-releaseSlow
			writeEnvelope(w, http.StatusOK, listEnvelope(
				[]*models.Blog{blogWithTitle(1, "Stale")},
				models.Meta{Page: 1, PerPage: 10, Total: 1, TotalPages: 1},
			))
			return
		}
		writeEnvelope(w, http.StatusOK, listEnvelope(
			[]*models.Blog{blogWithTitle(2, "Fresh")},
			models.Meta{Page: 1, PerPage: 10, Total: 1, TotalPages: 1},
		))
	}))
	defer srv.Close()

	store := NewBlogStore(New(srv.URL))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		q := store.transition(func(q QueryState) QueryState { return q.WithSearch("slow") })
		assert.NoError(t, store.fetch(context.Background(), "/blogs", q))
	}()

	<-slowArrived
	q := store.transition(func(q QueryState) QueryState { return q.WithSearch("fresh") })
	require.NoError(t, store.fetch(context.Background(), "/blogs", q))

	close(releaseSlow)
	wg.Wait()

	blogs := store.Blogs()
	require.Len(t, blogs, 1)
	assert.Equal(t, "Fresh", blogs[0].Title, "late response for the older query is discarded")
}

func TestBlogStoreCreatePrependsToCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var draft BlogDraft
			require.NoError(t, json.NewDecoder(r.Body).Decode(&draft))
			raw, _ := json.Marshal(blogWithTitle(9, draft.Title))
			writeEnvelope(w, http.StatusCreated, envelope{Success: true, Data: raw})
			return
		}
		writeEnvelope(w, http.StatusOK, listEnvelope(
			[]*models.Blog{blogWithTitle(1, "Existing")},
			models.Meta{Page: 1, PerPage: 10, Total: 1, TotalPages: 1},
		))
	}))
	defer srv.Close()

	store := NewBlogStore(New(srv.URL))
	require.NoError(t, store.Fetch(context.Background()))

	created, err := store.Create(context.Background(), BlogDraft{Title: "Brand New", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, uint(9), created.ID)

	blogs := store.Blogs()
	require.Len(t, blogs, 2)
	assert.Equal(t, "Brand New", blogs[0].Title, "confirmed create lands at the head of the list")
	assert.Equal(t, "Existing", blogs[1].Title)
}

func TestBlogStoreUpdateReplacesCachedEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			raw, _ := json.Marshal(blogWithTitle(2, "Renamed"))
			writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: raw})
			return
		}
		writeEnvelope(w, http.StatusOK, listEnvelope(
			[]*models.Blog{blogWithTitle(1, "First"), blogWithTitle(2, "Second")},
			models.Meta{Page: 1, PerPage: 10, Total: 2, TotalPages: 1},
		))
	}))
	defer srv.Close()

	store := NewBlogStore(New(srv.URL))
	require.NoError(t, store.Fetch(context.Background()))

	title := "Renamed"
	_, err := store.Update(context.Background(), 2, BlogDraft{Title: title})
	require.NoError(t, err)

	blogs := store.Blogs()
	require.Len(t, blogs, 2)
	assert.Equal(t, "First", blogs[0].Title)
	assert.Equal(t, "Renamed", blogs[1].Title)
}

func TestBlogStoreDeleteDropsCachedEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			writeEnvelope(w, http.StatusOK, envelope{Success: true, Message: "Blog deleted successfully"})
			return
		}
		writeEnvelope(w, http.StatusOK, listEnvelope(
			[]*models.Blog{blogWithTitle(1, "Keep"), blogWithTitle(2, "Drop")},
			models.Meta{Page: 1, PerPage: 10, Total: 2, TotalPages: 1},
		))
	}))
	defer srv.Close()

	store := NewBlogStore(New(srv.URL))
	require.NoError(t, store.Fetch(context.Background()))

	require.NoError(t, store.Delete(context.Background(), 2))

	blogs := store.Blogs()
	require.Len(t, blogs, 1)
	assert.Equal(t, "Keep", blogs[0].Title)
}

func TestBlogStoreReset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, listEnvelope(
			[]*models.Blog{blogWithTitle(1, "One")},
			models.Meta{Page: 1, PerPage: 10, Total: 1, TotalPages: 1},
		))
	}))
	defer srv.Close()

	store := NewBlogStore(New(srv.URL))
	store.transition(func(q QueryState) QueryState { return q.WithSearch("x").WithCategory(3) })
	require.NoError(t, store.Fetch(context.Background()))

	store.Reset()
	assert.Equal(t, DefaultQueryState(), store.Query())
	assert.Empty(t, store.Blogs())
	assert.Equal(t, models.Meta{}, store.Meta())
}
