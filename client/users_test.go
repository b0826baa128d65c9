package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStoreFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		raw, _ := json.Marshal([]*models.User{
			{ID: 1, Name: "Admin", Role: models.RoleAdmin},
			{ID: 2, Name: "Reader", Role: models.RoleUser},
		})
		meta := models.Meta{Page: 1, PerPage: 10, Total: 2, TotalPages: 1}
		writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: raw, Meta: &meta})
	}))
	defer srv.Close()

	store := NewUserStore(New(srv.URL))
	require.NoError(t, store.Fetch(context.Background()))

	users := store.Users()
	require.Len(t, users, 2)
	assert.Equal(t, "Admin", users[0].Name)
	assert.Equal(t, int64(2), store.Meta().Total)
}

func TestUserStoreUpdateProfileOmitsNilFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		var body map[string]*string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "bio")
		assert.NotContains(t, body, "name", "unset fields stay off the wire")

		writeEnvelope(w, http.StatusOK, okEnvelope(&models.User{ID: 1, Name: "Admin", Bio: *body["bio"]}))
	}))
	defer srv.Close()

	store := NewUserStore(New(srv.URL))
	bio := "Writes about Go."
	user, err := store.UpdateProfile(context.Background(), nil, &bio)
	require.NoError(t, err)
	assert.Equal(t, bio, user.Bio)
}

func TestUserStoreUploadAvatar(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/avatar", r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "me.png", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), content)

		raw, _ := json.Marshal(map[string]any{"user": &models.User{ID: 1, Avatar: "/api/uploads/x.png"}})
		writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: raw})
	}))
	defer srv.Close()

	store := NewUserStore(New(srv.URL))
	user, err := store.UploadAvatar(context.Background(), "me.png", []byte("png-bytes"))
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "/api/uploads/x.png", user.Avatar)
}

func TestCategories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		raw, _ := json.Marshal([]*models.Category{
			{ID: 1, Name: "Lập trình", Slug: "lap-trinh"},
			{ID: 2, Name: "Công nghệ", Slug: "cong-nghe"},
		})
		writeEnvelope(w, http.StatusOK, envelope{Success: true, Data: raw})
	}))
	defer srv.Close()

	categories, err := New(srv.URL).Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "lap-trinh", categories[0].Slug)
}
