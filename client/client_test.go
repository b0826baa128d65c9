package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func okEnvelope(data any) envelope {
	raw, _ := json.Marshal(data)
	return envelope{Success: true, Data: raw}
}

func TestDoDecodesEnvelopeData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/widgets", r.URL.Path)
		writeEnvelope(w, http.StatusOK, okEnvelope(map[string]string{"name": "gopher"}))
	}))
	defer srv.Close()

	c := New(srv.URL + "/api")
	var out struct {
		Name string `json:"name"`
	}
	_, err := c.do(context.Background(), http.MethodGet, "/widgets", nil, nil, &out)
	require.NoError(t, err)
	assert.Equal(t, "gopher", out.Name)
}

func TestDoReturnsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnprocessableEntity, envelope{
			Success: false,
			Message: "Validation failed",
			Errors:  map[string][]string{"title": {"title is required"}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.do(context.Background(), http.MethodPost, "/blogs", nil, map[string]string{}, nil)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.Equal(t, []string{"title is required"}, apiErr.Fields["title"])
}

func TestDoRefreshesOnceOn401(t *testing.T) {
	var meCalls, refreshCalls atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me":
			if meCalls.Add(1) == 1 {
				writeEnvelope(w, http.StatusUnauthorized, envelope{Message: "Token expired"})
				return
			}
			assert.Equal(t, "Bearer access-2", r.Header.Get("Authorization"))
			writeEnvelope(w, http.StatusOK, okEnvelope(map[string]any{"id": 1, "email": "a@example.com"}))
		case "/auth/refresh":
			refreshCalls.Add(1)
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "refresh-1", body["refresh_token"])
			writeEnvelope(w, http.StatusOK, okEnvelope(map[string]string{
				"access_token":  "access-2",
				"refresh_token": "refresh-2",
			}))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokens("access-1", "refresh-1")

	user, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, user)

	assert.Equal(t, int32(2), meCalls.Load(), "original request is retried exactly once")
	assert.Equal(t, int32(1), refreshCalls.Load())

	access, refresh := c.Tokens()
	assert.Equal(t, "access-2", access)
	assert.Equal(t, "refresh-2", refresh, "rotation installs the next single-use token")
}

func TestDoFailedRefreshClearsTokens(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, envelope{Message: "Invalid refresh token"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokens("stale", "replayed")

	_, err := c.Me(context.Background())
	require.Error(t, err)
	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	access, refresh := c.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestDoDoesNotRefreshTheRefreshCall(t *testing.T) {
	var refreshCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)
		refreshCalls.Add(1)
		writeEnvelope(w, http.StatusUnauthorized, envelope{Message: "Invalid refresh token"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokens("access", "refresh")

	_, err := c.do(context.Background(), http.MethodPost, "/auth/refresh", nil,
		map[string]string{"refresh_token": "refresh"}, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), refreshCalls.Load(), "a 401 from the rotation endpoint is terminal")
}

func TestLogoutClearsTokensEvenOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			writeEnvelope(w, http.StatusUnauthorized, envelope{Message: "Invalid refresh token"})
			return
		}
		writeEnvelope(w, http.StatusInternalServerError, envelope{Message: "boom"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetTokens("access", "refresh")

	err := c.Logout(context.Background())
	require.Error(t, err)

	access, refresh := c.Tokens()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}
