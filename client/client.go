// Package client is a Go data layer for the Inkwell API. It wraps the HTTP
// surface with typed calls, stores the token pair, and transparently
// refreshes an expired access token once per request.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"inkwell/internal/models"
)

// APIError is a decoded error envelope from the server.
type APIError struct {
	Status  int
	Message string
	Code    string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d", e.Status)
}

// envelope mirrors the server's response shape.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Meta    *models.Meta        `json:"meta"`
	Errors  map[string][]string `json:"errors"`
}

// Client talks to the Inkwell API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

// New creates a Client for the given base URL, e.g. "http://localhost:8080/api".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTokens installs a token pair, typically restored from storage.
func (c *Client) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

// Tokens returns the current token pair.
func (c *Client) Tokens() (access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken, c.refreshToken
}

func (c *Client) clearTokens() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.refreshToken = ""
}

// do performs a JSON request, decoding the envelope's data field into out.
// On 401 it rotates the refresh token and retries the request exactly once.
func (c *Client) do(ctx context.Context, method, path string, params url.Values, body any, out any) (*models.Meta, error) {
	meta, err := c.doOnce(ctx, method, path, params, body, out)
	apiErr, ok := err.(*APIError)
	if !ok || apiErr.Status != http.StatusUnauthorized || path == "/auth/refresh" {
		return meta, err
	}

	if refreshErr := c.rotateTokens(ctx); refreshErr != nil {
		c.clearTokens()
		return nil, err
	}
	return c.doOnce(ctx, method, path, params, body, out)
}

func (c *Client) doOnce(ctx context.Context, method, path string, params url.Values, body any, out any) (*models.Meta, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if access, _ := c.Tokens(); access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) (*models.Meta, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
	}

	if resp.StatusCode >= 400 || !env.Success {
		return nil, &APIError{
			Status:  resp.StatusCode,
			Message: env.Message,
			Fields:  env.Errors,
		}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decoding data: %w", err)
		}
	}
	return env.Meta, nil
}

// rotateTokens exchanges the stored refresh token for a new pair. Concurrent
// callers serialize here so the single-use token is only presented once.
func (c *Client) rotateTokens(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshToken == "" {
		return &APIError{Status: http.StatusUnauthorized, Message: "no refresh token"}
	}

	body, err := json.Marshal(map[string]string{"refresh_token": c.refreshToken})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var pair struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if _, err := c.send(req, &pair); err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	c.refreshToken = pair.RefreshToken
	return nil
}

// upload performs a multipart file upload to path under the "file" field.
func (c *Client) upload(ctx context.Context, path, filename string, content []byte, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(content); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	build := func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		if access, _ := c.Tokens(); access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
		return req, nil
	}

	req, err := build()
	if err != nil {
		return err
	}
	_, err = c.send(req, out)
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusUnauthorized {
		if refreshErr := c.rotateTokens(ctx); refreshErr != nil {
			c.clearTokens()
			return err
		}
		req, buildErr := build()
		if buildErr != nil {
			return buildErr
		}
		_, err = c.send(req, out)
	}
	return err
}
