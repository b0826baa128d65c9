package client

import (
	"context"
	"net/http"

	"inkwell/internal/models"
)

// AuthPayload is the response to login and register calls.
type AuthPayload struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
}

// Login authenticates and stores the returned token pair on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthPayload, error) {
	var payload AuthPayload
	_, err := c.do(ctx, http.MethodPost, "/auth/login", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &payload)
	if err != nil {
		return nil, err
	}
	c.SetTokens(payload.AccessToken, payload.RefreshToken)
	return &payload, nil
}

// Register creates an account and stores the returned token pair.
func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthPayload, error) {
	var payload AuthPayload
	_, err := c.do(ctx, http.MethodPost, "/auth/register", nil, map[string]string{
		"name":                  name,
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	}, &payload)
	if err != nil {
		return nil, err
	}
	c.SetTokens(payload.AccessToken, payload.RefreshToken)
	return &payload, nil
}

// Logout revokes the session server-side and drops the stored tokens.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
	c.clearTokens()
	return err
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if _, err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
