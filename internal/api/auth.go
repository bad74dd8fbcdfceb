package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Endpoint paths served by the auth service.
const (
	LoginPath  = "/auth/login"
	LogoutPath = "/auth/logout"
)

// OAuth providers that complete in the browser.
var oauthProviders = map[string]bool{
	"google":   true,
	"facebook": true,
}

// User is a backend user record.
type User struct {
	ID        string     `json:"_id" yaml:"id"`
	Username  string     `json:"username" yaml:"username"`
	Email     string     `json:"email" yaml:"email"`
	Role      string     `json:"role,omitempty" yaml:"role,omitempty"`
	AvatarURL string     `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Account is the organisation a user acts for.
type Account struct {
	ID   string `json:"_id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Credentials are the username/password login payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse accepts both a bare user and a {"user": ...} envelope.
type loginResponse struct {
	User
	Wrapped *User `json:"user,omitempty"`
}

// Login authenticates and lets the backend set the session cookie.
func (c *Client) Login(ctx context.Context, creds Credentials) (*User, error) {
	var resp loginResponse
	if err := c.Post(ctx, LoginPath, creds, &resp); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	user := resp.User
	if resp.Wrapped != nil {
		user = *resp.Wrapped
	}
	if user.ID == "" {
		return nil, fmt.Errorf("login failed: %w: no user id", ErrMalformedResponse)
	}
	return &user, nil
}

// Logout ends the backend session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.Post(ctx, LogoutPath, struct{}{}, nil); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	return nil
}

// OAuthURL returns the browser URL that starts an OAuth login.
func OAuthURL(baseURL, provider string) (string, error) {
	provider = strings.ToLower(provider)
	if !oauthProviders[provider] {
		return "", fmt.Errorf("unsupported oauth provider %q", provider)
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/auth/" + provider)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	return u.String(), nil
}

// GetUser fetches a user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := c.Get(ctx, "/api/users/"+url.PathEscape(id), &u); err != nil {
		return nil, fmt.Errorf("failed to fetch user details: %w", err)
	}
	return &u, nil
}

// UpdateUser applies a partial update to a user.
func (c *Client) UpdateUser(ctx context.Context, id string, patch map[string]any) (*User, error) {
	var u User
	if err := c.Put(ctx, "/api/users/"+url.PathEscape(id), patch, &u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &u, nil
}

// GetAccount fetches an account by id.
func (c *Client) GetAccount(ctx context.Context, id string) (*Account, error) {
	var a Account
	if err := c.Get(ctx, "/api/accounts/"+url.PathEscape(id), &a); err != nil {
		return nil, fmt.Errorf("failed to fetch account details: %w", err)
	}
	return &a, nil
}
