// Package gotrue talks to a Supabase GoTrue compatible identity provider.
package gotrue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/identity"
)

// Config holds the provider endpoint and its public (anon) key.
type Config struct {
	URL    string
	APIKey string
}

// Client implements identity.Provider against the GoTrue REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    identity.HTTPDoer
	now     func() time.Time
}

// New creates a GoTrue client. doer is normally the gateway's shared
// *http.Client so that all egress uses one transport.
func New(cfg Config, doer identity.HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/") + "/auth/v1",
		apiKey:  cfg.APIKey,
		http:    doer,
		now:     time.Now,
	}
}

type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	ExpiresAt   int64           `json:"expires_at"`
	User        *domain.Profile `json:"user"`
}

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.ErrorDescription, e.Msg, e.Message, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// SignInWithPassword performs the password grant.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*identity.Grant, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("marshal sign-in request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/token?grant_type=password", "", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out tokenResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, identity.Rejected(http.StatusBadGateway, "no session data received")
	}

	return &identity.Grant{
		AccessToken: out.AccessToken,
		ExpiresAt:   c.expiry(out),
		Profile:     out.User,
	}, nil
}

// CurrentIdentity fetches the profile behind token.
func (c *Client) CurrentIdentity(ctx context.Context, token string) (*domain.Profile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/user", token, nil)
	if err != nil {
		return nil, err
	}

	var profile domain.Profile
	if err := c.do(req, &profile); err != nil {
		return nil, err
	}
	if profile.Email == "" {
		return nil, identity.Rejected(http.StatusUnauthorized, "no user found")
	}
	return &profile, nil
}

// SignOut revokes token.
func (c *Client) SignOut(ctx context.Context, token string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/logout", token, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create identity request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read identity response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e errorResponse
		_ = json.Unmarshal(data, &e)
		return identity.Rejected(resp.StatusCode, e.text())
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode identity response: %w", err)
	}
	return nil
}

// expiry prefers the explicit expiry fields and falls back to the exp
// claim of the access token, which is read without verification.
func (c *Client) expiry(out tokenResponse) time.Time {
	switch {
	case out.ExpiresAt > 0:
		return time.Unix(out.ExpiresAt, 0).UTC()
	case out.ExpiresIn > 0:
		return c.now().Add(time.Duration(out.ExpiresIn) * time.Second).UTC()
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(out.AccessToken, &claims); err != nil || claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time.UTC()
}
