package gotrue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/storefront/internal/identity"
)

const testKey = "anon-key"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{URL: srv.URL + "/", APIKey: testKey}, srv.Client())
}

func TestSignInWithPassword_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, testKey, r.Header.Get("apikey"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "x", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok-1","token_type":"bearer","expires_at":1893456000,
			"user":{"id":"u-1","email":"a@b.com","role":"authenticated"}}`))
	})

	grant, err := c.SignInWithPassword(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", grant.AccessToken)
	assert.Equal(t, time.Unix(1893456000, 0).UTC(), grant.ExpiresAt)
	require.NotNil(t, grant.Profile)
	assert.Equal(t, "u-1", grant.Profile.ID)
}

func TestSignInWithPassword_ExpiryFromExpiresIn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok-1","expires_in":3600}`))
	})
	fixed := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	grant, err := c.SignInWithPassword(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(time.Hour), grant.ExpiresAt)
}

func TestSignInWithPassword_ExpiryFromTokenClaims(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": token})
	})

	grant, err := c.SignInWithPassword(context.Background(), "a@b.com", "x")
	require.NoError(t, err)
	assert.Equal(t, exp, grant.ExpiresAt)
}

func TestSignInWithPassword_RejectedVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	})

	_, err := c.SignInWithPassword(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	var idErr *identity.Error
	require.ErrorAs(t, err, &idErr)
	assert.Equal(t, http.StatusBadRequest, idErr.Status)
	assert.Equal(t, "Invalid login credentials", err.Error())
	assert.False(t, errors.Is(err, identity.ErrInvalidToken))
}

func TestSignInWithPassword_MissingSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.SignInWithPassword(context.Background(), "a@b.com", "x")
	require.Error(t, err)
	assert.Equal(t, "no session data received", err.Error())
}

func TestCurrentIdentity_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":"u-1","email":"a@b.com","created_at":"2026-01-01T00:00:00Z",
			"email_confirmed_at":"2026-01-02T00:00:00Z"}`))
	})

	p, err := c.CurrentIdentity(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", p.Email)
	require.NotNil(t, p.EmailConfirmedAt)
	assert.Nil(t, p.LastSignInAt)
}

func TestCurrentIdentity_InvalidToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"msg":"JWT expired"}`))
	})

	_, err := c.CurrentIdentity(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, errors.Is(err, identity.ErrInvalidToken))
	assert.Equal(t, "JWT expired", err.Error())
}

func TestCurrentIdentity_DecodeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.CurrentIdentity(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode identity response")
}

func TestSignOut(t *testing.T) {
	var called bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, "/auth/v1/logout", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.SignOut(context.Background(), "tok-1"))
	assert.True(t, called)
}

func TestDo_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{URL: url, APIKey: testKey}, http.DefaultClient)
	_, err := c.CurrentIdentity(context.Background(), "tok")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity provider GET /auth/v1/user")
}
