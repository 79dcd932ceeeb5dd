// Package memory is an in-process identity provider for development and
// tests. It issues HS256 access tokens for accounts registered up front.
package memory

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/identity"
)

const issuer = "storefront-dev-identity"

type claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type account struct {
	profile      domain.Profile
	passwordHash []byte
}

// Provider implements identity.Provider in memory.
type Provider struct {
	mu       sync.Mutex
	secret   []byte
	ttl      time.Duration
	accounts map[string]*account // keyed by lower-cased email
	revoked  map[string]struct{} // token ids
	now      func() time.Time
}

// New creates a provider signing tokens with secret that live for ttl.
func New(secret string, ttl time.Duration) *Provider {
	return &Provider{
		secret:   []byte(secret),
		ttl:      ttl,
		accounts: make(map[string]*account),
		revoked:  make(map[string]struct{}),
		now:      time.Now,
	}
}

// AddAccount registers an account and returns its profile.
func (p *Provider) AddAccount(email, password string) (*domain.Profile, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := p.now().UTC()
	acc := &account{
		profile: domain.Profile{
			ID:               uuid.New().String(),
			Email:            email,
			Role:             "authenticated",
			CreatedAt:        now,
			EmailConfirmedAt: &now,
		},
		passwordHash: hash,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.accounts[strings.ToLower(email)] = acc

	profile := acc.profile
	return &profile, nil
}

// SignInWithPassword verifies the credentials and mints an access token.
func (p *Provider) SignInWithPassword(_ context.Context, email, password string) (*identity.Grant, error) {
	p.mu.Lock()
	acc, ok := p.accounts[strings.ToLower(email)]
	p.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)) != nil {
		return nil, identity.Rejected(http.StatusBadRequest, "Invalid login credentials")
	}

	now := p.now().UTC()
	expiresAt := now.Add(p.ttl)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: acc.profile.Email,
		Role:  acc.profile.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   acc.profile.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	p.mu.Lock()
	acc.profile.LastSignInAt = &now
	profile := acc.profile
	p.mu.Unlock()

	return &identity.Grant{AccessToken: token, ExpiresAt: expiresAt, Profile: &profile}, nil
}

// CurrentIdentity validates token and returns the account profile.
func (p *Provider) CurrentIdentity(_ context.Context, token string) (*domain.Profile, error) {
	c, err := p.parse(token)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, gone := p.revoked[c.ID]; gone {
		return nil, identity.Rejected(http.StatusUnauthorized, "session has been revoked")
	}
	acc, ok := p.accounts[strings.ToLower(c.Email)]
	if !ok || acc.profile.ID != c.Subject {
		return nil, identity.Rejected(http.StatusUnauthorized, "no user found")
	}
	profile := acc.profile
	return &profile, nil
}

// SignOut revokes token.
func (p *Provider) SignOut(_ context.Context, token string) error {
	c, err := p.parse(token)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.revoked[c.ID] = struct{}{}
	return nil
}

func (p *Provider) parse(token string) (*claims, error) {
	c := &claims{}
	parsed, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !parsed.Valid {
		return nil, identity.Rejected(http.StatusUnauthorized, "invalid or expired token")
	}
	return c, nil
}
