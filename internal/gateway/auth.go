package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/identity"
	"github.com/utafrali/EcommerceGo/storefront/internal/tokenstore"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// Identity provider routes, used for spans and metrics only.
const (
	routeSignIn  = "identity:/token"
	routeUser    = "identity:/user"
	routeSignOut = "identity:/logout"
)

// Login exchanges credentials with the identity provider. The token is not
// persisted here.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	var grant *identity.Grant
	err := c.instrument(ctx, http.MethodPost, routeSignIn, func(ctx context.Context) error {
		var err error
		grant, err = c.idp.SignInWithPassword(ctx, creds.Email, creds.Password)
		if err != nil {
			return c.identityFailure(ctx, http.MethodPost, routeSignIn, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: grant.AccessToken, ExpiresAt: grant.ExpiresAt}, nil
}

// CurrentUser resolves the role-aware identity behind the persisted token:
// the provider profile is looked up by email in the backend and merged
// with the backend record.
func (c *Client) CurrentUser(ctx context.Context) (*domain.UserIdentity, error) {
	token, err := c.tokens.Load(ctx)
	if err != nil || token == "" {
		return nil, apperrors.Auth("no active session")
	}

	var profile *domain.Profile
	err = c.instrument(ctx, http.MethodGet, routeUser, func(ctx context.Context) error {
		var err error
		profile, err = c.idp.CurrentIdentity(ctx, token)
		if err == nil {
			return nil
		}
		if errors.Is(err, identity.ErrInvalidToken) {
			c.expire(ctx, http.MethodGet, routeUser)
			return apperrors.Auth(sessionExpiredMessage)
		}
		return c.identityFailure(ctx, http.MethodGet, routeUser, err)
	})
	if err != nil {
		return nil, err
	}

	record, err := c.GetUserByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}

	user, err := domain.MergeIdentity(profile, record)
	if err != nil {
		return nil, apperrors.Server(0, "user role could not be resolved", err)
	}
	return user, nil
}

// Logout revokes the persisted token at the identity provider. The token
// itself is left for the caller to clear.
func (c *Client) Logout(ctx context.Context) error {
	token, err := c.tokens.Load(ctx)
	if errors.Is(err, tokenstore.ErrNoToken) || (err == nil && token == "") {
		return nil
	}
	if err != nil {
		return apperrors.Server(0, "could not read session token", err)
	}

	return c.instrument(ctx, http.MethodPost, routeSignOut, func(ctx context.Context) error {
		if err := c.idp.SignOut(ctx, token); err != nil {
			return c.identityFailure(ctx, http.MethodPost, routeSignOut, err)
		}
		return nil
	})
}

// identityFailure classifies an identity provider error. Rejections keep
// the provider's message verbatim.
func (c *Client) identityFailure(ctx context.Context, method, route string, err error) error {
	var rejected *identity.Error
	if errors.As(err, &rejected) {
		return apperrors.Server(rejected.Status, rejected.Message, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return c.unreachable(ctx, method, route, err)
	}

	logger.WithContext(ctx, c.logger).ErrorContext(ctx, "unexpected identity provider response",
		slog.String("route", route),
		slog.String("error", err.Error()),
	)
	return apperrors.Server(http.StatusBadGateway, "identity provider returned an unexpected response", err)
}
