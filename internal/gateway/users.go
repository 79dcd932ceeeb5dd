package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/envelope"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// ListUsers fetches the user collection.
func (c *Client) ListUsers(ctx context.Context) (json.RawMessage, error) {
	return c.send(ctx, call{method: http.MethodGet, route: "/users", path: "/users"})
}

// GetUserByEmail fetches the backend record of the user with the given email.
func (c *Client) GetUserByEmail(ctx context.Context, email string) (*domain.UserIdentity, error) {
	raw, err := c.send(ctx, call{
		method: http.MethodGet,
		route:  "/users/email/{email}",
		path:   "/users/email/" + url.PathEscape(email),
	})
	if err != nil {
		return nil, err
	}
	u, err := envelope.Entity[domain.UserIdentity](raw, "user")
	if err != nil {
		return nil, apperrors.Server(http.StatusBadGateway, "backend returned an unreadable user record", err)
	}
	return u, nil
}

// Health checks that the backend answers.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.send(ctx, call{method: http.MethodGet, route: "/health", path: "/health", discard: true})
	return err
}
