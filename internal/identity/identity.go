package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
)

// ErrInvalidToken is returned when the provider rejects a session token.
var ErrInvalidToken = errors.New("invalid or expired session token")

// Error is a rejection reported by the identity provider. Its Message is
// surfaced to the user verbatim.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets 401/403 rejections match ErrInvalidToken.
func (e *Error) Is(target error) bool {
	return target == ErrInvalidToken &&
		(e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden)
}

// Grant is the result of a successful password sign-in.
type Grant struct {
	AccessToken string
	ExpiresAt   time.Time
	Profile     *domain.Profile
}

// Provider is the external identity provider that issues session tokens.
type Provider interface {
	// SignInWithPassword exchanges credentials for a session token.
	SignInWithPassword(ctx context.Context, email, password string) (*Grant, error)

	// CurrentIdentity returns the minimal profile behind token.
	CurrentIdentity(ctx context.Context, token string) (*domain.Profile, error)

	// SignOut revokes token on the provider side.
	SignOut(ctx context.Context, token string) error
}

// HTTPDoer is the subset of *http.Client used by HTTP-backed providers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Rejected builds an Error for status with the given message, falling back
// to the status text when the provider sent none.
func Rejected(status int, message string) *Error {
	if message == "" {
		message = fmt.Sprintf("identity provider returned %d %s", status, http.StatusText(status))
	}
	return &Error{Status: status, Message: message}
}
