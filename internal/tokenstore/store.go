package tokenstore

import (
	"context"
	"errors"
)

// DefaultKey is the well-known key the session token is stored under.
const DefaultKey = "token"

// ErrNoToken is returned by Load when no token is persisted.
var ErrNoToken = errors.New("no session token stored")

// Store persists the session token of the browsing context. It is a
// mirror of the in-memory session, not a second source of truth.
type Store interface {
	// Load returns the persisted token or ErrNoToken.
	Load(ctx context.Context) (string, error)

	// Save persists token, replacing any previous value.
	Save(ctx context.Context, token string) error

	// Clear removes the persisted token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Present reports whether s currently holds a token. Lookup failures count
// as absent.
func Present(ctx context.Context, s Store) bool {
	token, err := s.Load(ctx)
	return err == nil && token != ""
}
