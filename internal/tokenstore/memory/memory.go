package memory

import (
	"context"
	"sync"

	"github.com/utafrali/EcommerceGo/storefront/internal/tokenstore"
)

// Store implements tokenstore.Store in process memory. The token does not
// survive a restart.
type Store struct {
	mu    sync.RWMutex
	token string
}

// New creates an empty in-memory token store.
func New() *Store {
	return &Store{}
}

// Load returns the stored token.
func (s *Store) Load(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", tokenstore.ErrNoToken
	}
	return s.token, nil
}

// Save stores token.
func (s *Store) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// Clear forgets the stored token.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
