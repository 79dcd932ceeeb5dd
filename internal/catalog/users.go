package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/envelope"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// UserGateway is the subset of the gateway used for users.
type UserGateway interface {
	ListUsers(ctx context.Context) (json.RawMessage, error)
}

// Users is the locally held user collection. Users are read-only.
type Users struct {
	gw     UserGateway
	sess   SessionView
	logger *slog.Logger

	mu    sync.RWMutex
	items []domain.UserIdentity
}

// NewUsers creates an empty user collection.
func NewUsers(gw UserGateway, sess SessionView, logger *slog.Logger) *Users {
	return &Users{
		gw:     gw,
		sess:   sess,
		logger: logger,
		items:  []domain.UserIdentity{},
	}
}

// List fetches the users and replaces the local collection.
func (u *Users) List(ctx context.Context) ([]domain.UserIdentity, error) {
	items, err := privileged(ctx, u.sess, u.logger, "list_users", func(ctx context.Context) ([]domain.UserIdentity, error) {
		raw, err := u.gw.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		items, err := envelope.Collection[domain.UserIdentity](raw, "users")
		if err != nil {
			return nil, apperrors.Server(http.StatusBadGateway, "backend returned an unreadable user list", err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	u.items = items
	u.mu.Unlock()
	return append([]domain.UserIdentity(nil), items...), nil
}

// Items returns a copy of the local collection.
func (u *Users) Items() []domain.UserIdentity {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return append([]domain.UserIdentity{}, u.items...)
}
