// Package session owns the authenticated identity of the browsing context
// and the lifecycle transitions around it.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/gateway"
	"github.com/utafrali/EcommerceGo/storefront/internal/tokenstore"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
	"github.com/utafrali/EcommerceGo/storefront/pkg/validator"
)

// Gateway is the subset of the gateway client the manager depends on.
type Gateway interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error)
	CurrentUser(ctx context.Context) (*domain.UserIdentity, error)
	Logout(ctx context.Context) error
	OnSessionExpired(fn gateway.ExpiryListener) func()
}

// Listener is notified after every read-model change.
type Listener func(ReadModel)

// Manager holds the single session of the browsing context. It starts in
// Resolving; call Resolve once at startup.
type Manager struct {
	gw     Gateway
	tokens tokenstore.Store
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	session   *domain.Session
	gen       uint64
	listeners map[int]Listener
	nextID    int

	unsubscribe func()
}

// NewManager creates a manager and subscribes it to forced teardowns
// published by the gateway.
func NewManager(gw Gateway, tokens tokenstore.Store, log *slog.Logger) *Manager {
	m := &Manager{
		gw:        gw,
		tokens:    tokens,
		logger:    log,
		state:     Resolving,
		listeners: make(map[int]Listener),
	}
	m.unsubscribe = gw.OnSessionExpired(func(ctx context.Context, ev gateway.SessionExpired) {
		logger.WithContext(ctx, m.logger).InfoContext(ctx, "session expired",
			slog.String("route", ev.Route),
		)
		m.teardown(ctx, reasonExpired, false)
	})
	return m
}

// Close detaches the manager from the gateway.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// ReadModel returns the current session view.
func (m *Manager) ReadModel() ReadModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readModelLocked()
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (m *Manager) CurrentUser() *domain.UserIdentity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Authenticated || m.session == nil || m.session.User == nil {
		return nil
	}
	u := *m.session.User
	return &u
}

// Subscribe registers fn for read-model changes. The returned func
// unsubscribes.
func (m *Manager) Subscribe(fn Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// Resolve reconstructs the session from the persisted token. Without a
// token it settles on Unauthenticated and makes no network call. Any
// failure clears the token and also settles on Unauthenticated.
func (m *Manager) Resolve(ctx context.Context) error {
	return m.resolve(ctx, nil)
}

// Login validates creds, signs in and fully resolves the session before
// returning it. Callers can rely on the role being known on success.
func (m *Manager) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	if err := validator.Validate(creds); err != nil {
		return nil, validator.AsAppError(err, "email and password are required")
	}

	sess, err := m.gw.Login(ctx, creds)
	if err != nil {
		logger.WithContext(ctx, m.logger).WarnContext(ctx, "login failed",
			slog.String("kind", apperrors.Kind(err)),
		)
		return nil, err
	}
	if err := m.tokens.Save(ctx, sess.Token); err != nil {
		return nil, apperrors.Server(0, "could not persist session", err)
	}

	if err := m.resolve(ctx, sess); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Authenticated || m.session == nil {
		return nil, apperrors.Auth("session ended before login completed")
	}
	out := *m.session
	return &out, nil
}

// Logout ends the session. Provider sign-out is best effort; the local
// session is always torn down.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.gw.Logout(ctx); err != nil {
		logger.WithContext(ctx, m.logger).WarnContext(ctx, "provider sign-out failed, clearing session anyway",
			slog.String("error", err.Error()),
		)
	}
	m.teardown(ctx, reasonLogout, true)
}

func (m *Manager) resolve(ctx context.Context, seed *domain.Session) error {
	log := logger.WithContext(ctx, m.logger)

	token, err := m.tokens.Load(ctx)
	if err != nil || token == "" {
		m.update(func() { m.setLocked(Unauthenticated, nil) })
		return nil
	}

	var gen uint64
	m.update(func() {
		m.setLocked(Resolving, nil)
		gen = m.gen
	})

	user, err := m.gw.CurrentUser(ctx)
	if err != nil {
		log.WarnContext(ctx, "session resolution failed",
			slog.String("kind", apperrors.Kind(err)),
			slog.String("error", err.Error()),
		)
		if m.ReadModel().Generation == gen {
			m.teardown(ctx, reasonResolve, true)
		}
		return err
	}

	sess := &domain.Session{Token: token, User: user}
	if seed != nil && seed.Token == token {
		sess.ExpiresAt = seed.ExpiresAt
	}

	committed := false
	m.update(func() {
		if m.gen != gen {
			return
		}
		m.setLocked(Authenticated, sess)
		committed = true
	})
	if !committed {
		log.InfoContext(ctx, "discarding stale session resolution")
		if m.ReadModel().IsAuthenticated {
			return nil
		}
		return apperrors.Auth("session ended while it was being resolved")
	}

	log.InfoContext(ctx, "session resolved",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role.String()),
	)
	return nil
}

// teardown moves to Unauthenticated. clearToken is false when the token is
// already gone, as with gateway-initiated expiry.
func (m *Manager) teardown(ctx context.Context, reason string, clearToken bool) {
	if clearToken {
		if err := m.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
			logger.WithContext(ctx, m.logger).ErrorContext(ctx, "failed to clear session token",
				slog.String("error", err.Error()),
			)
		}
	}

	changed := false
	m.update(func() {
		was := m.state
		m.setLocked(Unauthenticated, nil)
		changed = was != Unauthenticated
	})
	if changed {
		teardownsTotal.WithLabelValues(reason).Inc()
	}
}

// update applies fn under the lock and notifies listeners outside it if
// the read model changed.
func (m *Manager) update(fn func()) {
	m.mu.Lock()
	before := m.readModelLocked()
	fn()
	after := m.readModelLocked()
	var notify []Listener
	if after != before {
		notify = make([]Listener, 0, len(m.listeners))
		for id := 0; id < m.nextID; id++ {
			if l, ok := m.listeners[id]; ok {
				notify = append(notify, l)
			}
		}
	}
	m.mu.Unlock()

	if after == before {
		return
	}
	if after.IsAuthenticated {
		authenticatedGauge.Set(1)
	} else {
		authenticatedGauge.Set(0)
	}
	for _, l := range notify {
		l(after)
	}
}

func (m *Manager) setLocked(state State, sess *domain.Session) {
	if m.state == state && sameSession(m.session, sess) {
		return
	}
	m.state = state
	m.session = sess
	m.gen++
}

func (m *Manager) readModelLocked() ReadModel {
	rm := ReadModel{
		State:           m.state,
		IsAuthenticated: m.state == Authenticated,
		Generation:      m.gen,
	}
	if rm.IsAuthenticated && m.session != nil && m.session.User != nil {
		rm.Role = m.session.User.Role
	}
	return rm
}

func sameSession(a, b *domain.Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Token != b.Token {
		return false
	}
	if a.User == nil || b.User == nil {
		return a.User == b.User
	}
	return a.User.ID == b.User.ID && a.User.Role == b.User.Role
}
