package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/storefront/internal/domain"
	"github.com/utafrali/EcommerceGo/storefront/internal/gateway"
	idmem "github.com/utafrali/EcommerceGo/storefront/internal/identity/memory"
	"github.com/utafrali/EcommerceGo/storefront/internal/tokenstore"
	tokenmem "github.com/utafrali/EcommerceGo/storefront/internal/tokenstore/memory"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

// ============================================================================
// Mock gateway
// ============================================================================

type mockGateway struct {
	mock.Mock
	expired gateway.ExpiryListener
}

func (m *mockGateway) Login(ctx context.Context, creds domain.Credentials) (*domain.Session, error) {
	args := m.Called(ctx, creds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *mockGateway) CurrentUser(ctx context.Context) (*domain.UserIdentity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserIdentity), args.Error(1)
}

func (m *mockGateway) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockGateway) OnSessionExpired(fn gateway.ExpiryListener) func() {
	m.expired = fn
	return func() { m.expired = nil }
}

// ============================================================================
// Helpers
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func admin() *domain.UserIdentity {
	return &domain.UserIdentity{ID: "u-1", Email: "a@b.com", Role: domain.RoleAdmin}
}

func setup(t *testing.T) (*Manager, *mockGateway, *tokenmem.Store) {
	t.Helper()
	gw := &mockGateway{}
	tokens := tokenmem.New()
	m := NewManager(gw, tokens, testLogger())
	t.Cleanup(m.Close)
	return m, gw, tokens
}

// ============================================================================
// Tests
// ============================================================================

func TestNewManager_StartsResolving(t *testing.T) {
	m, _, _ := setup(t)
	rm := m.ReadModel()
	assert.Equal(t, Resolving, rm.State)
	assert.False(t, rm.IsAuthenticated)
	assert.Nil(t, m.CurrentUser())
}

func TestResolve_NoTokenSkipsNetwork(t *testing.T) {
	m, gw, _ := setup(t)

	require.NoError(t, m.Resolve(context.Background()))

	rm := m.ReadModel()
	assert.Equal(t, Unauthenticated, rm.State)
	assert.False(t, rm.IsAuthenticated)
	gw.AssertNotCalled(t, "CurrentUser", mock.Anything)
}

func TestResolve_WithToken(t *testing.T) {
	m, gw, tokens := setup(t)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, "tok"))
	gw.On("CurrentUser", mock.Anything).Return(admin(), nil)

	var seen []ReadModel
	m.Subscribe(func(rm ReadModel) { seen = append(seen, rm) })

	require.NoError(t, m.Resolve(ctx))

	rm := m.ReadModel()
	assert.Equal(t, Authenticated, rm.State)
	assert.Equal(t, domain.RoleAdmin, rm.Role)
	assert.True(t, rm.IsAdmin())
	require.Len(t, seen, 1)
	assert.Equal(t, rm, seen[0])
	assert.Equal(t, "a@b.com", m.CurrentUser().Email)
}

func TestResolve_FailureClearsToken(t *testing.T) {
	m, gw, tokens := setup(t)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, "tok"))
	gw.On("CurrentUser", mock.Anything).Return(nil, apperrors.Connectivity(nil))

	err := m.Resolve(ctx)
	assert.True(t, errors.Is(err, apperrors.ErrConnectivity))
	assert.Equal(t, Unauthenticated, m.ReadModel().State)
	assert.False(t, tokenstore.Present(ctx, tokens))
}

func TestLogin_ValidationBeforeNetwork(t *testing.T) {
	m, gw, _ := setup(t)

	tests := []domain.Credentials{
		{Email: "", Password: "x"},
		{Email: "a@b.com", Password: ""},
		{},
	}
	for _, creds := range tests {
		_, err := m.Login(context.Background(), creds)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	}
	gw.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestLogin_ResolvesBeforeReturning(t *testing.T) {
	m, gw, tokens := setup(t)
	ctx := context.Background()
	creds := domain.Credentials{Email: "a@b.com", Password: "x"}
	expires := time.Now().Add(time.Hour)

	gw.On("Login", mock.Anything, creds).Return(&domain.Session{Token: "tok", ExpiresAt: expires}, nil)
	gw.On("CurrentUser", mock.Anything).Return(admin(), nil)

	sess, err := m.Login(ctx, creds)
	require.NoError(t, err)
	require.NotNil(t, sess.User)
	assert.Equal(t, domain.RoleAdmin, sess.User.Role)
	assert.Equal(t, expires, sess.ExpiresAt)

	token, err := tokens.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", token)
	assert.True(t, m.ReadModel().IsAdmin())
}

func TestLogin_ProviderRejection(t *testing.T) {
	m, gw, tokens := setup(t)
	ctx := context.Background()
	creds := domain.Credentials{Email: "a@b.com", Password: "bad"}
	gw.On("Login", mock.Anything, creds).Return(nil, apperrors.Server(400, "Invalid login credentials", nil))

	_, err := m.Login(ctx, creds)
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "Invalid login credentials", appErr.Message)
	assert.False(t, tokenstore.Present(ctx, tokens))
	gw.AssertNotCalled(t, "CurrentUser", mock.Anything)
}

func TestLogin_RoleLookupFailureLeavesUnauthenticated(t *testing.T) {
	m, gw, tokens := setup(t)
	ctx := context.Background()
	creds := domain.Credentials{Email: "a@b.com", Password: "x"}
	gw.On("Login", mock.Anything, creds).Return(&domain.Session{Token: "tok"}, nil)
	gw.On("CurrentUser", mock.Anything).Return(nil, apperrors.NotFoundMessage("user not found"))

	_, err := m.Login(ctx, creds)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, Unauthenticated, m.ReadModel().State)
	assert.False(t, tokenstore.Present(ctx, tokens))
}

func TestExpiry_TearsDownOnce(t *testing.T) {
	m, gw, tokens := setup(t)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, "tok"))
	gw.On("CurrentUser", mock.Anything).Return(admin(), nil)
	require.NoError(t, m.Resolve(ctx))

	var seen []ReadModel
	m.Subscribe(func(rm ReadModel) { seen = append(seen, rm) })

	require.NotNil(t, gw.expired)
	gw.expired(ctx, gateway.SessionExpired{Route: "/products"})
	gw.expired(ctx, gateway.SessionExpired{Route: "/users"})

	assert.Equal(t, Unauthenticated, m.ReadModel().State)
	assert.Nil(t, m.CurrentUser())
	assert.Len(t, seen, 1)
}

func TestLogout_AlwaysTearsDown(t *testing.T) {
	m, gw, tokens := setup(t)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, "tok"))
	gw.On("CurrentUser", mock.Anything).Return(admin(), nil)
	gw.On("Logout", mock.Anything).Return(apperrors.Connectivity(nil))
	require.NoError(t, m.Resolve(ctx))

	m.Logout(ctx)

	assert.Equal(t, Unauthenticated, m.ReadModel().State)
	assert.False(t, tokenstore.Present(ctx, tokens))
	gw.AssertExpectations(t)
}

func TestGeneration_ChangesOnTransitions(t *testing.T) {
	m, gw, tokens := setup(t)
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, "tok"))
	gw.On("CurrentUser", mock.Anything).Return(admin(), nil)
	gw.On("Logout", mock.Anything).Return(nil)

	g0 := m.ReadModel().Generation
	require.NoError(t, m.Resolve(ctx))
	g1 := m.ReadModel().Generation
	m.Logout(ctx)
	g2 := m.ReadModel().Generation

	assert.Greater(t, g1, g0)
	assert.Greater(t, g2, g1)
}

func TestManager_WithGatewayAndMemoryProvider(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/email/a@b.com" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"user":{"id":"u-1","email":"a@b.com","role":"admin"}}}`))
	}))
	defer backend.Close()

	tokens := tokenmem.New()
	idp := idmem.New("secret", time.Hour)
	_, err := idp.AddAccount("a@b.com", "x")
	require.NoError(t, err)

	gw, err := gateway.New(backend.URL+"/api", backend.Client(), tokens, idp, testLogger())
	require.NoError(t, err)
	m := NewManager(gw, tokens, testLogger())
	defer m.Close()

	sess, err := m.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, sess.User.Role)
	assert.True(t, m.ReadModel().IsAdmin())
}
