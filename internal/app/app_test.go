package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/EcommerceGo/storefront/internal/config"
	pkgconfig "github.com/utafrali/EcommerceGo/storefront/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadConfig(t *testing.T, vars map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.Load(pkgconfig.WithEnvironment(vars))
	require.NoError(t, err)
	return cfg
}

func TestNewApp_MemoryDefaults(t *testing.T) {
	cfg := loadConfig(t, map[string]string{
		"DEV_ACCOUNT_EMAIL":    "admin@shop.test",
		"DEV_ACCOUNT_PASSWORD": "x",
	})

	a, err := NewApp(cfg, testLogger())
	require.NoError(t, err)
	assert.Nil(t, a.redisClient)
	assert.Equal(t, ":3000", a.httpServer.Addr)

	rec := httptest.NewRecorder()
	a.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, a.Shutdown())
}

func TestNewApp_RedisTokenStore(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := loadConfig(t, map[string]string{
		"TOKEN_STORE":     "redis",
		"REDIS_ADDR":      mr.Addr(),
		"BREAKER_ENABLED": "true",
	})

	a, err := NewApp(cfg, testLogger())
	require.NoError(t, err)
	require.NotNil(t, a.redisClient)
	require.NoError(t, a.Shutdown())
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	cfg := loadConfig(t, map[string]string{
		"TOKEN_STORE": "redis",
		"REDIS_ADDR":  "127.0.0.1:1",
	})

	_, err := NewApp(cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect token store")
}

func TestRun_StopsOnCancel(t *testing.T) {
	cfg := loadConfig(t, map[string]string{"SHELL_HTTP_PORT": "0"})
	a, err := NewApp(cfg, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, a.Run(ctx))
}
