package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/utafrali/EcommerceGo/storefront/internal/catalog"
	"github.com/utafrali/EcommerceGo/storefront/internal/config"
	"github.com/utafrali/EcommerceGo/storefront/internal/gateway"
	"github.com/utafrali/EcommerceGo/storefront/internal/guard"
	handler "github.com/utafrali/EcommerceGo/storefront/internal/handler/http"
	"github.com/utafrali/EcommerceGo/storefront/internal/identity"
	"github.com/utafrali/EcommerceGo/storefront/internal/identity/gotrue"
	idmem "github.com/utafrali/EcommerceGo/storefront/internal/identity/memory"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
	"github.com/utafrali/EcommerceGo/storefront/internal/tokenstore"
	tokenmem "github.com/utafrali/EcommerceGo/storefront/internal/tokenstore/memory"
	tokenredis "github.com/utafrali/EcommerceGo/storefront/internal/tokenstore/redis"
	"github.com/utafrali/EcommerceGo/storefront/pkg/health"
	"github.com/utafrali/EcommerceGo/storefront/pkg/middleware"
	"github.com/utafrali/EcommerceGo/storefront/pkg/tracing"
)

const serviceName = "storefront"

// App wires together all dependencies and runs the storefront shell.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	httpServer     *http.Server
	sessions       *session.Manager
	limiter        *middleware.Limiter
	redisClient    *goredis.Client
	tracerShutdown tracing.ShutdownFunc
}

// NewApp creates a new application instance: tracing, token store,
// identity provider, gateway client, session manager, collections and
// the HTTP router.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: "0.1.0",
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}

	tokens, err := a.tokenStore(ctx)
	if err != nil {
		return nil, errors.Join(err, a.close())
	}

	httpClient := gateway.NewHTTPClient(cfg.GatewayTimeout)
	idp, err := a.identityProvider(httpClient)
	if err != nil {
		return nil, errors.Join(err, a.close())
	}

	var opts []gateway.Option
	if cfg.BreakerEnabled {
		opts = append(opts, gateway.WithBreaker(gateway.BreakerConfig{
			Name:         "backend",
			MaxRequests:  cfg.BreakerMaxRequests,
			Interval:     cfg.BreakerInterval,
			Timeout:      cfg.BreakerTimeout,
			FailureRatio: cfg.BreakerFailureRatio,
			MinRequests:  cfg.BreakerMinRequests,
		}))
	}
	gw, err := gateway.New(cfg.APIURL, httpClient, tokens, idp, logger, opts...)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create gateway client: %w", err), a.close())
	}

	a.sessions = session.NewManager(gw, tokens, logger)
	products := catalog.NewProducts(gw, a.sessions, logger, catalog.WithUploadPreset(cfg.UploadPreset))
	users := catalog.NewUsers(gw, a.sessions, logger)

	// Health checks: the backend gates readiness, the token mirror only
	// degrades it.
	healthHandler := health.NewHandler(3 * time.Second)
	healthHandler.Register("backend", gw.Health)
	if a.redisClient != nil {
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return a.redisClient.Ping(ctx).Err()
		})
	}

	a.limiter = middleware.NewLimiter(cfg.LoginRatePerMinute, cfg.LoginBurst, 5*time.Minute,
		middleware.WithTrustedProxy(cfg.TrustProxyHeaders))

	h := handler.NewHandler(a.sessions, products, users, logger)
	router := handler.NewRouter(h, guard.DefaultTable(), a.limiter, healthHandler, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

func (a *App) tokenStore(ctx context.Context) (tokenstore.Store, error) {
	switch a.cfg.TokenStore {
	case config.TokenStoreRedis:
		client, err := tokenredis.NewClient(ctx, tokenredis.Config{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       a.cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect token store: %w", err)
		}
		a.redisClient = client
		a.logger.Info("session token persisted in redis", slog.String("addr", a.cfg.RedisAddr))
		return tokenredis.New(client, a.cfg.TokenKey, a.cfg.TokenTTL), nil
	default:
		return tokenmem.New(), nil
	}
}

func (a *App) identityProvider(doer identity.HTTPDoer) (identity.Provider, error) {
	if a.cfg.IdentityProvider == config.IdentityGoTrue {
		return gotrue.New(gotrue.Config{URL: a.cfg.IdentityURL, APIKey: a.cfg.IdentityPublicKey}, doer), nil
	}

	p := idmem.New(a.cfg.DevIdentitySecret, a.cfg.DevIdentityTTL)
	if a.cfg.DevAccountEmail != "" {
		if _, err := p.AddAccount(a.cfg.DevAccountEmail, a.cfg.DevAccountPass); err != nil {
			return nil, fmt.Errorf("seed dev account: %w", err)
		}
	}
	a.logger.Warn("using in-memory identity provider", slog.String("environment", a.cfg.Environment))
	return p, nil
}

// Run resolves any persisted session, starts the HTTP server and blocks
// until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	if err := a.sessions.Resolve(ctx); err != nil {
		a.logger.Warn("persisted session could not be resumed", slog.String("error", err.Error()))
	}

	go a.limiter.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
			slog.String("backend", a.cfg.APIURL),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application in order:
// 1. HTTP server (drain in-flight requests)
// 2. Session manager and token store
// 3. Tracer (flush pending spans from drained requests)
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.sessions.Close()
	if err := a.close(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// close releases the token store connection and flushes the tracer.
func (a *App) close() error {
	var errs []error
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
