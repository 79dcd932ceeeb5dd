// Package gateway is the single channel through which the storefront talks
// to the catalog backend and the identity provider. Every call goes
// through the same request stage (credentials, correlation and trace
// headers) and response stage (error classification and session teardown
// on unauthorized responses).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/EcommerceGo/storefront/internal/identity"
	"github.com/utafrali/EcommerceGo/storefront/internal/tokenstore"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// DefaultBaseURL is used when no backend address is configured.
const DefaultBaseURL = "http://localhost:5000/api"

const correlationHeader = "X-Correlation-ID"

const tracerName = "github.com/utafrali/EcommerceGo/storefront/internal/gateway"

// Option configures a Client.
type Option func(*Client)

// WithBreaker puts a circuit breaker in front of the backend.
func WithBreaker(cfg BreakerConfig) Option {
	return func(c *Client) {
		c.breaker = newBreaker(cfg, c.logger)
	}
}

// Client is the gateway to the backend and the identity provider.
type Client struct {
	baseURL string
	http    identity.HTTPDoer
	tokens  tokenstore.Store
	idp     identity.Provider
	logger  *slog.Logger
	tracer  trace.Tracer
	breaker *gobreaker.CircuitBreaker[*http.Response]
	expiry  listeners
	now     func() time.Time
}

// New creates a gateway client for the backend at baseURL.
func New(
	baseURL string,
	doer identity.HTTPDoer,
	tokens tokenstore.Store,
	idp identity.Provider,
	logger *slog.Logger,
	opts ...Option,
) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", baseURL)
	}
	if doer == nil {
		doer = NewHTTPClient(DefaultTimeout)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    doer,
		tokens:  tokens,
		idp:     idp,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// OnSessionExpired registers fn to be told about forced session
// teardowns. The returned func unsubscribes.
func (c *Client) OnSessionExpired(fn ExpiryListener) func() {
	return c.expiry.add(fn)
}

// call describes one backend request. route is the path template used for
// span names and metric labels. discard marks calls whose reply body is not
// read, so any acknowledgement text is accepted.
type call struct {
	method      string
	route       string
	path        string
	body        []byte
	contentType string
	discard     bool
}

func jsonCall(method, route, path string, payload any) (call, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return call{}, fmt.Errorf("marshal %s %s body: %w", method, route, err)
	}
	return call{
		method:      method,
		route:       route,
		path:        path,
		body:        body,
		contentType: "application/json",
	}, nil
}

// instrument wraps fn in a client span and records the call outcome.
func (c *Client) instrument(ctx context.Context, method, route string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.template", route),
		),
	)
	defer span.End()

	err := fn(ctx)
	observe(method, route, err, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.Kind(err))
	}
	return err
}

// send runs a backend call through the request and response stages and
// returns the raw 2xx body.
func (c *Client) send(ctx context.Context, cl call) (json.RawMessage, error) {
	var raw json.RawMessage
	err := c.instrument(ctx, cl.method, cl.route, func(ctx context.Context) error {
		var err error
		raw, err = c.exchange(ctx, cl)
		return err
	})
	return raw, err
}

func (c *Client) exchange(ctx context.Context, cl call) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, cl)
	if err != nil {
		return nil, apperrors.Server(0, "could not build backend request", err)
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		return nil, c.unreachable(ctx, cl.method, cl.route, err)
	}
	defer func() { _ = resp.Body.Close() }()

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized {
		err := classifyStatus(resp)
		c.expire(ctx, cl.method, cl.route)
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := classifyStatus(resp)
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "backend call failed",
			slog.String("method", cl.method),
			slog.String("route", cl.route),
			slog.Int("status", resp.StatusCode),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.unreachable(ctx, cl.method, cl.route, err)
	}
	if cl.discard {
		return nil, nil
	}
	if len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
		return nil, apperrors.Server(http.StatusBadGateway, "backend returned a malformed response", nil)
	}
	return body, nil
}

// newRequest is the request stage: it attaches the bearer token when one
// is persisted, plus correlation and trace context headers.
func (c *Client) newRequest(ctx context.Context, cl call) (*http.Request, error) {
	var body io.Reader = http.NoBody
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", cl.method, err)
	}
	req.Header.Set("Accept", "application/json")
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}

	token, err := c.tokens.Load(ctx)
	switch {
	case err == nil && token != "":
		req.Header.Set("Authorization", "Bearer "+token)
	case err != nil && !errors.Is(err, tokenstore.ErrNoToken):
		logger.WithContext(ctx, c.logger).WarnContext(ctx, "token lookup failed, sending request without credentials",
			slog.String("route", cl.route),
			slog.String("error", err.Error()),
		)
	}

	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	req.Header.Set(correlationHeader, correlationID)

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}

func (c *Client) roundTrip(req *http.Request) (*http.Response, error) {
	if c.breaker == nil {
		return c.http.Do(req)
	}
	return breakerDo(c.breaker, func() (*http.Response, error) {
		return c.http.Do(req)
	})
}

// unreachable classifies a call that produced no HTTP response.
func (c *Client) unreachable(ctx context.Context, method, route string, err error) error {
	logger.WithContext(ctx, c.logger).WarnContext(ctx, "backend unreachable",
		slog.String("method", method),
		slog.String("route", route),
		slog.String("error", err.Error()),
	)
	return apperrors.Connectivity(err)
}

// expire clears the persisted token and then tells subscribers. Repeated
// expiries are harmless: clearing an empty store is a no-op.
func (c *Client) expire(ctx context.Context, method, route string) {
	ctx = context.WithoutCancel(ctx)
	log := logger.WithContext(ctx, c.logger)

	if err := c.tokens.Clear(ctx); err != nil {
		log.ErrorContext(ctx, "failed to clear session token",
			slog.String("error", err.Error()),
		)
	}
	sessionExpiries.Inc()
	log.InfoContext(ctx, "session rejected by backend, token cleared",
		slog.String("method", method),
		slog.String("route", route),
	)

	c.expiry.publish(ctx, SessionExpired{Method: method, Route: route, At: c.now()})
}
