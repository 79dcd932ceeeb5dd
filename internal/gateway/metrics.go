package gateway

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"

	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_gateway_requests_total",
			Help: "Backend calls issued by the gateway, by outcome.",
		},
		[]string{"method", "route", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_gateway_request_duration_seconds",
			Help:    "Latency of backend calls issued by the gateway.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	sessionExpiries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_gateway_session_expiries_total",
			Help: "Unauthorized backend responses that forced a session teardown.",
		},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_gateway_circuit_breaker_state",
			Help: "Current state of the gateway circuit breaker (0=closed, 1=half-open, 2=open).",
		},
		[]string{"name"},
	)
)

func observe(method, route string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = strings.ToLower(apperrors.Kind(err))
	}
	requestsTotal.WithLabelValues(method, route, outcome).Inc()
	requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
