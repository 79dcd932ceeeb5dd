package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authenticatedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storefront_session_authenticated",
		Help: "1 while the session is authenticated, 0 otherwise.",
	})

	teardownsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_session_teardowns_total",
			Help: "Session teardowns by reason.",
		},
		[]string{"reason"},
	)
)

// Teardown reasons.
const (
	reasonLogout  = "logout"
	reasonExpired = "expired"
	reasonResolve = "resolve_failed"
)
