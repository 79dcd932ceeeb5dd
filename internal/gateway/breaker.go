package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the optional circuit breaker in front of the
// backend. An open breaker fails calls fast with a connectivity error.
type BreakerConfig struct {
	Name string

	// MaxRequests allowed through while half-open. 0 means 1.
	MaxRequests uint32

	// Interval after which closed-state counts are cleared. 0 never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// FailureRatio that trips the breaker once MinRequests were seen.
	FailureRatio float64
	MinRequests  uint32
}

// errUpstream marks a 5xx response as a breaker failure without losing it.
var errUpstream = errors.New("backend returned server error")

func newBreaker(cfg BreakerConfig, logger *slog.Logger) *gobreaker.CircuitBreaker[*http.Response] {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			breakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	}
	breakerState.WithLabelValues(cfg.Name).Set(0)
	return gobreaker.NewCircuitBreaker[*http.Response](settings)
}

// breakerDo runs do through cb. 5xx responses count as failures but are
// still handed back so the response stage can classify them.
func breakerDo(cb *gobreaker.CircuitBreaker[*http.Response], do func() (*http.Response, error)) (*http.Response, error) {
	resp, err := cb.Execute(func() (*http.Response, error) {
		resp, err := do()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errUpstream
		}
		return resp, nil
	})
	if errors.Is(err, errUpstream) {
		return resp, nil
	}
	return resp, err
}
