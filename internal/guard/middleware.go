package guard

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/storefront/internal/session"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httputil"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// Error codes written by the middleware.
const (
	CodeInsufficientPrivilege = "INSUFFICIENT_PRIVILEGE"
	CodeSessionResolving      = "SESSION_RESOLVING"
)

// ReadModelSource supplies the current session view.
type ReadModelSource interface {
	ReadModel() session.ReadModel
}

// Middleware applies the table to every request before it reaches a
// view handler.
func Middleware(table *Table, src ReadModelSource, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rm := src.ReadModel()
			d := table.Decide(rm, r.URL.Path)

			switch d.Outcome {
			case Admit:
				next.ServeHTTP(w, r)
			case RedirectLogin, RedirectAway:
				httputil.SeeOther(w, r, d.Location)
			case InsufficientPrivilege:
				logger.WithContext(r.Context(), log).InfoContext(r.Context(), "navigation refused",
					slog.String("path", r.URL.Path),
					slog.String("role", rm.Role.String()),
				)
				httputil.WriteJSON(w, http.StatusForbidden, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:      CodeInsufficientPrivilege,
						Message:   d.Notice,
						RequestID: logger.CorrelationIDFromContext(r.Context()),
					},
				})
			case Pending:
				w.Header().Set("Retry-After", "1")
				httputil.WriteJSON(w, http.StatusServiceUnavailable, httputil.Response{
					Error: &httputil.ErrorResponse{
						Code:    CodeSessionResolving,
						Message: "session is still being resolved",
					},
				})
			}
		})
	}
}
