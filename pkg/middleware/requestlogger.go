package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// IdentityFunc reports who the current session belongs to. Empty strings
// mean anonymous.
type IdentityFunc func(ctx context.Context) (userID, role string)

// RequestLogger stores a request-scoped logger in the context, enriched
// with correlation_id, user_id, role, trace_id and span_id. Mount it after
// RequestLogging and Tracing.
func RequestLogger(base *slog.Logger, identity IdentityFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if identity != nil {
				userID, role := identity(ctx)
				if userID != "" {
					ctx = logger.WithUserID(ctx, userID)
				}
				if role != "" {
					ctx = logger.WithRole(ctx, role)
				}
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
