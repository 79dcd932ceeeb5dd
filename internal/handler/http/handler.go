package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/EcommerceGo/storefront/internal/catalog"
	"github.com/utafrali/EcommerceGo/storefront/internal/guard"
	"github.com/utafrali/EcommerceGo/storefront/internal/session"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/httputil"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// Handler serves the storefront views.
type Handler struct {
	sessions *session.Manager
	products *catalog.Products
	users    *catalog.Users
	logger   *slog.Logger
}

// NewHandler creates the view handler.
func NewHandler(sessions *session.Manager, products *catalog.Products, users *catalog.Users, logger *slog.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		products: products,
		users:    users,
		logger:   logger,
	}
}

// identity reports the current user for request logging.
func (h *Handler) identity(context.Context) (string, string) {
	u := h.sessions.CurrentUser()
	if u == nil {
		return "", ""
	}
	return u.ID, u.Role.String()
}

// fail renders err. An expired or missing session is never shown as an
// error: the visitor is sent to the login view instead.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, apperrors.ErrAuth) {
		logger.WithContext(r.Context(), h.logger).InfoContext(r.Context(), "redirecting to login",
			slog.String("path", r.URL.Path),
			slog.String("reason", err.Error()),
		)
		httputil.SeeOther(w, r, guard.LoginPath)
		return
	}
	httputil.WriteError(w, r, err, h.logger)
}
