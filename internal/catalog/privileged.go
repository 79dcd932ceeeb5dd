package catalog

import (
	"context"
	"log/slog"

	"github.com/utafrali/EcommerceGo/storefront/internal/session"
	apperrors "github.com/utafrali/EcommerceGo/storefront/pkg/errors"
	"github.com/utafrali/EcommerceGo/storefront/pkg/logger"
)

// SessionView is the read side of the session manager.
type SessionView interface {
	ReadModel() session.ReadModel
}

const (
	msgSignInRequired = "please log in to continue"
	msgSessionEnded   = "your session ended before the request completed"
)

// privileged runs fn for an authenticated session and discards its result
// if the session was torn down or replaced while fn was in flight.
func privileged[T any](ctx context.Context, sess SessionView, log *slog.Logger, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	before := sess.ReadModel()
	if !before.IsAuthenticated {
		return zero, apperrors.Auth(msgSignInRequired)
	}

	out, err := fn(ctx)
	if err != nil {
		return zero, err
	}

	after := sess.ReadModel()
	if !after.IsAuthenticated || after.Generation != before.Generation {
		logger.WithContext(ctx, log).InfoContext(ctx, "discarding result of privileged call",
			slog.String("operation", op),
			slog.String("session_state", after.State.String()),
		)
		return zero, apperrors.Auth(msgSessionEnded)
	}
	return out, nil
}
