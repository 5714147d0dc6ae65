package middleware

import (
	"context"
	"log/slog"
)

// Timeout returns middleware that enforces a per-action execution deadline.
// If the action has a non-zero Timeout, a context.WithTimeout wraps the
// handler call. When the deadline is exceeded the context is cancelled and
// the handler should return context.DeadlineExceeded.
func Timeout(logger *slog.Logger) Middleware {
	return func(ctx context.Context, s *Step, next Handler) error {
		if s.Spec.Timeout > 0 {
			logger.Debug("action timeout set",
				slog.String("action", s.ActionName()),
				slog.String("run_id", s.RunID.String()),
				slog.Duration("timeout", s.Spec.Timeout),
			)
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.Spec.Timeout)
			defer cancel()
		}
		return next(ctx)
	}
}
