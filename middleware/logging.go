package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs action start and completion.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, s *Step, next Handler) error {
		logger.Info("action started",
			slog.String("action", s.ActionName()),
			slog.String("action_kind", s.Spec.Kind),
			slog.String("workflow", s.WorkflowName),
			slog.String("run_id", s.RunID.String()),
			slog.Int("index", s.Index),
			slog.Int("attempt", s.Attempt),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		if err != nil {
			logger.Error("action failed",
				slog.String("action", s.ActionName()),
				slog.String("run_id", s.RunID.String()),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("action completed",
				slog.String("action", s.ActionName()),
				slog.String("run_id", s.RunID.String()),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
