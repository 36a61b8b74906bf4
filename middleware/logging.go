// Package middleware provides decorators for smcore.ClientHandle: logging
// and throttling retry that apply to every operation a client issues,
// independent of which generated method triggered it.
package middleware

import (
	"context"
	"log/slog"
	"time"

	smcore "github.com/aws/sagemaker-core-sub001"
)

// Logging wraps a handle so every call is logged using slog, including
// duration and error status.
func Logging(next smcore.ClientHandle, logger *slog.Logger) smcore.ClientHandle {
	if logger == nil {
		logger = slog.Default()
	}
	return smcore.ClientFunc(func(ctx context.Context, operation string, input map[string]any) (map[string]any, error) {
		start := time.Now()

		logger.DebugContext(ctx, "call started",
			slog.String("operation", operation),
		)

		resp, err := next.Call(ctx, operation, input)
		duration := time.Since(start)

		if err != nil {
			logger.ErrorContext(ctx, "call failed",
				slog.String("operation", operation),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		} else {
			logger.DebugContext(ctx, "call completed",
				slog.String("operation", operation),
				slog.Duration("duration", duration),
			)
		}

		return resp, err
	})
}
