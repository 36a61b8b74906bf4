package middleware

import (
	"context"
	"log/slog"
	"time"

	smcore "github.com/aws/sagemaker-core-sub001"
)

// RetryOptions configures the throttling-retry decorator.
type RetryOptions struct {
	// MaxRetries is the number of retries after the first attempt.
	// Default 5.
	MaxRetries int

	// BaseDelay is the first backoff delay; it doubles per retry.
	// Default 1 second.
	BaseDelay time.Duration

	// Logger receives retry warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Retry wraps a handle so throttling-class errors are retried with an
// exponential backoff. Any other error propagates on first occurrence.
//
// The resource iterator carries its own retry for list and refresh calls;
// this decorator covers the direct operations (create, describe, delete) the
// iterator never sees.
func Retry(next smcore.ClientHandle, opts RetryOptions) smcore.ClientHandle {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return smcore.ClientFunc(func(ctx context.Context, operation string, input map[string]any) (map[string]any, error) {
		delay := opts.BaseDelay
		for attempt := 0; ; attempt++ {
			resp, err := next.Call(ctx, operation, input)
			if err == nil || !smcore.IsThrottling(err) {
				return resp, err
			}
			if attempt >= opts.MaxRetries {
				return resp, err
			}
			opts.Logger.Warn("throttled, backing off",
				slog.String("operation", operation),
				slog.Int("attempt", attempt+1),
				slog.Duration("delay", delay))

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			delay *= 2
		}
	})
}
