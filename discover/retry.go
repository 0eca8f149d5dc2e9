package discover

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fwojciec/opra"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// withRetry calls fn until it succeeds, the delays are exhausted or the
// error is permanent. Missing pages and client errors are permanent.
func withRetry[T any](ctx context.Context, delays []time.Duration, logger *slog.Logger, target string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == len(delays) || !retryable(err) {
			break
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		logger.Debug("retry fetch", "url", target, "attempt", attempt+2, "err", err)

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return zero, lastErr
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	switch opra.ErrorCode(err) {
	case opra.EINVALID, opra.ENOTFOUND:
		return false
	}
	return true
}
