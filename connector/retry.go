package connector

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultBaseDelay = time.Second
	defaultBackoff   = 2.0
)

// retryConnect calls connectFn up to opts.MaxRetries times, sleeping between
// attempts. The delay grows by opts.Backoff and is capped at opts.MaxDelay.
func retryConnect(ctx context.Context, opts RetryConfig, logger *slog.Logger, connectFn func(context.Context) (Connection, error)) (Connection, error) {
	var err error
	var conn Connection
	delay := opts.BaseDelay
	if delay == 0 {
		delay = defaultBaseDelay
	}
	backoff := opts.Backoff
	if backoff < 1 {
		backoff = defaultBackoff
	}
	attempts := max(opts.MaxRetries, 1)

	for i := 0; i < attempts; i++ {
		conn, err = connectFn(ctx)
		if err == nil {
			return conn, nil
		}
		if i == attempts-1 {
			break
		}
		logger.Warn("connection attempt failed", "attempt", i+1, "retry_in", delay, "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * backoff)
			if delay > opts.MaxDelay && opts.MaxDelay > 0 {
				delay = opts.MaxDelay
			}
		}
	}
	return nil, err
}
