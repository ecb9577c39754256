package pokeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// withRetry runs do up to maxAttempts times with a fixed delay in between.
// In allowNotFound mode a 404 short-circuits to ErrNotFound. Decode failures
// and context cancellation are never retried.
func (c *Client) withRetry(ctx context.Context, u string, allowNotFound bool, out any) error {
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		start := time.Now()
		err := c.do(ctx, u, out)
		c.observe(u, err, time.Since(start))
		if err == nil {
			return nil
		}
		lastErr = err

		var statusErr *StatusError
		if allowNotFound && errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%s: %w", u, ErrNotFound)
		}
		if errors.As(err, new(*decodeError)) || ctx.Err() != nil {
			return err
		}

		if attempt == c.maxAttempts {
			break
		}

		c.logger.Debug("retrying request", "url", u, "attempt", attempt, "error", err)
		if c.observer != nil {
			c.observer.ObserveRetry(resourceOf(u, c.baseURL))
		}

		timer := time.NewTimer(c.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", c.maxAttempts, lastErr)
}
