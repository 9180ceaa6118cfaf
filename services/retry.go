package services

import (
	"context"
	"errors"
	"log"
	"time"
)

// retryPolicy bounds repeated attempts against a single remote candidate.
// Rate-limit responses take a separate branch: they wait the duration the
// server asked for and do not consume a general attempt, but are capped by
// MaxRateLimitWaits so a misbehaving endpoint cannot pin a request forever.
type retryPolicy struct {
	MaxAttempts       int
	MaxRateLimitWaits int
	Backoff           func(attempt int) time.Duration
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		MaxAttempts:       3,
		MaxRateLimitWaits: 5,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * 2000 * time.Millisecond
		},
	}
}

// run invokes fn until it succeeds, the attempt budget is spent, or the
// context is done. The last error is returned on exhaustion.
func (p retryPolicy) run(ctx context.Context, label string, fn func() error) error {
	var lastErr error
	rateLimitWaits := 0

	for attempt := 1; attempt <= p.MaxAttempts; {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		var rle *RateLimitError
		if errors.As(err, &rle) {
			rateLimitWaits++
			if rateLimitWaits > p.MaxRateLimitWaits {
				log.Printf("%s: rate limit wait budget exhausted after %d waits", label, p.MaxRateLimitWaits)
				return lastErr
			}
			log.Printf("%s: rate limited, waiting %s (wait %d/%d)", label, rle.RetryAfter, rateLimitWaits, p.MaxRateLimitWaits)
			if err := sleepCtx(ctx, rle.RetryAfter); err != nil {
				return err
			}
			// A rate-limit wait does not consume a general attempt.
			continue
		}

		log.Printf("%s: attempt %d/%d failed: %v", label, attempt, p.MaxAttempts, err)
		if attempt == p.MaxAttempts {
			break
		}
		if err := sleepCtx(ctx, p.Backoff(attempt)); err != nil {
			return err
		}
		attempt++
	}

	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
