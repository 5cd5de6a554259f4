// Package delivery wraps outbound sends with bounded retry and backoff.
//
// Two failure families are kept apart: transient timeouts consume a bounded
// attempt budget with exponential backoff, while rate-limit signals carry a
// server-specified wait and never consume an attempt.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// TimeoutError marks a transient delivery failure worth a bounded retry.
type TimeoutError struct {
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("delivery timed out: %v", e.Err)
}

func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// RateLimitError carries the exact wait the transport demanded before the
// next send attempt.
type RateLimitError struct {
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited for %s: %v", e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// Result is the terminal outcome of a delivery: either Delivered, or failed
// with the error that ended the attempts.
type Result struct {
	Delivered bool
	Attempts  int
	Cause     error
}

type Retrier struct {
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func New() *Retrier {
	return &Retrier{
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		sleep:       sleepCtx,
	}
}

// Deliver runs send until it succeeds, the timeout budget is exhausted, or a
// non-retryable error occurs. Backoff waits suspend only the calling
// goroutine.
func (r *Retrier) Deliver(ctx context.Context, send func() error) Result {
	attempts := 0

	for {
		attempts++

		err := send()
		if err == nil {
			return Result{Delivered: true, Attempts: attempts}
		}

		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			// Externally paced: honor the server-specified delay and retry
			// without touching the attempt budget.
			slog.Warn("Rate limit hit, retrying",
				"retry_after", rateLimitErr.RetryAfter)

			attempts--
			if werr := r.sleep(ctx, rateLimitErr.RetryAfter); werr != nil {
				return Result{Attempts: attempts, Cause: werr}
			}
			continue
		}

		var timeoutErr *TimeoutError
		if errors.As(err, &timeoutErr) {
			slog.Warn("Timeout on delivery attempt",
				"attempt", attempts,
				"max_attempts", r.maxAttempts)

			if attempts >= r.maxAttempts {
				return Result{Attempts: attempts, Cause: err}
			}

			delay := r.baseDelay << (attempts - 1)
			if werr := r.sleep(ctx, delay); werr != nil {
				return Result{Attempts: attempts, Cause: werr}
			}
			continue
		}

		return Result{Attempts: attempts, Cause: err}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
