// Package retry runs flaky operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Policy describes how often and how patiently an operation is retried.
type Policy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Jitter         float64 // fraction of the backoff, 0.2 means +/- 20%
}

// DefaultPolicy returns the policy used for yt-dlp calls.
func DefaultPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Second,
		MaxBackoff:     20 * time.Second,
		Multiplier:     2,
		Jitter:         0.2,
	}
}

// Classifier reports whether err is worth another attempt.
type Classifier func(err error) bool

// Permanent wraps err so that Do gives up on it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Do calls fn until it succeeds, fails permanently, runs out of retries or ctx is done.
// A nil classifier retries everything except context errors and Permanent errors.
func Do(ctx context.Context, p Policy, classify Classifier, fn func(context.Context) error) error {
	var (
		lastErr error
		backoff = p.InitialBackoff
	)
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if classify != nil && !classify(err) {
			return err
		}
		if attempt == p.MaxRetries {
			break
		}

		wait := min(backoff+jitter(backoff, p.Jitter), p.MaxBackoff)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}

		if p.Multiplier > 1 {
			backoff = min(time.Duration(float64(backoff)*p.Multiplier), p.MaxBackoff)
		}
	}
	if p.MaxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("giving up after %d retries: %w", p.MaxRetries, lastErr)
}

func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return 0
	}
	spread := float64(d) * fraction
	return time.Duration((rand.Float64()*2 - 1) * spread)
}
