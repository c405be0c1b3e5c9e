package generator

import (
	"context"
	"errors"
	"time"
)

// Retry retries Generate up to maxAttempts with exponential backoff starting
// at baseDelay. Permanent errors short-circuit; context cancellation stops
// the loop immediately.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next Client) Client {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next Client
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }
func (r *retrying) Close() error { return r.next.Close() }

func (r *retrying) Generate(ctx context.Context, prompt string) (string, error) {
	var last error
	for i := 0; i < r.max; i++ {
		resp, err := r.next.Generate(ctx, prompt)
		if err == nil {
			return resp, nil
		}
		var pErr *PermanentError
		if errors.As(err, &pErr) {
			return "", err
		}
		last = err
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		if i < r.max-1 {
			time.Sleep(r.base * time.Duration(1<<i))
		}
	}
	return "", last
}
