package retry

import (
	"context"
	"time"
)

// Policy bounds a retry loop: at most MaxAttempts attempts with Delay between them.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
}

// Result reports how a retry loop ended.
type Result struct {
	Attempts int
	Accepted bool
}

// Do runs attempt until accept returns true or the policy is exhausted.
// attempt errors are returned immediately; a rejected attempt is not an error,
// it just consumes one slot. Delay is applied between attempts, never after
// the last one, and respects context cancellation.
func (p Policy) Do(ctx context.Context, attempt func(ctx context.Context) error, accept func() bool) (Result, error) {
	res := Result{}

	for i := 0; i < p.MaxAttempts; i++ {
		res.Attempts = i + 1

		if err := attempt(ctx); err != nil {
			return res, err
		}
		if accept() {
			res.Accepted = true
			return res, nil
		}
		if i == p.MaxAttempts-1 {
			break
		}
		if p.Delay > 0 {
			select {
			case <-time.After(p.Delay):
			case <-ctx.Done():
				return res, ctx.Err()
			}
		}
	}

	return res, nil
}
