package backoff

import (
	"context"
	"time"

	"github.com/james-lawrence/launcher/internal/x/timex"
)

// Strategy strategy to compute how long to wait before checking again.
type Strategy interface {
	Backoff(attempt int) time.Duration
}

// StrategyFunc convience helper to convert a pure function into a backoff strategy.
type StrategyFunc func(attempt int) time.Duration

// Backoff implements Strategy
func (t StrategyFunc) Backoff(attempt int) time.Duration {
	return t(attempt)
}

// Constant always returns the provided duration regardless of the attempt.
func Constant(d time.Duration) Strategy {
	return StrategyFunc(func(attempt int) time.Duration {
		return d
	})
}

// Until invokes check until it reports done, sleeping between attempts based on
// the strategy. wake allows an external event to cut a sleep short; a nil channel
// never fires. returns the context's error if it is cancelled first.
func Until(ctx context.Context, s Strategy, wake <-chan struct{}, check func(attempt int) (bool, error)) (err error) {
	var (
		done bool
	)

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for attempt := 0; ; attempt++ {
		if done, err = check(attempt); err != nil || done {
			return err
		}

		timex.SafeReset(timer, s.Backoff(attempt))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
		case <-timer.C:
		}
	}
}
