// Package watch drives a bounded poll loop over a job or batch: refresh,
// report progress, wait, repeat, until the target completes or the timeout
// budget runs out.
package watch

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sarproc/hyp3-go/pkg/models"
)

const (
	// DefaultTimeout bounds a watch at three hours
	DefaultTimeout = 3 * time.Hour
	// DefaultInterval is how often the target is refreshed
	DefaultInterval = 60 * time.Second
)

// Observer is called once per iteration with the number of completed jobs,
// the total being watched, and how much of the timeout budget is left.
// Progress rendering lives with the caller, not here.
type Observer func(completed, total int, remaining time.Duration)

// Options configures a watch
type Options struct {
	Timeout  time.Duration // total budget; zero performs no refreshes and fails immediately
	Interval time.Duration // wait between refreshes, must be > 0
	Observer Observer      // optional progress callback
}

// DefaultOptions returns the standard three-hour, one-minute-interval watch
func DefaultOptions() Options {
	return Options{
		Timeout:  DefaultTimeout,
		Interval: DefaultInterval,
	}
}

// TimeoutError is returned when the iteration budget runs out before the
// target completes. Last holds the most recent snapshot so the caller can
// inspect partial progress.
type TimeoutError struct {
	Last models.Watchable
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout occurred while waiting for %v", e.Last)
}

// Watch polls target until it completes, the timeout budget is exhausted,
// or ctx is cancelled. Each iteration refreshes the target through fetch
// and reports progress to the observer. The refreshed target is returned
// on completion; on timeout the error is a *TimeoutError carrying the last
// snapshot. Refresh errors abort the watch immediately; the only retry
// here is the interval loop itself.
func Watch(ctx context.Context, target models.Watchable, fetch models.FetchFunc, opts Options) (models.Watchable, error) {
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("watch interval must be positive, got %v", opts.Interval)
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("watch timeout must not be negative, got %v", opts.Timeout)
	}

	iterations := int(math.Ceil(opts.Timeout.Seconds() / opts.Interval.Seconds()))

	for i := 0; i < iterations; i++ {
		refreshed, err := target.Refresh(ctx, fetch)
		if err != nil {
			return nil, err
		}
		target = refreshed

		if opts.Observer != nil {
			remaining := opts.Timeout - time.Duration(i)*opts.Interval
			opts.Observer(target.CompletedCount(), target.Count(), remaining)
		}

		if target.Complete() {
			return target, nil
		}

		select {
		case <-ctx.Done():
			return target, ctx.Err()
		case <-time.After(opts.Interval):
		}
	}

	return nil, &TimeoutError{Last: target}
}
