package probe

import (
	"context"
	"time"
)

// Default polling parameters. The wait policy is a constant-interval retry
// with no ceiling and no backoff growth; co-located dependencies are assumed
// eventually available.
const (
	DefaultInterval = 2 * time.Second
	DefaultTimeout  = 3 * time.Second
)

// Waiter blocks until dependency targets become reachable. Targets are
// probed sequentially in declaration order to keep log output deterministic.
// A probe error (connection refused, DNS failure, timeout) is treated the
// same as "not yet reachable" and retried.
type Waiter struct {
	Interval time.Duration // sleep between failed attempts (default 2s)
	Timeout  time.Duration // per-attempt probe timeout (default 3s)
	// Observer, when set, is called after every probe attempt with the
	// 1-based attempt number and the attempt result.
	Observer func(t Target, attempt int, err error)
}

func (w Waiter) interval() time.Duration {
	if w.Interval > 0 {
		return w.Interval
	}
	return DefaultInterval
}

func (w Waiter) timeout() time.Duration {
	if w.Timeout > 0 {
		return w.Timeout
	}
	return DefaultTimeout
}

// WaitReachable blocks until the target is reachable or ctx is done. It
// returns the number of attempts made; the error is ctx.Err() when
// interrupted, or a validation error for a malformed target.
func (w Waiter) WaitReachable(ctx context.Context, t Target) (int, error) {
	p, err := t.Probe()
	if err != nil {
		return 0, err
	}
	attempt := 0
	for {
		if err := ctx.Err(); err != nil {
			return attempt, err
		}
		attempt++
		actx, cancel := context.WithTimeout(ctx, w.timeout())
		cerr := p.Check(actx)
		cancel()
		if w.Observer != nil {
			w.Observer(t, attempt, cerr)
		}
		if cerr == nil {
			return attempt, nil
		}
		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(w.interval()):
		}
	}
}

// WaitAll waits for every hard target in order. Soft targets are skipped
// here; probe them once via CheckOnce.
func (w Waiter) WaitAll(ctx context.Context, targets []Target) error {
	for _, t := range targets {
		if t.Soft {
			continue
		}
		if _, err := w.WaitReachable(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// CheckOnce performs a single probe attempt with the per-attempt timeout.
func (w Waiter) CheckOnce(ctx context.Context, t Target) error {
	p, err := t.Probe()
	if err != nil {
		return err
	}
	actx, cancel := context.WithTimeout(ctx, w.timeout())
	defer cancel()
	cerr := p.Check(actx)
	if w.Observer != nil {
		w.Observer(t, 1, cerr)
	}
	return cerr
}
