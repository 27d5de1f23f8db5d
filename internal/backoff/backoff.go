// Package backoff computes exponential delays with jitter for reconnects and retries.
package backoff

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Policy describes an exponential backoff curve.
type Policy struct {
	// Base is the delay for attempt 0.
	Base time.Duration
	// Max caps the exponential component.
	Max time.Duration
	// Jitter is the upper bound of the random duration added to each delay.
	Jitter time.Duration
}

// DefaultPolicy returns the reconnect policy used by the push-channel watcher.
func DefaultPolicy() Policy {
	return Policy{
		Base:   2 * time.Second,
		Max:    5 * time.Minute,
		Jitter: time.Second,
	}
}

// Exponential returns min(Base * 2^attempt, Max) without jitter.
// Negative attempts are treated as zero. Without a Max the result
// saturates instead of overflowing.
func (p Policy) Exponential(attempt int) time.Duration {
	if p.Base <= 0 {
		return 0
	}
	d := p.Base
	for i := 0; i < attempt; i++ {
		if p.Max > 0 && d >= p.Max {
			break
		}
		if d > math.MaxInt64/2 {
			d = math.MaxInt64
			break
		}
		d *= 2
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

// Delay returns Exponential(attempt) plus a random jitter in [0, Jitter).
func (p Policy) Delay(attempt int) time.Duration {
	d := p.Exponential(attempt)
	if p.Jitter > 0 {
		j := time.Duration(rand.Int64N(int64(p.Jitter)))
		if d > math.MaxInt64-j {
			return math.MaxInt64
		}
		d += j
	}
	return d
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
