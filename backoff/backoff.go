// Package backoff computes the pause between retry attempts of a
// failed action. A run blocks while its action retries, so the stock
// strategies are tuned for sub-second waits rather than queue-scale
// pauses.
package backoff

import (
	"math/rand/v2"
	"time"
)

// Strategy yields the wait before retry attempt n. Attempt 1 is the
// first retry after the initial failure. One strategy instance is
// shared across concurrent runs and must be safe for concurrent use.
type Strategy interface {
	Delay(attempt int) time.Duration
}

// Func adapts an ordinary function to a Strategy.
type Func func(attempt int) time.Duration

// Delay calls f.
func (f Func) Delay(attempt int) time.Duration { return f(attempt) }

// NewConstant waits the same interval before every retry.
func NewConstant(interval time.Duration) Strategy {
	return Func(func(int) time.Duration { return interval })
}

// NewExponential doubles the wait on every retry, starting at initial.
// A positive limit caps the wait; zero means uncapped.
func NewExponential(initial, limit time.Duration) Strategy {
	return Func(func(attempt int) time.Duration {
		return doubled(initial, limit, attempt)
	})
}

// NewFullJitter waits a uniformly random duration between zero and the
// exponential delay for the attempt. Randomizing the whole window keeps
// simultaneous retries against one collaborator from landing together.
func NewFullJitter(initial, limit time.Duration) Strategy {
	return Func(func(attempt int) time.Duration {
		d := doubled(initial, limit, attempt)
		if d <= 0 {
			return 0
		}
		return rand.N(d + 1)
	})
}

// DefaultStrategy is the engine's fallback when no explicit strategy is
// configured: full jitter over doublings from 250ms, capped at 10s.
func DefaultStrategy() Strategy {
	return NewFullJitter(250*time.Millisecond, 10*time.Second)
}

// doubled returns initial * 2^(attempt-1), clamped to limit.
func doubled(initial, limit time.Duration, attempt int) time.Duration {
	d := initial
	for i := 1; i < attempt; i++ {
		if limit > 0 && d >= limit {
			break
		}
		next := d * 2
		if next < d {
			// Doubling overflowed; the current value is already
			// beyond any realistic wait.
			break
		}
		d = next
	}
	if limit > 0 && d > limit {
		d = limit
	}
	return d
}
