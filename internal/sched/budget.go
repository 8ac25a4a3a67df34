package sched

import (
	"context"
	"time"
)

// YieldFunc suspends the calling task for one scheduler tick so other
// cooperative work can run. Implementations must be safe to call often.
type YieldFunc func(ctx context.Context)

// Sleep returns a YieldFunc that parks the task for the given tick.
func Sleep(tick time.Duration) YieldFunc {
	return func(ctx context.Context) {
		timer := time.NewTimer(tick)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
	}
}

// NoYield does nothing. Used by tests that need timing-independent runs.
func NoYield(context.Context) {}

// Budget counts units of work (filled cells, created primitives) and yields
// control every time the threshold trips. Each generation pass owns its own
// Budget so concurrent passes never share a counter.
type Budget struct {
	threshold int
	count     int
	yield     YieldFunc
}

func NewBudget(threshold int, yield YieldFunc) *Budget {
	if threshold <= 0 {
		threshold = 1
	}
	if yield == nil {
		yield = NoYield
	}
	return &Budget{threshold: threshold, yield: yield}
}

// Spend records n units of work and yields if the threshold was reached.
// Returns ctx.Err() so long loops can abort on cancellation.
func (b *Budget) Spend(ctx context.Context, n int) error {
	if b == nil {
		return ctx.Err()
	}
	b.count += n
	if b.count >= b.threshold {
		b.count = 0
		b.yield(ctx)
	}
	return ctx.Err()
}

// Count reports units spent since the last yield.
func (b *Budget) Count() int {
	if b == nil {
		return 0
	}
	return b.count
}
