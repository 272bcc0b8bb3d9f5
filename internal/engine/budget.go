package engine

import (
	"fmt"
	"time"
)

// DefaultBudget is the wall-clock budget of one tick.
const DefaultBudget = 100 * time.Millisecond

// DefaultTickInterval is the delay Tick asks the host to wait before the
// next tick.
const DefaultTickInterval = 500 * time.Millisecond

// Budget tracks the wall time spent in one tick.
//
// The budget is checked before each job, never during one: a job that starts
// with budget left always runs to completion. A tick can therefore run past
// its limit by at most one job.
type Budget struct {
	clock   WallClock
	start   time.Time
	limit   time.Duration
	elapsed time.Duration // as of the last check
	jobs    int
}

// NewBudget starts a budget of limit on clock.
func NewBudget(clock WallClock, limit time.Duration) *Budget {
	return &Budget{
		clock: clock,
		start: clock.Now(),
		limit: limit,
	}
}

// Exhausted reads the clock and reports whether the limit has been reached.
func (b *Budget) Exhausted() bool {
	b.elapsed = b.clock.Now().Sub(b.start)
	return b.elapsed >= b.limit
}

// Spend records one job run under this budget.
func (b *Budget) Spend() {
	b.jobs++
}

// Jobs returns the number of jobs run.
func (b *Budget) Jobs() int {
	return b.jobs
}

// Elapsed returns the time spent as of the last check.
func (b *Budget) Elapsed() time.Duration {
	return b.elapsed
}

// Overrun reports whether the last check found the tick past its limit.
func (b *Budget) Overrun() bool {
	return b.elapsed > b.limit
}

// OverrunError describes a tick that ran past its budget. It is logged, never
// returned to the host.
type OverrunError struct {
	Elapsed time.Duration
	Limit   time.Duration
	Jobs    int
}

// Error implements the error interface.
func (e *OverrunError) Error() string {
	return fmt.Sprintf("tick ran %s past its %s budget after %d jobs", e.Elapsed-e.Limit, e.Limit, e.Jobs)
}

// overrun returns an OverrunError if the budget was exceeded.
func (b *Budget) overrun() error {
	if !b.Overrun() {
		return nil
	}
	return &OverrunError{Elapsed: b.elapsed, Limit: b.limit, Jobs: b.jobs}
}
