// Package backoff implements the reconnect schedule described in
// spec.md §5: a cyclic step schedule where each step is retried a fixed
// number of times before advancing, wrapping back to the first step
// after the last. It governs Socket connect attempts only, never
// in-flight RPC calls.
package backoff

import (
	"context"
	"time"
)

// DefaultSteps is the schedule spec.md §5 and §8 (property 7) specify:
// three delays, five retries at each before advancing.
var DefaultSteps = []time.Duration{1 * time.Second, 3 * time.Second, 10 * time.Second}

// DefaultRetriesPerStep is how many attempts use a given step's delay
// before the schedule advances to the next step: the initial attempt at
// that step plus up to 5 retries (spec.md §5).
const DefaultRetriesPerStep = 6

// Schedule produces reconnect delays in the cyclic order spec.md §8
// property 7 tests: retriesPerStep attempts at steps[0], then
// retriesPerStep at steps[1], and so on, wrapping to steps[0] after the
// last step's attempts are exhausted.
type Schedule struct {
	steps          []time.Duration
	retriesPerStep int

	stepIdx      int
	attemptsLeft int
}

// New constructs a Schedule. A nil/empty steps defaults to DefaultSteps;
// retriesPerStep <= 0 defaults to DefaultRetriesPerStep.
func New(steps []time.Duration, retriesPerStep int) *Schedule {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	if retriesPerStep <= 0 {
		retriesPerStep = DefaultRetriesPerStep
	}
	return &Schedule{
		steps:          steps,
		retriesPerStep: retriesPerStep,
		attemptsLeft:   retriesPerStep,
	}
}

// Next returns the delay to use for the upcoming retry attempt and
// advances internal state for the following call.
func (s *Schedule) Next() time.Duration {
	delay := s.steps[s.stepIdx]

	s.attemptsLeft--
	if s.attemptsLeft <= 0 {
		s.stepIdx = (s.stepIdx + 1) % len(s.steps)
		s.attemptsLeft = s.retriesPerStep
	}
	return delay
}

// Reset returns the schedule to its first step, as if newly constructed.
func (s *Schedule) Reset() {
	s.stepIdx = 0
	s.attemptsLeft = s.retriesPerStep
}

// CancelFunc cancels the context a Retry loop's attempts run under; safe
// to call more than once.
type CancelFunc func()

// Retry repeatedly calls attempt until it returns a nil error or ctx is
// canceled, sleeping for the schedule's delay between attempts. It blocks
// until the loop ends, then returns the CancelFunc of the context the
// attempts ran under (already called by Retry itself) and nil on success
// or ctx.Err() if canceled. The returned CancelFunc does not stop a loop
// in progress; only canceling ctx does.
func Retry(ctx context.Context, sched *Schedule, attempt func(ctx context.Context) error) (cancel CancelFunc, err error) {
	ctx, cancelFn := context.WithCancel(ctx)
	cancel = CancelFunc(cancelFn)
	defer cancel()

	for {
		if err := attempt(ctx); err == nil {
			return cancel, nil
		}

		delay := sched.Next()
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return cancel, ctx.Err()
		}
	}
}
