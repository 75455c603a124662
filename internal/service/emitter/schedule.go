package emitter

import "time"

const (
	// DefaultPollInterval is how often an armed emitter evaluates the clock.
	DefaultPollInterval = 10 * time.Millisecond
	// DefaultTolerance is the window after each interval multiple in which a fire is due.
	DefaultTolerance = 100 * time.Millisecond
	// minGapNumerator and minGapDenominator express the 0.9 * interval spacing
	// required between two fires without leaving integer arithmetic.
	minGapNumerator   = 9
	minGapDenominator = 10
)

// effectiveTolerance caps the window at half the interval so that short
// intervals still have a quiet part of every cycle.
func effectiveTolerance(interval, tolerance time.Duration) time.Duration {
	return max(min(tolerance, interval/2), time.Nanosecond)
}

// due reports whether a fire is due at elapsed, given the previous fire at
// lastFire (zero when the emitter has not fired since it was armed).
func due(elapsed, lastFire, interval, tolerance time.Duration) bool {
	if elapsed < 0 || interval <= 0 {
		return false
	}

	if elapsed%interval >= tolerance {
		return false
	}

	return (elapsed-lastFire)*minGapDenominator >= interval*minGapNumerator
}
