// Package clock is the time source shared by emitters, the recorder and the player.
//
// All components read "now" through Clock so that the whole timing core can be
// driven by a fake clock or by testing/synctest's virtual time.
package clock

import (
	"context"
	"time"
)

// Clock provides the current instant.
// Returned values carry Go's monotonic reading, so Sub between two of them
// is immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time
}

// System implements Clock using the host clock.
type System struct{}

// Now returns time.Now().
func (System) Now() time.Time {
	return time.Now()
}

// Func adapts a plain function to Clock.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time {
	return f()
}

// OrSystem returns c, or System when c is nil.
//
//nolint:ireturn // Returning the interface is the point of this helper.
func OrSystem(c Clock) Clock {
	if c == nil {
		return System{}
	}

	return c
}

// Sleep blocks for d or until ctx is done, whichever comes first.
// A non-positive d returns immediately unless ctx is already done.
func Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
