package sink

import (
	"context"
	"sync"
	"time"

	"github.com/oshokin/autoclicker/internal/clock"
	"github.com/oshokin/autoclicker/internal/domain/click"
)

// Invocation is one recorded Click call.
type Invocation struct {
	// Coordinate is where the click was requested.
	Coordinate click.Coordinate
	// Button is the requested button.
	Button click.Button
	// At is the clock reading at the time of the call.
	At time.Time
}

// Memory is a sink that records every call and never fails.
type Memory struct {
	// clock stamps invocations.
	clock clock.Clock
	// mu guards calls.
	mu sync.Mutex
	// calls holds invocations in call order.
	calls []Invocation
}

// NewMemory creates a recording sink; a nil clock means the system clock.
func NewMemory(c clock.Clock) *Memory {
	return &Memory{clock: clock.OrSystem(c)}
}

// Click records the call.
func (m *Memory) Click(_ context.Context, at click.Coordinate, button click.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Invocation{
		Coordinate: at,
		Button:     button,
		At:         m.clock.Now(),
	})

	return nil
}

// Calls returns a copy of the recorded invocations.
func (m *Memory) Calls() []Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Invocation(nil), m.calls...)
}

// Len returns the number of recorded invocations.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.calls)
}

// Reset forgets every recorded invocation.
func (m *Memory) Reset() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}
