package status

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
)

// collector gathers delivered events for assertions.
type collector struct {
	// mu guards events.
	mu sync.Mutex
	// events holds everything the handler saw.
	events []Event
}

// handle appends an event.
func (c *collector) handle(e Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

// snapshot returns a copy of the collected events.
func (c *collector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]Event(nil), c.events...)
}

// TestBus_DeliversInOrder checks ordering and timestamping.
func TestBus_DeliversInOrder(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		bus := NewBus(nil)
		c := new(collector)
		sub := bus.Subscribe(c.handle, 0)

		bus.Publish(Event{Kind: RecordingStarted, Message: "one"})
		bus.Publish(Event{Kind: RecordingStopped, Message: "two"})

		synctest.Wait()
		sub.Cancel()

		events := c.snapshot()
		require.Len(t, events, 2)
		require.Equal(t, "one", events[0].Message)
		require.Equal(t, "two", events[1].Message)
		require.False(t, events[0].Time.IsZero())
		require.Equal(t, 0, bus.Len())
	})
}

// TestBus_NeverBlocksOnSlowSubscriber verifies Publish drops instead of waiting.
func TestBus_NeverBlocksOnSlowSubscriber(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		bus := NewBus(nil)
		release := make(chan struct{})

		sub := bus.Subscribe(func(Event) { <-release }, 1)

		// The handler takes the first event and blocks on release.
		bus.Publish(Event{Kind: EmitterFired})
		synctest.Wait()

		// One more fits the queue, the rest are dropped.
		for range 9 {
			bus.Publish(Event{Kind: EmitterFired})
		}
		require.Equal(t, uint64(8), sub.Dropped())

		close(release)
		sub.Cancel()
	})
}

// TestSubscription_CancelIsIdempotent makes sure double cancel is harmless.
func TestSubscription_CancelIsIdempotent(t *testing.T) {
	t.Parallel()

	bus := NewBus(nil)
	sub := bus.Subscribe(func(Event) {}, 4)

	sub.Cancel()
	sub.Cancel()

	bus.Publish(Event{Kind: EmitterFired})
	require.Equal(t, 0, bus.Len())
}

// TestEvent_String uses the log pane layout.
func TestEvent_String(t *testing.T) {
	t.Parallel()

	e := Event{
		Time:    time.Date(2024, 1, 1, 9, 5, 7, 0, time.UTC),
		Message: "Primary click at 2.0s",
	}

	require.Equal(t, "[09:05:07] Primary click at 2.0s", e.String())
}
