package session

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/service/sink"
	"github.com/oshokin/autoclicker/internal/service/status"
)

// newController builds a three-slot controller over mem.
func newController(t *testing.T, mem *sink.Memory, pub status.Publisher) *Controller {
	t.Helper()

	c, err := New(Options{
		Sink:      mem,
		Pointer:   sink.FixedPointer{X: 1, Y: 2},
		Publisher: pub,
	})
	require.NoError(t, err)
	require.Equal(t, DefaultSlots, c.Len())

	return c
}

// every returns a follow-pointer config.
func every(d time.Duration) click.EmitterConfig {
	return click.EmitterConfig{Interval: d, Target: click.FollowPointer()}
}

// TestController_ReferenceLifecycle checks the reference start follows the armed set.
func TestController_ReferenceLifecycle(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		c := newController(t, sink.NewMemory(nil), nil)

		_, ok := c.Reference()
		require.False(t, ok)

		start := time.Now()
		require.NoError(t, c.StartSlot(ctx, 0, every(2*time.Second)))

		ref, ok := c.Reference()
		require.True(t, ok)
		require.Equal(t, start, ref)

		// A later slot joins the existing reference.
		time.Sleep(700 * time.Millisecond)
		require.NoError(t, c.StartSlot(ctx, 1, every(6*time.Second)))

		ref, ok = c.Reference()
		require.True(t, ok)
		require.Equal(t, start, ref)

		// Stopping one of two keeps it.
		require.NoError(t, c.StopSlot(ctx, 0))

		_, ok = c.Reference()
		require.True(t, ok)

		// Stopping the last clears it.
		require.NoError(t, c.StopSlot(ctx, 1))

		_, ok = c.Reference()
		require.False(t, ok)

		// A fresh start picks a new origin.
		time.Sleep(time.Second)
		require.NoError(t, c.StartSlot(ctx, 2, every(time.Second)))

		ref, ok = c.Reference()
		require.True(t, ok)
		require.Equal(t, start.Add(1700*time.Millisecond), ref)

		c.StopAll(ctx)
	})
}

// TestController_PhaseLock runs 2s and 6s slots for 12s through the controller.
func TestController_PhaseLock(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		mem := sink.NewMemory(nil)

		var (
			mu    sync.Mutex
			fired []status.Event
		)

		pub := status.PublisherFunc(func(e status.Event) {
			if e.Kind != status.EmitterFired {
				return
			}

			mu.Lock()
			fired = append(fired, e)
			mu.Unlock()
		})

		c := newController(t, mem, pub)

		require.NoError(t, c.StartSlot(ctx, 0, every(2*time.Second)))
		time.Sleep(450 * time.Millisecond)
		require.NoError(t, c.StartSlot(ctx, 1, every(6*time.Second)))

		time.Sleep(12050*time.Millisecond - 450*time.Millisecond)
		c.StopAll(ctx)

		fast := make(map[time.Duration]bool)

		var slow []time.Duration

		for _, e := range fired {
			switch e.Slot {
			case 0:
				fast[e.Elapsed] = true
			case 1:
				slow = append(slow, e.Elapsed)
			}
		}

		require.Len(t, slow, 2)

		for _, at := range slow {
			require.True(t, fast[at])
		}

		require.Equal(t, 8, mem.Len())
	})
}

// TestController_StopAllIsIdempotent verifies StopAll with nothing armed is harmless.
func TestController_StopAllIsIdempotent(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		c := newController(t, sink.NewMemory(nil), nil)

		c.StopAll(ctx)
		c.StopAll(ctx)

		require.NoError(t, c.StartSlot(ctx, 0, every(time.Second)))
		c.StopAll(ctx)
		c.StopAll(ctx)

		_, ok := c.Reference()
		require.False(t, ok)
		require.Zero(t, c.ArmedCount())
	})
}

// TestController_ToggleSlot flips a slot on and off.
func TestController_ToggleSlot(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		c := newController(t, sink.NewMemory(nil), nil)

		armed, err := c.ToggleSlot(ctx, 2, every(time.Second))
		require.NoError(t, err)
		require.True(t, armed)
		require.True(t, c.Slots()[2].Armed)

		armed, err = c.ToggleSlot(ctx, 2, every(time.Second))
		require.NoError(t, err)
		require.False(t, armed)
		require.Zero(t, c.ArmedCount())
	})
}

// TestController_ConcurrentToggles alternates the slot state across racing
// toggles, so an even number of them leaves it idle.
func TestController_ConcurrentToggles(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx := context.Background()
		c := newController(t, sink.NewMemory(nil), nil)

		const toggles = 16

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			armedOn int
		)

		for range toggles {
			wg.Go(func() {
				armed, err := c.ToggleSlot(ctx, 0, every(time.Second))
				require.NoError(t, err)

				if armed {
					mu.Lock()
					armedOn++
					mu.Unlock()
				}
			})
		}

		wg.Wait()

		require.Equal(t, toggles/2, armedOn)
		require.Zero(t, c.ArmedCount())

		_, ok := c.Reference()
		require.False(t, ok)
	})
}

// TestController_RejectsInvalidInput leaves the session untouched on bad input.
func TestController_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newController(t, sink.NewMemory(nil), nil)

	require.ErrorIs(t, c.StartSlot(ctx, 3, every(time.Second)), click.ErrInvalidConfig)
	require.ErrorIs(t, c.StartSlot(ctx, -1, every(time.Second)), click.ErrInvalidConfig)
	require.ErrorIs(t, c.StartSlot(ctx, 0, every(0)), click.ErrInvalidConfig)
	require.ErrorIs(t, c.StopSlot(ctx, 7), click.ErrInvalidConfig)

	_, ok := c.Reference()
	require.False(t, ok)
}
