package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/service/sink"
	"github.com/oshokin/autoclicker/internal/service/status"
)

// events collects status events published by the player.
type events struct {
	// mu guards list.
	mu sync.Mutex
	// list is kept in publish order.
	list []status.Event
}

// Publish implements status.Publisher.
func (e *events) Publish(ev status.Event) {
	e.mu.Lock()
	e.list = append(e.list, ev)
	e.mu.Unlock()
}

// count returns how many events of kind k were published.
func (e *events) count(k status.Kind) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	var n int

	for _, ev := range e.list {
		if ev.Kind == k {
			n++
		}
	}

	return n
}

// flakySink fails every other click.
type flakySink struct {
	// mem records successful clicks.
	mem *sink.Memory
	// calls counts attempts.
	calls int
}

// Click implements sink.Sink.
func (f *flakySink) Click(ctx context.Context, at click.Coordinate, b click.Button) error {
	f.calls++
	if f.calls%2 == 0 {
		return &click.SinkError{Coordinate: at, Err: errors.New("busy")}
	}

	return f.mem.Click(ctx, at, b)
}

// sample returns the three-event recording used across tests.
func sample(start time.Time) click.Sequence {
	return click.Sequence{
		{Coordinate: click.Coordinate{X: 10, Y: 10}, Button: click.ButtonLeft, Timestamp: start},
		{Coordinate: click.Coordinate{X: 20, Y: 20}, Button: click.ButtonRight, Timestamp: start.Add(500 * time.Millisecond)},
		{Coordinate: click.Coordinate{X: 30, Y: 30}, Button: click.ButtonLeft, Timestamp: start.Add(1200 * time.Millisecond)},
	}
}

// newPlayer builds a player over mem.
func newPlayer(t *testing.T, s sink.Sink, pub status.Publisher) *Player {
	t.Helper()

	p, err := New(s, pub, nil)
	require.NoError(t, err)

	return p
}

// TestPlayer_ReproducesTiming replays twice with a pause between passes.
func TestPlayer_ReproducesTiming(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		mem := sink.NewMemory(nil)
		pub := new(events)
		p := newPlayer(t, mem, pub)

		run, err := p.Play(context.Background(), sample(time.Now()), click.PlaybackConfig{
			RepeatCount:      2,
			InterRepeatPause: 200 * time.Millisecond,
		})
		require.NoError(t, err)
		require.NoError(t, run.Wait())

		calls := mem.Calls()
		require.Len(t, calls, 6)

		wantCoords := []int{10, 20, 30, 10, 20, 30}
		for i, c := range calls {
			require.Equal(t, wantCoords[i], c.Coordinate.X)
		}

		require.Equal(t, click.ButtonRight, calls[1].Button)

		wantGaps := []time.Duration{
			500 * time.Millisecond,
			700 * time.Millisecond,
			200 * time.Millisecond,
			500 * time.Millisecond,
			700 * time.Millisecond,
		}
		for i, want := range wantGaps {
			require.Equal(t, want, calls[i+1].At.Sub(calls[i].At), "gap %d", i+1)
		}

		require.Equal(t, 1, pub.count(status.PlaybackStarted))
		require.Equal(t, 6, pub.count(status.PlaybackProgress))
		require.Equal(t, 1, pub.count(status.PlaybackCompleted))
		require.Zero(t, pub.count(status.PlaybackStopped))
		require.False(t, p.Active())
	})
}

// TestPlayer_StopMidSequence stops within the current wait and reports it once.
func TestPlayer_StopMidSequence(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		mem := sink.NewMemory(nil)
		pub := new(events)
		p := newPlayer(t, mem, pub)

		run, err := p.Play(context.Background(), sample(time.Now()), click.PlaybackConfig{RepeatCount: 5})
		require.NoError(t, err)

		time.Sleep(700 * time.Millisecond)

		snap, ok := p.Current()
		require.True(t, ok)
		require.Equal(t, run.ID(), snap.ID)
		require.Equal(t, 1, snap.Repeat)
		require.Equal(t, 2, snap.Step)

		p.Stop()

		require.ErrorIs(t, run.Wait(), ErrStopped)
		require.Equal(t, 2, mem.Len())

		time.Sleep(5 * time.Second)
		require.Equal(t, 2, mem.Len())

		require.Equal(t, 1, pub.count(status.PlaybackStopped))
		require.Zero(t, pub.count(status.PlaybackCompleted))

		// Stopping again, or with nothing active, is a no-op.
		p.Stop()
		run.Stop()
		require.Equal(t, 1, pub.count(status.PlaybackStopped))
	})
}

// TestPlayer_StopDuringPause interrupts the pause between passes.
func TestPlayer_StopDuringPause(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		mem := sink.NewMemory(nil)
		pub := new(events)
		p := newPlayer(t, mem, pub)

		run, err := p.Play(context.Background(), sample(time.Now()), click.PlaybackConfig{
			RepeatCount:      3,
			InterRepeatPause: 10 * time.Second,
		})
		require.NoError(t, err)

		time.Sleep(3 * time.Second)
		run.Stop()

		require.Equal(t, 3, mem.Len())
		require.Equal(t, 1, pub.count(status.PlaybackStopped))
		require.Zero(t, pub.count(status.PlaybackCompleted))
	})
}

// TestPlayer_EmptySequence completes without clicking.
func TestPlayer_EmptySequence(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		mem := sink.NewMemory(nil)
		pub := new(events)
		p := newPlayer(t, mem, pub)

		start := time.Now()

		run, err := p.Play(context.Background(), nil, click.PlaybackConfig{
			RepeatCount:      3,
			InterRepeatPause: time.Second,
		})
		require.NoError(t, err)
		require.NoError(t, run.Wait())

		require.Zero(t, mem.Len())
		require.Equal(t, 1, pub.count(status.PlaybackCompleted))
		require.Equal(t, 2*time.Second, time.Since(start))
	})
}

// TestPlayer_NonMonotonicTimestamps never waits a negative delay.
func TestPlayer_NonMonotonicTimestamps(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		mem := sink.NewMemory(nil)
		p := newPlayer(t, mem, nil)
		start := time.Now()

		seq := click.Sequence{
			{Coordinate: click.Coordinate{X: 1}, Timestamp: start.Add(time.Second)},
			{Coordinate: click.Coordinate{X: 2}, Timestamp: start},
			{Coordinate: click.Coordinate{X: 3}, Timestamp: start.Add(300 * time.Millisecond)},
		}

		run, err := p.Play(context.Background(), seq, click.PlaybackConfig{RepeatCount: 1})
		require.NoError(t, err)
		require.NoError(t, run.Wait())

		calls := mem.Calls()
		require.Len(t, calls, 3)
		require.Equal(t, time.Duration(0), calls[1].At.Sub(calls[0].At))
		require.Equal(t, 300*time.Millisecond, calls[2].At.Sub(calls[1].At))
	})
}

// TestPlayer_SinkFailureContinues reports failed clicks and finishes the run.
func TestPlayer_SinkFailureContinues(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		mem := sink.NewMemory(nil)
		pub := new(events)
		p := newPlayer(t, &flakySink{mem: mem}, pub)

		run, err := p.Play(context.Background(), sample(time.Now()), click.PlaybackConfig{RepeatCount: 2})
		require.NoError(t, err)
		require.NoError(t, run.Wait())

		require.Equal(t, 3, mem.Len())
		require.Equal(t, 3, pub.count(status.PlaybackFailed))
		require.Equal(t, 1, pub.count(status.PlaybackCompleted))
	})
}

// TestPlayer_SingleRun refuses a second concurrent run and validates input.
func TestPlayer_SingleRun(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		p := newPlayer(t, sink.NewMemory(nil), nil)
		ctx := context.Background()

		_, err := p.Play(ctx, nil, click.PlaybackConfig{})
		require.ErrorIs(t, err, click.ErrInvalidConfig)

		run, err := p.Play(ctx, sample(time.Now()), click.PlaybackConfig{RepeatCount: 1})
		require.NoError(t, err)

		_, err = p.Play(ctx, sample(time.Now()), click.PlaybackConfig{RepeatCount: 1})
		require.ErrorIs(t, err, ErrAlreadyPlaying)

		require.NoError(t, run.Wait())

		// Finished runs free the player.
		run, err = p.Play(ctx, nil, click.PlaybackConfig{RepeatCount: 1})
		require.NoError(t, err)
		require.NoError(t, run.Wait())
	})
}

// TestPlayer_OutlivesRequestContext keeps running after the caller's context ends.
func TestPlayer_OutlivesRequestContext(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		mem := sink.NewMemory(nil)
		p := newPlayer(t, mem, nil)

		ctx, cancel := context.WithCancel(context.Background())
		run, err := p.Play(ctx, sample(time.Now()), click.PlaybackConfig{RepeatCount: 1})
		require.NoError(t, err)
		cancel()

		require.NoError(t, run.Wait())
		require.Equal(t, 3, mem.Len())
	})
}
