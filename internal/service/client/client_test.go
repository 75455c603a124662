package client

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/autoclicker/internal/api/grpc/control"
	"github.com/oshokin/autoclicker/internal/config"
	"github.com/oshokin/autoclicker/internal/domain/click"
)

// repeatingSource emits the same press until stopped.
type repeatingSource struct {
	// err fails Start when set.
	err error
	// done is closed by Stop.
	done chan struct{}
}

// Start implements input.Source.
func (s *repeatingSource) Start() (<-chan hook.Event, error) {
	if s.err != nil {
		return nil, s.err
	}

	s.done = make(chan struct{})
	events := make(chan hook.Event)

	go func(done <-chan struct{}) {
		ticker := time.NewTicker(5 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case events <- hook.Event{Kind: hook.MouseHold, Button: hook.MouseMap["left"], X: 640, Y: 480}:
				case <-done:
					return
				}
			}
		}
	}(s.done)

	return events, nil
}

// Stop implements input.Source.
func (s *repeatingSource) Stop() {
	close(s.done)
}

// TestFormatStatus renders armed and idle slots.
func TestFormatStatus(t *testing.T) {
	t.Parallel()

	out := FormatStatus(&control.Status{
		Message:        "Slot 1 armed",
		ReferenceStart: time.Now(),
		Slots: []control.SlotStatus{
			{Slot: 1, Armed: true, Interval: 2 * time.Second, Target: click.FollowPointer(), Fires: 3},
			{Slot: 2},
		},
		Playback: &control.PlaybackStatus{RunID: "abc", Repeat: 1, RepeatCount: 2, Step: 1, Length: 3},
	})

	require.Contains(t, out, "Slot 1 armed")
	require.Contains(t, out, "slot 1: every 2s, pointer (fires 3, failures 0)")
	require.Contains(t, out, "slot 2: idle")
	require.Contains(t, out, "Playback abc: repeat 1/2, step 1/3")
	require.Contains(t, FormatStatus(nil), "no status")
}

// TestPick_StoresCoordinate prints the press and pins the slot in the settings file.
func TestPick_StoresCoordinate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	var out bytes.Buffer

	at, err := Pick(context.Background(), &PickOptions{
		Options: Options{ConfigPath: path, Out: &out},
		Slot:    2,
		Source:  &repeatingSource{},
	})
	require.NoError(t, err)
	require.Equal(t, click.Coordinate{X: 640, Y: 480}, at)
	require.Contains(t, out.String(), "640 480")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, click.FixedAt(at), cfg.Emitters[1].Config().Target)
}

// TestPick_ListenerUnavailable surfaces the listener error.
func TestPick_ListenerUnavailable(t *testing.T) {
	t.Parallel()

	_, err := Pick(context.Background(), &PickOptions{
		Options: Options{Out: new(bytes.Buffer)},
		Source:  &repeatingSource{err: errors.New("no display session available")},
	})
	require.ErrorIs(t, err, click.ErrListenerUnavailable)
}

// TestWatch_RequiresAddress fails without a feed address.
func TestWatch_RequiresAddress(t *testing.T) {
	t.Parallel()

	err := Watch(context.Background(), &Options{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	require.ErrorIs(t, err, errNoStatusAddress)
}
