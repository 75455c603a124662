package clicker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oshokin/autoclicker/internal/api/grpc/control"
	"github.com/oshokin/autoclicker/internal/clock"
	"github.com/oshokin/autoclicker/internal/config"
	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/logger"
	"github.com/oshokin/autoclicker/internal/service/input"
	"github.com/oshokin/autoclicker/internal/service/player"
	"github.com/oshokin/autoclicker/internal/service/recorder"
	"github.com/oshokin/autoclicker/internal/service/session"
	"github.com/oshokin/autoclicker/internal/service/sink"
	"github.com/oshokin/autoclicker/internal/service/status"
)

// Deps are the collaborators a Daemon is built from.
type Deps struct {
	// Settings is a validated configuration.
	Settings *config.Config
	// Sink performs clicks for emitters and playback.
	Sink sink.Sink
	// Pointer answers live pointer queries.
	Pointer sink.Pointer
	// Publisher receives every status event.
	Publisher status.Publisher
	// Listener feeds pointer presses and hotkeys; nil disables both.
	Listener *input.Listener
	// Clock is the time source; nil means the system clock.
	Clock clock.Clock
}

var errNoSettings = errors.New("settings are required")

// Daemon owns the timing core and implements control.Service.
type Daemon struct {
	settings  *config.Config
	publisher status.Publisher
	session   *session.Controller
	recorder  *recorder.Recorder
	player    *player.Player
	listener  *input.Listener
	presses   *input.Subscription

	// playMu serializes lease handoff between the recorder and the player.
	playMu sync.Mutex
}

var _ control.Service = (*Daemon)(nil)

// New builds a daemon from deps.
func New(deps Deps) (*Daemon, error) {
	if deps.Settings == nil {
		return nil, errNoSettings
	}

	publisher := status.OrDiscard(deps.Publisher)

	controller, err := session.New(session.Options{
		Slots:        deps.Settings.Slots,
		Sink:         deps.Sink,
		Pointer:      deps.Pointer,
		Publisher:    publisher,
		Clock:        deps.Clock,
		PollInterval: deps.Settings.PollInterval,
		Tolerance:    deps.Settings.FireTolerance,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	p, err := player.New(deps.Sink, publisher, deps.Clock)
	if err != nil {
		return nil, fmt.Errorf("create player: %w", err)
	}

	d := &Daemon{
		settings:  deps.Settings,
		publisher: publisher,
		session:   controller,
		recorder:  recorder.New(deps.Clock, publisher),
		player:    p,
		listener:  deps.Listener,
	}

	if d.listener != nil {
		d.presses = d.listener.Subscribe(d.recorder.Handle)
	}

	return d, nil
}

// StartEmitter arms a 0-based slot. A nil cfg uses the slot's configured default.
func (d *Daemon) StartEmitter(ctx context.Context, slot int, cfg *click.EmitterConfig) (*control.Status, error) {
	resolved, err := d.emitterConfig(slot, cfg)
	if err != nil {
		return nil, err
	}

	if err := d.session.StartSlot(ctx, slot, resolved); err != nil {
		return nil, err
	}

	return d.snapshot(fmt.Sprintf("Slot %d armed: every %s, %s", slot+1, resolved.Interval, resolved.Target)), nil
}

// StopEmitter disarms a 0-based slot.
func (d *Daemon) StopEmitter(ctx context.Context, slot int) (*control.Status, error) {
	if err := d.session.StopSlot(ctx, slot); err != nil {
		return nil, err
	}

	return d.snapshot(fmt.Sprintf("Slot %d stopped", slot+1)), nil
}

// StopAll disarms every slot.
func (d *Daemon) StopAll(ctx context.Context) *control.Status {
	d.session.StopAll(ctx)

	return d.snapshot("All slots stopped")
}

// StartRecording arms the recorder.
func (d *Daemon) StartRecording(ctx context.Context) (*control.Status, error) {
	if d.listener == nil {
		return nil, fmt.Errorf("%w: global input listening is disabled", click.ErrConflict)
	}

	if err := d.recorder.Start(ctx); err != nil {
		return nil, err
	}

	return d.snapshot("Recording started"), nil
}

// StopRecording disarms the recorder.
func (d *Daemon) StopRecording(ctx context.Context) *control.Status {
	n := d.recorder.Stop(ctx)

	return d.snapshot(fmt.Sprintf("Recording stopped: %d events", n))
}

// ClearRecording empties the recorded sequence.
func (d *Daemon) ClearRecording(ctx context.Context) (*control.Status, error) {
	if err := d.recorder.Clear(ctx); err != nil {
		return nil, err
	}

	return d.snapshot("Recording cleared"), nil
}

// StartPlayback replays the recorded sequence. A nil cfg uses the configured default.
// The sequence stays leased, so it cannot be re-recorded or cleared, until the run ends.
func (d *Daemon) StartPlayback(ctx context.Context, cfg *click.PlaybackConfig) (*control.Status, error) {
	resolved := d.settings.Playback.Config()
	if cfg != nil {
		resolved = *cfg
	}

	if err := resolved.Validate(); err != nil {
		return nil, err
	}

	d.playMu.Lock()
	defer d.playMu.Unlock()

	seq, release, err := d.recorder.Lease()
	if err != nil {
		return nil, err
	}

	run, err := d.player.Play(ctx, seq, resolved)
	if err != nil {
		release()

		return nil, err
	}

	go func() {
		<-run.Done()
		release()
	}()

	return d.snapshot(fmt.Sprintf("Playback %s started", run.ID())), nil
}

// StopPlayback cancels the active playback and waits for it to end.
func (d *Daemon) StopPlayback(_ context.Context) *control.Status {
	d.player.Stop()

	return d.snapshot("Playback stopped")
}

// GetStatus returns a snapshot of the daemon.
func (d *Daemon) GetStatus(_ context.Context) *control.Status {
	return d.snapshot("")
}

// Shutdown stops every emitter, the playback and the recording.
func (d *Daemon) Shutdown(ctx context.Context) {
	d.session.StopAll(ctx)
	d.player.Stop()
	d.recorder.Stop(ctx)

	if d.presses != nil {
		d.presses.Cancel()
	}

	logger.Info(ctx, "Timing core stopped")
}

// emitterConfig resolves an optional configuration against the settings.
func (d *Daemon) emitterConfig(slot int, cfg *click.EmitterConfig) (click.EmitterConfig, error) {
	if cfg != nil {
		return *cfg, nil
	}

	if slot < 0 || slot >= len(d.settings.Emitters) {
		return click.EmitterConfig{}, &click.ConfigError{
			Field:  "slot",
			Value:  slot + 1,
			Reason: fmt.Sprintf("must be between 1 and %d", d.session.Len()),
		}
	}

	return d.settings.Emitters[slot].Config(), nil
}

// snapshot collects the current state of every component.
func (d *Daemon) snapshot(message string) *control.Status {
	st := &control.Status{
		Message:        message,
		Recording:      d.recorder.Armed(),
		RecordedEvents: d.recorder.Len(),
	}

	if ref, ok := d.session.Reference(); ok {
		st.ReferenceStart = ref
	}

	for _, s := range d.session.Slots() {
		st.Slots = append(st.Slots, control.SlotStatus{
			Slot:     s.Slot + 1,
			Armed:    s.Armed,
			Interval: s.Config.Interval,
			Target:   s.Config.Target,
			Fires:    s.Fires,
			Failures: s.Failures,
		})
	}

	if run, ok := d.player.Current(); ok {
		st.Playback = &control.PlaybackStatus{
			RunID:       run.ID,
			Repeat:      run.Repeat,
			RepeatCount: run.Config.RepeatCount,
			Step:        run.Step,
			Length:      run.Length,
			Pause:       run.Config.InterRepeatPause,
		}
	}

	return st
}
