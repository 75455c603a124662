package clicker

import (
	"context"
	"fmt"

	"github.com/oshokin/autoclicker/internal/logger"
)

// BindHotkeys attaches the configured keys to slot, recording and playback toggles.
func (d *Daemon) BindHotkeys() error {
	if d.listener == nil || d.settings.Hotkeys.Disabled {
		return nil
	}

	for i, key := range d.settings.Hotkeys.Emitters {
		if err := d.listener.BindHotkey(key, func(ctx context.Context) { d.toggleSlot(ctx, i) }); err != nil {
			return fmt.Errorf("bind slot %d hotkey: %w", i+1, err)
		}
	}

	if err := d.listener.BindHotkey(d.settings.Hotkeys.Record, d.toggleRecording); err != nil {
		return fmt.Errorf("bind record hotkey: %w", err)
	}

	if err := d.listener.BindHotkey(d.settings.Hotkeys.Playback, d.togglePlayback); err != nil {
		return fmt.Errorf("bind playback hotkey: %w", err)
	}

	return nil
}

// toggleSlot flips slot i using its configured default.
func (d *Daemon) toggleSlot(ctx context.Context, i int) {
	if _, err := d.session.ToggleSlot(ctx, i, d.settings.Emitters[i].Config()); err != nil {
		logger.WarnKV(ctx, "Slot hotkey failed", "slot", i+1, "error", err)
	}
}

// toggleRecording starts or stops the recorder.
func (d *Daemon) toggleRecording(ctx context.Context) {
	if d.recorder.Armed() {
		d.StopRecording(ctx)

		return
	}

	if _, err := d.StartRecording(ctx); err != nil {
		logger.WarnKV(ctx, "Record hotkey failed", "error", err)
	}
}

// togglePlayback starts playback with the configured default or stops it.
func (d *Daemon) togglePlayback(ctx context.Context) {
	if d.player.Active() {
		d.StopPlayback(ctx)

		return
	}

	if _, err := d.StartPlayback(ctx, nil); err != nil {
		logger.WarnKV(ctx, "Playback hotkey failed", "error", err)
	}
}
