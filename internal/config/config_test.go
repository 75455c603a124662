package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/autoclicker/internal/domain/click"
)

// TestValidate checks defaults and rejected values.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Empty settings get every default.
	settings := new(Config)
	require.NoError(t, Validate(settings))
	require.Equal(t, DefaultControlAddress, settings.ControlAddress)
	require.Equal(t, DefaultTimeout, settings.Timeout)
	require.Equal(t, DefaultPollInterval, settings.PollInterval)
	require.Equal(t, DefaultFireTolerance, settings.FireTolerance)
	require.Equal(t, DefaultSlots, settings.Slots)
	require.Len(t, settings.Emitters, DefaultSlots)
	require.Equal(t, 30*time.Second, settings.Emitters[1].Interval)
	require.Equal(t, []string{"f1", "f2", "f3"}, settings.Hotkeys.Emitters)
	require.Equal(t, "f4", settings.Hotkeys.Record)
	require.Equal(t, 1, settings.Playback.RepeatCount)

	// Bad socket.
	settings = &Config{ControlAddress: "bad:address"}
	require.ErrorIs(t, Validate(settings), click.ErrInvalidConfig)

	// Unknown level.
	settings = &Config{LogLevel: "loud"}
	require.ErrorIs(t, Validate(settings), click.ErrInvalidConfig)

	// Negative interval.
	settings = &Config{Emitters: []Emitter{{Interval: -time.Second}}}
	require.ErrorIs(t, Validate(settings), click.ErrInvalidConfig)

	// Unknown mode.
	settings = &Config{Emitters: []Emitter{{Mode: "sideways"}}}
	require.ErrorIs(t, Validate(settings), click.ErrInvalidConfig)

	// Too many emitters for the slots.
	settings = &Config{Slots: 1, Emitters: []Emitter{{}, {}}}
	require.ErrorIs(t, Validate(settings), click.ErrInvalidConfig)

	// Negative pause.
	settings = &Config{Playback: Playback{Pause: -time.Second}}
	require.ErrorIs(t, Validate(settings), click.ErrInvalidConfig)

	require.Error(t, Validate(nil))
}

// TestEmitter_Config converts fixed and pointer slots.
func TestEmitter_Config(t *testing.T) {
	t.Parallel()

	fixed := Emitter{Interval: 2 * time.Second, Mode: "fixed", X: 10, Y: 20}.Config()
	require.True(t, fixed.Target.IsFixed())
	require.Equal(t, click.Coordinate{X: 10, Y: 20}, fixed.Target.Coordinate)

	pointer := Emitter{Interval: time.Second, Mode: "pointer", X: 10}.Config()
	require.False(t, pointer.Target.IsFixed())
	require.Equal(t, click.Coordinate{}, pointer.Target.Coordinate)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := &Config{
		ControlAddress: "127.0.0.1:50051",
		StatusAddress:  "127.0.0.1:50052",
		Emitters: []Emitter{
			{Interval: 2 * time.Second, Mode: "fixed", X: 100, Y: 200},
		},
		Playback: Playback{RepeatCount: 3, Pause: 1500 * time.Millisecond},
	}

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings.ControlAddress, loaded.ControlAddress)
	require.Equal(t, settings.StatusAddress, loaded.StatusAddress)
	require.Equal(t, settings.Emitters, loaded.Emitters)
	require.Equal(t, settings.Playback, loaded.Playback)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoad_ParsesDurations reads human durations from YAML.
func TestLoad_ParsesDurations(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := `
slots: 2
emitters:
  - interval: 2s
  - interval: 6s
    mode: fixed
    x: 5
    y: 7
playback:
  repeat_count: 2
  pause: 200ms
`
	require.NoError(t, os.WriteFile(path, []byte(contents), DefaultFilePermissions))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Slots)
	require.Equal(t, 6*time.Second, cfg.Emitters[1].Interval)
	require.Equal(t, click.FixedAt(click.Coordinate{X: 5, Y: 7}), cfg.Emitters[1].Config().Target)
	require.Equal(t, 200*time.Millisecond, cfg.Playback.Pause)
	require.Equal(t, []string{"f1", "f2"}, cfg.Hotkeys.Emitters)
}

// TestLoadOrDefault falls back only for a missing file.
func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := LoadOrDefault(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultControlAddress, cfg.ControlAddress)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("slots: [nope"), DefaultFilePermissions))

	_, err = LoadOrDefault(broken)
	require.Error(t, err)
}
