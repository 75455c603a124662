package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/logger"
)

// Config holds the daemon and client settings.
type Config struct {
	// ControlAddress is the gRPC address the daemon serves and clients dial.
	ControlAddress string `yaml:"control_addr"`
	// StatusAddress is the optional WebSocket status feed address.
	StatusAddress string `yaml:"status_addr,omitempty"`
	// Timeout is the duration for RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// PollInterval is how often armed emitters evaluate the clock.
	PollInterval time.Duration `yaml:"poll_interval"`
	// FireTolerance is the window after each interval multiple in which a click is due.
	FireTolerance time.Duration `yaml:"fire_tolerance"`
	// Slots is the number of emitter slots.
	Slots int `yaml:"slots"`
	// Emitters holds the per-slot defaults used by hotkeys.
	Emitters []Emitter `yaml:"emitters"`
	// Playback holds the replay defaults used by hotkeys.
	Playback Playback `yaml:"playback"`
	// Hotkeys maps actions to key names.
	Hotkeys Hotkeys `yaml:"hotkeys"`
}

// Emitter is the configuration of one slot.
type Emitter struct {
	// Interval is the period between clicks.
	Interval time.Duration `yaml:"interval"`
	// Mode is "pointer" or "fixed".
	Mode string `yaml:"mode"`
	// X is the fixed horizontal coordinate.
	X int `yaml:"x,omitempty"`
	// Y is the fixed vertical coordinate.
	Y int `yaml:"y,omitempty"`
}

// Playback holds replay settings.
type Playback struct {
	// RepeatCount is the number of passes over the recording.
	RepeatCount int `yaml:"repeat_count"`
	// Pause is waited between passes.
	Pause time.Duration `yaml:"pause"`
}

// Hotkeys names the global keys bound to actions.
type Hotkeys struct {
	// Disabled turns global hotkeys off.
	Disabled bool `yaml:"disabled,omitempty"`
	// Emitters toggles slot i with the key at index i.
	Emitters []string `yaml:"emitters"`
	// Record toggles recording.
	Record string `yaml:"record"`
	// Playback toggles playback.
	Playback string `yaml:"playback"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "autoclicker-settings.yaml"

	// DefaultControlAddress is where the daemon listens when nothing is configured.
	DefaultControlAddress = "127.0.0.1:50551"

	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second

	// DefaultPollInterval is the default emitter evaluation cadence.
	DefaultPollInterval = 10 * time.Millisecond

	// DefaultFireTolerance is the default due window.
	DefaultFireTolerance = 100 * time.Millisecond

	// DefaultSlots is the default number of emitter slots.
	DefaultSlots = 3

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

// defaultIntervals are the per-slot intervals used when none is configured.
var defaultIntervals = []time.Duration{5 * time.Second, 30 * time.Second, time.Minute}

// defaultEmitterKeys are the slot toggles used when none is configured.
var defaultEmitterKeys = []string{"f1", "f2", "f3"}

// errConfigIsNotSet is returned when a nil configuration is provided.
var errConfigIsNotSet = errors.New("configuration is not set")

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)

	// Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for omitted fields.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.ControlAddress == "" {
		settings.ControlAddress = DefaultControlAddress
	}

	if _, err := net.ResolveTCPAddr("tcp", settings.ControlAddress); err != nil {
		return &click.ConfigError{Field: "control_addr", Value: settings.ControlAddress, Reason: err.Error()}
	}

	if settings.StatusAddress != "" {
		if _, err := net.ResolveTCPAddr("tcp", settings.StatusAddress); err != nil {
			return &click.ConfigError{Field: "status_addr", Value: settings.StatusAddress, Reason: err.Error()}
		}
	}

	if settings.Timeout <= 0 {
		settings.Timeout = DefaultTimeout
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return &click.ConfigError{Field: "log_level", Value: settings.LogLevel, Reason: "must be debug, info, warn or error"}
	}

	if settings.PollInterval <= 0 {
		settings.PollInterval = DefaultPollInterval
	}

	if settings.FireTolerance <= 0 {
		settings.FireTolerance = DefaultFireTolerance
	}

	if err := validateSlots(settings); err != nil {
		return err
	}

	if settings.Playback.RepeatCount == 0 {
		settings.Playback.RepeatCount = 1
	}

	if err := settings.Playback.Config().Validate(); err != nil {
		return err
	}

	return validateHotkeys(settings)
}

// validateSlots applies slot defaults and checks every emitter.
func validateSlots(settings *Config) error {
	if settings.Slots < 0 {
		return &click.ConfigError{Field: "slots", Value: settings.Slots, Reason: "must not be negative"}
	}

	if settings.Slots == 0 {
		settings.Slots = max(DefaultSlots, len(settings.Emitters))
	}

	if len(settings.Emitters) > settings.Slots {
		return &click.ConfigError{
			Field:  "emitters",
			Value:  len(settings.Emitters),
			Reason: fmt.Sprintf("at most %d slots are configured", settings.Slots),
		}
	}

	for i := len(settings.Emitters); i < settings.Slots; i++ {
		settings.Emitters = append(settings.Emitters, Emitter{})
	}

	for i := range settings.Emitters {
		e := &settings.Emitters[i]

		if e.Interval == 0 {
			e.Interval = defaultIntervals[min(i, len(defaultIntervals)-1)]
		}

		if e.Mode == "" {
			e.Mode = string(click.TargetPointer)
		}

		if err := e.Config().Validate(); err != nil {
			return fmt.Errorf("emitter %d: %w", i+1, err)
		}
	}

	return nil
}

// validateHotkeys applies the default key names.
func validateHotkeys(settings *Config) error {
	h := &settings.Hotkeys

	if len(h.Emitters) > settings.Slots {
		return &click.ConfigError{Field: "hotkeys.emitters", Value: h.Emitters, Reason: "more keys than slots"}
	}

	if len(h.Emitters) == 0 {
		h.Emitters = append([]string(nil), defaultEmitterKeys[:min(settings.Slots, len(defaultEmitterKeys))]...)
	}

	if h.Record == "" {
		h.Record = "f4"
	}

	if h.Playback == "" {
		h.Playback = "f5"
	}

	return nil
}

// Config converts the slot settings to an emitter configuration.
func (e Emitter) Config() click.EmitterConfig {
	target := click.Target{Mode: click.TargetMode(e.Mode)}
	if target.IsFixed() {
		target.Coordinate = click.Coordinate{X: e.X, Y: e.Y}
	}

	return click.EmitterConfig{Interval: e.Interval, Target: target}
}

// Config converts the playback settings to a playback configuration.
func (p Playback) Config() click.PlaybackConfig {
	return click.PlaybackConfig{RepeatCount: p.RepeatCount, InterRepeatPause: p.Pause}
}
