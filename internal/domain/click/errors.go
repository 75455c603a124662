package click

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every *ConfigError.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrSink is matched by every *SinkError.
	ErrSink = errors.New("click simulation failed")
	// ErrListenerUnavailable is matched by every *ListenerError.
	ErrListenerUnavailable = errors.New("input listener unavailable")
	// ErrConflict is wrapped by errors refusing an operation in the current state.
	ErrConflict = errors.New("operation conflicts with current state")
)

// ConfigError reports a configuration value rejected before arming.
type ConfigError struct {
	// Field names the offending setting.
	Field string
	// Value is the rejected value.
	Value any
	// Reason explains the rule that was violated.
	Reason string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidConfig) true.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// SinkError reports that the platform refused a synthetic click.
type SinkError struct {
	// Coordinate is where the click was attempted.
	Coordinate Coordinate
	// Err is the underlying platform error.
	Err error
}

// Error implements error.
func (e *SinkError) Error() string {
	return fmt.Sprintf("click at %s: %v", e.Coordinate, e.Err)
}

// Unwrap returns the platform error.
func (e *SinkError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSink) true.
func (e *SinkError) Is(target error) bool {
	return target == ErrSink
}

// ListenerError reports that global input listening is not possible.
type ListenerError struct {
	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *ListenerError) Error() string {
	return fmt.Sprintf("input listener: %v", e.Err)
}

// Unwrap returns the cause.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrListenerUnavailable) true.
func (e *ListenerError) Is(target error) bool {
	return target == ErrListenerUnavailable
}
