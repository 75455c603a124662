package input

import (
	hook "github.com/robotn/gohook"

	"github.com/oshokin/autoclicker/internal/service/sink"
)

// Source produces raw global input events.
type Source interface {
	// Start begins listening. The returned channel is closed or abandoned after Stop.
	Start() (<-chan hook.Event, error)
	// Stop ends listening.
	Stop()
}

// HookSource listens through gohook.
type HookSource struct{}

// Start starts the global hook when a display session exists.
func (HookSource) Start() (<-chan hook.Event, error) {
	if err := sink.DisplayAvailable(); err != nil {
		return nil, err
	}

	return hook.Start(), nil
}

// Stop ends the global hook.
func (HookSource) Stop() {
	hook.End()
}
