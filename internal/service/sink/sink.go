package sink

import (
	"context"

	"github.com/oshokin/autoclicker/internal/domain/click"
)

// Sink performs a press-release at a coordinate.
// A failure is reported as *click.SinkError.
type Sink interface {
	Click(ctx context.Context, at click.Coordinate, button click.Button) error
}

// Pointer answers "where is the pointer right now".
type Pointer interface {
	Position(ctx context.Context) (click.Coordinate, error)
}

// FixedPointer always reports the same position. Useful in tests and headless runs.
type FixedPointer click.Coordinate

// Position returns the fixed coordinate.
func (p FixedPointer) Position(context.Context) (click.Coordinate, error) {
	return click.Coordinate(p), nil
}
