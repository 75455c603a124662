package sink

import (
	"context"
	"errors"
	"os"
	"runtime"
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/oshokin/autoclicker/internal/domain/click"
)

// errNoDisplay is returned when there is no graphical session to inject into.
var errNoDisplay = errors.New("no display session available")

// Robot clicks through robotgo. Calls are serialized because a click is a
// move followed by a press and a release, and interleaving two of them would
// release at the wrong place.
type Robot struct {
	// mu serializes move+press+release triples.
	mu sync.Mutex
}

// NewRobot returns a robotgo-backed sink.
func NewRobot() *Robot {
	return new(Robot)
}

// Click moves the pointer to at and presses then releases button.
func (r *Robot) Click(ctx context.Context, at click.Coordinate, button click.Button) error {
	if err := ctx.Err(); err != nil {
		return &click.SinkError{Coordinate: at, Err: err}
	}

	if err := DisplayAvailable(); err != nil {
		return &click.SinkError{Coordinate: at, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	robotgo.Move(at.X, at.Y)

	if err := robotgo.Toggle(button.String()); err != nil {
		return &click.SinkError{Coordinate: at, Err: err}
	}

	if err := robotgo.Toggle(button.String(), "up"); err != nil {
		return &click.SinkError{Coordinate: at, Err: err}
	}

	return nil
}

// RobotPointer reads the live pointer position through robotgo.
type RobotPointer struct{}

// Position returns robotgo.Location().
func (RobotPointer) Position(context.Context) (click.Coordinate, error) {
	if err := DisplayAvailable(); err != nil {
		return click.Coordinate{}, err
	}

	x, y := robotgo.Location()

	return click.Coordinate{X: x, Y: y}, nil
}

// DisplayAvailable reports whether a graphical session is reachable.
// Only X11/Wayland hosts can lack one; macOS and Windows always have a desktop.
func DisplayAvailable() error {
	if runtime.GOOS != "linux" && runtime.GOOS != "freebsd" {
		return nil
	}

	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return errNoDisplay
	}

	return nil
}
