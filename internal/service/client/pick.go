package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/oshokin/autoclicker/internal/config"
	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/logger"
	"github.com/oshokin/autoclicker/internal/service/input"
)

// PickOptions configures coordinate capture.
type PickOptions struct {
	Options

	// Slot, when positive, stores the picked coordinate as the fixed target of
	// that 1-based slot in the settings file.
	Slot int
	// Source overrides the global hook; used by tests.
	Source input.Source
}

// Pick waits for the next pointer press and prints its coordinate.
func Pick(ctx context.Context, opts *PickOptions) (click.Coordinate, error) {
	ctx = logger.WithName(ctx, "pick")

	listener := input.NewListener(opts.Source, nil, nil)

	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)

	go func() {
		runErr <- listener.Run(listenCtx)
	}()

	_, _ = fmt.Fprintln(output(opts.Out), "Click anywhere to capture coordinates...")

	press, err := listener.CaptureNext(ctx)
	if errors.Is(err, input.ErrListenerClosed) {
		if lerr := <-runErr; lerr != nil {
			return click.Coordinate{}, lerr
		}
	}

	if err != nil {
		return click.Coordinate{}, err
	}

	_, _ = fmt.Fprintf(output(opts.Out), "%d %d\n", press.Coordinate.X, press.Coordinate.Y)

	if opts.Slot > 0 {
		if err := storeCoordinate(opts.ConfigPath, opts.Slot, press.Coordinate); err != nil {
			return click.Coordinate{}, err
		}

		logger.InfoKV(ctx, "Fixed target saved", "slot", opts.Slot, "coordinate", press.Coordinate.String())
	}

	return press.Coordinate, nil
}

// storeCoordinate pins slot to at in the settings file.
func storeCoordinate(path string, slot int, at click.Coordinate) error {
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if slot > len(cfg.Emitters) {
		return &click.ConfigError{Field: "slot", Value: slot, Reason: fmt.Sprintf("must be between 1 and %d", len(cfg.Emitters))}
	}

	e := &cfg.Emitters[slot-1]
	e.Mode = string(click.TargetFixed)
	e.X, e.Y = at.X, at.Y

	return config.Save(path, cfg)
}
