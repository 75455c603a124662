package client

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/autoclicker/internal/api/grpc/control"
	"github.com/oshokin/autoclicker/internal/config"
	"github.com/oshokin/autoclicker/internal/logger"
	"github.com/oshokin/autoclicker/internal/service/common"
)

// Options configures a client command.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// Address overrides the control address from config when specified.
	Address string
	// Out receives the command output; nil means stdout.
	Out io.Writer
}

// Action is one Control call.
type Action func(ctx context.Context, c *common.Client) (*control.Status, error)

// Run dials the daemon, performs action and prints the resulting status.
func Run(ctx context.Context, opts *Options, action Action) error {
	ctx = logger.WithName(ctx, "autoclicker-client")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	address := cfg.ControlAddress
	if opts.Address != "" {
		address = opts.Address
	}

	client, err := common.Dial(ctx, address, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Calling daemon", "address", address)

	st, err := action(ctx, client)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(output(opts.Out), FormatStatus(st))

	return err
}

// output returns w or stdout.
func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}

	return w
}
