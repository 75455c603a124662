package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/autoclicker/internal/api/ws"
	"github.com/oshokin/autoclicker/internal/config"
)

// errNoStatusAddress is returned when neither config nor flags name a feed.
var errNoStatusAddress = errors.New("status_addr is not configured")

// Watch prints status feed messages until ctx is done.
func Watch(ctx context.Context, opts *Options) error {
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	address := cfg.StatusAddress
	if opts.Address != "" {
		address = opts.Address
	}

	if address == "" {
		return errNoStatusAddress
	}

	out := output(opts.Out)

	return ws.Watch(ctx, ws.FeedURL(address), func(m ws.Message) {
		_, _ = fmt.Fprintf(out, "[%s] %s\n", m.Time.Local().Format(time.TimeOnly), m.Message)
	})
}
