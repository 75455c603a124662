package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/autoclicker/internal/service/clicker"
)

var (
	// statusAddress overrides status_addr for the daemon.
	statusAddress string
	// noHotkeys disables global hotkeys.
	noHotkeys bool

	// runCmd starts the daemon.
	runCmd = &cobra.Command{
		Use:   "run [listen-address]",
		Short: "Run the autoclicker daemon.",
		Long: `Starts the daemon that owns the emitter slots, the recorder and the player.

The daemon serves the Control gRPC API on control_addr (or the argument),
optionally streams status events over WebSocket on status_addr,
and binds the global hotkeys from the configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return clicker.Run(ctx, &clicker.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StatusAddress: statusAddress,
				NoHotkeys:     noHotkeys,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	runCmd.Flags().StringVarP(&statusAddress, "status-address", "s", "", "WebSocket status feed address, overrides status_addr")
	runCmd.Flags().BoolVar(&noHotkeys, "no-hotkeys", false, "do not bind global hotkeys")

	rootCmd.AddCommand(runCmd)
}
