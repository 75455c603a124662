package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/autoclicker/internal/config"
	"github.com/oshokin/autoclicker/internal/service/client"
	"github.com/oshokin/autoclicker/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// address overrides the control address from config.
	address string

	// rootCmd represents the base command.
	rootCmd = &cobra.Command{
		Use:   "autoclicker",
		Short: "Periodic and recorded mouse clicking.",
		Long: `Runs phase-locked periodic click emitters, records pointer presses and replays them.

The daemon ("autoclicker run") owns the emitters, the recorder and the player.
Every other command talks to a running daemon over gRPC at control_addr,
or at the address given with --address.`,
		SilenceUsage: true,
	}
)

// Execute runs the autoclicker CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGTERM or SIGINT.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// runAction executes one Control call with the shared flags.
func runAction(cmd *cobra.Command, action client.Action) error {
	ctx, stop := signalContext()
	defer stop()

	return client.Run(ctx, &client.Options{
		ConfigPath: configPath,
		Address:    address,
		Out:        cmd.OutOrStdout(),
	}, action)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&address, "address", "a", "", "daemon control address, overrides control_addr")
}
