package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/autoclicker/internal/service/client"
)

var (
	// feedAddress overrides status_addr.
	feedAddress string

	// watchCmd follows the status feed.
	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print daemon status events as they happen.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Watch(ctx, &client.Options{
				ConfigPath: configPath,
				Address:    feedAddress,
				Out:        cmd.OutOrStdout(),
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	watchCmd.Flags().StringVarP(&feedAddress, "status-address", "s", "", "status feed address, overrides status_addr")

	rootCmd.AddCommand(watchCmd)
}
