package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/autoclicker/internal/api/grpc/control"
	"github.com/oshokin/autoclicker/internal/service/common"
)

// statusCmd prints the daemon snapshot.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show emitter, recorder and playback state.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runAction(cmd, func(ctx context.Context, c *common.Client) (*control.Status, error) {
			return c.GetStatus(ctx)
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(statusCmd)
}
