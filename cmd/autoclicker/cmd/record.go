package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/oshokin/autoclicker/internal/api/grpc/control"
	"github.com/oshokin/autoclicker/internal/service/common"
)

var (
	// recordCmd groups recorder commands.
	recordCmd = &cobra.Command{
		Use:   "record",
		Short: "Record physical pointer presses.",
	}

	// recordStartCmd arms the recorder.
	recordStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Clear the recording and start capturing presses.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAction(cmd, func(ctx context.Context, c *common.Client) (*control.Status, error) {
				return c.StartRecording(ctx)
			})
		},
	}

	// recordStopCmd disarms the recorder.
	recordStopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop capturing presses and keep the recording.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAction(cmd, func(ctx context.Context, c *common.Client) (*control.Status, error) {
				return c.StopRecording(ctx)
			})
		},
	}

	// recordClearCmd drops the recording.
	recordClearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Drop the recorded sequence.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAction(cmd, func(ctx context.Context, c *common.Client) (*control.Status, error) {
				return c.ClearRecording(ctx)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	recordCmd.AddCommand(recordStartCmd, recordStopCmd, recordClearCmd)
	rootCmd.AddCommand(recordCmd)
}
