package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/autoclicker/internal/api/grpc/control"
	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/service/common"
)

var (
	// repeatCount is the number of passes.
	repeatCount int
	// pause is waited between passes.
	pause time.Duration

	// playCmd groups playback commands.
	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Replay the recorded sequence.",
	}

	// playStartCmd starts a run.
	playStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Replay the recording with its original timing.",
		Long: `Replays the recorded sequence with the original gaps between presses.
Without --repeat and --pause the configured playback defaults are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cfg *click.PlaybackConfig

			if cmd.Flags().Changed("repeat") || cmd.Flags().Changed("pause") {
				cfg = &click.PlaybackConfig{RepeatCount: repeatCount, InterRepeatPause: pause}
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			return runAction(cmd, func(ctx context.Context, c *common.Client) (*control.Status, error) {
				return c.StartPlayback(ctx, cfg)
			})
		},
	}

	// playStopCmd cancels the active run.
	playStopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop the active playback.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAction(cmd, func(ctx context.Context, c *common.Client) (*control.Status, error) {
				return c.StopPlayback(ctx)
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	playStartCmd.Flags().IntVarP(&repeatCount, "repeat", "r", 1, "number of passes over the recording")
	playStartCmd.Flags().DurationVarP(&pause, "pause", "p", 0, "pause between passes, e.g. 2s")

	playCmd.AddCommand(playStartCmd, playStopCmd)
	rootCmd.AddCommand(playCmd)
}
