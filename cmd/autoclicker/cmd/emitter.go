package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/autoclicker/internal/api/grpc/control"
	"github.com/oshokin/autoclicker/internal/domain/click"
	"github.com/oshokin/autoclicker/internal/service/common"
)

var (
	// interval of the emitter; zero uses the configured slot default.
	interval time.Duration
	// mode is "pointer" or "fixed".
	mode string
	// fixedX is the fixed horizontal coordinate.
	fixedX int
	// fixedY is the fixed vertical coordinate.
	fixedY int

	// emitterCmd groups emitter slot commands.
	emitterCmd = &cobra.Command{
		Use:   "emitter",
		Short: "Control periodic click emitters.",
	}

	// emitterStartCmd arms a slot.
	emitterStartCmd = &cobra.Command{
		Use:   "start <slot>",
		Short: "Arm an emitter slot.",
		Long: `Arms the 1-based emitter slot. Without --interval the slot uses its configured defaults.
All armed slots share one reference start, so their clicks stay phase-locked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}

			cfg, err := emitterConfig(cmd)
			if err != nil {
				return err
			}

			return runAction(cmd, func(ctx context.Context, c *common.Client) (*control.Status, error) {
				return c.StartEmitter(ctx, slot, cfg)
			})
		},
	}

	// emitterStopCmd disarms a slot.
	emitterStopCmd = &cobra.Command{
		Use:   "stop <slot>",
		Short: "Disarm an emitter slot.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := parseSlot(args[0])
			if err != nil {
				return err
			}

			return runAction(cmd, func(ctx context.Context, c *common.Client) (*control.Status, error) {
				return c.StopEmitter(ctx, slot)
			})
		},
	}

	// emitterStopAllCmd disarms every slot.
	emitterStopAllCmd = &cobra.Command{
		Use:   "stop-all",
		Short: "Disarm every emitter slot.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAction(cmd, func(ctx context.Context, c *common.Client) (*control.Status, error) {
				return c.StopAll(ctx)
			})
		},
	}
)

// parseSlot converts a 1-based slot argument.
func parseSlot(arg string) (int, error) {
	slot, err := strconv.Atoi(arg)
	if err != nil || slot < 1 {
		return 0, fmt.Errorf("slot must be a positive number, got %q", arg)
	}

	return slot, nil
}

// emitterConfig builds the config from flags; nil means the slot default.
func emitterConfig(cmd *cobra.Command) (*click.EmitterConfig, error) {
	if !cmd.Flags().Changed("interval") {
		return nil, nil //nolint:nilnil // nil selects the configured slot default.
	}

	target := click.FollowPointer()

	switch click.TargetMode(mode) {
	case click.TargetPointer:
	case click.TargetFixed:
		target = click.FixedAt(click.Coordinate{X: fixedX, Y: fixedY})
	default:
		return nil, &click.ConfigError{Field: "mode", Value: mode, Reason: `must be "pointer" or "fixed"`}
	}

	cfg := &click.EmitterConfig{Interval: interval, Target: target}

	return cfg, cfg.Validate()
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	emitterStartCmd.Flags().DurationVarP(&interval, "interval", "i", 0, "click interval, e.g. 5s")
	emitterStartCmd.Flags().StringVarP(&mode, "mode", "m", string(click.TargetPointer), `"pointer" or "fixed"`)
	emitterStartCmd.Flags().IntVar(&fixedX, "x", 0, "fixed horizontal coordinate")
	emitterStartCmd.Flags().IntVar(&fixedY, "y", 0, "fixed vertical coordinate")

	emitterCmd.AddCommand(emitterStartCmd, emitterStopCmd, emitterStopAllCmd)
	rootCmd.AddCommand(emitterCmd)
}
