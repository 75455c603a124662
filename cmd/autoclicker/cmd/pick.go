package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/autoclicker/internal/service/client"
)

var (
	// pickSlot stores the picked coordinate into this slot when positive.
	pickSlot int

	// pickCmd captures a coordinate locally.
	pickCmd = &cobra.Command{
		Use:   "pick",
		Short: "Capture the coordinate of the next click.",
		Long: `Waits for the next physical pointer press and prints its coordinate.
With --slot the coordinate becomes the fixed target of that slot in the configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			_, err := client.Pick(ctx, &client.PickOptions{
				Options: client.Options{ConfigPath: configPath, Out: cmd.OutOrStdout()},
				Slot:    pickSlot,
			})

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	pickCmd.Flags().IntVar(&pickSlot, "slot", 0, "1-based slot to pin to the picked coordinate")

	rootCmd.AddCommand(pickCmd)
}
