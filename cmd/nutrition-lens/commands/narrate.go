package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// narrate: scan a label and speak its nutrition facts.
func narrateCmd(root *rootOptions) *cobra.Command {
	var audioOut string

	cmd := &cobra.Command{
		Use:   "narrate IMAGE",
		Short: "Speak the nutrition facts of a label photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := root.openWire(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			data, err := w.Images.Load(args[0])
			if err != nil {
				return err
			}
			result, err := w.Pipeline.Scan(cmd.Context(), data)
			if err != nil {
				return fmt.Errorf("failed to scan %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), speak(cmd, w, result, audioOut))
			return nil
		},
	}
	cmd.Flags().StringVar(&audioOut, "audio-out", "", "audio file to write (default nutrition.mp3)")
	return cmd
}
