package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/nutrition-lens/internal/report"
)

// parse: analyze label text that was recognized elsewhere.
func parseCmd(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse [FILE|-]",
		Short: "Analyze recognized label text from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatJSON, formatMarkdown, formatHTML); err != nil {
				return err
			}

			var (
				text []byte
				err  error
			)
			source := "stdin"
			if len(args) == 0 || args[0] == "-" {
				text, err = io.ReadAll(cmd.InOrStdin())
			} else {
				source = args[0]
				text, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("failed to read label text: %w", err)
			}

			w, err := root.openWire(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			result := w.Pipeline.ScanText(string(text))
			return writeResult(cmd.OutOrStdout(), format, report.Meta{Source: source}, scanOutput{ScanResult: result})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json, markdown or html")
	return cmd
}
