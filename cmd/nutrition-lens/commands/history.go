package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/nutrition-lens/internal/history"
)

// history: browse the scans saved with --save.
func historyCmd(root *rootOptions) *cobra.Command {
	var (
		limit    int
		show     string
		deleteID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show or delete saved scans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if show != "" && deleteID != "" {
				return fmt.Errorf("--show and --delete are mutually exclusive")
			}

			w, err := root.openWire(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			store, err := w.RequireHistory(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			switch {
			case show != "":
				rec, err := store.Get(cmd.Context(), show)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)

			case deleteID != "":
				if err := store.Delete(cmd.Context(), deleteID); err != nil {
					return err
				}
				fmt.Fprintf(out, "deleted %s\n", deleteID)
				return nil
			}

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(out, "no saved scans")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSCANNED\tSOURCE\tVERDICT\tNUTRIENTS\tALLERGENS")
			for _, s := range history.Summaries(records) {
				allergens := strings.Join(s.Allergens, ", ")
				if allergens == "" {
					allergens = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					s.ID, s.CreatedAt.Local().Format(time.DateTime), s.Source, s.Verdict, s.Nutrients, allergens)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", history.DefaultListLimit, "number of scans to list")
	cmd.Flags().StringVar(&show, "show", "", "print the full record with this ID")
	cmd.Flags().StringVar(&deleteID, "delete", "", "delete the record with this ID")
	return cmd
}
