package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ironsheep/nutrition-lens/internal/app"
	"github.com/ironsheep/nutrition-lens/internal/imaging"
	"github.com/ironsheep/nutrition-lens/internal/pipeline"
	"github.com/ironsheep/nutrition-lens/internal/report"
)

// Output formats accepted by --format.
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

// audioBaseName names the --narrate output when --audio-out is not given; the
// extension follows the configured audio encoding.
const audioBaseName = "nutrition"

type scanOutput struct {
	*pipeline.ScanResult
	ID        string `json:"id,omitempty"`
	Narration string `json:"narration,omitempty"`
}

func scanCmd(root *rootOptions) *cobra.Command {
	var (
		format       string
		region       string
		noPreprocess bool
		save         bool
		narrate      bool
		audioOut     string
	)

	cmd := &cobra.Command{
		Use:   "scan IMAGE",
		Short: "Scan a nutrition label photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format, formatJSON, formatMarkdown, formatHTML); err != nil {
				return err
			}
			var opts []pipeline.ScanOption
			if region != "" {
				r, err := imaging.ParseRegion(region)
				if err != nil {
					return err
				}
				opts = append(opts, pipeline.WithRegion(r))
			}
			if noPreprocess {
				opts = append(opts, pipeline.WithPreprocess(false))
			}

			w, err := root.openWire(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			path := args[0]
			data, err := w.Images.Load(path)
			if err != nil {
				return err
			}
			result, err := w.Pipeline.Scan(cmd.Context(), data, opts...)
			if err != nil {
				return fmt.Errorf("failed to scan %s: %w", path, err)
			}

			out := scanOutput{ScanResult: result}
			meta := report.Meta{Source: filepath.Base(path), ScannedAt: time.Now().UTC()}
			if save {
				store, err := w.RequireHistory(cmd.Context())
				if err != nil {
					return err
				}
				rec, dup, err := store.SaveOnce(cmd.Context(), filepath.Base(path), data, result)
				if err != nil {
					return err
				}
				if dup {
					fmt.Fprintf(cmd.ErrOrStderr(), "already saved as %s\n", rec.ID)
				}
				out.ID, meta.ID, meta.ScannedAt = rec.ID, rec.ID, rec.CreatedAt
			}
			if narrate {
				out.Narration = speak(cmd, w, result, audioOut)
			}

			return writeResult(cmd.OutOrStdout(), format, meta, out)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json, markdown or html")
	cmd.Flags().StringVar(&region, "region", "", "crop to x1,y1,x2,y2 before OCR")
	cmd.Flags().BoolVar(&noPreprocess, "no-preprocess", false, "send the image to OCR unmodified")
	cmd.Flags().BoolVar(&save, "save", false, "store the result in scan history")
	cmd.Flags().BoolVar(&narrate, "narrate", false, "also synthesize the spoken summary")
	cmd.Flags().StringVar(&audioOut, "audio-out", "", "audio file written by --narrate (default nutrition.mp3)")
	return cmd
}

// speak narrates result and writes any audio to audioOut. It returns the narration
// text; problems are reported on stderr since narration never fails a scan.
func speak(cmd *cobra.Command, w *app.Wire, result *pipeline.ScanResult, audioOut string) string {
	if audioOut == "" {
		audioOut = audioBaseName + w.Config.Voice().AudioEncoding.Extension()
	}
	stderr := cmd.ErrOrStderr()
	if !w.Pipeline.HasSynthesizer() {
		fmt.Fprintf(stderr, "speech synthesis is not configured; set %s to write %s\n", app.EnvGoogleAPIKey, audioOut)
		return w.Pipeline.Narrate(cmd.Context(), result.Nutrition).Text
	}

	n := w.Pipeline.Narrate(cmd.Context(), result.Nutrition)
	switch {
	case n.Warning != "":
		fmt.Fprintf(stderr, "warning: %s\n", n.Warning)
	case len(n.Audio) == 0:
		fmt.Fprintln(stderr, "warning: speech synthesis returned no audio")
	default:
		if err := os.WriteFile(audioOut, n.Audio, 0o644); err != nil {
			fmt.Fprintf(stderr, "warning: failed to write audio: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "audio written to %s\n", audioOut)
		}
	}
	return n.Text
}

func writeResult(out io.Writer, format string, meta report.Meta, res scanOutput) error {
	switch format {
	case formatMarkdown:
		_, err := io.WriteString(out, report.Markdown(meta, res.ScanResult))
		return err
	case formatHTML:
		page, err := report.HTML(meta, res.ScanResult)
		if err != nil {
			return err
		}
		_, err = out.Write(page)
		return err
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
}

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %v)", format, allowed)
}
