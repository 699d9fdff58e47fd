package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ironsheep/nutrition-lens/internal/app"
)

// BuildInfo carries the values stamped into the binary by ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

type rootOptions struct {
	configPath    string
	ocrEngine     string
	apiKey        string
	historyDB     string
	allergensFile string
	debug         bool

	cfg app.Config
}

// Execute runs the CLI until the command finishes or the process is interrupted.
func Execute(info BuildInfo) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return newRootCmd(info).ExecuteContext(ctx)
}

func newRootCmd(info BuildInfo) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "nutrition-lens",
		Short:        "Read nutrition labels from photos",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve()
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "JSON config file (default $"+app.EnvConfigFile+")")
	root.PersistentFlags().StringVar(&opts.ocrEngine, "ocr-engine", "", "OCR engine: tesseract, vision or static")
	root.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "Google Cloud API key for Vision OCR and Text-to-Speech")
	root.PersistentFlags().StringVar(&opts.historyDB, "history-db", "", "SQLite file for scan history, or \"off\"")
	root.PersistentFlags().StringVar(&opts.allergensFile, "allergens", "", "JSON file of extra allergen terms")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log each pipeline stage to stderr")

	root.AddCommand(
		scanCmd(opts),
		parseCmd(opts),
		narrateCmd(opts),
		historyCmd(opts),
		mcpCmd(opts, info),
		serveCmd(opts),
		versionCmd(info),
	)
	return root
}

// resolve layers the config file, the environment and the persistent flags.
func (o *rootOptions) resolve() error {
	path := o.configPath
	if path == "" {
		path = os.Getenv(app.EnvConfigFile)
	}
	cfg, err := app.LoadConfig(path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv(os.LookupEnv)

	if o.ocrEngine != "" {
		cfg.OCR.Engine = o.ocrEngine
	}
	if o.apiKey != "" {
		cfg.Google.APIKey = o.apiKey
	}
	if o.historyDB != "" {
		cfg.HistoryDB = o.historyDB
	}
	if o.allergensFile != "" {
		cfg.AllergensFile = o.allergensFile
	}
	if o.debug {
		cfg.LogLevel = "debug"
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	o.cfg = cfg
	return nil
}

// openWire builds the engines for one command. Callers must Close the result.
func (o *rootOptions) openWire(cmd *cobra.Command) (*app.Wire, error) {
	w, err := app.NewWire(cmd.Context(), o.cfg, app.NewLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}
	return w, nil
}

func versionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "nutrition-lens %s\n", info.Version)
			fmt.Fprintf(out, "  Build time: %s\n", info.BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", info.GitCommit)
		},
	}
}
