package commands

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/nutrition-lens/internal/app"
	"github.com/ironsheep/nutrition-lens/internal/httpapi"
	"github.com/ironsheep/nutrition-lens/internal/server"
)

// mcp: the stdio transport used by MCP clients.
func mcpCmd(root *rootOptions, info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the label tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := root.openWire(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			if w.Config.Debug() {
				w.Logger.Printf("nutrition-lens MCP server v%s (built %s, commit %s)", info.Version, info.BuildTime, info.GitCommit)
			}
			return server.New(w, info.Version).Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func serveCmd(root *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := root.openWire(cmd)
			if err != nil {
				return err
			}
			defer w.Close()

			if addr == "" {
				addr = w.Config.HTTP.Addr
			}
			return httpapi.NewRouter(w).Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default "+app.DefaultHTTPAddr+")")
	return cmd
}
