package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/storysmith/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve story generation over HTTP.

Endpoints:
  POST /generate-story  {"prompt": "..."} -> {"story": "..."}
  GET  /healthz
  GET  /stats`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", httpapi.DefaultAddr, "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close() //nolint:errcheck

	cmd.Printf("Listening on http://%s\n", serveAddr)
	return httpapi.Serve(ctx, serveAddr, httpapi.NewRouter(a.story, a.retrieval))
}
