package cli

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/ppiankov/credence/internal/server"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the verification API over HTTP",
	Long: `Serve exposes the verification API:

  POST /api/v1/verify            verify {text?, url?, mode?, origin?}
  GET  /api/v1/blacklist         list blacklisted URLs
  GET  /api/v1/blacklist/lookup  look up ?url=
  GET  /health                   liveness
  GET  /metrics                  Prometheus metrics

Example:
  credence serve --addr :8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}
	if a.cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := server.New(a.orchestrator, a.store,
		server.WithLogger(a.log),
		server.WithMetrics(a.metrics),
		server.WithAllowedOrigins(a.cfg.Server.AllowedOrigins),
		server.WithDownstream(a.cfg.Endpoints.BaseURL),
		server.WithVersion(version),
	)
	return srv.Run(ctx, addr)
}
