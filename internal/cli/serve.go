package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/image-text-search/internal/httpapi"
	"github.com/ironsheep/image-text-search/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collection to MCP or HTTP clients",
	}
	cmd.AddCommand(newServeMCPCmd(a), newServeHTTPCmd(a))
	return cmd
}

func newServeMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdin/stdout",
		Long: `Run a Model Context Protocol server speaking JSON-RPC 2.0 over stdin and
stdout. Logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := a.library(cmd.Context())
			if err != nil {
				return err
			}

			a.log.Info("Starting MCP server",
				zap.String("version", a.build.Version),
				zap.Int("images", lib.Len()))
			srv := server.New(lib, a.tesseract, a.log, a.build.Version)
			return srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func newServeHTTPCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "http",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				a.cfg.HTTP.Host = host
			}
			if cmd.Flags().Changed("port") {
				a.cfg.HTTP.Port = port
			}

			lib, err := a.library(cmd.Context())
			if err != nil {
				return err
			}

			h := httpapi.NewHandler(lib, a.tesseract, httpapi.Limits{
				MaxUploadSize:  a.cfg.HTTP.MaxUploadSize,
				AllowedFormats: a.cfg.HTTP.AllowedFormats,
			}, a.log)
			return httpapi.New(a.cfg.HTTP.Addr(), h, a.log).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "listen host")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "listen port")
	return cmd
}
