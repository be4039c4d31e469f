// File: cmd/serve.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/internal/observability"
	"github.com/arqv30/arqv-cli/internal/service"
	"github.com/arqv30/arqv-cli/internal/viewserver"
)

// newServeCmd creates the `serve` command, which exposes the analysis view over HTTP.
func newServeCmd(factory service.ComponentFactory) *cobra.Command {
	var listen string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis form and results over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			logger := observability.GetLogger()

			components, err := factory.Create(ctx, cfg, service.Options{}, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize components: %w", err)
			}
			defer components.Shutdown()

			addr := cfg.Server().Listen
			if listen != "" {
				addr = listen
			}
			logger.Info("Starting view server.", zap.String("addr", addr), zap.String("api", components.Client.BaseURL()))
			srv := viewserver.New(components.Orchestrator, components.Client, components.Board, logger)
			return srv.Run(ctx, addr)
		},
	}
	serveCmd.Flags().StringVar(&listen, "listen", "", "listen address (default from server.listen)")
	return serveCmd
}
