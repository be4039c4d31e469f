// File: cmd/status.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arqv30/arqv-cli/internal/observability"
	"github.com/arqv30/arqv-cli/internal/service"
)

// newStatusCmd creates the `status` command, which queries the service health.
func newStatusCmd(factory service.ComponentFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the remote service status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			components, err := factory.Create(ctx, cfg, service.Options{SkipArchive: true}, observability.GetLogger())
			if err != nil {
				return fmt.Errorf("failed to initialize components: %w", err)
			}
			defer components.Shutdown()

			status, statusErr := components.Client.Status(ctx)
			out := cmd.OutOrStdout()
			if status.Online() {
				fmt.Fprintln(out, "System Online")
			} else {
				fmt.Fprintln(out, "System Offline")
			}
			fmt.Fprintf(out, "APIs: %s\n", status.Ratio())
			fmt.Fprintln(out, "Extractors: Active")
			if statusErr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Status query failed: %v\n", statusErr)
			}
			return nil
		},
	}
}
