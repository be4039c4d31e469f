// File: cmd/diag.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arqv30/arqv-cli/internal/diagnostics"
	"github.com/arqv30/arqv-cli/internal/observability"
	"github.com/arqv30/arqv-cli/internal/service"
)

// newDiagCmd creates the `diag` command, which runs the service probes.
func newDiagCmd(factory service.ComponentFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "diag [probe...]",
		Short: "Run diagnostic probes against the service",
		Long: `Runs the named probes, or every probe when none is given.
Available probes: extraction, search, extractor_stats, reset_extractors.`,
		Example: `  arqv diag
  arqv diag search extractor_stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}

			probes := make([]diagnostics.Probe, 0, len(args))
			for _, name := range args {
				p, err := diagnostics.ParseProbe(name)
				if err != nil {
					return err
				}
				probes = append(probes, p)
			}

			components, err := factory.Create(ctx, cfg, service.Options{SkipArchive: true}, observability.GetLogger())
			if err != nil {
				return fmt.Errorf("failed to initialize components: %w", err)
			}
			defer components.Shutdown()

			var outcomes []diagnostics.Outcome
			if len(probes) == 0 {
				outcomes = components.Diagnostics.RunAll(ctx)
			} else {
				for _, p := range probes {
					outcomes = append(outcomes, components.Diagnostics.Run(ctx, p))
				}
			}

			failed := 0
			out := cmd.OutOrStdout()
			for _, o := range outcomes {
				mark := "ok"
				if !o.Success {
					mark = "FAIL"
					failed++
				}
				fmt.Fprintf(out, "%-16s %-4s %s\n", o.Probe, mark, o.Summary)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d probes failed", failed, len(outcomes))
			}
			return nil
		},
	}
}
