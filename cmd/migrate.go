// File: cmd/migrate.go
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// migrator applies the archive schema and returns the resulting version.
type migrator func(ctx context.Context, databaseURL string) (int64, error)

// newMigrateCmd creates the `migrate` command.
func newMigrateCmd(migrate migrator) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the analysis archive schema to the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			if cfg.Database().URL == "" {
				return errNoDatabase
			}
			version, err := migrate(ctx, cfg.Database().URL)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
			return nil
		},
	}
}
