// File: cmd/history.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/arqv30/arqv-cli/internal/config"
	"github.com/arqv30/arqv-cli/internal/observability"
	"github.com/arqv30/arqv-cli/internal/reporting"
	"github.com/arqv30/arqv-cli/internal/results"
	"github.com/arqv30/arqv-cli/internal/service"
	"github.com/arqv30/arqv-cli/internal/store"
)

var errNoDatabase = errors.New("database URL is not configured (hint: ARQV_DATABASE_URL)")

// archiveProvider opens the analysis archive for commands that read it.
// Tests inject an in-memory archive through it.
type archiveProvider interface {
	// Create returns the archive and a cleanup function releasing its resources.
	Create(ctx context.Context, cfg config.Interface) (store.Archive, func(), error)
}

type defaultArchiveProvider struct{}

func newArchiveProvider() archiveProvider {
	return &defaultArchiveProvider{}
}

// Create connects to the configured database. Unlike analyze, reading the
// history never falls back to an in-memory archive.
func (p *defaultArchiveProvider) Create(ctx context.Context, cfg config.Interface) (store.Archive, func(), error) {
	if cfg.Database().URL == "" {
		return nil, nil, errNoDatabase
	}
	logger := observability.GetLogger()
	archive, _, pool, err := service.InitializeArchive(ctx, cfg.Database(), logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if pool != nil {
			pool.Close()
			logger.Debug("Database connection pool closed (via history cleanup).")
		}
	}
	return archive, cleanup, nil
}

// purger is implemented by archives that support retention.
type purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// newHistoryCmd creates the `history` command group.
func newHistoryCmd(archives archiveProvider) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse archived analyses",
	}
	historyCmd.AddCommand(newHistoryListCmd(archives))
	historyCmd.AddCommand(newHistoryShowCmd(archives))
	historyCmd.AddCommand(newHistoryPurgeCmd(archives))
	return historyCmd
}

func newHistoryListCmd(archives archiveProvider) *cobra.Command {
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List archived analyses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			archive, cleanup, err := openArchive(ctx, archives)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := archive.List(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list analyses: %w", err)
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No archived analyses.")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSEGMENT\tGENERATED\tARCHIVED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, orDash(e.Segment), orDash(e.GeneratedAt), e.CreatedAt.Format(time.DateTime))
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries to list")
	return listCmd
}

func newHistoryShowCmd(archives archiveProvider) *cobra.Command {
	var format, output string
	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Render an archived analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			archive, cleanup, err := openArchive(ctx, archives)
			if err != nil {
				return err
			}
			defer cleanup()

			entry, err := archive.Get(ctx, args[0])
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("no archived analysis with id %q", args[0])
				}
				return err
			}

			surface, err := newSurface(cmd.OutOrStdout(), format, output)
			if err != nil {
				return err
			}
			view := results.NewProjector(observability.GetLogger()).Project(entry.Result)
			if err := reporting.Render(surface, view); err != nil {
				_ = surface.Close()
				return fmt.Errorf("failed to render analysis: %w", err)
			}
			return surface.Close()
		},
	}
	showCmd.Flags().StringVar(&format, "format", reporting.FormatText, "render format: text, html or json")
	showCmd.Flags().StringVarP(&output, "output", "o", "", "write the rendered result to a file instead of stdout")
	return showCmd
}

func newHistoryPurgeCmd(archives archiveProvider) *cobra.Command {
	var olderThan time.Duration
	purgeCmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete archived analyses older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			ctx := cmd.Context()
			archive, cleanup, err := openArchive(ctx, archives)
			if err != nil {
				return err
			}
			defer cleanup()

			p, ok := archive.(purger)
			if !ok {
				return fmt.Errorf("the configured archive does not support purging")
			}
			n, err := p.Purge(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return fmt.Errorf("failed to purge analyses: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d analyses\n", n)
			return nil
		},
	}
	purgeCmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age beyond which analyses are deleted")
	return purgeCmd
}

func openArchive(ctx context.Context, archives archiveProvider) (store.Archive, func(), error) {
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	archive, cleanup, err := archives.Create(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if cleanup == nil {
		cleanup = func() {}
	}
	return archive, cleanup, nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
