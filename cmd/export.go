// File: cmd/export.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/config"
	"github.com/arqv30/arqv-cli/internal/export"
	"github.com/arqv30/arqv-cli/internal/observability"
	"github.com/arqv30/arqv-cli/internal/service"
	"github.com/arqv30/arqv-cli/internal/store"
)

type exportSource struct {
	id    string
	input string
}

// newExportCmd creates the `export` command group. Each subcommand exports a
// saved result: a local document (--input), an archived analysis (--id) or,
// by default, the most recently archived one.
func newExportCmd(factory service.ComponentFactory, archives archiveProvider) *cobra.Command {
	var src exportSource

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export an analysis as a PDF or a local document",
	}
	exportCmd.PersistentFlags().StringVar(&src.id, "id", "", "archived analysis id")
	exportCmd.PersistentFlags().StringVarP(&src.input, "input", "i", "", "previously saved JSON or YAML document")

	pdfCmd := &cobra.Command{
		Use:   "pdf",
		Short: "Ask the service to render a PDF of the analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			components, err := prepareExport(ctx, factory, archives, src)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			out, err := components.Orchestrator.ExportPDF(ctx)
			if err != nil {
				return err
			}
			if pages, ok := out.Pages.Get(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages, %d bytes)\n", out.Path, pages, out.Bytes)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", out.Path, out.Bytes)
			}
			return nil
		},
	}

	var docFormat string
	documentCmd := &cobra.Command{
		Use:   "document",
		Short: "Save the analysis document locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if docFormat != "" {
				cfg, err := getConfigFromContext(ctx)
				if err != nil {
					return err
				}
				cfg.SetExportDocumentFormat(docFormat)
			}
			components, err := prepareExport(ctx, factory, archives, src)
			if err != nil {
				return err
			}
			defer components.Shutdown()

			path, err := components.Orchestrator.ExportDocument()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	documentCmd.Flags().StringVar(&docFormat, "doc-format", "", "document format: json or yaml (default from config)")

	exportCmd.AddCommand(pdfCmd, documentCmd)
	return exportCmd
}

// prepareExport loads the requested result and installs it in a fresh orchestrator.
func prepareExport(ctx context.Context, factory service.ComponentFactory, archives archiveProvider, src exportSource) (*service.Components, error) {
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return nil, err
	}
	result, err := loadResult(ctx, cfg, archives, src)
	if err != nil {
		return nil, err
	}

	components, err := factory.Create(ctx, cfg, service.Options{SkipArchive: true}, observability.GetLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize components: %w", err)
	}
	if err := components.Orchestrator.Adopt(result); err != nil {
		components.Shutdown()
		return nil, err
	}
	return components, nil
}

func loadResult(ctx context.Context, cfg config.Interface, archives archiveProvider, src exportSource) (*schemas.AnalysisResult, error) {
	if src.input != "" {
		if src.id != "" {
			return nil, fmt.Errorf("--id and --input are mutually exclusive")
		}
		data, err := os.ReadFile(src.input)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}
		result, err := export.DecodeDocument(data, documentFormatOf(src.input))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", src.input, err)
		}
		return result, nil
	}

	archive, cleanup, err := archives.Create(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var entry store.Entry
	if src.id != "" {
		entry, err = archive.Get(ctx, src.id)
	} else {
		entry, err = archive.Latest(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load archived analysis: %w", err)
	}
	return entry.Result, nil
}

func documentFormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.FormatYAML
	default:
		return config.FormatJSON
	}
}
