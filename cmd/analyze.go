// File: cmd/analyze.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/config"
	"github.com/arqv30/arqv-cli/internal/form"
	"github.com/arqv30/arqv-cli/internal/observability"
	"github.com/arqv30/arqv-cli/internal/orchestrator"
	"github.com/arqv30/arqv-cli/internal/reporting"
	"github.com/arqv30/arqv-cli/internal/service"
)

type analyzeOptions struct {
	segment string
	fields  []string
	files   []string
	save    bool
	format  string
	output  string
}

// newAnalyzeCmd creates and configures the `analyze` command.
func newAnalyzeCmd(factory service.ComponentFactory) *cobra.Command {
	var opts analyzeOptions

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Submit a market analysis and render the result",
		Long: `Collects the form fields, validates them, submits one analysis request and
renders every section of the returned document. Progress is simulated locally
while the service works.`,
		Example: `  arqv analyze --segment "Fitness" --field produto="Online course"
  arqv analyze -f segmento=Fitness --format html -o analysis.html --save`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			return runAnalyze(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), factory, cfg, opts)
		},
	}

	analyzeCmd.Flags().StringVarP(&opts.segment, "segment", "s", "", "market segment (shorthand for the configured segment field)")
	analyzeCmd.Flags().StringArrayVarP(&opts.fields, "field", "f", nil, "form field as name=value (repeatable)")
	analyzeCmd.Flags().StringArrayVar(&opts.files, "file", nil, "reference of a file already uploaded to the service (repeatable)")
	analyzeCmd.Flags().BoolVar(&opts.save, "save", false, "save the result document locally after a successful analysis")
	analyzeCmd.Flags().StringVar(&opts.format, "format", reporting.FormatText, "render format: text, html or json")
	analyzeCmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the rendered result to a file instead of stdout")
	return analyzeCmd
}

// runAnalyze contains the core logic for the analyze command.
func runAnalyze(ctx context.Context, stdout, stderr io.Writer, factory service.ComponentFactory, cfg config.Interface, opts analyzeOptions) error {
	logger := observability.GetLogger()

	pairs, err := form.ParsePairs(opts.fields)
	if err != nil {
		return err
	}
	sources := []form.FieldSource{pairs}
	if opts.segment != "" {
		sources = append(sources, form.MapSource{cfg.Form().SegmentField: opts.segment})
	}
	record := form.NewCollector(sources...).Collect()

	files := make([]schemas.UploadedFileRef, len(opts.files))
	for i, f := range opts.files {
		files[i] = schemas.UploadedFileRef(f)
	}

	surface, err := newSurface(stdout, opts.format, opts.output)
	if err != nil {
		return err
	}

	display := newProgressDisplay(stderr)
	components, err := factory.Create(ctx, cfg, service.Options{
		Surface:        surface,
		OnProgress:     display.Update,
		OnNotification: notificationPrinter(stderr, display),
	}, logger)
	if err != nil {
		_ = surface.Close()
		return fmt.Errorf("failed to initialize components: %w", err)
	}
	defer components.Shutdown()

	outcome := components.Orchestrator.Submit(ctx, record, files)
	display.Finish()
	if outcome.Err != nil {
		if errors.Is(outcome.Err, context.Canceled) {
			return outcome.Err
		}
		logger.Debug("Analysis did not complete.", zap.String("state", string(outcome.State)), zap.Error(outcome.Err))
		if errors.Is(outcome.Err, form.ErrValidation) {
			return outcome.Err
		}
		return fmt.Errorf("analysis failed: %s", orchestrator.FailureMessage(outcome.Err))
	}

	if opts.save {
		path, err := components.Orchestrator.ExportDocument()
		if err != nil {
			return fmt.Errorf("failed to save analysis: %w", err)
		}
		fmt.Fprintf(stderr, "Saved to %s\n", path)
	}
	return nil
}

// newSurface opens the render target: the output file when set, stdout otherwise.
func newSurface(stdout io.Writer, format, output string) (reporting.Surface, error) {
	if output != "" {
		return reporting.New(format, output)
	}
	w := reporting.NopWriteCloser(stdout)
	switch format {
	case reporting.FormatHTML:
		return reporting.NewHTMLSurface(w)
	case reporting.FormatJSON:
		return reporting.NewJSONSurface(w), nil
	case reporting.FormatText, "":
		return reporting.NewTextSurface(w), nil
	default:
		return nil, fmt.Errorf("unsupported format %q (text, html, json)", format)
	}
}
