// Package diagnostics runs the operator-facing probes of the analysis service.
package diagnostics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/config"
	"github.com/arqv30/arqv-cli/internal/notify"
)

// Probe names one diagnostic call.
type Probe string

const (
	ProbeExtraction      Probe = "extraction"
	ProbeSearch          Probe = "search"
	ProbeExtractorStats  Probe = "extractor_stats"
	ProbeResetExtractors Probe = "reset_extractors"
)

// AllProbes lists every probe in reporting order.
var AllProbes = []Probe{ProbeExtraction, ProbeSearch, ProbeExtractorStats, ProbeResetExtractors}

// ParseProbe resolves a probe by name.
func ParseProbe(name string) (Probe, error) {
	for _, p := range AllProbes {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown probe %q", name)
}

// Client is the subset of the service API the probes call.
type Client interface {
	TestExtraction(ctx context.Context, pageURL string) (schemas.ExtractionProbeResponse, error)
	TestSearch(ctx context.Context, query string) (schemas.SearchProbeResponse, error)
	ExtractorStats(ctx context.Context) (schemas.ExtractorStatsResponse, error)
	ResetExtractors(ctx context.Context) (schemas.ResetExtractorsResponse, error)
}

// Outcome is the result of one probe.
type Outcome struct {
	Probe    Probe
	Success  bool
	Summary  string
	Duration time.Duration
	// Err is set when the probe could not complete at all.
	Err error
}

// Runner executes probes, paced by a shared rate limiter, and reports each
// outcome through the notification sink.
type Runner struct {
	client  Client
	cfg     config.DiagnosticsConfig
	limiter *rate.Limiter
	sink    notify.Sink
	logger  *zap.Logger
}

// NewRunner creates a runner. A nil sink disables notifications.
func NewRunner(client Client, cfg config.DiagnosticsConfig, sink notify.Sink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.ProbeRate), 1),
		sink:    sink,
		logger:  logger.Named("diagnostics"),
	}
}

// Run executes a single probe.
func (r *Runner) Run(ctx context.Context, probe Probe) Outcome {
	start := time.Now()
	var out Outcome
	if err := r.limiter.Wait(ctx); err != nil {
		out = Outcome{Success: false, Summary: "Probe not started: " + err.Error(), Err: err}
	} else {
		switch probe {
		case ProbeExtraction:
			out = r.extraction(ctx)
		case ProbeSearch:
			out = r.search(ctx)
		case ProbeExtractorStats:
			out = r.extractorStats(ctx)
		case ProbeResetExtractors:
			out = r.resetExtractors(ctx)
		default:
			err := fmt.Errorf("unknown probe %q", probe)
			out = Outcome{Summary: err.Error(), Err: err}
		}
	}
	out.Probe = probe
	out.Duration = time.Since(start)

	r.logger.Info("Probe finished.",
		zap.String("probe", string(probe)),
		zap.Bool("success", out.Success),
		zap.Duration("duration", out.Duration),
	)
	r.report(out)
	return out
}

// RunAll executes every probe concurrently and returns the outcomes in
// AllProbes order. A failing probe never cancels the others.
func (r *Runner) RunAll(ctx context.Context) []Outcome {
	outcomes := make([]Outcome, len(AllProbes))
	var g errgroup.Group
	for i, probe := range AllProbes {
		g.Go(func() error {
			outcomes[i] = r.Run(ctx, probe)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (r *Runner) report(out Outcome) {
	if r.sink == nil {
		return
	}
	if out.Success {
		r.sink.Success(out.Summary)
	} else {
		r.sink.Error(out.Summary)
	}
}

func (r *Runner) extraction(ctx context.Context) Outcome {
	resp, err := r.client.TestExtraction(ctx, r.cfg.ExtractionURL)
	if err != nil {
		return Outcome{Summary: "Test error: " + err.Error(), Err: err}
	}
	if resp.Success {
		return Outcome{Success: true, Summary: fmt.Sprintf("Extraction OK: %d characters", resp.ContentLength)}
	}
	return Outcome{Summary: "Extraction failed: " + resp.Error}
}

func (r *Runner) search(ctx context.Context) Outcome {
	resp, err := r.client.TestSearch(ctx, r.cfg.SearchQuery)
	if err != nil {
		return Outcome{Summary: "Test error: " + err.Error(), Err: err}
	}
	if resp.Success {
		return Outcome{Success: true, Summary: fmt.Sprintf("Search OK: %d results", resp.ResultsCount)}
	}
	return Outcome{Summary: "Search failed: " + resp.Error}
}

func (r *Runner) extractorStats(ctx context.Context) Outcome {
	resp, err := r.client.ExtractorStats(ctx)
	if err != nil {
		return Outcome{Summary: "Failed to get stats: " + err.Error(), Err: err}
	}
	if !resp.Success {
		return Outcome{Summary: "Extractor statistics unavailable: " + resp.Error}
	}
	return Outcome{Success: true, Summary: FormatExtractorStats(resp.Stats)}
}

func (r *Runner) resetExtractors(ctx context.Context) Outcome {
	resp, err := r.client.ResetExtractors(ctx)
	if err != nil {
		return Outcome{Summary: "Reset error: " + err.Error(), Err: err}
	}
	if resp.Success {
		return Outcome{Success: true, Summary: "Extractors reset successfully"}
	}
	return Outcome{Summary: "Failed to reset extractors"}
}

// FormatExtractorStats lists every extractor except the global aggregate,
// sorted by name.
func FormatExtractorStats(stats map[string]schemas.ExtractorStat) string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		if name != schemas.GlobalExtractorStat {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Extractor Statistics:")
	for _, name := range names {
		state := "Inactive"
		if stats[name].Available {
			state = "Active"
		}
		fmt.Fprintf(&b, "\n%s: %s", name, state)
	}
	return b.String()
}
