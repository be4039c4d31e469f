// Package results projects analysis documents into renderable fragments.
//
// Every section has its own projector. A projector reads only its own section,
// degrades to placeholders on missing or oddly shaped fields, and runs under a
// recover guard so that one broken section never hides the others.
package results

import (
	"time"

	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/api/schemas"
)

type sectionFunc func(p *Projector, r *schemas.AnalysisResult) schemas.Optional[Fragment]

type sectionSpec struct {
	key       schemas.SectionKey
	container string
	title     string
	project   sectionFunc
}

// sections is the fixed rendering order.
var sections = []sectionSpec{
	{schemas.SectionAvatar, "avatarResults", "Ultra-Detailed Avatar", (*Projector).avatar},
	{schemas.SectionMentalDrivers, "driversResults", "Custom Mental Drivers", (*Projector).mentalDrivers},
	{schemas.SectionVisualProofs, "visualProofsResults", "Instant Visual Proofs", (*Projector).visualProofs},
	{schemas.SectionAntiObjection, "antiObjectionResults", "Anti-Objection System", (*Projector).antiObjection},
	{schemas.SectionPrePitch, "prePitchResults", "Invisible Pre-Pitch", (*Projector).prePitch},
	{schemas.SectionPositioning, "positioningResults", "Scope and Positioning", (*Projector).positioning},
	{schemas.SectionCompetition, "competitionResults", "Competitive Analysis", (*Projector).competition},
	{schemas.SectionKeywords, "keywordsResults", "Keyword Strategy", (*Projector).keywords},
	{schemas.SectionMetrics, "metricsResults", "Performance Metrics", (*Projector).metrics},
	{schemas.SectionFunnel, "funnelResults", "Detailed Sales Funnel", (*Projector).funnel},
	{schemas.SectionActionPlan, "actionPlanResults", "Detailed Action Plan", (*Projector).actionPlan},
	{schemas.SectionInsights, "insightsResults", "Exclusive Insights", (*Projector).insights},
	{schemas.SectionFuturePredictions, "futureResults", "Future Predictions", (*Projector).futurePredictions},
	{schemas.SectionWebResearch, "researchResults", "Massive Web Research", (*Projector).webResearch},
	{schemas.SectionMetadata, "metadataResults", "Analysis Information", (*Projector).metadata},
}

// Projector maps analysis results to views. It holds no per-result state and
// is safe for concurrent use.
type Projector struct {
	logger   *zap.Logger
	location *time.Location
}

// Option configures a Projector.
type Option func(*Projector)

// WithLocation sets the zone used to display timestamps. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(p *Projector) {
		if loc != nil {
			p.location = loc
		}
	}
}

// NewProjector creates a projector. A nil logger discards warnings.
func NewProjector(logger *zap.Logger, opts ...Option) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Projector{
		logger:   logger.Named("projector"),
		location: time.Local,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Project builds the view of result. A nil result yields an empty view.
func (p *Projector) Project(result *schemas.AnalysisResult) View {
	view := EmptyView()
	if result == nil {
		return view
	}
	for i, spec := range sections {
		view.slots[i].Fragment = p.projectSection(spec, result)
	}
	return view
}

// Project is a convenience wrapper around a default Projector.
func Project(result *schemas.AnalysisResult) View {
	return NewProjector(nil).Project(result)
}

func (p *Projector) projectSection(spec sectionSpec, result *schemas.AnalysisResult) (frag schemas.Optional[Fragment]) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("Section projection panicked, omitting fragment.",
				zap.String("section", spec.key.String()),
				zap.Any("panic", r),
			)
			frag = schemas.None[Fragment]()
		}
	}()

	f, ok := spec.project(p, result).Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	f.Section = spec.key
	f.Container = spec.container
	if f.Title == "" {
		f.Title = spec.title
	}
	if f.Blocks == nil {
		f.Blocks = []Block{}
	}
	return schemas.Some(f)
}

func fragment(blocks ...Block) schemas.Optional[Fragment] {
	return schemas.Some(Fragment{Blocks: blocks})
}
