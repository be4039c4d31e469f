package results

import (
	"fmt"
	"strings"

	"github.com/arqv30/arqv-cli/api/schemas"
)

func collapsible(title string, children ...Block) Block {
	return Block{Kind: BlockCollapsible, Title: title, Children: children}
}

func list(title string, items []string) Block {
	return Block{Kind: BlockList, Title: title, Items: items}
}

func field(key, value string) schemas.Field {
	return schemas.Field{Key: key, Value: value}
}

func (p *Projector) avatar(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	a, ok := r.Avatar().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	var blocks []Block
	if fields, ok := a.Demographic.Get(); ok {
		blocks = append(blocks, Block{Kind: BlockCard, Title: "Demographic Profile", Fields: humanizeFields(fields)})
	}
	if fields, ok := a.Psychographic.Get(); ok {
		blocks = append(blocks, Block{Kind: BlockCard, Title: "Psychographic Profile", Fields: humanizeFields(fields)})
	}
	if pains, ok := a.VisceralPains.Get(); ok {
		blocks = append(blocks, collapsible(counted("Visceral Pains", len(pains)), list("", pains)))
	}
	if desires, ok := a.SecretDesires.Get(); ok {
		blocks = append(blocks, collapsible(counted("Secret Desires", len(desires)), list("", desires)))
	}
	return fragment(blocks...)
}

func (p *Projector) mentalDrivers(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	md, ok := r.MentalDrivers().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	drivers, _ := md.Drivers.Get()
	blocks := make([]Block, 0, len(drivers))
	for i, d := range drivers {
		card := Block{
			Kind:  BlockCard,
			Title: fmt.Sprintf("Driver %d: %s", i+1, d.Name.OrElse("Mental Driver")),
			Fields: []schemas.Field{
				field("Central Trigger", orNA(d.CentralTrigger)),
				field("Definition", orNA(d.Definition)),
			},
		}
		if script, ok := d.Activation.Get(); ok {
			card.Children = append(card.Children, Block{
				Kind:  BlockCard,
				Title: "Activation Script",
				Fields: []schemas.Field{
					field("Question", orNA(script.OpeningQuestion)),
					field("Story", orNA(script.AnalogyStory)),
					field("Command", orNA(script.ActionCommand)),
				},
			})
		}
		if phrases, ok := d.AnchorPhrases.Get(); ok {
			card.Children = append(card.Children, list("Anchor Phrases", quoted(phrases)))
		}
		blocks = append(blocks, card)
	}
	return fragment(blocks...)
}

func (p *Projector) visualProofs(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	proofs, ok := r.VisualProofs().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	cards := make([]Block, 0, len(proofs))
	for _, proof := range proofs {
		card := Block{
			Kind:  BlockCard,
			Title: proof.Name.OrElse("Visual Proof"),
			Fields: []schemas.Field{
				field("Concept", orNA(proof.TargetConcept)),
				field("Experiment", orNA(proof.Experiment)),
			},
		}
		if materials, ok := proof.Materials.Get(); ok {
			card.Children = []Block{list("Materials", materials)}
		}
		cards = append(cards, card)
	}
	return fragment(Block{Kind: BlockNumbered, Children: cards})
}

func (p *Projector) antiObjection(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	ao, ok := r.AntiObjection().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	objections, ok := ao.UniversalObjections.Get()
	if !ok {
		return fragment()
	}
	cards := make([]Block, 0, len(objections))
	for _, o := range objections {
		card := Block{
			Kind:  BlockCard,
			Title: strings.ToUpper(o.Kind),
			Fields: []schemas.Field{
				field("Objection", orNA(o.Objection)),
				field("Counter-attack", orNA(o.CounterAttack)),
			},
		}
		if scripts, ok := o.Scripts.Get(); ok {
			card.Items = scripts
		}
		cards = append(cards, card)
	}
	return fragment(collapsible("Universal Objections", cards...))
}

func (p *Projector) prePitch(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	pp, ok := r.PrePitch().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	parts, ok := pp.Script.Get()
	if !ok {
		return fragment()
	}
	cards := make([]Block, 0, len(parts))
	for _, part := range parts {
		card := Block{Kind: BlockCard, Title: heading(part.Name)}
		if text, ok := part.Text.Get(); ok {
			card.Text = text
		} else {
			card.Fields = humanizeFields(part.Fields)
		}
		cards = append(cards, card)
	}
	script := collapsible("Full Script", cards...)
	script.Expanded = true
	return fragment(script)
}

func (p *Projector) positioning(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	pos, ok := r.Positioning().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	var blocks []Block
	if text, ok := pos.MarketPositioning.Get(); ok {
		blocks = append(blocks, Block{Kind: BlockCard, Title: "Market Positioning", Text: text})
	}
	if text, ok := pos.ValueProposition.Get(); ok {
		blocks = append(blocks, Block{Kind: BlockCard, Title: "Value Proposition", Text: text})
	}
	if edges, ok := pos.CompetitiveEdges.Get(); ok {
		blocks = append(blocks, Block{Kind: BlockCard, Title: "Competitive Edges", Items: edges})
	}
	return fragment(blocks...)
}

func (p *Projector) competition(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	competitors, ok := r.Competition().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	rows := make([][]string, 0, len(competitors))
	for _, c := range competitors {
		rows = append(rows, []string{
			c.Name.OrElse("Competitor"),
			strings.Join(head(c.Strengths, maxSwotItems), ", "),
			strings.Join(head(c.Weaknesses, maxSwotItems), ", "),
			orNA(c.MarketingStrategy),
		})
	}
	return fragment(Block{
		Kind:    BlockTable,
		Columns: []string{"Competitor", "Strengths", "Weaknesses", "Strategy"},
		Rows:    rows,
	})
}

func (p *Projector) keywords(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	kw, ok := r.Keywords().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	var blocks []Block
	if primary, ok := kw.Primary.Get(); ok {
		blocks = append(blocks, Block{Kind: BlockTags, Title: "Primary Keywords", Items: primary})
	}
	if secondary, ok := kw.Secondary.Get(); ok {
		blocks = append(blocks, Block{
			Kind:  BlockTags,
			Title: counted("Secondary Keywords", len(secondary)),
			Items: head(secondary, maxSecondaryTags),
		})
	}
	if longTail, ok := kw.LongTail.Get(); ok {
		blocks = append(blocks, collapsible(
			counted("Long Tail Keywords", len(longTail)),
			Block{Kind: BlockTags, Items: longTail},
		))
	}
	return fragment(blocks...)
}

var scenarioRows = []struct {
	key   string
	label string
}{
	{schemas.ScenarioConservative, "Conservative"},
	{schemas.ScenarioRealistic, "Realistic"},
	{schemas.ScenarioOptimistic, "Optimistic"},
}

func (p *Projector) metrics(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	m, ok := r.Metrics().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	var blocks []Block
	if kpis, ok := m.KPIs.Get(); ok {
		for _, kpi := range kpis {
			blocks = append(blocks, Block{
				Kind:  BlockCard,
				Title: kpi.Metric.OrElse("Metric"),
				Fields: []schemas.Field{
					field("Target", orNA(kpi.Target)),
					field("Frequency", orNA(kpi.Frequency)),
				},
			})
		}
	}
	if proj, ok := m.Projections.Get(); ok {
		rows := [][]string{}
		for _, s := range scenarioRows {
			data, ok := proj.Scenario(s.key).Get()
			if !ok {
				continue
			}
			rows = append(rows, []string{
				s.label,
				orNA(data.MonthlyRevenue),
				orNA(data.CustomersPerMonth),
				orNA(data.AverageTicket),
				orNA(data.ProfitMargin),
			})
		}
		blocks = append(blocks, Block{
			Kind:    BlockTable,
			Title:   "Financial Projections",
			Columns: []string{"Scenario", "Monthly Revenue", "Customers/Month", "Average Ticket", "Margin"},
			Rows:    rows,
		})
	}
	return fragment(blocks...)
}

var funnelStages = []struct {
	key   string
	label string
}{
	{schemas.FunnelTop, "Top of Funnel"},
	{schemas.FunnelMiddle, "Middle of Funnel"},
	{schemas.FunnelBottom, "Bottom of Funnel"},
}

func (p *Projector) funnel(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	f, ok := r.Funnel().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	var blocks []Block
	for _, s := range funnelStages {
		stage, ok := f.Stage(s.key).Get()
		if !ok {
			continue
		}
		card := Block{
			Kind:   BlockCard,
			Title:  s.label,
			Fields: []schemas.Field{field("Objective", orNA(stage.Objective))},
		}
		if strategies, ok := stage.Strategies.Get(); ok {
			card.Children = []Block{list("Strategies", strategies)}
		}
		blocks = append(blocks, card)
	}
	return fragment(blocks...)
}

func (p *Projector) actionPlan(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	plan, ok := r.ActionPlan().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	blocks := make([]Block, 0, len(plan.Phases))
	for _, phase := range plan.Phases {
		card := Block{
			Kind:   BlockCard,
			Title:  heading(phase.Key),
			Fields: []schemas.Field{field("Duration", orNA(phase.Duration))},
		}
		if activities, ok := phase.Activities.Get(); ok {
			card.Items = activities
		}
		if investment, ok := phase.Investment.Get(); ok {
			card.Fields = append(card.Fields, field("Investment", investment))
		}
		blocks = append(blocks, card)
	}
	return fragment(blocks...)
}

func (p *Projector) insights(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	insights, ok := r.Insights().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	return schemas.Some(Fragment{
		Title:  counted("Exclusive Insights", len(insights)),
		Blocks: []Block{{Kind: BlockNumbered, Items: insights}},
	})
}

func (p *Projector) futurePredictions(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	fp, ok := r.FuturePredictions().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	var blocks []Block
	if trends, ok := fp.CurrentTrends.Get(); ok {
		cards := make([]Block, 0, len(trends))
		for _, t := range trends {
			cards = append(cards, Block{
				Kind:  BlockCard,
				Title: heading(t.Name),
				Fields: []schemas.Field{
					field("Phase", orNA(t.Phase)),
					field("Impact", orNA(t.Impact)),
					field("Timeline", orNA(t.Timeline)),
				},
			})
		}
		blocks = append(blocks, collapsible("Current Trends", cards...))
	}
	if opps, ok := fp.Opportunities.Get(); ok {
		cards := make([]Block, 0, len(opps))
		for _, o := range opps {
			cards = append(cards, Block{
				Kind:  BlockCard,
				Title: o.Name.OrElse("Opportunity"),
				Text:  orNA(o.Description),
				Fields: []schemas.Field{
					field("Potential", orNA(o.MarketPotential)),
					field("Timeline", orNA(o.Timeline)),
					field("ROI", orNA(o.ExpectedROI)),
				},
			})
		}
		blocks = append(blocks, collapsible(counted("Emerging Opportunities", len(opps)), cards...))
	}
	return fragment(blocks...)
}

func (p *Projector) webResearch(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	wr, ok := r.WebResearch().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	var blocks []Block
	if stats, ok := wr.Statistics.Get(); ok {
		blocks = append(blocks, Block{Kind: BlockGrid, Title: "Research Statistics", Fields: humanizeFields(stats)})
	}
	if queries, ok := wr.Queries.Get(); ok {
		blocks = append(blocks, collapsible(counted("Executed Queries", len(queries)), list("", queries)))
	}
	if sources, ok := wr.Sources.Get(); ok {
		shown := sources
		if len(shown) > maxConsultedLinks {
			shown = shown[:maxConsultedLinks]
		}
		cards := make([]Block, 0, len(shown))
		for _, s := range shown {
			cards = append(cards, Block{Kind: BlockCard, Title: s.Title.OrElse("Untitled"), Text: orNA(s.URL)})
		}
		blocks = append(blocks, collapsible(counted("Consulted Sources", len(sources)), cards...))
	}
	return fragment(blocks...)
}

func (p *Projector) metadata(r *schemas.AnalysisResult) schemas.Optional[Fragment] {
	md, ok := r.Metadata().Get()
	if !ok {
		return schemas.None[Fragment]()
	}
	generatedAt := Placeholder
	if raw, ok := md.GeneratedAt.Get(); ok {
		generatedAt = formatTimestamp(raw, p.location)
	}
	score := Placeholder
	if s, ok := md.QualityScore.Get(); ok {
		score = s + "%"
	}
	analyzed := Placeholder
	if n, ok := md.TotalContentAnalyzed.Get(); ok {
		analyzed = groupThousands(n) + " chars"
	}

	blocks := []Block{
		{Kind: BlockBanner, Title: "Data Quality", Text: "100% REAL DATA"},
		{Kind: BlockGrid, Fields: []schemas.Field{
			field("Processing Time", orNA(md.ProcessingTime)),
			field("Analysis Engine", orNA(md.Engine)),
			field("Generated At", generatedAt),
			field("Quality Score", score),
			field("Data Sources", orNA(md.RealDataSources)),
			field("Analyzed Content", analyzed),
		}},
	}
	if lf, ok := md.LocalFiles.Get(); ok {
		var items []string
		if files, ok := lf.Files.Get(); ok {
			items = make([]string, 0, len(files))
			for _, f := range files {
				size := Placeholder
				if s, ok := f.Size.Get(); ok {
					size = formatKB(s)
				}
				items = append(items, fmt.Sprintf("%s (%s) - %s", orNA(f.Name), orNA(f.Type), size))
			}
		}
		blocks = append(blocks, collapsible(
			fmt.Sprintf("Saved Local Files (%s)", lf.FilesCreated.OrElse("0")),
			Block{Kind: BlockText, Text: "Analysis saved to separate TXT files:"},
			list("", items),
		))
	}
	return fragment(blocks...)
}
