package schemas

import (
	"encoding/json"
	"strconv"
)

// -- Field Helpers --

// Field is one label/value pair taken from an object, in document order.
type Field struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func optText(v any) Optional[string] {
	if !Truthy(v) {
		return None[string]()
	}
	return Some(Text(v))
}

func optList(v any) Optional[[]string] {
	arr, ok := AsArray(v)
	if !ok {
		return None[[]string]()
	}
	return Some(textList(arr))
}

func textList(arr []any) []string {
	out := make([]string, len(arr))
	for i, item := range arr {
		out[i] = Text(item)
	}
	return out
}

// entriesOf lists an object's entries, or an array's elements keyed by index.
// Any other value has no entries.
func entriesOf(v any) []Entry {
	switch t := v.(type) {
	case *Object:
		return t.Entries()
	case []any:
		out := make([]Entry, len(t))
		for i, item := range t {
			out[i] = Entry{Key: strconv.Itoa(i), Value: item}
		}
		return out
	default:
		return nil
	}
}

func fieldsOf(v any) []Field {
	entries := entriesOf(v)
	out := make([]Field, 0, len(entries))
	for _, e := range entries {
		out = append(out, Field{Key: e.Key, Value: Text(e.Value)})
	}
	return out
}

func optFields(v any) Optional[[]Field] {
	if !Truthy(v) {
		return None[[]Field]()
	}
	return Some(fieldsOf(v))
}

// get reads a single key from v, treating non-objects as empty.
func get(v any, key string) any {
	return lookup(v, key)
}

func (r *AnalysisResult) present(key SectionKey) (any, bool) {
	v, _ := r.Section(key)
	return v, Truthy(v)
}

func (r *AnalysisResult) presentArray(key SectionKey) ([]any, bool) {
	v, _ := r.Section(key)
	return AsArray(v)
}

// -- Avatar --

type Avatar struct {
	Demographic   Optional[[]Field]
	Psychographic Optional[[]Field]
	VisceralPains Optional[[]string]
	SecretDesires Optional[[]string]
}

// Avatar decodes avatar_ultra_detalhado.
func (r *AnalysisResult) Avatar() Optional[Avatar] {
	v, ok := r.present(SectionAvatar)
	if !ok {
		return None[Avatar]()
	}
	return Some(Avatar{
		Demographic:   optFields(get(v, "perfil_demografico")),
		Psychographic: optFields(get(v, "perfil_psicografico")),
		VisceralPains: optList(get(v, "dores_viscerais")),
		SecretDesires: optList(get(v, "desejos_secretos")),
	})
}

// -- Mental Drivers --

type MentalDrivers struct {
	Drivers Optional[[]MentalDriver]
}

type MentalDriver struct {
	Name           Optional[string]
	CentralTrigger Optional[string]
	Definition     Optional[string]
	Activation     Optional[ActivationScript]
	AnchorPhrases  Optional[[]string]
}

type ActivationScript struct {
	OpeningQuestion Optional[string]
	AnalogyStory    Optional[string]
	ActionCommand   Optional[string]
}

// MentalDrivers decodes drivers_mentais_customizados.
func (r *AnalysisResult) MentalDrivers() Optional[MentalDrivers] {
	v, ok := r.present(SectionMentalDrivers)
	if !ok {
		return None[MentalDrivers]()
	}
	out := MentalDrivers{}
	if arr, isArr := AsArray(get(v, "drivers_customizados")); isArr {
		drivers := make([]MentalDriver, 0, len(arr))
		for _, item := range arr {
			d := MentalDriver{
				Name:           optText(get(item, "nome")),
				CentralTrigger: optText(get(item, "gatilho_central")),
				Definition:     optText(get(item, "definicao_visceral")),
				AnchorPhrases:  optList(get(item, "frases_ancoragem")),
			}
			if script := get(item, "roteiro_ativacao"); Truthy(script) {
				d.Activation = Some(ActivationScript{
					OpeningQuestion: optText(get(script, "pergunta_abertura")),
					AnalogyStory:    optText(get(script, "historia_analogia")),
					ActionCommand:   optText(get(script, "comando_acao")),
				})
			}
			drivers = append(drivers, d)
		}
		out.Drivers = Some(drivers)
	}
	return Some(out)
}

// -- Visual Proofs --

type VisualProof struct {
	Name          Optional[string]
	TargetConcept Optional[string]
	Experiment    Optional[string]
	Materials     Optional[[]string]
}

// VisualProofs decodes provas_visuais_instantaneas. A non-array value is absent.
func (r *AnalysisResult) VisualProofs() Optional[[]VisualProof] {
	arr, ok := r.presentArray(SectionVisualProofs)
	if !ok {
		return None[[]VisualProof]()
	}
	proofs := make([]VisualProof, 0, len(arr))
	for _, item := range arr {
		proofs = append(proofs, VisualProof{
			Name:          optText(get(item, "nome")),
			TargetConcept: optText(get(item, "conceito_alvo")),
			Experiment:    optText(get(item, "experimento")),
			Materials:     optList(get(item, "materiais")),
		})
	}
	return Some(proofs)
}

// -- Anti-Objection System --

type AntiObjection struct {
	UniversalObjections Optional[[]Objection]
}

type Objection struct {
	Kind          string
	Objection     Optional[string]
	CounterAttack Optional[string]
	Scripts       Optional[[]string]
}

// AntiObjection decodes sistema_anti_objecao.
func (r *AnalysisResult) AntiObjection() Optional[AntiObjection] {
	v, ok := r.present(SectionAntiObjection)
	if !ok {
		return None[AntiObjection]()
	}
	out := AntiObjection{}
	if universal := get(v, "objecoes_universais"); Truthy(universal) {
		entries := entriesOf(universal)
		objections := make([]Objection, 0, len(entries))
		for _, e := range entries {
			objections = append(objections, Objection{
				Kind:          e.Key,
				Objection:     optText(get(e.Value, "objecao")),
				CounterAttack: optText(get(e.Value, "contra_ataque")),
				Scripts:       optList(get(e.Value, "scripts_customizados")),
			})
		}
		out.UniversalObjections = Some(objections)
	}
	return Some(out)
}

// -- Pre-Pitch --

type PrePitch struct {
	Script Optional[[]ScriptPart]
}

// ScriptPart is one named part of the pre-pitch script. Structured parts carry
// Fields; scalar parts carry Text.
type ScriptPart struct {
	Name   string
	Fields []Field
	Text   Optional[string]
}

// PrePitch decodes pre_pitch_invisivel.
func (r *AnalysisResult) PrePitch() Optional[PrePitch] {
	v, ok := r.present(SectionPrePitch)
	if !ok {
		return None[PrePitch]()
	}
	out := PrePitch{}
	if script := get(v, "roteiro_completo"); Truthy(script) {
		entries := entriesOf(script)
		parts := make([]ScriptPart, 0, len(entries))
		for _, e := range entries {
			part := ScriptPart{Name: e.Key}
			switch e.Value.(type) {
			case *Object, []any:
				part.Fields = fieldsOf(e.Value)
			case nil:
				part.Fields = []Field{}
			default:
				part.Text = Some(Text(e.Value))
			}
			parts = append(parts, part)
		}
		out.Script = Some(parts)
	}
	return Some(out)
}

// -- Positioning --

type Positioning struct {
	MarketPositioning Optional[string]
	ValueProposition  Optional[string]
	CompetitiveEdges  Optional[[]string]
}

// Positioning decodes escopo.
func (r *AnalysisResult) Positioning() Optional[Positioning] {
	v, ok := r.present(SectionPositioning)
	if !ok {
		return None[Positioning]()
	}
	return Some(Positioning{
		MarketPositioning: optText(get(v, "posicionamento_mercado")),
		ValueProposition:  optText(get(v, "proposta_valor")),
		CompetitiveEdges:  optList(get(v, "diferenciais_competitivos")),
	})
}

// -- Competition --

type Competitor struct {
	Name              Optional[string]
	Strengths         []string
	Weaknesses        []string
	MarketingStrategy Optional[string]
}

// Competition decodes analise_concorrencia_detalhada. A non-array value is absent.
func (r *AnalysisResult) Competition() Optional[[]Competitor] {
	arr, ok := r.presentArray(SectionCompetition)
	if !ok {
		return None[[]Competitor]()
	}
	out := make([]Competitor, 0, len(arr))
	for _, item := range arr {
		swot := get(item, "analise_swot")
		strengths, _ := AsArray(get(swot, "forcas"))
		weaknesses, _ := AsArray(get(swot, "fraquezas"))
		out = append(out, Competitor{
			Name:              optText(get(item, "nome")),
			Strengths:         textList(strengths),
			Weaknesses:        textList(weaknesses),
			MarketingStrategy: optText(get(item, "estrategia_marketing")),
		})
	}
	return Some(out)
}

// -- Keywords --

type Keywords struct {
	Primary   Optional[[]string]
	Secondary Optional[[]string]
	LongTail  Optional[[]string]
}

// Keywords decodes estrategia_palavras_chave.
func (r *AnalysisResult) Keywords() Optional[Keywords] {
	v, ok := r.present(SectionKeywords)
	if !ok {
		return None[Keywords]()
	}
	return Some(Keywords{
		Primary:   optList(get(v, "palavras_primarias")),
		Secondary: optList(get(v, "palavras_secundarias")),
		LongTail:  optList(get(v, "long_tail")),
	})
}

// -- Performance Metrics --

type Metrics struct {
	KPIs        Optional[[]KPI]
	Projections Optional[Projections]
}

type KPI struct {
	Metric    Optional[string]
	Target    Optional[string]
	Frequency Optional[string]
}

// Scenario keys of projecoes_financeiras, in display order.
const (
	ScenarioConservative = "cenario_conservador"
	ScenarioRealistic    = "cenario_realista"
	ScenarioOptimistic   = "cenario_otimista"
)

// Projections holds the financial scenarios keyed by wire name.
type Projections struct {
	scenarios map[string]Scenario
}

type Scenario struct {
	MonthlyRevenue    Optional[string]
	CustomersPerMonth Optional[string]
	AverageTicket     Optional[string]
	ProfitMargin      Optional[string]
}

// Scenario returns the named scenario when its sub-document is present.
func (p Projections) Scenario(key string) Optional[Scenario] {
	s, ok := p.scenarios[key]
	if !ok {
		return None[Scenario]()
	}
	return Some(s)
}

// Metrics decodes metricas_performance_detalhadas.
func (r *AnalysisResult) Metrics() Optional[Metrics] {
	v, ok := r.present(SectionMetrics)
	if !ok {
		return None[Metrics]()
	}
	out := Metrics{}
	if arr, isArr := AsArray(get(v, "kpis_principais")); isArr {
		kpis := make([]KPI, 0, len(arr))
		for _, item := range arr {
			kpis = append(kpis, KPI{
				Metric:    optText(get(item, "metrica")),
				Target:    optText(get(item, "objetivo")),
				Frequency: optText(get(item, "frequencia")),
			})
		}
		out.KPIs = Some(kpis)
	}
	if proj := get(v, "projecoes_financeiras"); Truthy(proj) {
		p := Projections{scenarios: make(map[string]Scenario)}
		for _, key := range []string{ScenarioConservative, ScenarioRealistic, ScenarioOptimistic} {
			data := get(proj, key)
			if !Truthy(data) {
				continue
			}
			p.scenarios[key] = Scenario{
				MonthlyRevenue:    optText(get(data, "receita_mensal")),
				CustomersPerMonth: optText(get(data, "clientes_mes")),
				AverageTicket:     optText(get(data, "ticket_medio")),
				ProfitMargin:      optText(get(data, "margem_lucro")),
			}
		}
		out.Projections = Some(p)
	}
	return Some(out)
}

// -- Sales Funnel --

// Funnel stage keys, in display order.
const (
	FunnelTop    = "topo_funil"
	FunnelMiddle = "meio_funil"
	FunnelBottom = "fundo_funil"
)

type Funnel struct {
	stages map[string]FunnelStage
}

type FunnelStage struct {
	Objective  Optional[string]
	Strategies Optional[[]string]
}

// Stage returns the named stage when its sub-document is present.
func (f Funnel) Stage(key string) Optional[FunnelStage] {
	s, ok := f.stages[key]
	if !ok {
		return None[FunnelStage]()
	}
	return Some(s)
}

// Funnel decodes funil_vendas_detalhado.
func (r *AnalysisResult) Funnel() Optional[Funnel] {
	v, ok := r.present(SectionFunnel)
	if !ok {
		return None[Funnel]()
	}
	f := Funnel{stages: make(map[string]FunnelStage)}
	for _, key := range []string{FunnelTop, FunnelMiddle, FunnelBottom} {
		data := get(v, key)
		if !Truthy(data) {
			continue
		}
		f.stages[key] = FunnelStage{
			Objective:  optText(get(data, "objetivo")),
			Strategies: optList(get(data, "estrategias")),
		}
	}
	return Some(f)
}

// -- Action Plan --

type ActionPlan struct {
	Phases []ActionPhase
}

type ActionPhase struct {
	Key        string
	Duration   Optional[string]
	Activities Optional[[]string]
	Investment Optional[string]
}

// ActionPlan decodes plano_acao_detalhado. Only structured phases are kept,
// in document order.
func (r *AnalysisResult) ActionPlan() Optional[ActionPlan] {
	v, ok := r.present(SectionActionPlan)
	if !ok {
		return None[ActionPlan]()
	}
	plan := ActionPlan{Phases: []ActionPhase{}}
	for _, e := range entriesOf(v) {
		switch e.Value.(type) {
		case *Object, []any:
		default:
			continue
		}
		plan.Phases = append(plan.Phases, ActionPhase{
			Key:        e.Key,
			Duration:   optText(get(e.Value, "duracao")),
			Activities: optList(get(e.Value, "atividades")),
			Investment: optText(get(e.Value, "investimento")),
		})
	}
	return Some(plan)
}

// -- Insights --

// Insights decodes insights_exclusivos. A non-array value is absent.
func (r *AnalysisResult) Insights() Optional[[]string] {
	arr, ok := r.presentArray(SectionInsights)
	if !ok {
		return None[[]string]()
	}
	return Some(textList(arr))
}

// -- Future Predictions --

type FuturePredictions struct {
	CurrentTrends Optional[[]Trend]
	Opportunities Optional[[]Opportunity]
}

type Trend struct {
	Name     string
	Phase    Optional[string]
	Impact   Optional[string]
	Timeline Optional[string]
}

type Opportunity struct {
	Name            Optional[string]
	Description     Optional[string]
	MarketPotential Optional[string]
	Timeline        Optional[string]
	ExpectedROI     Optional[string]
}

// FuturePredictions decodes predicoes_futuro_completas.
func (r *AnalysisResult) FuturePredictions() Optional[FuturePredictions] {
	v, ok := r.present(SectionFuturePredictions)
	if !ok {
		return None[FuturePredictions]()
	}
	out := FuturePredictions{}
	if current := get(v, "tendencias_atuais"); Truthy(current) {
		entries := entriesOf(get(current, "tendencias_relevantes"))
		trends := make([]Trend, 0, len(entries))
		for _, e := range entries {
			trends = append(trends, Trend{
				Name:     e.Key,
				Phase:    optText(get(e.Value, "fase_atual")),
				Impact:   optText(get(e.Value, "impacto_esperado")),
				Timeline: optText(get(e.Value, "timeline")),
			})
		}
		out.CurrentTrends = Some(trends)
	}
	if arr, isArr := AsArray(get(v, "oportunidades_emergentes")); isArr {
		opps := make([]Opportunity, 0, len(arr))
		for _, item := range arr {
			opps = append(opps, Opportunity{
				Name:            optText(get(item, "nome")),
				Description:     optText(get(item, "descricao")),
				MarketPotential: optText(get(item, "potencial_mercado")),
				Timeline:        optText(get(item, "timeline")),
				ExpectedROI:     optText(get(item, "roi_esperado")),
			})
		}
		out.Opportunities = Some(opps)
	}
	return Some(out)
}

// -- Web Research --

type WebResearch struct {
	Statistics Optional[[]Field]
	Queries    Optional[[]string]
	Sources    Optional[[]Source]
}

type Source struct {
	Title Optional[string]
	URL   Optional[string]
}

// WebResearch decodes pesquisa_web_massiva.
func (r *AnalysisResult) WebResearch() Optional[WebResearch] {
	v, ok := r.present(SectionWebResearch)
	if !ok {
		return None[WebResearch]()
	}
	out := WebResearch{
		Statistics: optFields(get(v, "estatisticas")),
		Queries:    optList(get(v, "queries_executadas")),
	}
	if arr, isArr := AsArray(get(v, "fontes")); isArr {
		sources := make([]Source, 0, len(arr))
		for _, item := range arr {
			sources = append(sources, Source{
				Title: optText(get(item, "title")),
				URL:   optText(get(item, "url")),
			})
		}
		out.Sources = Some(sources)
	}
	return Some(out)
}

// -- Metadata --

type Metadata struct {
	ProcessingTime       Optional[string]
	Engine               Optional[string]
	GeneratedAt          Optional[string]
	QualityScore         Optional[string]
	RealDataSources      Optional[string]
	TotalContentAnalyzed Optional[string]
	LocalFiles           Optional[LocalFiles]
}

type LocalFiles struct {
	FilesCreated Optional[string]
	Files        Optional[[]LocalFile]
}

type LocalFile struct {
	Name Optional[string]
	Type Optional[string]
	// Size is in bytes when the value is numeric.
	Size Optional[float64]
}

// Metadata decodes metadata.
func (r *AnalysisResult) Metadata() Optional[Metadata] {
	v, ok := r.present(SectionMetadata)
	if !ok {
		return None[Metadata]()
	}
	out := Metadata{
		ProcessingTime:       optText(get(v, "processing_time_formatted")),
		Engine:               optText(get(v, "analysis_engine")),
		GeneratedAt:          optText(get(v, "generated_at")),
		QualityScore:         optText(get(v, "quality_score")),
		RealDataSources:      optText(get(v, "real_data_sources")),
		TotalContentAnalyzed: optText(get(v, "total_content_analyzed")),
	}
	if local := get(v, "local_files"); Truthy(local) {
		lf := LocalFiles{FilesCreated: optText(get(local, "files_created"))}
		if arr, isArr := AsArray(get(local, "files")); isArr {
			files := make([]LocalFile, 0, len(arr))
			for _, item := range arr {
				f := LocalFile{
					Name: optText(get(item, "name")),
					Type: optText(get(item, "type")),
				}
				if n, isNum := get(item, "size").(json.Number); isNum {
					if size, err := n.Float64(); err == nil {
						f.Size = Some(size)
					}
				}
				files = append(files, f)
			}
			lf.Files = Some(files)
		}
		out.LocalFiles = Some(lf)
	}
	return Some(out)
}
