package schemas

import (
	"errors"
)

// SectionKey is the wire key of one top-level section of an analysis result.
type SectionKey string

const (
	SectionAvatar            SectionKey = "avatar_ultra_detalhado"
	SectionMentalDrivers     SectionKey = "drivers_mentais_customizados"
	SectionVisualProofs      SectionKey = "provas_visuais_instantaneas"
	SectionAntiObjection     SectionKey = "sistema_anti_objecao"
	SectionPrePitch          SectionKey = "pre_pitch_invisivel"
	SectionPositioning       SectionKey = "escopo"
	SectionCompetition       SectionKey = "analise_concorrencia_detalhada"
	SectionKeywords          SectionKey = "estrategia_palavras_chave"
	SectionMetrics           SectionKey = "metricas_performance_detalhadas"
	SectionFunnel            SectionKey = "funil_vendas_detalhado"
	SectionActionPlan        SectionKey = "plano_acao_detalhado"
	SectionInsights          SectionKey = "insights_exclusivos"
	SectionFuturePredictions SectionKey = "predicoes_futuro_completas"
	SectionWebResearch       SectionKey = "pesquisa_web_massiva"
	SectionMetadata          SectionKey = "metadata"
)

// SectionKeys lists every section in rendering order.
var SectionKeys = []SectionKey{
	SectionAvatar,
	SectionMentalDrivers,
	SectionVisualProofs,
	SectionAntiObjection,
	SectionPrePitch,
	SectionPositioning,
	SectionCompetition,
	SectionKeywords,
	SectionMetrics,
	SectionFunnel,
	SectionActionPlan,
	SectionInsights,
	SectionFuturePredictions,
	SectionWebResearch,
	SectionMetadata,
}

func (k SectionKey) String() string { return string(k) }

// -- Analysis Result --

// AnalysisResult wraps the document returned by a successful analysis.
// It is read-only: accessors decode sections on demand and never modify the
// underlying document, so one result can be projected and exported any number of times.
type AnalysisResult struct {
	doc *Object
}

// NewAnalysisResult wraps an already decoded document.
func NewAnalysisResult(doc *Object) *AnalysisResult {
	if doc == nil {
		doc = NewObject()
	}
	return &AnalysisResult{doc: doc}
}

// ParseAnalysisResult decodes a response body into a result.
func ParseAnalysisResult(data []byte) (*AnalysisResult, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{doc: doc}, nil
}

// Document exposes the underlying ordered document. Callers must not modify it.
func (r *AnalysisResult) Document() *Object {
	return r.doc
}

// Section returns the raw value stored under a section key.
func (r *AnalysisResult) Section(key SectionKey) (any, bool) {
	return r.doc.Get(string(key))
}

// HasSection reports whether a section is present under the display truthiness rules.
func (r *AnalysisResult) HasSection(key SectionKey) bool {
	v, _ := r.Section(key)
	return Truthy(v)
}

// GeneratedAt returns metadata.generated_at when it is a non-empty value.
func (r *AnalysisResult) GeneratedAt() Optional[string] {
	v, _ := r.Section(SectionMetadata)
	return optText(lookup(v, "generated_at"))
}

// Segment returns the market segment echoed back by the service, if any.
func (r *AnalysisResult) Segment() Optional[string] {
	v, _ := r.doc.Get("segmento")
	return optText(v)
}

// MarshalJSON writes the document unchanged, key order included.
func (r *AnalysisResult) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}
	return r.doc.MarshalJSON()
}

// UnmarshalJSON decodes a document into the result.
func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	doc, err := ParseDocument(data)
	if err != nil {
		return err
	}
	r.doc = doc
	return nil
}

// Equal reports whether two results hold equal documents.
func (r *AnalysisResult) Equal(other *AnalysisResult) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.doc.Equal(other.doc)
}

// ErrEmptyBody is returned when a response carried no document at all.
var ErrEmptyBody = errors.New("empty response body")
