package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arqv30/arqv-cli/api/schemas"
)

func parseResult(t *testing.T, doc string) *schemas.AnalysisResult {
	t.Helper()
	r, err := schemas.ParseAnalysisResult([]byte(doc))
	require.NoError(t, err)
	return r
}

func loadFullResult(t *testing.T) *schemas.AnalysisResult {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "full_result.json"))
	require.NoError(t, err)
	r, err := schemas.ParseAnalysisResult(data)
	require.NoError(t, err)
	return r
}

func mustFragment(t *testing.T, v View, key schemas.SectionKey) Fragment {
	t.Helper()
	f, ok := v.Fragment(key).Get()
	require.True(t, ok, "expected a fragment for %s", key)
	return f
}

func TestContainers(t *testing.T) {
	assert.Equal(t, []string{
		"avatarResults", "driversResults", "visualProofsResults", "antiObjectionResults",
		"prePitchResults", "positioningResults", "competitionResults", "keywordsResults",
		"metricsResults", "funnelResults", "actionPlanResults", "insightsResults",
		"futureResults", "researchResults", "metadataResults",
	}, Containers())

	for i, slot := range EmptyView().Slots() {
		assert.Equal(t, schemas.SectionKeys[i], slot.Section, "slot order follows section order")
		assert.False(t, slot.Fragment.IsPresent())
	}
}

func TestProject_FullResult(t *testing.T) {
	p := NewProjector(zap.NewNop(), WithLocation(time.UTC))
	view := p.Project(loadFullResult(t))

	require.Len(t, view.Fragments(), len(schemas.SectionKeys))

	t.Run("Avatar", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionAvatar)
		assert.Equal(t, "avatarResults", f.Container)
		require.Len(t, f.Blocks, 4)
		assert.Equal(t, []schemas.Field{{Key: "faixa etaria", Value: "25-40"}, {Key: "renda media", Value: "R$ 5.000"}}, f.Blocks[0].Fields)
		assert.Equal(t, "Visceral Pains (2)", f.Blocks[2].Title)
		assert.Equal(t, "Secret Desires (1)", f.Blocks[3].Title)
	})

	t.Run("MentalDrivers", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionMentalDrivers)
		require.Len(t, f.Blocks, 2)
		first := f.Blocks[0]
		assert.Equal(t, "Driver 1: Urgencia", first.Title)
		require.Len(t, first.Children, 2)
		assert.Equal(t, "N/A", first.Children[0].Fields[1].Value, "empty story falls back to the placeholder")
		assert.Equal(t, []string{`"agora ou nunca"`}, first.Children[1].Items)

		second := f.Blocks[1]
		assert.Equal(t, "Driver 2: Mental Driver", second.Title)
		assert.Equal(t, []schemas.Field{{Key: "Central Trigger", Value: "N/A"}, {Key: "Definition", Value: "N/A"}}, second.Fields)
		assert.Empty(t, second.Children)
	})

	t.Run("AntiObjection", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionAntiObjection)
		require.Len(t, f.Blocks, 1)
		cards := f.Blocks[0].Children
		require.Len(t, cards, 2)
		assert.Equal(t, "TEMPO", cards[0].Title)
		assert.Equal(t, []string{"script 1"}, cards[0].Items)
		assert.Equal(t, "DINHEIRO", cards[1].Title)
		assert.Equal(t, "N/A", cards[1].Fields[1].Value)
	})

	t.Run("PrePitch", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionPrePitch)
		script := f.Blocks[0]
		assert.True(t, script.Expanded)
		require.Len(t, script.Children, 2)
		assert.Equal(t, "ABERTURA IMPACTO", script.Children[0].Title)
		assert.Equal(t, "tempo estimado", script.Children[0].Fields[0].Key)
		assert.Equal(t, "direto", script.Children[1].Text)
	})

	t.Run("Competition", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionCompetition)
		table := f.Blocks[0]
		assert.Equal(t, [][]string{
			{"Academia X", "preco, local, marca", "", "volume"},
			{"Competitor", "", "", "N/A"},
		}, table.Rows)
	})

	t.Run("Metrics", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionMetrics)
		require.Len(t, f.Blocks, 2)
		assert.Equal(t, "CAC", f.Blocks[0].Title)
		rows := f.Blocks[1].Rows
		assert.Equal(t, [][]string{
			{"Conservative", "R$ 30k", "N/A", "N/A", "N/A"},
			{"Optimistic", "R$ 90k", "300", "R$ 300", "40%"},
		}, rows, "fixed scenario order, absent scenarios skipped")
	})

	t.Run("Funnel", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionFunnel)
		require.Len(t, f.Blocks, 2)
		assert.Equal(t, "Top of Funnel", f.Blocks[0].Title)
		assert.Equal(t, "Bottom of Funnel", f.Blocks[1].Title)
		assert.Empty(t, f.Blocks[1].Children)
	})

	t.Run("ActionPlan", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionActionPlan)
		require.Len(t, f.Blocks, 2, "scalar entries are not phases")
		assert.Equal(t, "FASE 1 PREPARACAO", f.Blocks[0].Title)
		assert.Equal(t, []schemas.Field{{Key: "Duration", Value: "30 dias"}, {Key: "Investment", Value: "R$ 1.000"}}, f.Blocks[0].Fields)
		assert.Equal(t, "FASE 2 LANCAMENTO", f.Blocks[1].Title)
	})

	t.Run("Insights", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionInsights)
		assert.Equal(t, "Exclusive Insights (2)", f.Title)
		assert.Equal(t, []string{"insight a", "insight b"}, f.Blocks[0].Items)
	})

	t.Run("FuturePredictions", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionFuturePredictions)
		require.Len(t, f.Blocks, 2)
		assert.Equal(t, "TREINO HIBRIDO", f.Blocks[0].Children[0].Title)
		assert.Equal(t, "Emerging Opportunities (1)", f.Blocks[1].Title)
		opp := f.Blocks[1].Children[0]
		assert.Equal(t, "N/A", opp.Text)
		assert.Equal(t, "3x", opp.Fields[2].Value)
	})

	t.Run("Metadata", func(t *testing.T) {
		f := mustFragment(t, view, schemas.SectionMetadata)
		require.Len(t, f.Blocks, 3)
		assert.Equal(t, BlockBanner, f.Blocks[0].Kind)
		grid := f.Blocks[1].Fields
		assert.Equal(t, "2025-01-15 10:30:00", grid[2].Value)
		assert.Equal(t, "98.5%", grid[3].Value)
		assert.Equal(t, "12", grid[4].Value)
		assert.Equal(t, "123,456 chars", grid[5].Value)

		files := f.Blocks[2]
		assert.Equal(t, "Saved Local Files (2)", files.Title)
		assert.Equal(t, []string{"avatar.txt (txt) - 2.0 KB", "x.txt (N/A) - N/A"}, files.Children[1].Items)
	})
}

func TestProject_OnlyPresentSections(t *testing.T) {
	view := Project(parseResult(t, `{"avatar_ultra_detalhado":{"perfil_demografico":{"idade":"30"}}}`))

	for _, slot := range view.Slots() {
		if slot.Section == schemas.SectionAvatar {
			assert.True(t, slot.Fragment.IsPresent())
			continue
		}
		assert.False(t, slot.Fragment.IsPresent(), "section %s must stay empty", slot.Section)
	}
}

func TestProject_Idempotent(t *testing.T) {
	p := NewProjector(nil, WithLocation(time.UTC))
	result := loadFullResult(t)

	first := p.Project(result).Fragments()
	second := p.Project(result).Fragments()
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("projection changed between runs (-first +second):\n%s", diff)
	}
}

func TestProject_NilResult(t *testing.T) {
	assert.True(t, Project(nil).Empty())
}

func TestProject_HeaderOnlySections(t *testing.T) {
	view := Project(parseResult(t, `{"escopo":"premium","sistema_anti_objecao":{"objecoes_universais":null}}`))

	pos := mustFragment(t, view, schemas.SectionPositioning)
	assert.Equal(t, "Scope and Positioning", pos.Title)
	assert.Empty(t, pos.Blocks)

	ao := mustFragment(t, view, schemas.SectionAntiObjection)
	assert.Empty(t, ao.Blocks)
}

func TestProject_BoundedPreviews(t *testing.T) {
	secondary := make([]string, 25)
	sources := make([]string, 30)
	for i := range secondary {
		secondary[i] = fmt.Sprintf("%q", fmt.Sprintf("kw%d", i))
	}
	for i := range sources {
		sources[i] = fmt.Sprintf(`{"title":"src %d","url":"https://example.com/%d"}`, i, i)
	}
	doc := fmt.Sprintf(`{"estrategia_palavras_chave":{"palavras_secundarias":[%s]},"pesquisa_web_massiva":{"fontes":[%s]}}`,
		strings.Join(secondary, ","), strings.Join(sources, ","))
	view := Project(parseResult(t, doc))

	kw := mustFragment(t, view, schemas.SectionKeywords)
	assert.Equal(t, "Secondary Keywords (25)", kw.Blocks[0].Title)
	assert.Len(t, kw.Blocks[0].Items, maxSecondaryTags)

	research := mustFragment(t, view, schemas.SectionWebResearch)
	assert.Equal(t, "Consulted Sources (30)", research.Blocks[0].Title)
	assert.Len(t, research.Blocks[0].Children, maxConsultedLinks)
}

func TestProject_PanicIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := NewProjector(zap.New(core))

	original := sections[1].project
	sections[1].project = func(*Projector, *schemas.AnalysisResult) schemas.Optional[Fragment] {
		panic("boom")
	}
	t.Cleanup(func() { sections[1].project = original })

	view := p.Project(parseResult(t, `{"avatar_ultra_detalhado":{"dores_viscerais":["a"]},"drivers_mentais_customizados":{},"insights_exclusivos":["x"]}`))

	assert.True(t, view.Fragment(schemas.SectionAvatar).IsPresent())
	assert.False(t, view.Fragment(schemas.SectionMentalDrivers).IsPresent())
	assert.True(t, view.Fragment(schemas.SectionInsights).IsPresent())

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, string(schemas.SectionMentalDrivers), entry.ContextMap()["section"])
}

func TestGroupThousands(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"0", "0"},
		{"999", "999"},
		{"1000", "1,000"},
		{"123456", "123,456"},
		{"1234567.89", "1,234,567.89"},
		{"-98765", "-98,765"},
		{"Infinity", "Infinity"},
		{"muitos", "muitos"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, groupThousands(tt.in))
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "2025-01-15 10:30:00", formatTimestamp("2025-01-15T10:30:00.123456", time.UTC))
	assert.Equal(t, "2025-01-15 07:30:00", formatTimestamp("2025-01-15T10:30:00Z", time.FixedZone("BRT", -3*3600)))
	assert.Equal(t, "ontem", formatTimestamp("ontem", time.UTC))
}
