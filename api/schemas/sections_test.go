package schemas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqv30/arqv-cli/api/schemas"
)

func parseResult(t *testing.T, body string) *schemas.AnalysisResult {
	t.Helper()
	result, err := schemas.ParseAnalysisResult([]byte(body))
	require.NoError(t, err)
	return result
}

func mustGet[T any](t *testing.T, o schemas.Optional[T]) T {
	t.Helper()
	v, ok := o.Get()
	require.True(t, ok, "expected a present value")
	return v
}

func TestSections_FullFixture(t *testing.T) {
	t.Parallel()
	result, err := schemas.ParseAnalysisResult(loadFixture(t, "full_result.json"))
	require.NoError(t, err)

	for _, key := range schemas.SectionKeys {
		assert.True(t, result.HasSection(key), "section %s should be present", key)
	}

	t.Run("Avatar", func(t *testing.T) {
		avatar := mustGet(t, result.Avatar())
		demo := mustGet(t, avatar.Demographic)
		assert.Equal(t, []schemas.Field{{Key: "faixa_etaria", Value: "25-40"}, {Key: "renda_media", Value: "R$ 5.000"}}, demo)
		assert.Equal(t, []string{"falta de tempo", "cansaco"}, mustGet(t, avatar.VisceralPains))
	})

	t.Run("MentalDrivers", func(t *testing.T) {
		drivers := mustGet(t, mustGet(t, result.MentalDrivers()).Drivers)
		require.Len(t, drivers, 2)
		script := mustGet(t, drivers[0].Activation)
		assert.False(t, script.AnalogyStory.IsPresent(), "empty string is absent")
		assert.Equal(t, "Comece", script.ActionCommand.OrElse(""))
		assert.False(t, drivers[1].Name.IsPresent())
		assert.False(t, drivers[1].Activation.IsPresent())
	})

	t.Run("AntiObjection", func(t *testing.T) {
		objections := mustGet(t, mustGet(t, result.AntiObjection()).UniversalObjections)
		require.Len(t, objections, 2)
		assert.Equal(t, "tempo", objections[0].Kind)
		assert.Equal(t, "dinheiro", objections[1].Kind)
		assert.False(t, objections[1].Scripts.IsPresent())
	})

	t.Run("PrePitch", func(t *testing.T) {
		parts := mustGet(t, mustGet(t, result.PrePitch()).Script)
		require.Len(t, parts, 2)
		assert.Len(t, parts[0].Fields, 2)
		assert.Equal(t, "direto", parts[1].Text.OrElse(""))
	})

	t.Run("Competition", func(t *testing.T) {
		competitors := mustGet(t, result.Competition())
		require.Len(t, competitors, 2)
		assert.Equal(t, []string{"preco", "local", "marca", "app"}, competitors[0].Strengths)
		assert.Empty(t, competitors[0].Weaknesses, "non-array weaknesses are treated as empty")
		assert.False(t, competitors[1].Name.IsPresent())
	})

	t.Run("Metrics", func(t *testing.T) {
		metrics := mustGet(t, result.Metrics())
		proj := mustGet(t, metrics.Projections)
		assert.False(t, proj.Scenario(schemas.ScenarioRealistic).IsPresent())
		optimistic := mustGet(t, proj.Scenario(schemas.ScenarioOptimistic))
		assert.Equal(t, "300", optimistic.CustomersPerMonth.OrElse(""))
	})

	t.Run("Funnel", func(t *testing.T) {
		funnel := mustGet(t, result.Funnel())
		assert.True(t, funnel.Stage(schemas.FunnelTop).IsPresent())
		assert.False(t, funnel.Stage(schemas.FunnelMiddle).IsPresent())
		bottom := mustGet(t, funnel.Stage(schemas.FunnelBottom))
		assert.False(t, bottom.Strategies.IsPresent())
	})

	t.Run("ActionPlanSkipsScalarPhases", func(t *testing.T) {
		plan := mustGet(t, result.ActionPlan())
		require.Len(t, plan.Phases, 2)
		assert.Equal(t, "fase_1_preparacao", plan.Phases[0].Key)
		assert.Equal(t, "fase_2_lancamento", plan.Phases[1].Key)
	})

	t.Run("Metadata", func(t *testing.T) {
		meta := mustGet(t, result.Metadata())
		assert.Equal(t, "98.5", meta.QualityScore.OrElse(""))
		files := mustGet(t, mustGet(t, meta.LocalFiles).Files)
		require.Len(t, files, 2)
		assert.Equal(t, 2048.0, files[0].Size.OrElse(0))
		assert.False(t, files[1].Size.IsPresent())
		assert.Equal(t, "2025-01-15T10:30:00Z", result.GeneratedAt().OrElse(""))
	})
}

func TestSections_AbsentAndFalsy(t *testing.T) {
	t.Parallel()
	result := parseResult(t, `{"avatar_ultra_detalhado": null, "escopo": "", "metadata": 0, "plano_acao_detalhado": false}`)

	assert.False(t, result.Avatar().IsPresent())
	assert.False(t, result.Positioning().IsPresent())
	assert.False(t, result.Metadata().IsPresent())
	assert.False(t, result.ActionPlan().IsPresent())
	assert.False(t, result.Keywords().IsPresent())
	assert.False(t, result.GeneratedAt().IsPresent())
}

func TestSections_ArrayOnlySections(t *testing.T) {
	t.Parallel()
	result := parseResult(t, `{
		"provas_visuais_instantaneas": {"nome": "x"},
		"analise_concorrencia_detalhada": "many",
		"insights_exclusivos": []
	}`)

	assert.False(t, result.VisualProofs().IsPresent(), "object value is not an array")
	assert.False(t, result.Competition().IsPresent(), "string value is not an array")
	insights := mustGet(t, result.Insights())
	assert.Empty(t, insights, "an empty array is still present")
}

func TestSections_WrongShapesDegrade(t *testing.T) {
	t.Parallel()
	result := parseResult(t, `{
		"avatar_ultra_detalhado": "just text",
		"estrategia_palavras_chave": {"palavras_primarias": "seo", "long_tail": [1, true, null]},
		"drivers_mentais_customizados": {"drivers_customizados": ["not an object"]}
	}`)

	avatar := mustGet(t, result.Avatar())
	assert.False(t, avatar.Demographic.IsPresent())
	assert.False(t, avatar.VisceralPains.IsPresent())

	keywords := mustGet(t, result.Keywords())
	assert.False(t, keywords.Primary.IsPresent())
	assert.Equal(t, []string{"1", "true", "null"}, mustGet(t, keywords.LongTail))

	drivers := mustGet(t, mustGet(t, result.MentalDrivers()).Drivers)
	require.Len(t, drivers, 1)
	assert.False(t, drivers[0].Name.IsPresent())
}

func TestAnalysisResult_AccessorsDoNotMutate(t *testing.T) {
	t.Parallel()
	result, err := schemas.ParseAnalysisResult(loadFixture(t, "full_result.json"))
	require.NoError(t, err)
	before, err := result.MarshalJSON()
	require.NoError(t, err)

	_ = result.Avatar()
	_ = result.Metrics()
	_ = result.ActionPlan()
	_ = result.Metadata()

	after, err := result.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}
