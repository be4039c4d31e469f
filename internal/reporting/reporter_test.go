// internal/reporting/reporter_test.go
package reporting_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/reporting"
	"github.com/arqv30/arqv-cli/internal/results"
)

func project(t *testing.T, doc string) results.View {
	t.Helper()
	r, err := schemas.ParseAnalysisResult([]byte(doc))
	require.NoError(t, err)
	return results.Project(r)
}

const richDoc = `{
	"avatar_ultra_detalhado": {"perfil_demografico": {"idade": "<script>alert(1)</script>"}, "dores_viscerais": ["a & b"]},
	"analise_concorrencia_detalhada": [{"nome": "Rival", "analise_swot": {"forcas": ["preco"]}}],
	"insights_exclusivos": ["primeiro", "segundo"]
}`

func TestNew(t *testing.T) {
	t.Run("Stdout", func(t *testing.T) {
		for _, format := range []string{reporting.FormatText, reporting.FormatHTML, reporting.FormatJSON} {
			s, err := reporting.New(format, "")
			require.NoError(t, err, format)
			assert.NotNil(t, s)
		}
	})

	t.Run("File", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "view.html")
		s, err := reporting.New(reporting.FormatHTML, out)
		require.NoError(t, err)
		require.NoError(t, reporting.Render(s, project(t, richDoc)))
		require.NoError(t, s.Close())

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), `id="avatarResults"`)
	})

	t.Run("UnsupportedFormat", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "view.sarif")
		s, err := reporting.New("sarif", out)
		assert.Nil(t, s)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported output format: sarif")
		_, statErr := os.Stat(out)
		assert.True(t, os.IsNotExist(statErr), "no file is created for a rejected format")
	})
}

func TestHTMLSurface(t *testing.T) {
	var buf bytes.Buffer
	s, err := reporting.NewHTMLSurface(reporting.NopWriteCloser(&buf))
	require.NoError(t, err)

	require.NoError(t, reporting.Render(s, project(t, richDoc)))
	require.NoError(t, s.Close())

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	t.Run("ContainersInOrder", func(t *testing.T) {
		var ids []string
		doc.Find("main#results > section").Each(func(_ int, sel *goquery.Selection) {
			id, _ := sel.Attr("id")
			ids = append(ids, id)
		})
		assert.Equal(t, results.Containers(), ids)
	})

	t.Run("TextIsEscaped", func(t *testing.T) {
		assert.Zero(t, doc.Find("script").Length())
		assert.Contains(t, doc.Find("#avatarResults .info-card").Text(), "<script>alert(1)</script>")
		assert.Equal(t, "a & b", doc.Find("#avatarResults .insight-list li").First().Text())
	})

	t.Run("Sections", func(t *testing.T) {
		assert.Equal(t, "Exclusive Insights (2)", doc.Find("#insightsResults h4").Text())
		assert.Equal(t, 2, doc.Find("#insightsResults .insight-card").Length())
		assert.Equal(t, "Rival", doc.Find("#competitionResults tbody td").First().Text())
		assert.Zero(t, doc.Find("#metadataResults").Children().Length())
	})
}

func TestRender_ClearsStaleFragments(t *testing.T) {
	s, err := reporting.NewHTMLSurface(reporting.NopWriteCloser(&bytes.Buffer{}))
	require.NoError(t, err)

	require.NoError(t, reporting.Render(s, project(t, richDoc)))
	require.NotZero(t, s.Document().Find("#avatarResults").Children().Length())

	require.NoError(t, reporting.Render(s, project(t, `{"insights_exclusivos": ["novo"]}`)))
	doc := s.Document()
	assert.Zero(t, doc.Find("#avatarResults").Children().Length())
	assert.Zero(t, doc.Find("#competitionResults").Children().Length())
	assert.Equal(t, "Exclusive Insights (1)", doc.Find("#insightsResults h4").Text())
	assert.Equal(t, 1, doc.Find("#insightsResults .result-section").Length(), "re-rendering replaces rather than appends")
}

func TestTextSurface(t *testing.T) {
	var buf bytes.Buffer
	s := reporting.NewTextSurface(reporting.NopWriteCloser(&buf))
	require.NoError(t, reporting.Render(s, project(t, richDoc)))
	require.NoError(t, s.Close())

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "== Ultra-Detailed Avatar =="), out)
	assert.Contains(t, out, "== Exclusive Insights (2) ==")
	assert.Contains(t, out, "  1. primeiro\n")
	assert.Contains(t, out, "Competitor | Strengths | Weaknesses | Strategy")
	assert.Less(t, strings.Index(out, "Competitive Analysis"), strings.Index(out, "Exclusive Insights"))
}

func TestJSONSurface(t *testing.T) {
	var buf bytes.Buffer
	s := reporting.NewJSONSurface(reporting.NopWriteCloser(&buf))
	require.NoError(t, reporting.Render(s, project(t, richDoc)))
	require.NoError(t, s.Close())

	var fragments []results.Fragment
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fragments))
	require.Len(t, fragments, 3)
	assert.Equal(t, "avatarResults", fragments[0].Container)
	assert.Equal(t, schemas.SectionInsights, fragments[2].Section)
}

func TestApply_UnknownContainer(t *testing.T) {
	f := results.Fragment{Container: "nowhere"}

	html, err := reporting.NewHTMLSurface(reporting.NopWriteCloser(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.Error(t, html.Apply(f))
	assert.Error(t, reporting.NewTextSurface(reporting.NopWriteCloser(&bytes.Buffer{})).Apply(f))
	assert.Error(t, reporting.NewJSONSurface(reporting.NopWriteCloser(&bytes.Buffer{})).Apply(f))
}
