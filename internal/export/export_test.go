package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/config"
)

var fixedNow = time.Date(2025, 3, 9, 23, 30, 0, 0, time.FixedZone("BRT", -3*3600))

const sampleDoc = `{"segmento":"Fitness","clientes":300,"texto_numerico":"300","flag":"true","vazio":null,"ativo":false,` +
	`"ratio":1.50,"lista":[1,"dois",{"z":1,"a":2}],"metadata":{"generated_at":"2025-01-15T10:30:00Z"}}`

func parse(t *testing.T, doc string) *schemas.AnalysisResult {
	t.Helper()
	r, err := schemas.ParseAnalysisResult([]byte(doc))
	require.NoError(t, err)
	return r
}

// minimalPDF assembles a structurally valid PDF with the given number of blank pages.
func minimalPDF(pages int) []byte {
	var b strings.Builder
	offsets := []int{}
	b.WriteString("%PDF-1.4\n")
	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return []byte(b.String())
}

type fakeGenerator struct {
	data  []byte
	err   error
	calls int
}

func (f *fakeGenerator) GeneratePDF(_ context.Context, _ *schemas.AnalysisResult) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

type memSaver struct {
	files map[string][]byte
	err   error
}

func (m *memSaver) Save(name string, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.files == nil {
		m.files = map[string][]byte{}
	}
	m.files[name] = data
	return "/mem/" + name, nil
}

func TestFilenames(t *testing.T) {
	assert.Equal(t, "analise_mercado_2025-03-10.pdf", PDFFilename(fixedNow), "dates are taken in UTC")

	t.Run("FromGeneratedAt", func(t *testing.T) {
		r := parse(t, `{"metadata":{"generated_at":"2025-01-15T10:30:00Z"}}`)
		assert.Equal(t, "analise_2025-01-15.json", DocumentFilename(r, fixedNow, config.FormatJSON))
		assert.Equal(t, "analise_2025-01-15.yaml", DocumentFilename(r, fixedNow, config.FormatYAML))
	})

	t.Run("FallsBackToToday", func(t *testing.T) {
		assert.Equal(t, "analise_2025-03-10.json", DocumentFilename(parse(t, `{"metadata":{}}`), fixedNow, config.FormatJSON))
		assert.Equal(t, "analise_2025-03-10.json", DocumentFilename(parse(t, `{"metadata":{"generated_at":""}}`), fixedNow, config.FormatJSON))
	})

	t.Run("ShortOrUnsafeDates", func(t *testing.T) {
		assert.Equal(t, "analise_ontem.json", DocumentFilename(parse(t, `{"metadata":{"generated_at":"ontem"}}`), fixedNow, config.FormatJSON))
		assert.Equal(t, "analise_15-01-2025.json", DocumentFilename(parse(t, `{"metadata":{"generated_at":"15/01/2025 10:30"}}`), fixedNow, config.FormatJSON))
	})
}

func TestEncodeDocument_RoundTrip(t *testing.T) {
	original := parse(t, sampleDoc)

	for _, format := range []string{config.FormatJSON, config.FormatYAML} {
		t.Run(format, func(t *testing.T) {
			data, err := EncodeDocument(original, format)
			require.NoError(t, err)

			decoded, err := DecodeDocument(data, format)
			require.NoError(t, err)
			assert.True(t, original.Equal(decoded), "decoded:\n%s", data)
			assert.Equal(t, original.Document().Keys(), decoded.Document().Keys())
		})
	}

	t.Run("JSONIsIndentedInOrder", func(t *testing.T) {
		data, err := EncodeDocument(parse(t, `{"b":1,"a":[]}`), config.FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": []\n}\n", string(data))
	})

	t.Run("YAMLQuotesAmbiguousStrings", func(t *testing.T) {
		data, err := EncodeDocument(original, config.FormatYAML)
		require.NoError(t, err)
		out := string(data)
		assert.Contains(t, out, "clientes: 300\n")
		assert.Contains(t, out, `texto_numerico: "300"`)
		assert.Contains(t, out, `flag: "true"`)
		assert.Contains(t, out, "ratio: 1.50\n")
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := EncodeDocument(original, "xml")
		assert.Error(t, err)
	})

	t.Run("NilResult", func(t *testing.T) {
		_, err := EncodeDocument(nil, config.FormatJSON)
		assert.ErrorIs(t, err, ErrNoResult)
	})
}

func TestDocumentExporter(t *testing.T) {
	cfg := config.ExportConfig{DocumentFormat: config.FormatYAML, VerifyRoundTrip: true}

	t.Run("Saves", func(t *testing.T) {
		saver := &memSaver{}
		e := NewDocumentExporter(saver, cfg, zaptest.NewLogger(t))
		e.now = func() time.Time { return fixedNow }

		path, err := e.Export(parse(t, sampleDoc))
		require.NoError(t, err)
		assert.Equal(t, "/mem/analise_2025-01-15.yaml", path)
		assert.Contains(t, string(saver.files["analise_2025-01-15.yaml"]), "segmento: Fitness")
	})

	t.Run("NoResult", func(t *testing.T) {
		saver := &memSaver{}
		_, err := NewDocumentExporter(saver, cfg, nil).Export(nil)
		assert.ErrorIs(t, err, ErrNoResult)
		assert.Empty(t, saver.files)
	})

	t.Run("SaveFailure", func(t *testing.T) {
		boom := errors.New("disk full")
		_, err := NewDocumentExporter(&memSaver{err: boom}, cfg, nil).Export(parse(t, sampleDoc))
		assert.ErrorIs(t, err, boom)
	})
}

func TestCountPages(t *testing.T) {
	pages, err := CountPages(minimalPDF(3))
	require.NoError(t, err)
	assert.Equal(t, 3, pages)

	_, err = CountPages([]byte("definitely not a pdf"))
	assert.Error(t, err)
}

func TestPDFExporter(t *testing.T) {
	result := parse(t, `{"segmento":"Varejo"}`)

	t.Run("SavesWithPageCount", func(t *testing.T) {
		saver := &memSaver{}
		e := NewPDFExporter(&fakeGenerator{data: minimalPDF(2)}, saver, zaptest.NewLogger(t))
		e.now = func() time.Time { return fixedNow }

		out, err := e.Export(context.Background(), result)
		require.NoError(t, err)
		assert.Equal(t, "/mem/analise_mercado_2025-03-10.pdf", out.Path)
		pages, ok := out.Pages.Get()
		require.True(t, ok)
		assert.Equal(t, 2, pages)
	})

	t.Run("UnreadablePayloadStillSaved", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		saver := &memSaver{}
		e := NewPDFExporter(&fakeGenerator{data: []byte("%PDF-broken")}, saver, zap.New(core))

		out, err := e.Export(context.Background(), result)
		require.NoError(t, err)
		assert.False(t, out.Pages.IsPresent())
		assert.Len(t, saver.files, 1)
		assert.Equal(t, 1, logs.Len())
	})

	t.Run("GeneratorFailureSavesNothing", func(t *testing.T) {
		saver := &memSaver{}
		boom := errors.New("renderer offline")
		_, err := NewPDFExporter(&fakeGenerator{err: boom}, saver, nil).Export(context.Background(), result)
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, saver.files)
	})

	t.Run("NoResultMakesNoCall", func(t *testing.T) {
		gen := &fakeGenerator{}
		_, err := NewPDFExporter(gen, &memSaver{}, nil).Export(context.Background(), nil)
		assert.ErrorIs(t, err, ErrNoResult)
		assert.Zero(t, gen.calls)
	})
}

func TestFileSaver(t *testing.T) {
	t.Run("WritesAtomically", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "out")
		s, err := NewFileSaver(dir)
		require.NoError(t, err)

		path, err := s.Save("analise.json", []byte(`{}`))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "analise.json"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{}", string(data))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 1, "no temporary files are left behind")
	})

	t.Run("ExpandsHome", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		homedir.DisableCache = true
		t.Cleanup(func() { homedir.DisableCache = false })

		s, err := NewFileSaver("~/exports")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, "exports"), s.Dir())
	})

	t.Run("RejectsPaths", func(t *testing.T) {
		s, err := NewFileSaver(t.TempDir())
		require.NoError(t, err)
		_, err = s.Save("../escape.json", []byte("x"))
		assert.Error(t, err)
		_, err = s.Save("", []byte("x"))
		assert.Error(t, err)
	})
}
