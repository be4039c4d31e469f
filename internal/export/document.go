// Package export saves analysis results: server-rendered PDFs and direct
// JSON or YAML documents.
package export

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/config"
)

var (
	// ErrNoResult is returned when an export is requested without a current result.
	ErrNoResult = errors.New("no analysis result to export")
	// ErrRoundTrip is returned when an encoded document does not decode back to its source.
	ErrRoundTrip = errors.New("exported document does not round-trip")
)

// resultComparer compares results by document content, key order and number
// value included.
var resultComparer = cmp.Comparer(func(a, b *schemas.AnalysisResult) bool {
	return a.Equal(b)
})

// EncodeDocument serializes a result as an indented JSON or YAML document.
func EncodeDocument(result *schemas.AnalysisResult, format string) ([]byte, error) {
	if result == nil {
		return nil, ErrNoResult
	}
	switch format {
	case config.FormatJSON, "":
		out, err := schemas.MarshalIndent(result.Document())
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case config.FormatYAML:
		return encodeYAML(result.Document())
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// DecodeDocument parses a document written by EncodeDocument.
func DecodeDocument(data []byte, format string) (*schemas.AnalysisResult, error) {
	switch format {
	case config.FormatJSON, "":
		return schemas.ParseAnalysisResult(data)
	case config.FormatYAML:
		doc, err := decodeYAML(data)
		if err != nil {
			return nil, err
		}
		return schemas.NewAnalysisResult(doc), nil
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
}

// DocumentExporter writes results directly, without the remote service.
type DocumentExporter struct {
	saver  Saver
	cfg    config.ExportConfig
	logger *zap.Logger
	now    func() time.Time
}

func NewDocumentExporter(saver Saver, cfg config.ExportConfig, logger *zap.Logger) *DocumentExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentExporter{
		saver:  saver,
		cfg:    cfg,
		logger: logger.Named("document_export"),
		now:    time.Now,
	}
}

// Export encodes result in the configured format, optionally verifies the
// encoding decodes back to the same document, and saves it. It returns the
// saved path.
func (e *DocumentExporter) Export(result *schemas.AnalysisResult) (string, error) {
	if result == nil {
		return "", ErrNoResult
	}
	format := e.cfg.DocumentFormat
	data, err := EncodeDocument(result, format)
	if err != nil {
		return "", err
	}

	if e.cfg.VerifyRoundTrip {
		decoded, err := DecodeDocument(data, format)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrRoundTrip, err)
		}
		if !cmp.Equal(result, decoded, resultComparer) {
			return "", ErrRoundTrip
		}
	}

	name := DocumentFilename(result, e.now(), format)
	path, err := e.saver.Save(name, data)
	if err != nil {
		return "", err
	}
	e.logger.Info("Analysis document saved.", zap.String("path", path), zap.String("format", format), zap.Int("bytes", len(data)))
	return path, nil
}
