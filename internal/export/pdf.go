package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/arqv30/arqv-cli/api/schemas"
)

// PDFGenerator renders a result on the remote service.
type PDFGenerator interface {
	GeneratePDF(ctx context.Context, result *schemas.AnalysisResult) ([]byte, error)
}

// PDFExport describes a saved server-rendered document.
type PDFExport struct {
	Path  string
	Bytes int
	// Pages is absent when the payload could not be read as a PDF.
	Pages schemas.Optional[int]
}

// PDFExporter asks the service for a rendered document and saves it.
type PDFExporter struct {
	generator PDFGenerator
	saver     Saver
	logger    *zap.Logger
	now       func() time.Time
}

func NewPDFExporter(generator PDFGenerator, saver Saver, logger *zap.Logger) *PDFExporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFExporter{
		generator: generator,
		saver:     saver,
		logger:    logger.Named("pdf_export"),
		now:       time.Now,
	}
}

// Export sends result to the renderer and saves the returned bytes. Nothing is
// saved when the request fails.
func (e *PDFExporter) Export(ctx context.Context, result *schemas.AnalysisResult) (PDFExport, error) {
	if result == nil {
		return PDFExport{}, ErrNoResult
	}
	data, err := e.generator.GeneratePDF(ctx, result)
	if err != nil {
		return PDFExport{}, err
	}

	out := PDFExport{Bytes: len(data)}
	if pages, err := CountPages(data); err != nil {
		e.logger.Warn("Rendered payload is not a readable PDF, saving it as received.", zap.Error(err))
	} else {
		out.Pages = schemas.Some(pages)
	}

	path, err := e.saver.Save(PDFFilename(e.now()), data)
	if err != nil {
		return PDFExport{}, err
	}
	out.Path = path
	e.logger.Info("PDF report saved.", zap.String("path", path), zap.Int("bytes", out.Bytes))
	return out, nil
}

// CountPages returns the page count of a PDF held in memory.
func CountPages(data []byte) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("failed to open pdf: %w", err)
	}
	return reader.NumPage(), nil
}
