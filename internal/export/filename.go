package export

import (
	"strings"
	"time"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/config"
)

const dateLayout = "2006-01-02"

// PDFFilename names a server-rendered export after the current UTC date.
func PDFFilename(now time.Time) string {
	return "analise_mercado_" + now.UTC().Format(dateLayout) + ".pdf"
}

// DocumentFilename names a direct export after the result's embedded
// generation date, or the current UTC date when there is none.
func DocumentFilename(result *schemas.AnalysisResult, now time.Time, format string) string {
	date := now.UTC().Format(dateLayout)
	if result != nil {
		if generated, ok := result.GeneratedAt().Get(); ok {
			date = generated
			if r := []rune(generated); len(r) > len(dateLayout) {
				date = string(r[:len(dateLayout)])
			}
		}
	}
	return "analise_" + unsafeNameChars.Replace(date) + extension(format)
}

var unsafeNameChars = strings.NewReplacer("/", "-", "\\", "-", ":", "-")

func extension(format string) string {
	if format == config.FormatYAML {
		return ".yaml"
	}
	return ".json"
}
