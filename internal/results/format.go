package results

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/arqv30/arqv-cli/api/schemas"
)

// Placeholder is shown for any absent scalar field.
const Placeholder = "N/A"

// Bounded previews.
const (
	maxSwotItems      = 3
	maxSecondaryTags  = 20
	maxConsultedLinks = 20
)

// timestampLayouts are tried in order when displaying generated_at.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

const displayTimeLayout = "2006-01-02 15:04:05"

func orNA(o schemas.Optional[string]) string {
	return o.OrElse(Placeholder)
}

func humanize(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

func heading(key string) string {
	return strings.ToUpper(humanize(key))
}

func counted(label string, n int) string {
	return fmt.Sprintf("%s (%d)", label, n)
}

func head(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func humanizeFields(fields []schemas.Field) []schemas.Field {
	out := make([]schemas.Field, len(fields))
	for i, f := range fields {
		out[i] = schemas.Field{Key: humanize(f.Key), Value: f.Value}
	}
	return out
}

func quoted(items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = `"` + s + `"`
	}
	return out
}

// groupThousands inserts comma separators into the integer part of a numeric
// literal. Non-numeric text is returned unchanged.
func groupThousands(s string) string {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return s
	}
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	if s == "" || s[0] < '0' || s[0] > '9' {
		return sign + s
	}
	intPart, frac := s, ""
	if i := strings.IndexAny(s, ".eE"); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	if len(intPart) <= 3 {
		return sign + intPart + frac
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	return sign + b.String() + frac
}

func formatKB(size float64) string {
	return fmt.Sprintf("%.1f KB", size/1024)
}

// formatTimestamp renders an ISO timestamp in loc, or returns raw as-is when
// it cannot be parsed.
func formatTimestamp(raw string, loc *time.Location) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.In(loc).Format(displayTimeLayout)
		}
	}
	return raw
}
