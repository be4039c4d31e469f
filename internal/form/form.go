// Package form collects submitted fields into a FormRecord and applies the
// admission rule checked before any request is sent.
package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/arqv30/arqv-cli/api/schemas"
	"github.com/arqv30/arqv-cli/internal/config"
)

// ErrValidation marks every admission failure.
var ErrValidation = errors.New("form validation failed")

// Field is one named input.
type Field struct {
	Name  string
	Value string
}

// FieldSource supplies named inputs. Sources are read in order when collecting.
type FieldSource interface {
	Fields() []Field
}

// Fields is a static FieldSource.
type Fields []Field

func (f Fields) Fields() []Field { return f }

// MapSource adapts a map, yielding fields in name order.
type MapSource map[string]string

func (m MapSource) Fields() []Field {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	out := make([]Field, 0, len(names))
	for _, k := range names {
		out = append(out, Field{Name: k, Value: m[k]})
	}
	return out
}

// ParsePairs reads name=value pairs as given on the command line.
// The value may be empty; the name may not.
func ParsePairs(pairs []string) (Fields, error) {
	out := make(Fields, 0, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field %q: expected name=value", p)
		}
		out = append(out, Field{Name: name, Value: value})
	}
	return out, nil
}

// Collector flattens field sources into a single record.
type Collector struct {
	sources []FieldSource
}

func NewCollector(sources ...FieldSource) *Collector {
	return &Collector{sources: sources}
}

// Collect returns every field present in the sources. Blank values are kept
// verbatim; when a name repeats, the last value wins.
func (c *Collector) Collect() schemas.FormRecord {
	record := make(schemas.FormRecord)
	for _, src := range c.sources {
		if src == nil {
			continue
		}
		for _, f := range src.Fields() {
			record[f.Name] = f.Value
		}
	}
	return record
}

// ValidationError explains why a record was refused. Its message is shown to the user as is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Validator enforces the minimum segment length. Every other field is accepted.
type Validator struct {
	segmentField string
	minLength    int
}

func NewValidator(cfg config.FormConfig) Validator {
	return Validator{segmentField: cfg.SegmentField, minLength: cfg.MinSegmentLength}
}

// Validate returns nil when the record may be submitted, otherwise a *ValidationError.
func (v Validator) Validate(record schemas.FormRecord) error {
	segment, _ := record.Get(v.segmentField)
	if utf8.RuneCountInString(strings.TrimSpace(segment)) < v.minLength {
		return &ValidationError{
			Field:  v.segmentField,
			Reason: fmt.Sprintf("Market segment is required (minimum %d characters)", v.minLength),
		}
	}
	return nil
}
