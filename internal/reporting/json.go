package reporting

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/arqv30/arqv-cli/internal/results"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSONSurface emits the present fragments as a JSON array on Close.
type JSONSurface struct {
	writer io.WriteCloser
	slots  []*results.Fragment
}

func NewJSONSurface(w io.WriteCloser) *JSONSurface {
	return &JSONSurface{writer: w, slots: make([]*results.Fragment, len(results.Containers()))}
}

func (s *JSONSurface) Clear() error {
	for i := range s.slots {
		s.slots[i] = nil
	}
	return nil
}

func (s *JSONSurface) Apply(f results.Fragment) error {
	i, err := slotIndex(f.Container)
	if err != nil {
		return err
	}
	s.slots[i] = &f
	return nil
}

// Fragments returns the applied fragments in rendering order.
func (s *JSONSurface) Fragments() []results.Fragment {
	out := make([]results.Fragment, 0, len(s.slots))
	for _, f := range s.slots {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

func (s *JSONSurface) Close() error {
	data, err := json.MarshalIndent(s.Fragments(), "", "  ")
	if err != nil {
		s.writer.Close()
		return fmt.Errorf("failed to encode fragments: %w", err)
	}
	data = append(data, '\n')
	if _, err := s.writer.Write(data); err != nil {
		s.writer.Close()
		return fmt.Errorf("failed to write fragments: %w", err)
	}
	return s.writer.Close()
}
