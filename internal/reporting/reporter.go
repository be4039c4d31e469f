// -- internal/reporting/reporter.go --
package reporting

import (
	"fmt"
	"io"
	"os"

	"github.com/arqv30/arqv-cli/internal/results"
)

// Output formats accepted by New.
const (
	FormatText = "text"
	FormatHTML = "html"
	FormatJSON = "json"
)

// Surface is a display target for projected fragments. Fragments are keyed by
// their container id; applying a fragment replaces whatever the container held.
type Surface interface {
	// Clear empties every container.
	Clear() error
	// Apply draws one fragment into its container.
	Apply(fragment results.Fragment) error
	// Close writes the surface out and releases the underlying writer.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error {
	return nil
}

// NopWriteCloser lets a surface write to w without ever closing it.
func NopWriteCloser(w io.Writer) io.WriteCloser {
	return &nopWriteCloser{w}
}

// New creates a surface for the given format writing to outputPath, or to
// stdout when the path is empty or "stdout".
func New(format, outputPath string) (Surface, error) {
	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "stdout"

	switch format {
	case FormatText, FormatHTML, FormatJSON:
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}

	if isStdOut {
		// Wrap Stdout so Close() is a no-op.
		writer = NopWriteCloser(os.Stdout)
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case FormatHTML:
		s, err := NewHTMLSurface(writer)
		if err != nil {
			writer.Close()
			return nil, err
		}
		return s, nil
	case FormatJSON:
		return NewJSONSurface(writer), nil
	default:
		return NewTextSurface(writer), nil
	}
}

// Render clears the surface and applies every present fragment of view in
// rendering order. Stale fragments from an earlier view never survive.
func Render(s Surface, view results.View) error {
	if err := s.Clear(); err != nil {
		return fmt.Errorf("failed to clear surface: %w", err)
	}
	for _, f := range view.Fragments() {
		if err := s.Apply(f); err != nil {
			return fmt.Errorf("failed to apply %s: %w", f.Section, err)
		}
	}
	return nil
}

// slotIndex returns the position of a container in rendering order.
func slotIndex(container string) (int, error) {
	for i, c := range results.Containers() {
		if c == container {
			return i, nil
		}
	}
	return -1, fmt.Errorf("unknown container %q", container)
}
