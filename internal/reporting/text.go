package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/arqv30/arqv-cli/internal/results"
)

// TextSurface lays fragments out for a terminal. Fragments are held per
// container and written in rendering order on Close.
type TextSurface struct {
	writer io.WriteCloser
	slots  []string
}

func NewTextSurface(w io.WriteCloser) *TextSurface {
	return &TextSurface{writer: w, slots: make([]string, len(results.Containers()))}
}

func (s *TextSurface) Clear() error {
	for i := range s.slots {
		s.slots[i] = ""
	}
	return nil
}

func (s *TextSurface) Apply(f results.Fragment) error {
	i, err := slotIndex(f.Container)
	if err != nil {
		return err
	}
	s.slots[i] = TextLayout(f)
	return nil
}

// String returns the current layout.
func (s *TextSurface) String() string {
	var parts []string
	for _, slot := range s.slots {
		if slot != "" {
			parts = append(parts, slot)
		}
	}
	return strings.Join(parts, "\n")
}

func (s *TextSurface) Close() error {
	if out := s.String(); out != "" {
		if _, err := io.WriteString(s.writer, out); err != nil {
			s.writer.Close()
			return fmt.Errorf("failed to write text report: %w", err)
		}
	}
	return s.writer.Close()
}

// TextLayout renders a single fragment as indented plain text.
func TextLayout(f results.Fragment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", f.Title)
	for _, blk := range f.Blocks {
		writeBlockText(&b, blk, 1)
	}
	return b.String()
}

func line(b *strings.Builder, depth int, format string, args ...any) {
	b.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

func writeBlockText(b *strings.Builder, blk results.Block, depth int) {
	switch blk.Kind {
	case results.BlockTable:
		if blk.Title != "" {
			line(b, depth, "%s", blk.Title)
		}
		widths := make([]int, len(blk.Columns))
		for i, c := range blk.Columns {
			widths[i] = len([]rune(c))
		}
		for _, row := range blk.Rows {
			for i, cell := range row {
				if i < len(widths) && len([]rune(cell)) > widths[i] {
					widths[i] = len([]rune(cell))
				}
			}
		}
		pad := func(cells []string) string {
			out := make([]string, len(cells))
			for i, cell := range cells {
				w := 0
				if i < len(widths) {
					w = widths[i]
				}
				out[i] = cell + strings.Repeat(" ", max(0, w-len([]rune(cell))))
			}
			return strings.TrimRight(strings.Join(out, " | "), " ")
		}
		line(b, depth, "%s", pad(blk.Columns))
		for _, row := range blk.Rows {
			line(b, depth, "%s", pad(row))
		}

	case results.BlockNumbered:
		if blk.Title != "" {
			line(b, depth, "%s", blk.Title)
		}
		n := 0
		for _, item := range blk.Items {
			n++
			line(b, depth, "%d. %s", n, item)
		}
		for _, child := range blk.Children {
			n++
			line(b, depth, "%d.", n)
			writeBlockText(b, child, depth+1)
		}

	case results.BlockTags:
		if blk.Title != "" {
			line(b, depth, "%s:", blk.Title)
		}
		if len(blk.Items) > 0 {
			line(b, depth+1, "%s", "["+strings.Join(blk.Items, "] [")+"]")
		}

	case results.BlockBanner:
		line(b, depth, "*** %s: %s ***", blk.Title, blk.Text)

	case results.BlockCollapsible:
		marker := "+"
		if blk.Expanded {
			marker = "-"
		}
		line(b, depth, "[%s] %s", marker, blk.Title)
		for _, child := range blk.Children {
			writeBlockText(b, child, depth+1)
		}

	default:
		inner := depth
		if blk.Title != "" {
			line(b, depth, "%s", blk.Title)
			inner++
		}
		if blk.Text != "" {
			line(b, inner, "%s", blk.Text)
		}
		for _, f := range blk.Fields {
			line(b, inner, "%s: %s", f.Key, f.Value)
		}
		for _, item := range blk.Items {
			line(b, inner, "- %s", item)
		}
		for _, child := range blk.Children {
			writeBlockText(b, child, inner)
		}
	}
}
