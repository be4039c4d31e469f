package reporting

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/arqv30/arqv-cli/internal/results"
)

const pageTitle = "Market Analysis"

// HTMLSurface keeps a goquery document holding one element per container.
type HTMLSurface struct {
	writer io.WriteCloser
	doc    *goquery.Document
}

// NewHTMLSurface builds the page skeleton. The document is written on Close.
func NewHTMLSurface(w io.WriteCloser) (*HTMLSurface, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(skeleton()))
	if err != nil {
		return nil, fmt.Errorf("failed to build page skeleton: %w", err)
	}
	return &HTMLSurface{writer: w, doc: doc}, nil
}

func skeleton() string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><title>`)
	b.WriteString(pageTitle)
	b.WriteString(`</title></head><body><main id="results">`)
	for _, id := range results.Containers() {
		fmt.Fprintf(&b, `<section id="%s" class="result-container"></section>`, id)
	}
	b.WriteString(`</main></body></html>`)
	return b.String()
}

// Document exposes the underlying document, mainly for inspection.
func (s *HTMLSurface) Document() *goquery.Document { return s.doc }

func (s *HTMLSurface) Clear() error {
	for _, id := range results.Containers() {
		s.doc.Find("#" + id).Empty()
	}
	return nil
}

func (s *HTMLSurface) Apply(f results.Fragment) error {
	target := s.doc.Find("#" + f.Container)
	if target.Length() == 0 {
		return fmt.Errorf("unknown container %q", f.Container)
	}
	var b strings.Builder
	writeFragmentHTML(&b, f)
	target.SetHtml(b.String())
	return nil
}

// HTML returns the current page markup.
func (s *HTMLSurface) HTML() (string, error) {
	return goquery.OuterHtml(s.doc.Selection)
}

func (s *HTMLSurface) Close() error {
	page, err := s.HTML()
	if err != nil {
		s.writer.Close()
		return fmt.Errorf("failed to serialize page: %w", err)
	}
	if _, err := io.WriteString(s.writer, page); err != nil {
		s.writer.Close()
		return fmt.Errorf("failed to write page: %w", err)
	}
	return s.writer.Close()
}

func esc(s string) string { return html.EscapeString(s) }

func writeFragmentHTML(b *strings.Builder, f results.Fragment) {
	fmt.Fprintf(b, `<div class="result-section"><div class="result-section-header"><h4>%s</h4></div><div class="result-section-content">`, esc(f.Title))
	for _, blk := range f.Blocks {
		writeBlockHTML(b, blk)
	}
	b.WriteString(`</div></div>`)
}

func writeItemsHTML(b *strings.Builder, class string, items []string) {
	fmt.Fprintf(b, `<ul class="%s">`, class)
	for _, item := range items {
		fmt.Fprintf(b, `<li>%s</li>`, esc(item))
	}
	b.WriteString(`</ul>`)
}

func writeBlockHTML(b *strings.Builder, blk results.Block) {
	switch blk.Kind {
	case results.BlockCard:
		b.WriteString(`<div class="info-card">`)
		if blk.Title != "" {
			fmt.Fprintf(b, `<strong>%s</strong>`, esc(blk.Title))
		}
		if blk.Text != "" {
			fmt.Fprintf(b, `<span>%s</span>`, esc(blk.Text))
		}
		for _, f := range blk.Fields {
			fmt.Fprintf(b, `<span><strong>%s:</strong> %s</span>`, esc(f.Key), esc(f.Value))
		}
		if len(blk.Items) > 0 {
			writeItemsHTML(b, "card-items", blk.Items)
		}
		for _, child := range blk.Children {
			writeBlockHTML(b, child)
		}
		b.WriteString(`</div>`)

	case results.BlockList:
		if blk.Title != "" {
			fmt.Fprintf(b, `<h6>%s</h6>`, esc(blk.Title))
		}
		writeItemsHTML(b, "insight-list", blk.Items)

	case results.BlockNumbered:
		b.WriteString(`<div class="insights-showcase">`)
		n := 0
		number := func() {
			n++
			fmt.Fprintf(b, `<div class="insight-card"><div class="insight-number">%s</div><div class="insight-content">`, strconv.Itoa(n))
		}
		for _, item := range blk.Items {
			number()
			b.WriteString(esc(item))
			b.WriteString(`</div></div>`)
		}
		for _, child := range blk.Children {
			number()
			writeBlockHTML(b, child)
			b.WriteString(`</div></div>`)
		}
		b.WriteString(`</div>`)

	case results.BlockTable:
		if blk.Title != "" {
			fmt.Fprintf(b, `<h5>%s</h5>`, esc(blk.Title))
		}
		b.WriteString(`<table><thead><tr>`)
		for _, c := range blk.Columns {
			fmt.Fprintf(b, `<th>%s</th>`, esc(c))
		}
		b.WriteString(`</tr></thead><tbody>`)
		for _, row := range blk.Rows {
			b.WriteString(`<tr>`)
			for _, cell := range row {
				fmt.Fprintf(b, `<td>%s</td>`, esc(cell))
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</tbody></table>`)

	case results.BlockTags:
		if blk.Title != "" {
			fmt.Fprintf(b, `<strong>%s</strong>`, esc(blk.Title))
		}
		b.WriteString(`<div class="keyword-tags">`)
		for _, tag := range blk.Items {
			fmt.Fprintf(b, `<span class="keyword-tag">%s</span>`, esc(tag))
		}
		b.WriteString(`</div>`)

	case results.BlockGrid:
		if blk.Title != "" {
			fmt.Fprintf(b, `<h5>%s</h5>`, esc(blk.Title))
		}
		b.WriteString(`<div class="metadata-grid">`)
		for _, f := range blk.Fields {
			fmt.Fprintf(b, `<div class="metadata-item"><span class="metadata-label">%s</span><span class="metadata-value">%s</span></div>`, esc(f.Key), esc(f.Value))
		}
		b.WriteString(`</div>`)

	case results.BlockBanner:
		fmt.Fprintf(b, `<div class="data-quality-indicator"><span class="quality-label">%s:</span><span class="quality-value">%s</span></div>`, esc(blk.Title), esc(blk.Text))

	case results.BlockCollapsible:
		if blk.Expanded {
			b.WriteString(`<details class="expandable-section" open>`)
		} else {
			b.WriteString(`<details class="expandable-section">`)
		}
		fmt.Fprintf(b, `<summary class="expandable-title">%s</summary>`, esc(blk.Title))
		for _, child := range blk.Children {
			writeBlockHTML(b, child)
		}
		b.WriteString(`</details>`)

	default:
		if blk.Text != "" {
			fmt.Fprintf(b, `<p>%s</p>`, esc(blk.Text))
		}
	}
}
