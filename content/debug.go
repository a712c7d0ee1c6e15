package content

import (
	"fmt"
	"strconv"
	"strings"
)

// String returns a readable tree of the assembled document. It exists solely
// for manual inspection during debugging.
func (d *Document) String() string {
	if d == nil {
		return "<nil Document>"
	}
	tw := treeWriter{w: &strings.Builder{}}
	tw.Line(0, "Document")
	tw.metadata(1, &d.Meta)
	tw.Line(1, "Blocks: %d", len(d.Blocks))
	for i := range d.Blocks {
		tw.block(2, &d.Blocks[i], i)
	}
	return tw.w.String()
}

func (tw treeWriter) metadata(depth int, meta *Metadata) {
	tw.Line(depth, "Metadata")
	tw.TextBlock(depth+1, "Title", meta.Title)
	for i, a := range meta.Authors {
		tw.TextBlock(depth+1, fmt.Sprintf("Author[%d]", i), a)
	}
	tw.TextBlock(depth+1, "SourceURL", meta.SourceURL)
	tw.TextBlock(depth+1, "Language", meta.Language)
	if !meta.Published.IsZero() {
		tw.TextBlock(depth+1, "Published", meta.Published.Format("2006-01-02"))
	}
}

func (tw treeWriter) block(depth int, b *Block, i int) {
	switch b.Kind {
	case BlockHeading:
		tw.Line(depth, "Heading[%d] level=%d", i, b.Level)
	default:
		tw.Line(depth, "Paragraph[%d]", i)
	}
	tw.TextBlock(depth+1, "Text", b.Text)
	if len(b.HTML) != 0 {
		tw.TextBlock(depth+1, "HTML", b.HTML)
	}
}

type treeWriter struct {
	w *strings.Builder
}

func (tw treeWriter) Line(depth int, format string, args ...any) {
	for range depth {
		tw.w.WriteString("  ")
	}
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw treeWriter) TextBlock(depth int, label, value string) {
	for range depth {
		tw.w.WriteString("  ")
	}
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	if len(value) != 0 {
		tw.w.WriteString(strconv.Quote(value))
	}
	tw.w.WriteByte('\n')
}
