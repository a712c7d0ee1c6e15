// Package content defines the in-memory document model produced by the
// extractor and consumed by all renderers.
package content

import (
	"strings"
	"time"
)

// BlockKind discriminates document block variants.
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockHeading
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "paragraph"
	case BlockHeading:
		return "heading"
	default:
		// this should never happen
		panic("unsupported block kind")
	}
}

// Block is a single unit of document flow.
type Block struct {
	Kind BlockKind
	// Text always carries plain text with markup stripped.
	Text string
	// HTML carries constrained inline markup (b, i, a) for paragraphs.
	// Empty when the paragraph has no markup, always empty for headings.
	HTML string
	// Level is the heading level (1 to 6), zero for paragraphs.
	Level int
}

// Markup returns inline markup for the block, falling back to plain text.
func (b *Block) Markup() string {
	if len(b.HTML) != 0 {
		return b.HTML
	}
	return b.Text
}

// Metadata describes the source article.
type Metadata struct {
	Title     string
	Authors   []string
	SourceURL string
	// Language is a two letter code from the page markup, "en" when the page
	// does not declare one.
	Language string
	// Published is zero when the source does not advertise a date.
	Published time.Time
}

// Document is a fully prepared article ready to be rendered.
type Document struct {
	Meta   Metadata
	Blocks []Block
}

// ParagraphCount returns the number of paragraph blocks. Image placement
// intervals are derived from it.
func (d *Document) ParagraphCount() int {
	var n int
	for i := range d.Blocks {
		if d.Blocks[i].Kind == BlockParagraph {
			n++
		}
	}
	return n
}

// Title returns document title, falling back to the source URL when the
// article did not have one.
func (d *Document) Title() string {
	if len(d.Meta.Title) != 0 {
		return d.Meta.Title
	}
	return d.Meta.SourceURL
}

// ImageInterval spreads count images evenly between paragraphs: insert one
// after every interval-th paragraph. Zero means no interleaving. Every
// renderer places images with the same cadence.
func ImageInterval(paragraphs, count int) int {
	if count == 0 {
		return 0
	}
	interval := paragraphs / (count + 1)
	if interval < 1 {
		return 1
	}
	return interval
}

// ClampHeadingLevel forces a heading level into the 1 to 6 range.
func ClampHeadingLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

// MetadataLines returns the human readable metadata block shown under the
// document title, one line per entry.
func MetadataLines(meta Metadata) []string {
	var lines []string
	if len(meta.Authors) != 0 {
		lines = append(lines, "Authors: "+strings.Join(meta.Authors, ", "))
	}
	lines = append(lines, "Source: "+meta.SourceURL)
	if !meta.Published.IsZero() {
		lines = append(lines, "Published: "+meta.Published.Format("2006-01-02"))
	}
	return lines
}
