package content

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestBlockMarkup(t *testing.T) {
	plain := Block{Kind: BlockParagraph, Text: "just text"}
	if plain.Markup() != "just text" {
		t.Errorf("plain block should fall back to text, got %q", plain.Markup())
	}
	styled := Block{Kind: BlockParagraph, Text: "bold text", HTML: "<b>bold</b> text"}
	if styled.Markup() != "<b>bold</b> text" {
		t.Errorf("styled block lost its markup, got %q", styled.Markup())
	}
}

func TestParagraphCount(t *testing.T) {
	doc := Document{
		Blocks: []Block{
			{Kind: BlockHeading, Text: "Title", Level: 1},
			{Kind: BlockParagraph, Text: "one"},
			{Kind: BlockParagraph, Text: "two"},
			{Kind: BlockHeading, Text: "Section", Level: 2},
			{Kind: BlockParagraph, Text: "three"},
		},
	}
	if n := doc.ParagraphCount(); n != 3 {
		t.Errorf("expected 3 paragraphs, got %d", n)
	}
}

func TestTitleFallback(t *testing.T) {
	doc := Document{Meta: Metadata{SourceURL: "https://example.com/post"}}
	if doc.Title() != "https://example.com/post" {
		t.Errorf("expected source URL fallback, got %q", doc.Title())
	}
	doc.Meta.Title = "Real Title"
	if doc.Title() != "Real Title" {
		t.Errorf("expected title, got %q", doc.Title())
	}
}

func TestImageInterval(t *testing.T) {
	cases := []struct {
		paragraphs, images, expected int
	}{
		{10, 0, 0},
		{10, 1, 5},
		{10, 3, 2},
		{6, 2, 2},
		{1, 3, 1},
		{0, 2, 1},
		{100, 4, 20},
	}
	for _, c := range cases {
		if actual := ImageInterval(c.paragraphs, c.images); actual != c.expected {
			t.Errorf("ImageInterval(%d, %d): expected %d, got %d", c.paragraphs, c.images, c.expected, actual)
		}
	}
}

func TestClampHeadingLevel(t *testing.T) {
	cases := []struct {
		level, expected int
	}{
		{-1, 1},
		{0, 1},
		{1, 1},
		{3, 3},
		{6, 6},
		{9, 6},
	}
	for _, c := range cases {
		if actual := ClampHeadingLevel(c.level); actual != c.expected {
			t.Errorf("ClampHeadingLevel(%d): expected %d, got %d", c.level, c.expected, actual)
		}
	}
}

func TestMetadataLines(t *testing.T) {
	meta := Metadata{
		Authors:   []string{"A", "B"},
		SourceURL: "https://example.com",
		Published: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	expected := []string{"Authors: A, B", "Source: https://example.com", "Published: 2024-03-01"}
	if actual := MetadataLines(meta); !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v, got %v", expected, actual)
	}

	meta = Metadata{SourceURL: "https://example.com"}
	expected = []string{"Source: https://example.com"}
	if actual := MetadataLines(meta); !reflect.DeepEqual(actual, expected) {
		t.Errorf("expected %v, got %v", expected, actual)
	}
}

func TestBlockKindString(t *testing.T) {
	if BlockParagraph.String() != "paragraph" || BlockHeading.String() != "heading" {
		t.Error("unexpected block kind names")
	}
}

func TestDocumentDump(t *testing.T) {
	doc := &Document{
		Meta: Metadata{
			Title:     "Dump Me",
			Authors:   []string{"John Doe"},
			SourceURL: "https://example.com",
			Language:  "en",
			Published: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Blocks: []Block{
			{Kind: BlockHeading, Text: "Section", Level: 2},
			{Kind: BlockParagraph, Text: "Paragraph", HTML: "<b>Paragraph</b>"},
		},
	}

	dump := doc.String()
	for _, want := range []string{
		`Title: "Dump Me"`,
		`Author[0]: "John Doe"`,
		`Published: "2024-03-01"`,
		"Heading[0] level=2",
		"Paragraph[1]",
		`HTML: "<b>Paragraph</b>"`,
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump is missing %q:\n%s", want, dump)
		}
	}

	var nilDoc *Document
	if nilDoc.String() != "<nil Document>" {
		t.Error("nil document dump broken")
	}
}
