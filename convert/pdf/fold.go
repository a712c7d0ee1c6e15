package pdf

import (
	stdhtml "html"

	"u2b/content/inline"
)

// Segment is a run of text sharing one style and link target, ready to be
// written to the page.
type Segment struct {
	Text string
	// Style is the PDF font style selector: "", "B", "I" or "BI".
	Style string
	// Link is the target URL, empty for regular text.
	Link string
}

// Fold reduces the token stream to styled text segments. Style state carries
// across tokens, entities are decoded here so the page gets real characters.
func Fold(tokens []inline.Token) []Segment {
	var (
		segments     []Segment
		bold, italic bool
		link         string
	)
	for _, t := range tokens {
		switch t.Kind {
		case inline.Text:
			if len(t.Text) == 0 {
				continue
			}
			style := ""
			switch {
			case bold && italic:
				style = "BI"
			case bold:
				style = "B"
			case italic:
				style = "I"
			}
			segments = append(segments, Segment{
				Text:  stdhtml.UnescapeString(t.Text),
				Style: style,
				Link:  link,
			})
		case inline.StartBold:
			bold = true
		case inline.EndBold:
			bold = false
		case inline.StartItalic:
			italic = true
		case inline.EndItalic:
			italic = false
		case inline.StartLink:
			link = t.URL
		case inline.EndLink:
			link = ""
		}
	}
	return segments
}
