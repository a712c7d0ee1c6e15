package pdf

import (
	"reflect"
	"testing"

	"u2b/content/inline"
)

func TestFold(t *testing.T) {
	cases := []struct {
		name     string
		markup   string
		expected []Segment
	}{
		{
			name:     "plain text",
			markup:   "Simple text",
			expected: []Segment{{Text: "Simple text"}},
		},
		{
			name:   "bold run",
			markup: "Text <b>bold</b> normal",
			expected: []Segment{
				{Text: "Text "},
				{Text: "bold", Style: "B"},
				{Text: " normal"},
			},
		},
		{
			name:   "nested styles combine",
			markup: "<b>Bold <i>and italic</i></b> done",
			expected: []Segment{
				{Text: "Bold ", Style: "B"},
				{Text: "and italic", Style: "BI"},
				{Text: " done"},
			},
		},
		{
			name:   "link carries target",
			markup: `Visit <a href="https://example.com">site</a> now`,
			expected: []Segment{
				{Text: "Visit "},
				{Text: "site", Link: "https://example.com"},
				{Text: " now"},
			},
		},
		{
			name:   "styled link",
			markup: `<a href="https://example.com"><b>bold link</b></a>`,
			expected: []Segment{
				{Text: "bold link", Style: "B", Link: "https://example.com"},
			},
		},
		{
			name:     "entities decoded",
			markup:   "Fish &amp; chips &lt;cheap&gt;",
			expected: []Segment{{Text: "Fish & chips <cheap>"}},
		},
		{
			name:     "empty input",
			markup:   "",
			expected: nil,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual := Fold(inline.Parse(c.markup))
			if !reflect.DeepEqual(actual, c.expected) {
				t.Errorf("bad segments\nwant: %v\ngot:  %v", c.expected, actual)
			}
		})
	}
}

func TestHeadingSize(t *testing.T) {
	cases := []struct {
		level    int
		expected int
	}{
		{1, 16}, {2, 14}, {3, 13}, {4, 12}, {5, 11}, {6, 11},
		{7, 11}, {9, 11}, {0, 16}, {-1, 16},
	}
	for _, c := range cases {
		if actual := headingSize(c.level); actual != c.expected {
			t.Errorf("headingSize(%d): expected %d, got %d", c.level, c.expected, actual)
		}
	}
}
