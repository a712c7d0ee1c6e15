package common

import "testing"

func TestParseOutputFmt(t *testing.T) {
	cases := []struct {
		in       string
		expected OutputFmt
		fails    bool
	}{
		{in: "pdf", expected: OutputFmtPdf},
		{in: "EPUB", expected: OutputFmtEpub},
		{in: " fb2 ", expected: OutputFmtFb2},
		{in: "md", expected: OutputFmtMd},
		{in: "markdown", expected: OutputFmtMd},
		{in: "docx", fails: true},
		{in: "", fails: true},
	}
	for _, c := range cases {
		format, err := ParseOutputFmt(c.in)
		if c.fails {
			if err == nil {
				t.Errorf("%q: expected error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", c.in, err)
			continue
		}
		if format != c.expected {
			t.Errorf("%q: expected %s, got %s", c.in, c.expected, format)
		}
	}
}

func TestParseOutputFmtFromPath(t *testing.T) {
	if format, err := ParseOutputFmtFromPath("/some/dir/book.Fb2"); err != nil || format != OutputFmtFb2 {
		t.Errorf("expected fb2, got %v (%v)", format, err)
	}
	if _, err := ParseOutputFmtFromPath("noextension"); err == nil {
		t.Error("expected error for path without extension")
	}
	if _, err := ParseOutputFmtFromPath("book.docx"); err == nil {
		t.Error("expected error for unknown extension")
	}
}

func TestOutputFmtRoundTrip(t *testing.T) {
	for _, name := range OutputFmtNames() {
		format, err := ParseOutputFmt(name)
		if err != nil {
			t.Fatalf("%q: %v", name, err)
		}
		if format.String() != name {
			t.Errorf("expected %q, got %q", name, format.String())
		}
		if format.Ext() != "."+name {
			t.Errorf("expected extension .%s, got %s", name, format.Ext())
		}
	}
}
