// Package common holds enums shared between configuration and converters so
// that renderer packages do not have to import the full program configuration.
package common

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputFmt is the requested output document type.
type OutputFmt int

const (
	OutputFmtPdf OutputFmt = iota
	OutputFmtEpub
	OutputFmtFb2
	OutputFmtMd
)

var outputFmtNames = [...]string{"pdf", "epub", "fb2", "md"}

func (o OutputFmt) String() string {
	if o < 0 || int(o) >= len(outputFmtNames) {
		return fmt.Sprintf("OutputFmt(%d)", int(o))
	}
	return outputFmtNames[o]
}

// Ext returns the file extension used for the format.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtPdf:
		return ".pdf"
	case OutputFmtEpub:
		return ".epub"
	case OutputFmtFb2:
		return ".fb2"
	case OutputFmtMd:
		return ".md"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// ParseOutputFmt converts textual format name to OutputFmt.
func ParseOutputFmt(name string) (OutputFmt, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pdf":
		return OutputFmtPdf, nil
	case "epub":
		return OutputFmtEpub, nil
	case "fb2":
		return OutputFmtFb2, nil
	case "md", "markdown":
		return OutputFmtMd, nil
	}
	return OutputFmtPdf, fmt.Errorf("unknown output format: %q", name)
}

// ParseOutputFmtFromPath infers the output format from the file extension.
func ParseOutputFmtFromPath(path string) (OutputFmt, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return OutputFmtPdf, fmt.Errorf("unable to infer output format from path %q", path)
	}
	return ParseOutputFmt(ext)
}

// OutputFmtNames returns all supported format names in definition order.
func OutputFmtNames() []string {
	return append([]string(nil), outputFmtNames[:]...)
}
