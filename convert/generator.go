package convert

import (
	"context"

	"go.uber.org/zap"

	"u2b/common"
	"u2b/content"
	"u2b/convert/epub"
	"u2b/convert/fb2"
	"u2b/convert/pdf"
	"u2b/convert/text"
	"u2b/state"
	"u2b/utils/images"
)

// ListFormats returns supported output format names.
func ListFormats() []string {
	return common.OutputFmtNames()
}

// Renderer produces a single output format from a prepared document.
type Renderer interface {
	Render(ctx context.Context, doc *content.Document, imgs []images.Downloaded, outputPath string) error
}

// For returns the renderer for the requested format.
func For(format common.OutputFmt, env *state.LocalEnv, log *zap.Logger) Renderer {
	switch format {
	case common.OutputFmtPdf:
		font := env.FontFamily
		if len(font) == 0 {
			font = env.Cfg.Document.FontFamily
		}
		return pdf.New(font, env.Cfg.Document.Images.ScaleFactor, log)
	case common.OutputFmtEpub:
		return epub.New(log)
	case common.OutputFmtFb2:
		return fb2.New(log)
	case common.OutputFmtMd:
		return text.New(log)
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}
