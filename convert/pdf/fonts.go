package pdf

import (
	"fmt"

	"github.com/lvillar/gofpdf"
	"go.uber.org/zap"

	"u2b/fonts"
)

// internal font name registered with the PDF engine
const pdfFontName = "unicode"

// registerFonts adds all four faces of the resolved family to the document.
// Variable fonts are probed in a throwaway document first: the engine error
// state is sticky, a font it cannot digest would poison the real document.
func registerFonts(doc *gofpdf.Fpdf, resolved *fonts.Resolved, log *zap.Logger) error {
	for _, style := range fonts.Styles() {
		face := resolved.Faces[style]
		path := face.Path
		if face.Variable && !probeFont(path) {
			if len(face.StaticPath) == 0 {
				return fmt.Errorf("unable to load variable font %q (style %q) and no static file is installed", path, style)
			}
			log.Debug("variable font rejected by engine, using static file",
				zap.String("variable", path), zap.String("static", face.StaticPath))
			path = face.StaticPath
		}
		doc.AddUTF8Font(pdfFontName, style.String(), path)
		if err := doc.Error(); err != nil {
			return fmt.Errorf("unable to load font %q (style %q): %w", path, style, err)
		}
	}
	return nil
}

func probeFont(path string) bool {
	probe := gofpdf.New("P", "mm", "A4", "")
	probe.AddUTF8Font(pdfFontName, "", path)
	return probe.Error() == nil
}
