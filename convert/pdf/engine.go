package pdf

import (
	"fmt"
	"os"

	"github.com/lvillar/gofpdf"
	"go.uber.org/zap"

	"u2b/content/inline"
	"u2b/fonts"
	"u2b/utils/images"
)

const (
	bodyFontSize = 12
	lineHeight   = 7
)

// Engine is the page-level surface the document renderer draws on.
type Engine interface {
	WriteTitle(title string)
	WriteMetadata(lines []string)
	WriteHeading(level int, text string)
	WriteParagraph(tokens []inline.Token)
	InsertImage(img images.Downloaded)
}

// engine drives a gofpdf document.
type engine struct {
	doc   *gofpdf.Fpdf
	scale float64
	log   *zap.Logger
}

func newEngine(fontFamily string, scale float64, log *zap.Logger) (*engine, error) {
	resolved, err := fonts.Resolve(fontFamily, nil)
	if err != nil {
		return nil, err
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	if err := registerFonts(doc, resolved, log); err != nil {
		return nil, err
	}
	doc.SetAutoPageBreak(true, 15)
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont(pdfFontName, "", 8)
		doc.SetTextColor(128, 128, 128)
		doc.CellFormat(0, 10, fmt.Sprintf("Page %d", doc.PageNo()), "", 0, "C", false, 0, "")
		doc.SetTextColor(0, 0, 0)
	})
	doc.AddPage()
	doc.SetFont(pdfFontName, "", bodyFontSize)

	log.Debug("PDF engine ready", zap.String("font", resolved.Family.Name))
	return &engine{doc: doc, scale: scale, log: log}, nil
}

// contentWidth is the page width between margins.
func (e *engine) contentWidth() float64 {
	w, _ := e.doc.GetPageSize()
	l, _, r, _ := e.doc.GetMargins()
	return w - l - r
}

func (e *engine) WriteTitle(title string) {
	e.doc.SetFont(pdfFontName, "B", 18)
	e.doc.MultiCell(0, 10, title, "", "", false)
	e.doc.Ln(5)
}

func (e *engine) WriteMetadata(lines []string) {
	if len(lines) == 0 {
		return
	}
	e.doc.SetFont(pdfFontName, "", 10)
	e.doc.SetTextColor(100, 100, 100)
	for _, line := range lines {
		e.doc.MultiCell(0, 6, line, "", "", false)
		e.doc.Ln(-1)
	}
	e.doc.SetTextColor(0, 0, 0)
	e.doc.Ln(10)
}

func (e *engine) WriteHeading(level int, text string) {
	e.doc.Ln(4)
	e.doc.SetFont(pdfFontName, "B", float64(headingSize(level)))
	e.doc.MultiCell(0, 8, text, "", "", false)
	e.doc.Ln(2)
	e.doc.SetFont(pdfFontName, "", bodyFontSize)
}

func (e *engine) WriteParagraph(tokens []inline.Token) {
	e.doc.SetFont(pdfFontName, "", bodyFontSize)
	for _, seg := range Fold(tokens) {
		e.doc.SetFont(pdfFontName, seg.Style, bodyFontSize)
		if len(seg.Link) != 0 {
			e.doc.SetTextColor(0, 0, 180)
			e.doc.WriteLinkString(lineHeight, seg.Text, seg.Link)
			e.doc.SetTextColor(0, 0, 0)
		} else {
			e.doc.Write(lineHeight, seg.Text)
		}
	}
	e.doc.Ln(-1)
	e.doc.Ln(4)
}

// InsertImage places the image centered on the content width, breaking the
// page first when it would not fit. Problems with a single image are logged
// and do not fail the document.
func (e *engine) InsertImage(img images.Downloaded) {
	if !e.doc.Ok() || img.Width <= 0 || img.Height <= 0 {
		return
	}
	if _, err := os.Stat(img.Path); err != nil {
		e.log.Warn("Skipping unreadable image", zap.String("file", img.Path), zap.Error(err))
		return
	}

	maxWidth := e.contentWidth()
	w, h := scaledSize(img.Width, img.Height, e.scale, maxWidth)

	_, pageH := e.doc.GetPageSize()
	l, _, _, b := e.doc.GetMargins()
	if e.doc.GetY()+h > pageH-b {
		e.doc.AddPage()
	}

	x := l + (maxWidth-w)/2
	e.doc.Image(img.Path, x, e.doc.GetY(), w, 0, false, "", 0, "")
	if !e.doc.Ok() {
		e.log.Warn("Skipping undigestible image", zap.String("file", img.Path), zap.Error(e.doc.Error()))
		e.doc.ClearError()
		return
	}
	e.doc.SetY(e.doc.GetY() + h)
	e.doc.Ln(8)
}

// scaledSize computes the rendered image size in page units: natural size
// times scale, shrunk to maxWidth with the aspect ratio kept. Images narrower
// than the content area are never blown up.
func scaledSize(width, height int, scale, maxWidth float64) (w, h float64) {
	w = float64(width) * scale
	if w > maxWidth {
		w = maxWidth
	}
	h = float64(height) * w / float64(width)
	return w, h
}

func (e *engine) Save(path string) error {
	if err := e.doc.Error(); err != nil {
		return err
	}
	if err := e.doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("unable to write PDF: %w", err)
	}
	return nil
}

// headingSize maps heading level to font size, out of range levels clamp to
// the nearest defined size.
func headingSize(level int) int {
	sizes := [...]int{16, 14, 13, 12, 11, 11}
	if level < 1 {
		return sizes[0]
	}
	if level > len(sizes) {
		return sizes[len(sizes)-1]
	}
	return sizes[level-1]
}
