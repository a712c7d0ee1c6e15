// Package pdf renders documents into paginated PDF files.
package pdf

import (
	"context"

	"go.uber.org/zap"

	"u2b/content"
	"u2b/content/inline"
	"u2b/utils/images"
)

// PDF renders articles into A4 pages with embedded fonts and images.
type PDF struct {
	fontFamily string
	scale      float64
	log        *zap.Logger
}

func New(fontFamily string, scale float64, log *zap.Logger) *PDF {
	if log == nil {
		log = zap.NewNop()
	}
	if scale <= 0 {
		scale = 1.0
	}
	return &PDF{fontFamily: fontFamily, scale: scale, log: log.Named("pdf")}
}

func (p *PDF) Render(ctx context.Context, doc *content.Document, imgs []images.Downloaded, outputPath string) error {
	eng, err := newEngine(p.fontFamily, p.scale, p.log)
	if err != nil {
		return err
	}
	if err := renderDocument(ctx, eng, doc, imgs); err != nil {
		return err
	}
	return eng.Save(outputPath)
}

// renderDocument writes the whole document: title, metadata, lead image and
// the block flow with remaining images spread evenly between paragraphs.
func renderDocument(ctx context.Context, eng Engine, doc *content.Document, imgs []images.Downloaded) error {
	eng.WriteTitle(doc.Title())
	eng.WriteMetadata(content.MetadataLines(doc.Meta))

	rest := imgs
	if len(rest) != 0 {
		eng.InsertImage(rest[0])
		rest = rest[1:]
	}

	interval := content.ImageInterval(doc.ParagraphCount(), len(rest))
	paragraphIdx := 0
	for _, b := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch b.Kind {
		case content.BlockHeading:
			eng.WriteHeading(b.Level, b.Text)
		case content.BlockParagraph:
			eng.WriteParagraph(inline.Parse(b.Markup()))
			paragraphIdx++
			if len(rest) != 0 && interval > 0 && paragraphIdx%interval == 0 {
				eng.InsertImage(rest[0])
				rest = rest[1:]
			}
		}
	}

	// paragraphs ran out before images did
	for _, img := range rest {
		eng.InsertImage(img)
	}
	return nil
}
