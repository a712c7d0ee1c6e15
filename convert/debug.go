package convert

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"u2b/content"
	"u2b/utils/images"
)

// dumpDocument logs the assembled document so pipeline problems can be
// diagnosed without opening the output file.
func dumpDocument(log *zap.Logger, doc *content.Document, imgs []images.Downloaded) {
	log.Debug("document assembled",
		zap.String("title", doc.Title()),
		zap.Strings("authors", doc.Meta.Authors),
		zap.Int("blocks", len(doc.Blocks)),
		zap.Int("paragraphs", doc.ParagraphCount()),
		zap.Int("images", len(imgs)))

	files := make([]string, 0, len(imgs))
	for _, img := range imgs {
		files = append(files, fmt.Sprintf("%s (%dx%d)", filepath.Base(img.Path), img.Width, img.Height))
	}
	sort.Sort(natural.StringSlice(files))
	if len(files) != 0 {
		log.Debug("document images", zap.Strings("files", files))
	}

	log.Debug("document tree", zap.String("dump", "\n"+doc.String()))
}
