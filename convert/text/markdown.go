// Package text renders documents into Markdown.
package text

import (
	"bufio"
	"context"
	"fmt"
	stdhtml "html"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"u2b/content"
	"u2b/content/inline"
	"u2b/utils/images"
)

// Markdown writes the document as a single .md file with images copied next
// to it.
type Markdown struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Markdown {
	if log == nil {
		log = zap.NewNop()
	}
	return &Markdown{log: log.Named("md")}
}

func (m *Markdown) Render(ctx context.Context, doc *content.Document, imgs []images.Downloaded, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	assets, err := storeAssets(outputPath, imgs)
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	writeDocument(w, doc, assets)
	if err := w.Flush(); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("unable to write output file: %w", err)
	}
	m.log.Debug("markdown written", zap.String("file", outputPath), zap.Int("assets", len(assets)))
	return nil
}

func writeDocument(w *bufio.Writer, doc *content.Document, assets []string) {
	fmt.Fprintf(w, "# %s\n\n", doc.Title())

	if len(doc.Meta.Authors) != 0 {
		fmt.Fprintf(w, "*%s*\n\n", strings.Join(doc.Meta.Authors, ", "))
	}
	if len(doc.Meta.SourceURL) != 0 {
		fmt.Fprintf(w, "Source: <%s>\n\n", doc.Meta.SourceURL)
	}
	if !doc.Meta.Published.IsZero() {
		fmt.Fprintf(w, "Published: %s\n\n", doc.Meta.Published.Format("2006-01-02"))
	}

	rest := assets
	if len(rest) != 0 {
		fmt.Fprintf(w, "![](%s)\n\n", rest[0])
		rest = rest[1:]
	}

	interval := content.ImageInterval(doc.ParagraphCount(), len(rest))
	paragraphIdx := 0
	for _, b := range doc.Blocks {
		switch b.Kind {
		case content.BlockHeading:
			fmt.Fprintf(w, "%s %s\n\n", strings.Repeat("#", content.ClampHeadingLevel(b.Level)), b.Text)
		case content.BlockParagraph:
			fmt.Fprintf(w, "%s\n\n", FormatInline(b.Markup()))
			paragraphIdx++
			if len(rest) != 0 && interval > 0 && paragraphIdx%interval == 0 {
				fmt.Fprintf(w, "![](%s)\n\n", rest[0])
				rest = rest[1:]
			}
		}
	}
	for _, asset := range rest {
		fmt.Fprintf(w, "![](%s)\n\n", asset)
	}
}

// FormatInline converts constrained markup into Markdown emphasis and links.
func FormatInline(markup string) string {
	var sb strings.Builder
	var link string
	for _, t := range inline.Parse(markup) {
		switch t.Kind {
		case inline.Text:
			sb.WriteString(escapeText(stdhtml.UnescapeString(t.Text)))
		case inline.StartBold, inline.EndBold:
			sb.WriteString("**")
		case inline.StartItalic, inline.EndItalic:
			sb.WriteString("*")
		case inline.StartLink:
			link = t.URL
			sb.WriteString("[")
		case inline.EndLink:
			sb.WriteString("](" + link + ")")
			link = ""
		}
	}
	return sb.String()
}

var mdEscaper = strings.NewReplacer(`*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`)

func escapeText(s string) string {
	return mdEscaper.Replace(s)
}

// storeAssets copies downloaded images into an assets directory next to the
// output file and returns their relative references in input order.
func storeAssets(outputPath string, imgs []images.Downloaded) ([]string, error) {
	if len(imgs) == 0 {
		return nil, nil
	}

	base := strings.TrimSuffix(filepath.Base(outputPath), filepath.Ext(outputPath))
	dirName := base + "_files"
	dir := filepath.Join(filepath.Dir(outputPath), dirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create assets directory: %w", err)
	}

	var refs []string
	for i, img := range imgs {
		name := fmt.Sprintf("image%03d%s", i+1, filepath.Ext(img.Path))
		data, err := os.ReadFile(img.Path)
		if err != nil {
			return nil, fmt.Errorf("unable to read image %q: %w", img.Path, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			return nil, fmt.Errorf("unable to store image %q: %w", name, err)
		}
		refs = append(refs, filepath.ToSlash(filepath.Join(dirName, name)))
	}
	return refs, nil
}
