// Package epub renders documents into EPUB 2 books.
package epub

import (
	"archive/zip"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/zap"

	"u2b/content"
	"u2b/utils/images"
)

const (
	mimetypeContent = "application/epub+zip"
	oebpsDir        = "OEBPS"
	imagesDir       = "images"
)

//go:embed default.css
var defaultStylesheet []byte

// EPUB renders articles into EPUB 2 books, one chapter per top level
// heading.
type EPUB struct {
	log *zap.Logger
}

func New(log *zap.Logger) *EPUB {
	if log == nil {
		log = zap.NewNop()
	}
	return &EPUB{log: log.Named("epub")}
}

func (e *EPUB) Render(ctx context.Context, doc *content.Document, imgs []images.Downloaded, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	book := buildBook(doc, imgs)
	book.ID = uuid.New().String()

	e.log.Debug("generating EPUB",
		zap.String("output", outputPath),
		zap.String("id", book.ID),
		zap.Int("chapters", len(book.Chapters)))

	tmpName := outputPath + ".tmp"
	if err := writeArchive(tmpName, book); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	defer os.Remove(tmpName)

	// some reader firmware chokes on entries with data descriptors, rewrite
	// the archive without them
	return copyZipWithoutDataDescriptors(tmpName, outputPath)
}

func writeArchive(name string, book *book) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	defer zw.Close()

	if err := writeMimetype(zw); err != nil {
		return fmt.Errorf("unable to write mimetype: %w", err)
	}
	if err := writeContainer(zw); err != nil {
		return fmt.Errorf("unable to write container: %w", err)
	}
	for _, chapter := range book.Chapters {
		if err := writeXMLToZip(zw, path.Join(oebpsDir, chapter.Filename), chapter.Doc); err != nil {
			return fmt.Errorf("unable to write chapter %s: %w", chapter.Filename, err)
		}
	}
	if err := writeImages(zw, book.Images); err != nil {
		return err
	}
	if err := writeDataToZip(zw, path.Join(oebpsDir, "stylesheet.css"), defaultStylesheet); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}
	if err := writeXMLToZip(zw, path.Join(oebpsDir, "content.opf"), buildOPF(book)); err != nil {
		return fmt.Errorf("unable to write OPF: %w", err)
	}
	if err := writeXMLToZip(zw, path.Join(oebpsDir, "toc.ncx"), buildNCX(book)); err != nil {
		return fmt.Errorf("unable to write NCX: %w", err)
	}

	// make sure buffers are flushed before continuing
	if err := zw.Close(); err != nil {
		return fmt.Errorf("unable to close output archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("unable to finalize output file: %w", err)
	}
	return nil
}

func writeMimetype(zw *zip.Writer) error {
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   "mimetype",
		Method: zip.Store,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, mimetypeContent)
	return err
}

func writeContainer(zw *zip.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	container := doc.CreateElement("container")
	container.CreateAttr("version", "1.0")
	container.CreateAttr("xmlns", "urn:oasis:names:tc:opendocument:xmlns:container")

	rootfiles := container.CreateElement("rootfiles")
	rootfile := rootfiles.CreateElement("rootfile")
	rootfile.CreateAttr("full-path", path.Join(oebpsDir, "content.opf"))
	rootfile.CreateAttr("media-type", "application/oebps-package+xml")

	return writeXMLToZip(zw, "META-INF/container.xml", doc)
}

func writeImages(zw *zip.Writer, imgs []bookImage) error {
	for _, img := range imgs {
		data, err := os.ReadFile(img.Source.Path)
		if err != nil {
			return fmt.Errorf("unable to read image %q: %w", img.Source.Path, err)
		}
		if err := writeDataToZip(zw, path.Join(oebpsDir, imagesDir, img.Filename), data); err != nil {
			return fmt.Errorf("unable to write image %s: %w", img.Filename, err)
		}
	}
	return nil
}

func writeXMLToZip(zw *zip.Writer, name string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return writeDataToZip(zw, name, buf.Bytes())
}

func writeDataToZip(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func copyZipWithoutDataDescriptors(from, to string) error {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer out.Close()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer w.Close()

	for _, file := range r.File {
		// unset data descriptor flag.
		file.Flags &= ^fixzip.FlagDataDescriptor

		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}
