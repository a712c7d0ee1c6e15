package epub

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"

	"u2b/content"
	"u2b/utils/images"
)

func testDocument() *content.Document {
	return &content.Document{
		Meta: content.Metadata{
			Title:     "Test Article",
			Authors:   []string{"John Doe", "Jane Roe"},
			SourceURL: "https://example.com/article",
			Language:  "en",
			Published: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Blocks: []content.Block{
			{Kind: content.BlockParagraph, Text: "Opening paragraph before any section."},
			{Kind: content.BlockHeading, Text: "First Section", Level: 2},
			{Kind: content.BlockParagraph, Text: "Paragraph with markup.", HTML: `Paragraph with <b>markup</b> and a <a href="https://example.com/more">link</a>.`},
			{Kind: content.BlockHeading, Text: "Subsection", Level: 3},
			{Kind: content.BlockParagraph, Text: "Second paragraph of the first section."},
			{Kind: content.BlockHeading, Text: "Second Section", Level: 2},
			{Kind: content.BlockParagraph, Text: "Closing paragraph."},
		},
	}
}

func testImageFiles(t *testing.T, count int) []images.Downloaded {
	t.Helper()
	var imgs []images.Downloaded
	for i := 0; i < count; i++ {
		name := filepath.Join(t.TempDir(), "img.jpg")
		if err := os.WriteFile(name, []byte("not really a jpeg"), 0600); err != nil {
			t.Fatal(err)
		}
		imgs = append(imgs, images.Downloaded{URL: "https://example.com/img.jpg", Path: name, Width: 100, Height: 100})
	}
	return imgs
}

func renderBook(t *testing.T, doc *content.Document, imgs []images.Downloaded) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "book.epub")
	if err := New(zaptest.NewLogger(t)).Render(context.Background(), doc, imgs, out); err != nil {
		t.Fatal(err)
	}
	return out
}

func readZipEntry(t *testing.T, zr *zip.ReadCloser, name string) []byte {
	t.Helper()
	for _, f := range zr.File {
		if f.Name == name {
			r, err := f.Open()
			if err != nil {
				t.Fatal(err)
			}
			defer r.Close()
			data, err := io.ReadAll(r)
			if err != nil {
				t.Fatal(err)
			}
			return data
		}
	}
	t.Fatalf("entry %q not found in archive", name)
	return nil
}

func parseZipXML(t *testing.T, zr *zip.ReadCloser, name string) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(readZipEntry(t, zr, name)); err != nil {
		t.Fatalf("unable to parse %s: %v", name, err)
	}
	return doc
}

func TestRenderArchiveLayout(t *testing.T) {
	out := renderBook(t, testDocument(), testImageFiles(t, 2))

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	if len(zr.File) == 0 || zr.File[0].Name != "mimetype" {
		t.Fatal("mimetype must be the first archive entry")
	}
	if zr.File[0].Method != zip.Store {
		t.Error("mimetype must be stored uncompressed")
	}
	if string(readZipEntry(t, zr, "mimetype")) != mimetypeContent {
		t.Error("wrong mimetype content")
	}

	container := parseZipXML(t, zr, "META-INF/container.xml")
	rootfile := container.FindElement("//rootfile")
	if rootfile == nil || rootfile.SelectAttrValue("full-path", "") != "OEBPS/content.opf" {
		t.Error("container does not point at the OPF")
	}

	for _, name := range []string{
		"OEBPS/content.opf", "OEBPS/toc.ncx", "OEBPS/stylesheet.css",
		"OEBPS/images/image001.jpg", "OEBPS/images/image002.jpg",
	} {
		readZipEntry(t, zr, name)
	}
}

func TestRenderNoDataDescriptors(t *testing.T) {
	out := renderBook(t, testDocument(), nil)

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Flags&0x8 != 0 {
			t.Errorf("entry %q still has data descriptor flag set", f.Name)
		}
	}
}

func TestRenderOPF(t *testing.T) {
	out := renderBook(t, testDocument(), testImageFiles(t, 1))

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	opf := parseZipXML(t, zr, "OEBPS/content.opf")

	if title := opf.FindElement("//dc:title"); title == nil || title.Text() != "Test Article" {
		t.Error("missing or wrong dc:title")
	}
	if lang := opf.FindElement("//dc:language"); lang == nil || lang.Text() != "en" {
		t.Error("missing or wrong dc:language")
	}
	if date := opf.FindElement("//dc:date"); date == nil || date.Text() != "2024-03-01" {
		t.Error("missing or wrong dc:date")
	}
	if src := opf.FindElement("//dc:source"); src == nil || src.Text() != "https://example.com/article" {
		t.Error("missing or wrong dc:source")
	}

	creators := opf.FindElements("//dc:creator")
	if len(creators) != 2 {
		t.Fatalf("expected 2 creators, got %d", len(creators))
	}
	if creators[0].Text() != "John Doe" || creators[0].SelectAttrValue("opf:role", "") != "aut" {
		t.Errorf("unexpected first creator: %q", creators[0].Text())
	}

	id := opf.FindElement("//dc:identifier")
	if id == nil || len(id.Text()) == 0 {
		t.Fatal("missing dc:identifier")
	}

	ncx := parseZipXML(t, zr, "OEBPS/toc.ncx")
	uid := ncx.FindElement("//meta[@name='dtb:uid']")
	if uid == nil || uid.SelectAttrValue("content", "") != id.Text() {
		t.Error("NCX uid does not match OPF identifier")
	}

	spine := opf.FindElements("//spine/itemref")
	manifest := opf.FindElements("//manifest/item")
	// front chapter plus two sections, each also present in the manifest
	if len(spine) != 3 {
		t.Errorf("expected 3 spine entries, got %d", len(spine))
	}
	if len(manifest) != 3+2+1 { // chapters + ncx/css + image
		t.Errorf("expected 6 manifest items, got %d", len(manifest))
	}
}

func TestRenderChapters(t *testing.T) {
	out := renderBook(t, testDocument(), testImageFiles(t, 1))

	zr, err := zip.OpenReader(out)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()

	front := parseZipXML(t, zr, "OEBPS/chapter001.xhtml")
	if h1 := front.FindElement("//h1"); h1 == nil || h1.Text() != "Test Article" {
		t.Error("front chapter is missing the title")
	}
	metaLines := front.FindElements("//p[@class='meta']")
	if len(metaLines) != 3 {
		t.Fatalf("expected 3 metadata lines, got %d", len(metaLines))
	}
	if metaLines[0].Text() != "Authors: John Doe, Jane Roe" {
		t.Errorf("unexpected authors line: %q", metaLines[0].Text())
	}
	if img := front.FindElement("//img"); img == nil || img.SelectAttrValue("src", "") != "images/image001.jpg" {
		t.Error("front chapter is missing the lead image")
	}

	first := parseZipXML(t, zr, "OEBPS/chapter002.xhtml")
	if h2 := first.FindElement("//h2"); h2 == nil || h2.Text() != "First Section" {
		t.Error("second chapter is missing the section heading")
	}
	if h3 := first.FindElement("//h3"); h3 == nil || h3.Text() != "Subsection" {
		t.Error("low level heading should stay inside the chapter")
	}
	if b := first.FindElement("//p/b"); b == nil || b.Text() != "markup" {
		t.Error("bold markup lost in chapter body")
	}
	a := first.FindElement("//p/a")
	if a == nil || a.SelectAttrValue("href", "") != "https://example.com/more" {
		t.Error("link markup lost in chapter body")
	}

	ncx := parseZipXML(t, zr, "OEBPS/toc.ncx")
	labels := ncx.FindElements("//navLabel/text")
	if len(labels) != 3 {
		t.Fatalf("expected 3 nav points, got %d", len(labels))
	}
	if labels[1].Text() != "First Section" || labels[2].Text() != "Second Section" {
		t.Errorf("unexpected TOC labels: %q, %q", labels[1].Text(), labels[2].Text())
	}
}

func TestBuildBookSpreadsImages(t *testing.T) {
	doc := &content.Document{
		Meta: content.Metadata{Title: "Images", SourceURL: "https://example.com"},
	}
	for i := 0; i < 6; i++ {
		doc.Blocks = append(doc.Blocks, content.Block{Kind: content.BlockParagraph, Text: "Paragraph."})
	}
	imgs := []images.Downloaded{
		{Path: "/tmp/a.jpg"}, {Path: "/tmp/b.png"}, {Path: "/tmp/c.jpg"},
	}

	b := buildBook(doc, imgs)
	if len(b.Chapters) != 1 {
		t.Fatalf("expected single chapter, got %d", len(b.Chapters))
	}
	if b.Images[1].Filename != "image002.png" {
		t.Errorf("unexpected image filename: %q", b.Images[1].Filename)
	}

	var order []string
	for _, e := range b.Chapters[0].Doc.FindElements("//body/*") {
		tag := e.Tag
		if tag == "div" {
			tag = "img"
		}
		order = append(order, tag)
	}
	// lead image right after metadata, the remaining two interleaved with
	// interval 2
	expected := []string{"h1", "p", "img", "p", "p", "img", "p", "p", "img", "p", "p"}
	if strings.Join(order, " ") != strings.Join(expected, " ") {
		t.Errorf("unexpected element order: %v", order)
	}
}

func TestBuildBookChapterHeadingLevels(t *testing.T) {
	doc := &content.Document{
		Meta: content.Metadata{Title: "Levels", SourceURL: "https://example.com"},
		Blocks: []content.Block{
			{Kind: content.BlockHeading, Text: "Top Level", Level: 1},
			{Kind: content.BlockParagraph, Text: "One."},
			{Kind: content.BlockHeading, Text: "Second Level", Level: 2},
			{Kind: content.BlockParagraph, Text: "Two."},
		},
	}

	b := buildBook(doc, nil)
	// front chapter plus one per heading
	if len(b.Chapters) != 3 {
		t.Fatalf("expected 3 chapters, got %d", len(b.Chapters))
	}
	if h := b.Chapters[1].Doc.FindElement("//body/h1"); h == nil || h.Text() != "Top Level" {
		t.Error("level 1 heading must open its chapter with h1")
	}
	if h := b.Chapters[2].Doc.FindElement("//body/h2"); h == nil || h.Text() != "Second Level" {
		t.Error("level 2 heading must open its chapter with h2")
	}
}

func TestBuildBookNoImages(t *testing.T) {
	doc := &content.Document{
		Meta:   content.Metadata{Title: "Plain", SourceURL: "https://example.com"},
		Blocks: []content.Block{{Kind: content.BlockParagraph, Text: "Only paragraph."}},
	}
	b := buildBook(doc, nil)
	if len(b.Images) != 0 {
		t.Fatalf("unexpected images: %d", len(b.Images))
	}
	if img := b.Chapters[0].Doc.FindElement("//img"); img != nil {
		t.Error("unexpected image element in chapter")
	}
}
