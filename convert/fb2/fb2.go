// Package fb2 renders documents into FictionBook 2 files.
package fb2

import (
	"context"
	"encoding/base64"
	"fmt"
	stdhtml "html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"u2b/content"
	"u2b/content/inline"
	"u2b/misc"
	"u2b/utils/images"
)

const (
	fb2Namespace   = "http://www.gribuser.ru/xml/fictionbook/2.0"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
)

// FB2 renders articles into FictionBook 2 documents with embedded images.
type FB2 struct {
	log *zap.Logger
}

func New(log *zap.Logger) *FB2 {
	if log == nil {
		log = zap.NewNop()
	}
	return &FB2{log: log.Named("fb2")}
}

func (f *FB2) Render(ctx context.Context, doc *content.Document, imgs []images.Downloaded, outputPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := uuid.New().String()
	f.log.Debug("generating FB2",
		zap.String("output", outputPath),
		zap.String("id", id))

	book := etree.NewDocument()
	book.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := book.CreateElement("FictionBook")
	root.CreateAttr("xmlns", fb2Namespace)
	root.CreateAttr("xmlns:l", xlinkNamespace)

	buildDescription(root, doc, id)

	binaries := &binarySet{}
	binaries.add(imgs)

	buildBody(root.CreateElement("body"), doc, binaries)

	if err := binaries.attach(root); err != nil {
		return err
	}

	if err := book.WriteToFile(outputPath); err != nil {
		return fmt.Errorf("unable to write FB2 file: %w", err)
	}
	return nil
}

func buildDescription(root *etree.Element, doc *content.Document, id string) {
	desc := root.CreateElement("description")

	titleInfo := desc.CreateElement("title-info")
	titleInfo.CreateElement("genre").SetText("nonfiction")
	for _, name := range doc.Meta.Authors {
		appendAuthor(titleInfo, name)
	}
	titleInfo.CreateElement("book-title").SetText(doc.Title())

	annotation := titleInfo.CreateElement("annotation")
	annotation.CreateElement("p").SetText("Source: " + doc.Meta.SourceURL)

	if !doc.Meta.Published.IsZero() {
		date := titleInfo.CreateElement("date")
		date.CreateAttr("value", doc.Meta.Published.Format("2006-01-02"))
		date.SetText(doc.Meta.Published.Format("2006-01-02"))
	}
	titleInfo.CreateElement("lang").SetText(doc.Meta.Language)

	docInfo := desc.CreateElement("document-info")
	author := docInfo.CreateElement("author")
	author.CreateElement("nickname").SetText(misc.GetAppName())
	docInfo.CreateElement("program-used").SetText(misc.GetAppName() + " " + misc.GetVersion())

	now := time.Now()
	date := docInfo.CreateElement("date")
	date.CreateAttr("value", now.Format("2006-01-02"))
	date.SetText(now.Format("2006-01-02"))

	docInfo.CreateElement("src-url").SetText(doc.Meta.SourceURL)
	docInfo.CreateElement("id").SetText(id)
	docInfo.CreateElement("version").SetText("1.0")
}

// appendAuthor splits a display name into first/last parts, a single word
// becomes a nickname.
func appendAuthor(parent *etree.Element, name string) {
	author := parent.CreateElement("author")
	parts := strings.Fields(name)
	switch {
	case len(parts) == 0:
		return
	case len(parts) == 1:
		author.CreateElement("nickname").SetText(parts[0])
	default:
		author.CreateElement("first-name").SetText(strings.Join(parts[:len(parts)-1], " "))
		author.CreateElement("last-name").SetText(parts[len(parts)-1])
	}
}

// buildBody splits the document into sections at top level headings and
// spreads images between paragraphs.
func buildBody(body *etree.Element, doc *content.Document, binaries *binarySet) {
	title := body.CreateElement("title")
	title.CreateElement("p").SetText(doc.Title())

	section := body.CreateElement("section")

	rest := binaries.refs
	if len(rest) != 0 {
		appendImage(section, rest[0])
		rest = rest[1:]
	}
	interval := content.ImageInterval(doc.ParagraphCount(), len(rest))

	paragraphIdx := 0
	for _, block := range doc.Blocks {
		switch block.Kind {
		case content.BlockHeading:
			if block.Level <= 2 {
				section = body.CreateElement("section")
				title := section.CreateElement("title")
				title.CreateElement("p").SetText(block.Text)
				continue
			}
			section.CreateElement("subtitle").SetText(block.Text)
		case content.BlockParagraph:
			appendInline(section.CreateElement("p"), block.Markup())
			paragraphIdx++
			if len(rest) != 0 && interval > 0 && paragraphIdx%interval == 0 {
				appendImage(section, rest[0])
				rest = rest[1:]
			}
		}
	}
	for _, ref := range rest {
		appendImage(section, ref)
	}

	// a section without content is not valid FB2
	for _, s := range body.SelectElements("section") {
		if len(s.ChildElements()) == 0 {
			body.RemoveChild(s)
		}
	}
}

func appendImage(section *etree.Element, ref string) {
	img := section.CreateElement("image")
	img.CreateAttr("l:href", "#"+ref)
}

// appendInline renders constrained markup into the paragraph element using
// FB2 element names.
func appendInline(p *etree.Element, markup string) {
	stack := []*etree.Element{p}
	cur := func() *etree.Element { return stack[len(stack)-1] }
	push := func(e *etree.Element) { stack = append(stack, e) }
	pop := func() {
		if len(stack) > 1 {
			stack = stack[:len(stack)-1]
		}
	}

	for _, t := range inline.Parse(markup) {
		switch t.Kind {
		case inline.Text:
			cur().CreateText(stdhtml.UnescapeString(t.Text))
		case inline.StartBold:
			push(cur().CreateElement("strong"))
		case inline.StartItalic:
			push(cur().CreateElement("emphasis"))
		case inline.StartLink:
			a := cur().CreateElement("a")
			a.CreateAttr("l:href", t.URL)
			push(a)
		case inline.EndBold, inline.EndItalic, inline.EndLink:
			pop()
		}
	}
}

// binarySet tracks embedded images, refs in document order.
type binarySet struct {
	refs []string
	imgs []images.Downloaded
}

func (bs *binarySet) add(imgs []images.Downloaded) {
	for i, img := range imgs {
		ext := strings.ToLower(filepath.Ext(img.Path))
		if ext != ".jpg" && ext != ".png" {
			ext = ".png"
		}
		bs.refs = append(bs.refs, fmt.Sprintf("image%03d%s", i+1, ext))
		bs.imgs = append(bs.imgs, img)
	}
}

// attach appends base64 binary elements for all referenced images.
func (bs *binarySet) attach(root *etree.Element) error {
	for i, img := range bs.imgs {
		data, err := os.ReadFile(img.Path)
		if err != nil {
			return fmt.Errorf("unable to read image %q: %w", img.Path, err)
		}
		binary := root.CreateElement("binary")
		binary.CreateAttr("id", bs.refs[i])
		binary.CreateAttr("content-type", contentType(bs.refs[i]))
		binary.SetText(base64.StdEncoding.EncodeToString(data))
	}
	return nil
}

func contentType(ref string) string {
	if strings.HasSuffix(ref, ".jpg") {
		return "image/jpeg"
	}
	return "image/png"
}
