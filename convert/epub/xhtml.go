package epub

import (
	"fmt"
	stdhtml "html"
	"path"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"u2b/content"
	"u2b/content/inline"
	"u2b/utils/images"
)

// book is the assembled EPUB content before packaging.
type book struct {
	ID       string
	Meta     content.Metadata
	Chapters []chapterData
	Images   []bookImage
}

type chapterData struct {
	ID       string
	Filename string
	Title    string
	Doc      *etree.Document
}

type bookImage struct {
	ID       string
	Filename string
	Source   images.Downloaded
}

// buildBook splits the document into chapters. Headings of level 1 and 2
// start a new chapter, everything before the first one goes into the opening
// chapter together with title and metadata. Images are spread between
// paragraphs the same way the PDF does it.
func buildBook(doc *content.Document, imgs []images.Downloaded) *book {
	b := &book{Meta: doc.Meta}
	b.Meta.Title = doc.Title()
	for i, img := range imgs {
		b.Images = append(b.Images, bookImage{
			ID:       fmt.Sprintf("image%03d", i+1),
			Filename: fmt.Sprintf("image%03d%s", i+1, imageExt(img.Path)),
			Source:   img,
		})
	}

	builder := newChapterBuilder(b, doc)
	builder.frontMatter()
	for _, block := range doc.Blocks {
		builder.add(block)
	}
	builder.finish()
	return b
}

type chapterBuilder struct {
	book *book
	doc  *content.Document

	current *etree.Element

	rest         []bookImage
	interval     int
	paragraphIdx int
}

func newChapterBuilder(b *book, doc *content.Document) *chapterBuilder {
	cb := &chapterBuilder{book: b, doc: doc, rest: b.Images}
	if len(cb.rest) != 0 {
		// lead image is placed by frontMatter
		cb.rest = cb.rest[1:]
	}
	cb.interval = content.ImageInterval(doc.ParagraphCount(), len(cb.rest))
	return cb
}

// frontMatter opens the first chapter with the document title, metadata and
// the lead image.
func (cb *chapterBuilder) frontMatter() {
	body := cb.open(cb.doc.Title())

	h1 := body.CreateElement("h1")
	h1.SetText(cb.doc.Title())

	for _, line := range content.MetadataLines(cb.doc.Meta) {
		p := body.CreateElement("p")
		p.CreateAttr("class", "meta")
		p.SetText(line)
	}

	if len(cb.book.Images) != 0 {
		cb.insertImage(cb.book.Images[0])
	}
}

func (cb *chapterBuilder) add(block content.Block) {
	switch block.Kind {
	case content.BlockHeading:
		if block.Level <= 2 {
			cb.closeChapter()
			body := cb.open(block.Text)
			h := body.CreateElement(fmt.Sprintf("h%d", content.ClampHeadingLevel(block.Level)))
			h.SetText(block.Text)
			return
		}
		h := cb.current.CreateElement(fmt.Sprintf("h%d", content.ClampHeadingLevel(block.Level)))
		h.SetText(block.Text)
	case content.BlockParagraph:
		appendInline(cb.current.CreateElement("p"), block.Markup())
		cb.paragraphIdx++
		if len(cb.rest) != 0 && cb.interval > 0 && cb.paragraphIdx%cb.interval == 0 {
			cb.insertImage(cb.rest[0])
			cb.rest = cb.rest[1:]
		}
	}
}

func (cb *chapterBuilder) finish() {
	for _, img := range cb.rest {
		cb.insertImage(img)
	}
	cb.rest = nil
	cb.closeChapter()
}

// open starts a new chapter document and returns its body element.
func (cb *chapterBuilder) open(title string) *etree.Element {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	html := doc.CreateElement("html")
	html.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")

	head := html.CreateElement("head")

	meta := head.CreateElement("meta")
	meta.CreateAttr("http-equiv", "Content-Type")
	meta.CreateAttr("content", "text/html; charset=utf-8")

	link := head.CreateElement("link")
	link.CreateAttr("rel", "stylesheet")
	link.CreateAttr("type", "text/css")
	link.CreateAttr("href", "stylesheet.css")

	titleElem := head.CreateElement("title")
	titleElem.SetText(title)

	body := html.CreateElement("body")

	n := len(cb.book.Chapters) + 1
	cb.book.Chapters = append(cb.book.Chapters, chapterData{
		ID:       fmt.Sprintf("chapter%03d", n),
		Filename: fmt.Sprintf("chapter%03d.xhtml", n),
		Title:    title,
		Doc:      doc,
	})
	cb.current = body
	return body
}

// closeChapter drops an accidentally empty chapter from the spine.
func (cb *chapterBuilder) closeChapter() {
	if cb.current == nil {
		return
	}
	if len(cb.current.ChildElements()) == 0 {
		cb.book.Chapters = cb.book.Chapters[:len(cb.book.Chapters)-1]
	}
	cb.current = nil
}

func (cb *chapterBuilder) insertImage(img bookImage) {
	div := cb.current.CreateElement("div")
	div.CreateAttr("class", "image")
	elem := div.CreateElement("img")
	elem.CreateAttr("src", path.Join(imagesDir, img.Filename))
	elem.CreateAttr("alt", "")
}

// appendInline renders constrained markup into the paragraph element.
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
			push(cur().CreateElement("em"))
		case inline.StartLink:
			a := cur().CreateElement("a")
			a.CreateAttr("href", t.URL)
			push(a)
		case inline.EndBold, inline.EndItalic, inline.EndLink:
			pop()
		}
	}
}

func imageExt(p string) string {
	ext := strings.ToLower(filepath.Ext(p))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if ext != ".jpg" && ext != ".png" {
		ext = ".png"
	}
	return ext
}

func mediaType(filename string) string {
	if strings.HasSuffix(filename, ".jpg") {
		return "image/jpeg"
	}
	return "image/png"
}
