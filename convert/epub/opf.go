package epub

import (
	"fmt"
	"path"

	"github.com/beevik/etree"
)

func buildOPF(b *book) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	pkg := doc.CreateElement("package")
	pkg.CreateAttr("xmlns", "http://www.idpf.org/2007/opf")
	pkg.CreateAttr("unique-identifier", "BookId")
	pkg.CreateAttr("version", "2.0")

	metadata := pkg.CreateElement("metadata")
	metadata.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	metadata.CreateAttr("xmlns:opf", "http://www.idpf.org/2007/opf")

	dcTitle := metadata.CreateElement("dc:title")
	dcTitle.SetText(b.Meta.Title)

	dcIdentifier := metadata.CreateElement("dc:identifier")
	dcIdentifier.CreateAttr("id", "BookId")
	dcIdentifier.SetText(b.ID)

	dcLang := metadata.CreateElement("dc:language")
	dcLang.SetText(b.Meta.Language)

	for _, author := range b.Meta.Authors {
		dcCreator := metadata.CreateElement("dc:creator")
		dcCreator.CreateAttr("opf:role", "aut")
		dcCreator.SetText(author)
	}

	if len(b.Meta.SourceURL) != 0 {
		dcSource := metadata.CreateElement("dc:source")
		dcSource.SetText(b.Meta.SourceURL)
	}

	if !b.Meta.Published.IsZero() {
		dcDate := metadata.CreateElement("dc:date")
		dcDate.SetText(b.Meta.Published.Format("2006-01-02"))
	}

	manifest := pkg.CreateElement("manifest")

	ncxItem := manifest.CreateElement("item")
	ncxItem.CreateAttr("id", "ncx")
	ncxItem.CreateAttr("href", "toc.ncx")
	ncxItem.CreateAttr("media-type", "application/x-dtbncx+xml")

	cssItem := manifest.CreateElement("item")
	cssItem.CreateAttr("id", "stylesheet")
	cssItem.CreateAttr("href", "stylesheet.css")
	cssItem.CreateAttr("media-type", "text/css")

	for _, chapter := range b.Chapters {
		item := manifest.CreateElement("item")
		item.CreateAttr("id", chapter.ID)
		item.CreateAttr("href", chapter.Filename)
		item.CreateAttr("media-type", "application/xhtml+xml")
	}

	for _, img := range b.Images {
		item := manifest.CreateElement("item")
		item.CreateAttr("id", img.ID)
		item.CreateAttr("href", path.Join(imagesDir, img.Filename))
		item.CreateAttr("media-type", mediaType(img.Filename))
	}

	spine := pkg.CreateElement("spine")
	spine.CreateAttr("toc", "ncx")
	for _, chapter := range b.Chapters {
		itemref := spine.CreateElement("itemref")
		itemref.CreateAttr("idref", chapter.ID)
	}

	return doc
}

func buildNCX(b *book) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	ncx := doc.CreateElement("ncx")
	ncx.CreateAttr("xmlns", "http://www.daisy.org/z3986/2005/ncx/")
	ncx.CreateAttr("version", "2005-1")

	head := ncx.CreateElement("head")

	metaUID := head.CreateElement("meta")
	metaUID.CreateAttr("name", "dtb:uid")
	metaUID.CreateAttr("content", b.ID)

	metaDepth := head.CreateElement("meta")
	metaDepth.CreateAttr("name", "dtb:depth")
	metaDepth.CreateAttr("content", "1")

	docTitle := ncx.CreateElement("docTitle")
	text := docTitle.CreateElement("text")
	text.SetText(b.Meta.Title)

	navMap := ncx.CreateElement("navMap")

	for i, chapter := range b.Chapters {
		navPoint := navMap.CreateElement("navPoint")
		navPoint.CreateAttr("id", chapter.ID)
		navPoint.CreateAttr("playOrder", fmt.Sprintf("%d", i+1))

		navLabel := navPoint.CreateElement("navLabel")
		labelText := navLabel.CreateElement("text")
		labelText.SetText(chapter.Title)

		navContent := navPoint.CreateElement("content")
		navContent.CreateAttr("src", chapter.Filename)
	}

	return doc
}
