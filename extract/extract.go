// Package extract pulls readable article content out of web pages: metadata,
// heading and paragraph blocks with constrained inline markup, and image
// references.
package extract

import (
	"context"
	"fmt"
	stdhtml "html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"u2b/config"
	"u2b/content"
	"u2b/misc"
)

// responses bigger than this are cut off, nobody writes articles this long
const maxBodySize = 16 << 20

// Article is raw extraction output, document assembly happens later when
// images are known.
type Article struct {
	Meta   content.Metadata
	Blocks []content.Block
	// TopImage is the page's advertised lead image, empty when absent.
	TopImage string
	// Images are content image URLs in document order, absolute, deduplicated.
	Images []string
}

// Extractor fetches and dissects article pages.
type Extractor struct {
	cfg    config.ExtractConfig
	log    *zap.Logger
	client *http.Client
}

func New(cfg config.ExtractConfig, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{
		cfg: cfg,
		log: log.Named("extract"),
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// FromURL downloads the page and extracts the article from it.
func (e *Extractor) FromURL(ctx context.Context, pageURL string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare request for %q: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; "+misc.GetAppName()+"/"+misc.GetVersion()+")")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %q: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unable to fetch %q: unexpected status %s", pageURL, resp.Status)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxBodySize), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("unable to decode %q: %w", pageURL, err)
	}
	return e.FromReader(body, pageURL)
}

// FromReader extracts the article from already retrieved page text. Relative
// references are resolved against baseURL.
func (e *Extractor) FromReader(r io.Reader, baseURL string) (*Article, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("unable to parse page: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	article := &Article{}
	article.Meta = extractMetadata(root)
	article.Meta.SourceURL = baseURL
	if og := metaContent(root, "property", "og:image"); len(og) != 0 {
		article.TopImage = resolveURL(base, og)
	}

	w := &walker{base: base, minParagraph: e.cfg.MinParagraphLength, seen: make(map[string]bool)}
	w.walk(contentRoot(root))
	article.Blocks = w.blocks
	article.Images = w.images

	e.log.Debug("extracted article",
		zap.String("title", article.Meta.Title),
		zap.Int("blocks", len(article.Blocks)),
		zap.Int("images", len(article.Images)))

	if len(article.Blocks) == 0 {
		return nil, fmt.Errorf("no readable content found at %q", baseURL)
	}
	return article, nil
}

// contentRoot prefers semantic containers over the whole body.
func contentRoot(root *html.Node) *html.Node {
	for _, tag := range []string{"article", "main", "body"} {
		if n := findElement(root, tag); n != nil {
			return n
		}
	}
	return root
}

func extractMetadata(root *html.Node) content.Metadata {
	meta := content.Metadata{}

	if t := metaContent(root, "property", "og:title"); len(t) != 0 {
		meta.Title = t
	} else if n := findElement(root, "title"); n != nil {
		meta.Title = collapseSpace(textContent(n))
	}

	seen := make(map[string]bool)
	for _, a := range append(
		metaContents(root, "name", "author"),
		metaContents(root, "property", "article:author")...) {
		a = collapseSpace(a)
		// ignore author URLs, some sites put profile links here
		if len(a) == 0 || seen[a] || strings.HasPrefix(a, "http://") || strings.HasPrefix(a, "https://") {
			continue
		}
		seen[a] = true
		meta.Authors = append(meta.Authors, a)
	}

	meta.Language = "en"
	if n := findElement(root, "html"); n != nil {
		if lang := attrValue(n, "lang"); len(lang) >= 2 {
			meta.Language = strings.ToLower(lang[:2])
		}
	}

	if d := metaContent(root, "property", "article:published_time"); len(d) != 0 {
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, d); err == nil {
				meta.Published = ts
				break
			}
		}
	}
	return meta
}

// walker collects blocks and image references in document order.
type walker struct {
	base         *url.URL
	minParagraph int
	blocks       []content.Block
	images       []string
	seen         map[string]bool
}

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"nav": true, "aside": true, "header": true, "footer": true,
	"form": true, "iframe": true, "svg": true, "button": true,
}

func (w *walker) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		if skipTags[n.Data] {
			return
		}
		switch n.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			if text := collapseSpace(textContent(n)); len(text) != 0 {
				w.blocks = append(w.blocks, content.Block{
					Kind:  content.BlockHeading,
					Text:  text,
					Level: int(n.Data[1] - '0'),
				})
			}
			return
		case "p":
			w.paragraph(n)
			return
		case "img":
			w.image(n)
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *walker) paragraph(n *html.Node) {
	// images inside paragraphs are still content
	for _, src := range imageRefs(n) {
		w.addImage(src)
	}

	plain := collapseSpace(textContent(n))
	if utf8.RuneCountInString(plain) < w.minParagraph {
		return
	}

	markup := collapseSpace(cleanInline(n, w.base))
	block := content.Block{Kind: content.BlockParagraph, Text: plain}
	if markup != stdhtml.EscapeString(plain) {
		block.HTML = markup
	}
	w.blocks = append(w.blocks, block)
}

func (w *walker) image(n *html.Node) {
	src := attrValue(n, "src")
	if len(src) == 0 {
		src = attrValue(n, "data-src")
	}
	w.addImage(src)
}

func (w *walker) addImage(src string) {
	if len(src) == 0 || strings.HasPrefix(src, "data:") {
		return
	}
	abs := resolveURL(w.base, src)
	if len(abs) == 0 || w.seen[abs] {
		return
	}
	w.seen[abs] = true
	w.images = append(w.images, abs)
}

func imageRefs(n *html.Node) []string {
	var refs []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			if src := attrValue(n, "src"); len(src) != 0 {
				refs = append(refs, src)
			} else if src := attrValue(n, "data-src"); len(src) != 0 {
				refs = append(refs, src)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return refs
}

// cleanInline serializes paragraph content down to the constrained markup
// subset: b, i and absolute links. strong folds into b, em into i, u is
// dropped, fragment links lose the tag but keep the text.
func cleanInline(n *html.Node, base *url.URL) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeInline(&sb, c, base)
	}
	return sb.String()
}

func writeInline(sb *strings.Builder, n *html.Node, base *url.URL) {
	switch n.Type {
	case html.TextNode:
		sb.WriteString(stdhtml.EscapeString(squashSpace(n.Data)))
		return
	case html.ElementNode:
	default:
		return
	}

	var opening, closing string
	switch n.Data {
	case "b", "strong":
		opening, closing = "<b>", "</b>"
	case "i", "em":
		opening, closing = "<i>", "</i>"
	case "a":
		if href := linkTarget(n, base); len(href) != 0 {
			opening = `<a href="` + stdhtml.EscapeString(href) + `">`
			closing = "</a>"
		}
	case "br":
		sb.WriteString(" ")
		return
	default:
		if skipTags[n.Data] || n.Data == "img" {
			return
		}
	}

	sb.WriteString(opening)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeInline(sb, c, base)
	}
	sb.WriteString(closing)
}

// linkTarget resolves an anchor to an absolute http(s) URL, empty when the
// link should be dropped.
func linkTarget(n *html.Node, base *url.URL) string {
	href := attrValue(n, "href")
	if len(href) == 0 || strings.HasPrefix(href, "#") {
		return ""
	}
	abs := resolveURL(base, href)
	if !strings.HasPrefix(abs, "http://") && !strings.HasPrefix(abs, "https://") {
		return ""
	}
	return abs
}

func resolveURL(base *url.URL, ref string) string {
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if !u.IsAbs() {
		return ""
	}
	return u.String()
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func metaContent(root *html.Node, attr, value string) string {
	if all := metaContents(root, attr, value); len(all) != 0 {
		return all[0]
	}
	return ""
}

func metaContents(root *html.Node, attr, value string) []string {
	var found []string
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			if strings.EqualFold(attrValue(n, attr), value) {
				if c := strings.TrimSpace(attrValue(n, "content")); len(c) != 0 {
					found = append(found, c)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(root)
	return found
}

func attrValue(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, name) {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// squashSpace collapses whitespace runs but keeps boundary spaces so words
// around tags do not glue together.
func squashSpace(s string) string {
	collapsed := collapseSpace(s)
	if len(collapsed) == 0 {
		if len(s) != 0 {
			return " "
		}
		return ""
	}
	if s[0] == ' ' || s[0] == '\n' || s[0] == '\t' || s[0] == '\r' {
		collapsed = " " + collapsed
	}
	last := s[len(s)-1]
	if last == ' ' || last == '\n' || last == '\t' || last == '\r' {
		collapsed += " "
	}
	return collapsed
}
