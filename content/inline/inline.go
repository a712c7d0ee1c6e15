// Package inline tokenizes the constrained inline markup subset (b, i, a)
// used inside paragraph blocks. All renderers share the same token stream so
// formatting is interpreted exactly once.
package inline

import (
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/html"
)

// TokenKind discriminates inline token variants.
type TokenKind int

const (
	Text TokenKind = iota
	StartBold
	EndBold
	StartItalic
	EndItalic
	StartLink
	EndLink
)

func (k TokenKind) String() string {
	switch k {
	case Text:
		return "text"
	case StartBold:
		return "start-bold"
	case EndBold:
		return "end-bold"
	case StartItalic:
		return "start-italic"
	case EndItalic:
		return "end-italic"
	case StartLink:
		return "start-link"
	case EndLink:
		return "end-link"
	default:
		// this should never happen
		panic("unsupported token kind")
	}
}

// Token is a single lexical unit of paragraph markup.
type Token struct {
	Kind TokenKind
	// Text carries literal characters for Text tokens.
	Text string
	// URL carries the link target for StartLink tokens.
	URL string
}

// Parse tokenizes paragraph markup. Only b, i and a (with an href) produce
// formatting tokens, u is recognized and dropped, everything else is passed
// through verbatim as text. Parse never fails: malformed input degrades to
// text tokens, and concatenating the emitted text reproduces the input with
// recognized tags removed.
func Parse(s string) []Token {
	var tokens []Token

	emitText := func(t string) {
		if len(t) == 0 {
			return
		}
		if n := len(tokens); n > 0 && tokens[n-1].Kind == Text {
			tokens[n-1].Text += t
			return
		}
		tokens = append(tokens, Token{Kind: Text, Text: t})
	}

	l := html.NewLexer(parse.NewInputString(s))
	for {
		tt, data := l.Next()
		switch tt {
		case html.ErrorToken:
			return tokens
		case html.StartTagToken:
			name := strings.ToLower(string(l.Text()))
			raw, href, hasAttrs := consumeStartTag(l, data)
			switch {
			case name == "b" && !hasAttrs:
				tokens = append(tokens, Token{Kind: StartBold})
			case name == "i" && !hasAttrs:
				tokens = append(tokens, Token{Kind: StartItalic})
			case name == "u" && !hasAttrs:
				// recognized but carries no style
			case name == "a" && len(href) != 0:
				tokens = append(tokens, Token{Kind: StartLink, URL: href})
			default:
				emitText(raw)
			}
		case html.EndTagToken:
			switch strings.ToLower(string(l.Text())) {
			case "b":
				tokens = append(tokens, Token{Kind: EndBold})
			case "i":
				tokens = append(tokens, Token{Kind: EndItalic})
			case "u":
				// recognized but carries no style
			case "a":
				tokens = append(tokens, Token{Kind: EndLink})
			default:
				emitText(string(data))
			}
		case html.TextToken:
			emitText(string(data))
		default:
			// comments, doctype and anything else lexer may produce
			emitText(string(data))
		}
	}
}

// consumeStartTag reads attribute tokens up to and including the tag closer,
// returning the verbatim tag text, the href value and whether any attributes
// were present.
func consumeStartTag(l *html.Lexer, opener []byte) (raw, href string, hasAttrs bool) {
	var sb strings.Builder
	sb.Write(opener)
	for {
		tt, data := l.Next()
		sb.Write(data)
		switch tt {
		case html.AttributeToken:
			hasAttrs = true
			if strings.ToLower(string(l.Text())) == "href" {
				href = unquote(string(l.AttrVal()))
			}
		case html.StartTagCloseToken, html.StartTagVoidToken, html.ErrorToken:
			return sb.String(), href, hasAttrs
		}
	}
}

func unquote(v string) string {
	if len(v) > 1 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// Strip returns the plain text of markup with all recognized tags removed.
func Strip(s string) string {
	var sb strings.Builder
	for _, t := range Parse(s) {
		if t.Kind == Text {
			sb.WriteString(t.Text)
		}
	}
	return sb.String()
}
