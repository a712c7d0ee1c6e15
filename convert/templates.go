package convert

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"u2b/common"
	"u2b/content"
)

const outputNameTemplateField = "output_name_template"

// Values holds variables available for output name template expansion.
type Values struct {
	Context string
	Title   string
	Authors []string
	Date    string
	Format  string
	Host    string
	Source  string
}

func buildDate(doc *content.Document) string {
	if doc.Meta.Published.IsZero() {
		return ""
	}
	return doc.Meta.Published.Format("2006-01-02")
}

func buildHost(doc *content.Document) string {
	u, err := url.Parse(doc.Meta.SourceURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

func expandTemplate(doc *content.Document, name, field string, format common.OutputFmt) (string, error) {
	tmpl, err := template.New(name).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context: name,
		Title:   doc.Title(),
		Authors: doc.Meta.Authors,
		Date:    buildDate(doc),
		Format:  format.String(),
		Host:    buildHost(doc),
		Source:  doc.Meta.SourceURL,
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
