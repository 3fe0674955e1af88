package content

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// invisibleSelector matches elements whose text never reaches the reader.
const invisibleSelector = "script, style, noscript, template"

// Document is the visible text of a fetched page.
type Document struct {
	Title string
	Text  string
}

// Extract parses raw HTML best-effort and returns its visible text with all
// markup removed. The title is returned separately and is also part of Text.
func Extract(rawHTML string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Document{}, fmt.Errorf("parse failed: %w", err)
	}

	doc.Find(invisibleSelector).Remove()

	return Document{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  doc.Text(),
	}, nil
}
