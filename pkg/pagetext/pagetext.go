// Package pagetext extracts readable text from captured HTML pages. Used by
// the CLI when saving a whole page instead of a selection.
package pagetext

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MaxRunes caps extracted text so one page capture cannot dominate every
// extraction prompt afterwards.
const MaxRunes = 8000

// skip lists elements whose text is never page content.
var skip = "script, style, noscript, svg, iframe, head"

// FromHTML parses an HTML document and returns its visible text, whitespace
// collapsed and capped at MaxRunes.
func FromHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("pagetext: parse html: %w", err)
	}

	doc.Find(skip).Remove()

	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}

	text := strings.Join(strings.Fields(root.Text()), " ")
	runes := []rune(text)
	if len(runes) > MaxRunes {
		text = string(runes[:MaxRunes])
	}
	return text, nil
}

// Title returns the document title, or "" when absent.
func Title(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("pagetext: parse html: %w", err)
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}
