package decoder

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// DefaultCellSelector matches the styled text spans inside the results table.
// The HTML5 parser always inserts tbody between table and tr.
const DefaultCellSelector = "table[width] > tbody > tr > td > .PortletText1"

// Field is one table cell. Present is false when the cell's first child is not
// text (a nested element or nothing at all).
type Field struct {
	Text    string
	Present bool
}

// Text returns a present field.
func Text(s string) Field { return Field{Text: s, Present: true} }

// Absent returns the absence marker.
func Absent() Field { return Field{} }

// Schema maps raw page content to the flat, ordered cell sequence of the
// results table. The selector knowledge lives here so the grouping logic does
// not depend on the portal's markup.
type Schema interface {
	Fields(page []byte) ([]Field, error)
}

// SelectorSchema reads cells with a CSS selector.
type SelectorSchema struct {
	Selector string
}

// NewSelectorSchema returns a schema for selector, or the default selector if empty.
func NewSelectorSchema(selector string) *SelectorSchema {
	if strings.TrimSpace(selector) == "" {
		selector = DefaultCellSelector
	}
	return &SelectorSchema{Selector: selector}
}

func (s *SelectorSchema) Fields(page []byte) ([]Field, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}
	sel := doc.Find(s.Selector)
	fields := make([]Field, 0, sel.Length())
	for _, n := range sel.Nodes {
		fields = append(fields, cellField(n))
	}
	return fields, nil
}

var whitespaceRun = regexp.MustCompile(`\s+`)

func cellField(n *html.Node) Field {
	first := n.FirstChild
	if first == nil || first.Type != html.TextNode {
		return Absent()
	}
	return Text(whitespaceRun.ReplaceAllString(strings.TrimSpace(first.Data), " "))
}

// StaticSchema returns a fixed cell sequence regardless of the page.
type StaticSchema []Field

func (s StaticSchema) Fields(_ []byte) ([]Field, error) {
	return s, nil
}
