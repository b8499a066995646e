package domain

import "strings"

// ElementKind distinguishes the two shapes an extracted element can take.
type ElementKind string

const (
	// ElementText is a block of running text.
	ElementText ElementKind = "text"

	// ElementTable is a table with an HTML rendering and a plain-text fallback.
	ElementTable ElementKind = "table"
)

// Element is one unit extracted from a corpus file.
// Text holds the plain content for both kinds; HTML is set for tables only.
type Element struct {
	// ID is stable for identical content at the same position in the same file.
	ID   string
	Kind ElementKind
	Text string
	HTML string

	// Page is the 1-based source page, or 0 when unknown.
	Page int

	// Sheet is the worksheet name for spreadsheet tables.
	Sheet string
}

// NewTextElement creates a text element.
func NewTextElement(text string) Element {
	return Element{Kind: ElementText, Text: text}
}

// NewTableElement creates a table element from its HTML and plain renderings.
func NewTableElement(html, plain string) Element {
	return Element{Kind: ElementTable, HTML: html, Text: plain}
}

// Content returns the text to embed: the HTML rendering for tables
// when one exists, the plain text otherwise.
func (e Element) Content() string {
	if e.Kind == ElementTable && e.HTML != "" {
		return e.HTML
	}
	return e.Text
}

// ContentType returns the metadata label for the element.
func (e Element) ContentType() string {
	if e.Kind == ElementTable {
		return string(ElementTable)
	}
	return string(ElementText)
}

// IsEmpty reports whether the element has no non-whitespace content.
func (e Element) IsEmpty() bool {
	return strings.TrimSpace(e.Content()) == ""
}
