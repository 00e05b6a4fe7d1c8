// Package document defines the content nodes produced by a markup parser and
// consumed by the layout engine.
//
// Node is a closed set of variants: every kind carries exactly the fields it
// needs, so a list can not have a heading level and a table can not have
// list items.
package document

// Kind identifies a node variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindHeading
	KindParagraph
	KindList
	KindCode
	KindTable
	KindImage
)

// String returns a short lower-case name for the kind.
func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindParagraph:
		return "paragraph"
	case KindList:
		return "list"
	case KindCode:
		return "code"
	case KindTable:
		return "table"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Node is one semantic content unit in reading order.
type Node interface {
	Kind() Kind
	sealed()
}

// Document is an ordered sequence of nodes plus opaque metadata.
type Document struct {
	Nodes []Node
	Meta  map[string]string
}

// Heading carries a level in the range 1..6.
type Heading struct {
	Level   int
	Content string
}

// Paragraph is a run of body text, inline emphasis markers included.
type Paragraph struct {
	Content string
}

// List is an ordered sequence of items. Ordered only affects rendering.
type List struct {
	Ordered bool
	Items   []ListItem
}

// ListItem is not a Node: it is only reachable through a List.
type ListItem struct {
	Content  string
	Children []ListItem
}

// Code is a block of source text; Lang may be empty.
type Code struct {
	Lang    string
	Content string
}

// Table holds rows of cell texts; rows may be ragged. The first row is the
// header when Header is set.
type Table struct {
	Header bool
	Rows   [][]string
}

// Image references an external picture.
type Image struct {
	Src string
	Alt string
}

// Unknown is any node the parser could not map. It is kept so that
// pagination preserves input order, but it is never rendered.
type Unknown struct {
	Type    string
	Content string
}

func (Heading) Kind() Kind   { return KindHeading }
func (Paragraph) Kind() Kind { return KindParagraph }
func (List) Kind() Kind      { return KindList }
func (Code) Kind() Kind      { return KindCode }
func (Table) Kind() Kind     { return KindTable }
func (Image) Kind() Kind     { return KindImage }
func (Unknown) Kind() Kind   { return KindUnknown }

func (Heading) sealed()   {}
func (Paragraph) sealed() {}
func (List) sealed()      {}
func (Code) sealed()      {}
func (Table) sealed()     {}
func (Image) sealed()     {}
func (Unknown) sealed()   {}

// Columns is the length of the longest row.
func (t Table) Columns() int {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// Grid returns the rows padded with empty cells to Columns(). The table
// itself is left untouched.
func (t Table) Grid() [][]string {
	cols := t.Columns()
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		padded := make([]string, cols)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

// Flatten walks list items depth first, parent before its children.
func (l List) Flatten() []FlatItem {
	var out []FlatItem
	var walk func(items []ListItem, depth int)
	walk = func(items []ListItem, depth int) {
		for _, it := range items {
			out = append(out, FlatItem{Content: it.Content, Depth: depth})
			if len(it.Children) > 0 {
				walk(it.Children, depth+1)
			}
		}
	}
	walk(l.Items, 0)
	return out
}

// FlatItem is a list item with its nesting depth (0 for top level).
type FlatItem struct {
	Content string
	Depth   int
}
