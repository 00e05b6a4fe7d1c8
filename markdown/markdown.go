// Package markdown turns Markdown source into a document.Document using
// goldmark with GFM tables. Inline emphasis is normalized to asterisk
// markers and kept in node content; links keep only their text.
package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/deckflow/document"
)

// Parser converts Markdown to documents. The zero value is not usable; use New.
type Parser struct {
	md goldmark.Markdown
}

// New returns a parser with the GFM table extension enabled.
func New() *Parser {
	return &Parser{md: goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough))}
}

var defaultParser = New()

// Parse converts src with the default parser.
func Parse(src []byte) (*document.Document, error) {
	return defaultParser.Parse(src)
}

// Parse converts src. Front matter at the very top fills Document.Meta.
func (p *Parser) Parse(src []byte) (*document.Document, error) {
	meta, body, err := splitFrontMatter(src)
	if err != nil {
		return nil, err
	}
	root := p.md.Parser().Parse(text.NewReader(body))

	doc := &document.Document{Meta: meta}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if node, ok := convertBlock(n, body); ok {
			doc.Nodes = append(doc.Nodes, node)
		}
	}
	return doc, nil
}

func convertBlock(n ast.Node, src []byte) (document.Node, bool) {
	switch b := n.(type) {
	case *ast.Heading:
		return document.Heading{Level: b.Level, Content: inlineText(b, src)}, true
	case *ast.Paragraph, *ast.TextBlock:
		if img, ok := soleImage(b); ok {
			return document.Image{Src: string(img.Destination), Alt: inlineText(img, src)}, true
		}
		return document.Paragraph{Content: inlineText(b, src)}, true
	case *ast.List:
		return document.List{Ordered: b.IsOrdered(), Items: listItems(b, src, 0)}, true
	case *ast.FencedCodeBlock:
		return document.Code{Lang: string(b.Language(src)), Content: blockLines(b, src)}, true
	case *ast.CodeBlock:
		return document.Code{Content: blockLines(b, src)}, true
	case *east.Table:
		return convertTable(b, src), true
	case *ast.Blockquote:
		var parts []string
		for c := b.FirstChild(); c != nil; c = c.NextSibling() {
			if s := inlineText(c, src); s != "" {
				parts = append(parts, s)
			}
		}
		return document.Paragraph{Content: strings.Join(parts, " ")}, true
	case *ast.HTMLBlock:
		return document.Unknown{Type: "html", Content: blockLines(b, src)}, true
	case *ast.ThematicBreak:
		return document.Unknown{Type: "thematic_break"}, true
	default:
		return document.Unknown{Type: n.Kind().String()}, true
	}
}

func soleImage(n ast.Node) (*ast.Image, bool) {
	if n.ChildCount() != 1 {
		return nil, false
	}
	img, ok := n.FirstChild().(*ast.Image)
	return img, ok
}

// listItems keeps one level of nesting; anything deeper is appended to the
// nested level right after its parent.
func listItems(list *ast.List, src []byte, depth int) []document.ListItem {
	var out []document.ListItem
	for li := list.FirstChild(); li != nil; li = li.NextSibling() {
		var (
			texts  []string
			nested []document.ListItem
		)
		for c := li.FirstChild(); c != nil; c = c.NextSibling() {
			switch cc := c.(type) {
			case *ast.List:
				nested = append(nested, listItems(cc, src, depth+1)...)
			case *ast.FencedCodeBlock, *ast.CodeBlock:
				texts = append(texts, blockLines(cc, src))
			default:
				if s := inlineText(cc, src); s != "" {
					texts = append(texts, s)
				}
			}
		}
		item := document.ListItem{Content: strings.Join(texts, " ")}
		if depth == 0 {
			item.Children = nested
			out = append(out, item)
			continue
		}
		out = append(out, item)
		out = append(out, nested...)
	}
	return out
}

func convertTable(t *east.Table, src []byte) document.Table {
	tbl := document.Table{}
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, inlineText(cell, src))
		}
		if _, ok := row.(*east.TableHeader); ok {
			tbl.Header = true
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	return tbl
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	writeInline(&sb, n, src)
	return strings.TrimSpace(sb.String())
}

func writeInline(sb *strings.Builder, parent ast.Node, src []byte) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		switch n := c.(type) {
		case *ast.Text:
			sb.Write(n.Segment.Value(src))
			if n.SoftLineBreak() || n.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(n.Value)
		case *ast.Emphasis:
			marker := strings.Repeat("*", n.Level)
			sb.WriteString(marker)
			writeInline(sb, n, src)
			sb.WriteString(marker)
		case *ast.AutoLink:
			sb.Write(n.URL(src))
		case *ast.RawHTML:
		default:
			// links, images, code spans, strikethrough: text only
			writeInline(sb, n, src)
		}
	}
}

// splitFrontMatter extracts a leading "---" fenced YAML block.
func splitFrontMatter(src []byte) (map[string]string, []byte, error) {
	meta := map[string]string{}
	rest, ok := bytes.CutPrefix(src, []byte("---\n"))
	if !ok {
		rest, ok = bytes.CutPrefix(src, []byte("---\r\n"))
	}
	if !ok {
		return meta, src, nil
	}

	var head []byte
	body := rest
	found := false
	for len(body) > 0 {
		line, next, _ := bytes.Cut(body, []byte("\n"))
		trimmed := bytes.TrimRight(line, "\r")
		if string(trimmed) == "---" || string(trimmed) == "..." {
			head = rest[:len(rest)-len(body)]
			body = next
			found = true
			break
		}
		body = next
	}
	if !found {
		return meta, src, nil
	}

	var raw map[string]any
	if err := yaml.Unmarshal(head, &raw); err != nil {
		return nil, nil, fmt.Errorf("front matter: %w", err)
	}
	for k, v := range raw {
		meta[k] = metaString(v)
	}
	return meta, body, nil
}

func metaString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = metaString(e)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(x)
	}
}
