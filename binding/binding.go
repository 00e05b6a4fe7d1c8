// Package binding substitutes ${path.to.value} placeholders in document text
// with values from front matter or an external data file.
package binding

import (
	"fmt"
	"maps"
	"os"
	"regexp"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/ByLCY/deckflow/document"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Data is the root of placeholder lookup. Nested maps and slices are reached
// with "a.b[0].c" paths.
type Data map[string]any

// LoadData reads YAML or JSON file into Data.
func LoadData(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read data file: %w", err)
	}
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("unable to decode data file %s: %w", path, err)
	}
	return d, nil
}

// Merge returns document metadata with extra layered on top; extra wins on
// conflicts.
func Merge(meta map[string]string, extra Data) Data {
	out := make(Data, len(meta)+len(extra))
	for k, v := range meta {
		out[k] = v
	}
	maps.Copy(out, extra)
	return out
}

// Interpolate replaces placeholders in text. Unknown paths are left as is.
func Interpolate(text string, data Data) (string, int) {
	if len(data) == 0 || !strings.Contains(text, "${") {
		return text, 0
	}
	n := 0
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		if val, ok := resolvePath(map[string]any(data), path); ok {
			n++
			return format(val)
		}
		return match
	})
	return out, n
}

// Bind substitutes placeholders in every node in place and returns number of
// replacements. Code blocks are left verbatim.
func Bind(doc *document.Document, data Data) int {
	if doc == nil || len(data) == 0 {
		return 0
	}
	total := 0
	sub := func(s string) string {
		out, n := Interpolate(s, data)
		total += n
		return out
	}
	for i, node := range doc.Nodes {
		switch n := node.(type) {
		case document.Heading:
			n.Content = sub(n.Content)
			doc.Nodes[i] = n
		case document.Paragraph:
			n.Content = sub(n.Content)
			doc.Nodes[i] = n
		case document.List:
			n.Items = bindItems(n.Items, sub)
			doc.Nodes[i] = n
		case document.Table:
			rows := make([][]string, len(n.Rows))
			for r, row := range n.Rows {
				rows[r] = make([]string, len(row))
				for c, cell := range row {
					rows[r][c] = sub(cell)
				}
			}
			n.Rows = rows
			doc.Nodes[i] = n
		case document.Image:
			n.Src, n.Alt = sub(n.Src), sub(n.Alt)
			doc.Nodes[i] = n
		}
	}
	return total
}

func bindItems(items []document.ListItem, sub func(string) string) []document.ListItem {
	if len(items) == 0 {
		return items
	}
	out := make([]document.ListItem, len(items))
	for i, it := range items {
		out[i] = document.ListItem{Content: sub(it.Content), Children: bindItems(it.Children, sub)}
	}
	return out
}

func format(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = format(p)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(val)
	}
}

func resolvePath(data any, path string) (any, bool) {
	current := data
	for segment := range strings.SplitSeq(path, ".") {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			if current, ok = descendMap(current, name); !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			if current, ok = descendArray(current, idx); !ok {
				return nil, false
			}
		}
	}
	return current, true
}

func parseSegment(segment string) (string, []string) {
	i := strings.IndexByte(segment, '[')
	if i == -1 {
		return segment, nil
	}
	name, rest := segment[:i], segment[i:]
	var indexes []string
	for len(rest) > 0 && rest[0] == '[' {
		end := strings.IndexByte(rest, ']')
		if end == -1 {
			break
		}
		indexes = append(indexes, rest[1:end])
		rest = rest[end+1:]
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case Data:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	c, ok := current.([]any)
	if !ok || idx < 0 || idx >= len(c) {
		return nil, false
	}
	return c[idx], true
}
