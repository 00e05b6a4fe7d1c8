package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{8})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][,;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// File is the root AST node of a template file:
//
//	template corporate-blue v2 {
//	  name: "Corporate Blue"
//	  width: 10in
//	  height: 5.625in
//	  default: Title
//	  layout Title {
//	    background { color: #FFFFFF }
//	    style title { fontSize: 40; bold: true; color: #1F4E79 }
//	  }
//	}
type File struct {
	Pos     lexer.Position `parser:"" json:"-"`
	ID      string         `parser:"Newline* 'template' @Ident"`
	Version string         `parser:"@(Ident | Number)?"`
	Entries []*Entry       `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}' Newline*"`
}

// Entry is a top-level property or layout declaration.
type Entry struct {
	Layout   *LayoutDecl `parser:"  @@"`
	Property *Property   `parser:"| @@"`
}

// LayoutDecl groups the background and role styles of one named layout.
type LayoutDecl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"'layout' ( @Ident | @String )"`
	Entries []*LayoutEntry `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Title returns the layout name with string quotes removed.
func (l *LayoutDecl) Title() string {
	if strings.HasPrefix(l.Name, `"`) {
		if s, err := strconv.Unquote(l.Name); err == nil {
			return s
		}
	}
	return l.Name
}

// LayoutEntry is either a background block or a style declaration.
type LayoutEntry struct {
	Background *Block     `parser:"  'background' @@"`
	Style      *StyleDecl `parser:"| @@"`
}

// StyleDecl assigns properties to a role (title, heading2, body, code, ...).
type StyleDecl struct {
	Role  string `parser:"'style' @Ident"`
	Block *Block `parser:"@@"`
}

// Block is a braced list of properties.
type Block struct {
	Properties []*Property `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Property uses colon syntax (key: value).
type Property struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident ':'"`
	Value *Value         `parser:"Newline* @@"`
}

// Value represents a property value.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Bool   *Boolean       `parser:"| @('true' | 'false')"`
	Ident  *string        `parser:"| @Ident"`
	Array  *ArrayValue    `parser:"| @@"`
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Boolean captures the true/false keywords.
type Boolean bool

// Capture implements participle.Capture.
func (b *Boolean) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("boolean capture requires value")
	}
	*b = values[0] == "true"
	return nil
}

// Text returns the value as a plain string; colors lose their leading '#'.
// Arrays are joined with commas.
func (v *Value) Text() string {
	if v == nil {
		return ""
	}
	switch {
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return strings.TrimPrefix(*v.Color, "#")
	case v.Bool != nil:
		return strconv.FormatBool(bool(*v.Bool))
	case v.Ident != nil:
		return *v.Ident
	case v.Array != nil:
		return strings.Join(v.List(), ",")
	default:
		return ""
	}
}

// List returns array elements as strings; a scalar becomes a single element.
func (v *Value) List() []string {
	if v == nil {
		return nil
	}
	if v.Array == nil {
		if s := v.Text(); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(v.Array.Values))
	for _, item := range v.Array.Values {
		if s := item.Text(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Parse parses template DSL content from an io.Reader.
func Parse(name string, r io.Reader) (*File, error) {
	return fileParser.Parse(name, r)
}

// ParseString parses template DSL content from a string.
func ParseString(name, input string) (*File, error) {
	return fileParser.ParseString(name, input)
}
