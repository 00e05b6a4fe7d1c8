package templates

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/deckflow/dsl"
	"github.com/ByLCY/deckflow/layout"
)

// Extensions lists template file suffixes in lookup order.
var Extensions = []string{".json", ".yaml", ".yml", ".tpl"}

// LoadFile reads and decodes a template file.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read template: %w", err)
	}
	return Decode(filepath.Base(path), data)
}

// Decode parses data according to the extension of name and validates the
// result. A template without id takes the file stem as id.
func Decode(name string, data []byte) (*Template, error) {
	var (
		t   *Template
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
		t, err = decodeJSON(data)
	case ".yaml", ".yml":
		t, err = decodeYAML(data)
	case ".tpl":
		t, err = decodeDSL(name, data)
	default:
		return nil, fmt.Errorf("template %s: unsupported format %q", name, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	if t.ID == "" {
		t.ID = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeJSON(data []byte) (*Template, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var t Template
	if err := dec.Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func decodeYAML(data []byte) (*Template, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var t Template
	if err := dec.Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

func decodeDSL(name string, data []byte) (*Template, error) {
	file, err := dsl.ParseString(name, string(data))
	if err != nil {
		return nil, err
	}
	t := &Template{ID: file.ID, Version: file.Version}
	for _, e := range file.Entries {
		switch {
		case e.Layout != nil:
			l, err := dslLayout(e.Layout)
			if err != nil {
				return nil, err
			}
			t.Layouts = append(t.Layouts, l)
		case e.Property != nil:
			if err := setTemplateProperty(t, e.Property); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func setTemplateProperty(t *Template, p *dsl.Property) error {
	v := p.Value.Text()
	switch p.Key {
	case "name":
		t.Name = v
	case "description":
		t.Description = v
	case "category":
		t.Category = v
	case "author":
		t.Author = v
	case "version":
		t.Version = v
	case "colors":
		t.Colors = p.Value.List()
	case "width":
		t.SlideSize.Width = layout.ParseLength(v).Inches()
	case "height":
		t.SlideSize.Height = layout.ParseLength(v).Inches()
	case "default", "defaultLayout":
		t.DefaultLayout = v
	default:
		return fmt.Errorf("%s: unknown template property %q", p.Pos, p.Key)
	}
	return nil
}

func dslLayout(decl *dsl.LayoutDecl) (Layout, error) {
	l := Layout{Name: decl.Title(), Styles: map[Role]Style{}}
	for _, e := range decl.Entries {
		switch {
		case e.Background != nil:
			for _, p := range e.Background.Properties {
				switch p.Key {
				case "color":
					l.Background.Color = p.Value.Text()
				case "image":
					l.Background.Image = p.Value.Text()
				default:
					return l, fmt.Errorf("%s: unknown background property %q", p.Pos, p.Key)
				}
			}
		case e.Style != nil:
			st, err := dslStyle(e.Style.Block)
			if err != nil {
				return l, err
			}
			l.Styles[Role(e.Style.Role)] = st
		}
	}
	return l, nil
}

func dslStyle(block *dsl.Block) (Style, error) {
	var st Style
	for _, p := range block.Properties {
		v := p.Value.Text()
		switch p.Key {
		case "fontSize":
			size, err := layout.ParseFontSize(v)
			if err != nil {
				return st, fmt.Errorf("%s: %w", p.Pos, err)
			}
			st.FontSize = &size
		case "fontFace":
			st.FontFace = &v
		case "color":
			st.Color = &v
		case "bold", "italic":
			b, err := strconv.ParseBool(v)
			if err != nil {
				return st, fmt.Errorf("%s: %s expects true or false, got %q", p.Pos, p.Key, v)
			}
			if p.Key == "bold" {
				st.Bold = &b
			} else {
				st.Italic = &b
			}
		case "align":
			st.Align = &v
		case "valign":
			st.Valign = &v
		default:
			return st, fmt.Errorf("%s: unknown style property %q", p.Pos, p.Key)
		}
	}
	return st, nil
}
