// Package templates holds slide templates: named layouts, each mapping
// content roles to text styles. Templates come from JSON, YAML or the
// template DSL and are shared through an explicit Cache.
package templates

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ByLCY/deckflow/document"
	"github.com/ByLCY/deckflow/layout"
)

// Role names the style slot a node is drawn with.
type Role string

const (
	RoleTitle    Role = "title"
	RoleHeading1 Role = "heading1"
	RoleHeading2 Role = "heading2"
	RoleHeading3 Role = "heading3"
	RoleBody     Role = "body"
	RoleCode     Role = "code"
)

// Roles lists every role a layout may style, in display order.
var Roles = []Role{RoleTitle, RoleHeading1, RoleHeading2, RoleHeading3, RoleBody, RoleCode}

var (
	// ErrUnknownLayout is wrapped by ConfigurationError.
	ErrUnknownLayout = errors.New("unknown layout")
	// ErrTemplateNotFound is returned by Cache when no source provides an id.
	ErrTemplateNotFound = errors.New("template not found")
)

// ConfigurationError reports a layout name the template does not define.
type ConfigurationError struct {
	Template string
	Layout   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("layout %q not found in template %q", e.Layout, e.Template)
}

func (e *ConfigurationError) Unwrap() error { return ErrUnknownLayout }

// Template is a named set of layouts plus descriptive metadata.
type Template struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Description   string    `json:"description,omitempty" yaml:"description,omitempty"`
	Category      string    `json:"category,omitempty" yaml:"category,omitempty"`
	Author        string    `json:"author,omitempty" yaml:"author,omitempty"`
	Version       string    `json:"version,omitempty" yaml:"version,omitempty"`
	Colors        []string  `json:"colors,omitempty" yaml:"colors,omitempty"`
	SlideSize     SlideSize `json:"slideSize" yaml:"slideSize"`
	Layouts       []Layout  `json:"layouts" yaml:"layouts"`
	DefaultLayout string    `json:"defaultLayout" yaml:"defaultLayout"`
}

// SlideSize is in inches; zero values fall back to 16:9 at 10in wide.
type SlideSize struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Dimensions returns the slide size with defaults applied.
func (s SlideSize) Dimensions() (w, h float64) {
	w, h = s.Width, s.Height
	if w <= 0 {
		w = layout.DefaultSlideWidth
	}
	if h <= 0 {
		h = layout.DefaultSlideHeight
	}
	return w, h
}

// Layout is one named arrangement inside a template.
type Layout struct {
	Name       string         `json:"name" yaml:"name"`
	Background Background     `json:"background,omitzero" yaml:"background,omitempty"`
	Styles     map[Role]Style `json:"styles" yaml:"styles"`
}

// Background is a solid color, an image path, or both.
type Background struct {
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	Image string `json:"image,omitempty" yaml:"image,omitempty"`
}

// Style is a partial text style. Unset fields inherit during resolution.
type Style struct {
	FontSize *float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontFace *string  `json:"fontFace,omitempty" yaml:"fontFace,omitempty"`
	Color    *string  `json:"color,omitempty" yaml:"color,omitempty"`
	Bold     *bool    `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic   *bool    `json:"italic,omitempty" yaml:"italic,omitempty"`
	Align    *string  `json:"align,omitempty" yaml:"align,omitempty"`
	Valign   *string  `json:"valign,omitempty" yaml:"valign,omitempty"`
}

// Layout returns the named layout; an empty name selects DefaultLayout.
func (t *Template) Layout(name string) (*Layout, error) {
	if name == "" {
		name = t.DefaultLayout
	}
	for i := range t.Layouts {
		if t.Layouts[i].Name == name {
			return &t.Layouts[i], nil
		}
	}
	return nil, &ConfigurationError{Template: t.ID, Layout: name}
}

// LayoutNames returns the layout names in declaration order.
func (t *Template) LayoutNames() []string {
	names := make([]string, len(t.Layouts))
	for i, l := range t.Layouts {
		names[i] = l.Name
	}
	return names
}

// Validate checks structural consistency after loading.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("template id is empty")
	}
	if len(t.Layouts) == 0 {
		return fmt.Errorf("template %q has no layouts", t.ID)
	}
	seen := make(map[string]bool, len(t.Layouts))
	for _, l := range t.Layouts {
		if l.Name == "" {
			return fmt.Errorf("template %q has a layout without name", t.ID)
		}
		if seen[l.Name] {
			return fmt.Errorf("template %q declares layout %q twice", t.ID, l.Name)
		}
		seen[l.Name] = true
		for role, st := range l.Styles {
			if !knownRole(role) {
				return fmt.Errorf("template %q layout %q: unknown role %q", t.ID, l.Name, role)
			}
			if st.FontSize != nil && *st.FontSize < 0 {
				return fmt.Errorf("template %q layout %q role %s: negative font size", t.ID, l.Name, role)
			}
			if st.Color != nil && !validColor(*st.Color) {
				return fmt.Errorf("template %q layout %q role %s: bad color %q", t.ID, l.Name, role, *st.Color)
			}
		}
		if c := l.Background.Color; c != "" && !validColor(c) {
			return fmt.Errorf("template %q layout %q: bad background color %q", t.ID, l.Name, c)
		}
	}
	if t.DefaultLayout == "" {
		t.DefaultLayout = t.Layouts[0].Name
	}
	if !seen[t.DefaultLayout] {
		return fmt.Errorf("template %q: default layout %q is not defined", t.ID, t.DefaultLayout)
	}
	return nil
}

// RoleFor maps a node to its style role. Level 1 headings are titles.
func RoleFor(node document.Node) Role {
	switch n := node.(type) {
	case document.Heading:
		switch {
		case n.Level <= 1:
			return RoleTitle
		case n.Level == 2:
			return RoleHeading2
		default:
			return RoleHeading3
		}
	case document.Code:
		return RoleCode
	default:
		return RoleBody
	}
}

func knownRole(r Role) bool {
	for _, k := range Roles {
		if k == r {
			return true
		}
	}
	return false
}

func validColor(c string) bool {
	c = strings.TrimPrefix(c, "#")
	if len(c) != 3 && len(c) != 6 && len(c) != 8 {
		return false
	}
	for _, r := range c {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}
