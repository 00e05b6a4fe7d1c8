package templates

import (
	"strings"

	"github.com/ByLCY/deckflow/document"
	"github.com/ByLCY/deckflow/layout"
)

// Resolved is a fully populated style.
type Resolved struct {
	FontSize float64 `json:"fontSize"`
	FontFace string  `json:"fontFace"`
	Color    string  `json:"color"`
	Bold     bool    `json:"bold"`
	Italic   bool    `json:"italic"`
	Align    string  `json:"align"`
	Valign   string  `json:"valign"`
}

// Sheet is a template bound to one of its layouts. It answers style and
// font size questions for the paginator, the placer and the renderer alike.
type Sheet struct {
	Template *Template
	Layout   *Layout
}

var _ layout.FontSizer = (*Sheet)(nil)

// Sheet binds the named layout; an empty name selects DefaultLayout.
func (t *Template) Sheet(layoutName string) (*Sheet, error) {
	l, err := t.Layout(layoutName)
	if err != nil {
		return nil, err
	}
	return &Sheet{Template: t, Layout: l}, nil
}

// Resolve returns the effective style for role in the named layout.
func Resolve(t *Template, layoutName string, role Role) (Resolved, error) {
	sheet, err := t.Sheet(layoutName)
	if err != nil {
		return Resolved{}, err
	}
	return sheet.Style(role), nil
}

// Style resolves role field by field: the role itself, then heading1 for
// titles, then body, then built-in defaults.
func (s *Sheet) Style(role Role) Resolved {
	chain := []Role{role}
	if role == RoleTitle {
		chain = append(chain, RoleHeading1)
	}
	if role != RoleBody {
		chain = append(chain, RoleBody)
	}

	out := builtinStyle(role)
	if s == nil || s.Layout == nil {
		return out
	}
	// walk backwards so earlier links win
	for i := len(chain) - 1; i >= 0; i-- {
		st, ok := s.Layout.Styles[chain[i]]
		if !ok {
			continue
		}
		if st.FontSize != nil && *st.FontSize > 0 {
			out.FontSize = *st.FontSize
		}
		if st.FontFace != nil && *st.FontFace != "" {
			out.FontFace = *st.FontFace
		}
		if st.Color != nil && *st.Color != "" {
			out.Color = strings.TrimPrefix(*st.Color, "#")
		}
		if st.Bold != nil {
			out.Bold = *st.Bold
		}
		if st.Italic != nil {
			out.Italic = *st.Italic
		}
		if st.Align != nil && *st.Align != "" {
			out.Align = *st.Align
		}
		if st.Valign != nil && *st.Valign != "" {
			out.Valign = *st.Valign
		}
	}
	return out
}

// StyleFor is Style(RoleFor(node)).
func (s *Sheet) StyleFor(node document.Node) Resolved {
	return s.Style(RoleFor(node))
}

// FontSize implements layout.FontSizer.
func (s *Sheet) FontSize(node document.Node) float64 {
	return s.StyleFor(node).FontSize
}

// Background returns the layout background, or white when unset.
func (s *Sheet) Background() Background {
	if s == nil || s.Layout == nil {
		return Background{Color: "FFFFFF"}
	}
	bg := s.Layout.Background
	bg.Color = strings.TrimPrefix(bg.Color, "#")
	if bg.Color == "" && bg.Image == "" {
		bg.Color = "FFFFFF"
	}
	return bg
}

// SlideSize returns the template slide dimensions in inches.
func (s *Sheet) SlideSize() (w, h float64) {
	if s == nil || s.Template == nil {
		return layout.DefaultSlideWidth, layout.DefaultSlideHeight
	}
	return s.Template.SlideSize.Dimensions()
}

func builtinStyle(role Role) Resolved {
	out := Resolved{
		FontFace: "Arial",
		Color:    "363636",
		Align:    "left",
		Valign:   "top",
	}
	switch role {
	case RoleTitle, RoleHeading1:
		out.FontSize = layout.DefaultTitleSize
		out.Bold = true
	case RoleHeading2:
		out.FontSize = layout.DefaultHeading2Size
		out.Bold = true
	case RoleHeading3:
		out.FontSize = layout.DefaultHeading3Size
		out.Bold = true
	case RoleCode:
		out.FontSize = layout.DefaultCodeSize
		out.FontFace = "Courier New"
		out.Color = "000000"
	default:
		out.FontSize = layout.DefaultBodySize
	}
	return out
}
