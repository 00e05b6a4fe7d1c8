package layout

import (
	"encoding/json"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/deckflow/document"
)

const summaryRunes = 48

// Plan 是 Deck 的可序列化视图，便于调试分页结果。
type Plan struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Budget Budget      `json:"budget"`
	Pages  []PlanPage  `json:"pages"`
	Slides []PlanSlide `json:"slides"`
}

// PlanPage 概括分页器输出的一页。
type PlanPage struct {
	Nodes  []string `json:"nodes"`
	Height float64  `json:"height"`
}

// PlanSlide 概括一张幻灯片。
type PlanSlide struct {
	Page      int         `json:"page"`
	Continued bool        `json:"continued,omitempty"`
	Blocks    []PlanBlock `json:"blocks"`
}

// PlanBlock 概括一个已定位的块。
type PlanBlock struct {
	Kind      string      `json:"kind"`
	Summary   string      `json:"summary,omitempty"`
	Y         float64     `json:"y"`
	Height    float64     `json:"height"`
	Advance   float64     `json:"advance"`
	FontSize  float64     `json:"fontSize"`
	Items     []ListEntry `json:"items,omitempty"`
	Fragment  int         `json:"fragment,omitempty"`
	Fragments int         `json:"fragments,omitempty"`
}

// NewPlan 由分页结果与放置结果构造调试视图。
func NewPlan(pages []Page, deck *Deck) *Plan {
	plan := &Plan{}
	for _, p := range pages {
		pp := PlanPage{Height: p.Height}
		for _, n := range p.Nodes {
			pp.Nodes = append(pp.Nodes, n.Kind().String()+": "+Summarize(n))
		}
		plan.Pages = append(plan.Pages, pp)
	}
	if deck == nil {
		return plan
	}
	plan.Width, plan.Height, plan.Budget = deck.Width, deck.Height, deck.Budget
	for _, s := range deck.Slides {
		ps := PlanSlide{Page: s.Page, Continued: s.Continued}
		for _, b := range s.Blocks {
			ps.Blocks = append(ps.Blocks, PlanBlock{
				Kind:      b.Node.Kind().String(),
				Summary:   Summarize(b.Node),
				Y:         b.Y,
				Height:    b.Height,
				Advance:   b.Advance,
				FontSize:  b.FontSize,
				Items:     b.Items,
				Fragment:  b.Fragment,
				Fragments: b.Fragments,
			})
		}
		plan.Slides = append(plan.Slides, ps)
	}
	return plan
}

// EncodePlan 以缩进 JSON 写出调试视图。
func EncodePlan(w io.Writer, plan *Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// WriteDebugJSON 将调试视图写入文件。
func WriteDebugJSON(plan *Plan, path string) error {
	if plan == nil {
		return nil
	}
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Summarize 返回节点内容的简短摘要。
func Summarize(node document.Node) string {
	var text string
	switch n := node.(type) {
	case document.Heading:
		text = n.Content
	case document.Paragraph:
		text = n.Content
	case document.Code:
		text = n.Content
	case document.List:
		if len(n.Items) > 0 {
			text = n.Items[0].Content
		}
	case document.Table:
		if len(n.Rows) > 0 {
			text = strings.Join(n.Rows[0], " | ")
		}
	case document.Image:
		text = n.Alt
	case document.Unknown:
		text = n.Type
	}
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) > summaryRunes {
		text = string([]rune(text)[:summaryRunes]) + "…"
	}
	return text
}
