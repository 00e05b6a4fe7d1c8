package inline

import (
	"regexp"
	"strings"
)

// 依次尝试 ***粗斜体***、**粗体**、*斜体*；只有成对的标记才会匹配。
var emphasisPattern = regexp.MustCompile(`\*\*\*(.+?)\*\*\*|\*\*(.+?)\*\*|\*(.+?)\*`)

// Span 是一段带有强调属性的文本。
type Span struct {
	Text   string `json:"text"`
	Bold   bool   `json:"bold"`
	Italic bool   `json:"italic"`
}

// Plain reports whether the span carries no emphasis.
func (s Span) Plain() bool { return !s.Bold && !s.Italic }

// Parse 将文本拆分为有序的 Span 序列，并去掉强调标记。
// 未闭合的标记按普通文本保留；没有任何标记时返回唯一的普通 Span（空串也是如此）。
func Parse(text string) []Span {
	matches := emphasisPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Span{{Text: text}}
	}

	spans := make([]Span, 0, 2*len(matches)+1)
	cursor := 0
	for _, m := range matches {
		if m[0] > cursor {
			spans = append(spans, Span{Text: text[cursor:m[0]]})
		}
		switch {
		case m[2] >= 0:
			spans = append(spans, Span{Text: text[m[2]:m[3]], Bold: true, Italic: true})
		case m[4] >= 0:
			spans = append(spans, Span{Text: text[m[4]:m[5]], Bold: true})
		default:
			spans = append(spans, Span{Text: text[m[6]:m[7]], Italic: true})
		}
		cursor = m[1]
	}
	if cursor < len(text) {
		spans = append(spans, Span{Text: text[cursor:]})
	}
	return spans
}

// Strip returns text with emphasis markers removed.
func Strip(text string) string {
	var builder strings.Builder
	for _, s := range Parse(text) {
		builder.WriteString(s.Text)
	}
	return builder.String()
}
