package layout

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/ByLCY/deckflow/document"
)

// metrics 是按节点类型划分的启发式排版常量：每行字符数（窄/宽字符）、
// 行高系数（乘以 fontSize/72）、内容框下限与外边距。
type metrics struct {
	narrowPerLine int
	widePerLine   int
	lineFactor    float64
	floor         float64
	margin        float64
}

var (
	headingMetrics   = metrics{narrowPerLine: 50, widePerLine: 30, lineFactor: 1.2, floor: 0.5, margin: 0.3}
	paragraphMetrics = metrics{narrowPerLine: 70, widePerLine: 40, lineFactor: 1.3, floor: 0.4, margin: 0.2}
	listItemMetrics  = metrics{narrowPerLine: 65, widePerLine: 35, lineFactor: 1.3, floor: 0.35}
	codeMetrics      = metrics{lineFactor: 1.4, floor: 0.5, margin: 0.3}
)

const (
	// listMargin 为整个列表块统一追加一次的外边距。
	listMargin = 0.4
	// blockFloor 用于表格、图片以及无法识别的节点。
	blockFloor = 0.5
)

// 内置默认字号（pt）。
const (
	DefaultTitleSize    = 32.0
	DefaultHeading2Size = 28.0
	DefaultHeading3Size = 24.0
	DefaultBodySize     = 14.0
	DefaultCodeSize     = 10.0
)

// Extent 将估算高度拆分为内容框与其后的外边距。
type Extent struct {
	Box    float64 `json:"box"`
	Margin float64 `json:"margin"`
}

// Total 为光标应前进的距离。
func (e Extent) Total() float64 { return e.Box + e.Margin }

// DefaultFontSize 返回节点在模板未给出字号时使用的内置字号。
func DefaultFontSize(node document.Node) float64 {
	switch n := node.(type) {
	case document.Heading:
		return HeadingFontSize(n.Level)
	case document.Code:
		return DefaultCodeSize
	default:
		return DefaultBodySize
	}
}

// HeadingFontSize 按标题级别返回默认字号：1/2/>=3 级分别为 32/28/24pt。
func HeadingFontSize(level int) float64 {
	switch {
	case level <= 1:
		return DefaultTitleSize
	case level == 2:
		return DefaultHeading2Size
	default:
		return DefaultHeading3Size
	}
}

// EstimateHeight 估算节点渲染后占用的纵向空间（英寸），fontSize <= 0 时使用内置默认字号。
// 结果总是不小于该类型的下限，空内容亦然。
func EstimateHeight(node document.Node, fontSize float64) float64 {
	return Measure(node, fontSize).Total()
}

// Measure 与 EstimateHeight 相同，但分别返回内容框高度与外边距，供放置阶段定位使用。
func Measure(node document.Node, fontSize float64) Extent {
	if fontSize <= 0 {
		fontSize = DefaultFontSize(node)
	}
	switch n := node.(type) {
	case document.Heading:
		return textExtent(n.Content, fontSize, headingMetrics)
	case document.Paragraph:
		return textExtent(n.Content, fontSize, paragraphMetrics)
	case document.List:
		box := 0.0
		for _, item := range n.Flatten() {
			box += ListItemHeight(item.Content, fontSize)
		}
		return Extent{Box: box, Margin: listMargin}
	case document.Code:
		lines := strings.Count(n.Content, "\n") + 1
		return Extent{
			Box:    math.Max(codeMetrics.floor, float64(lines)*lineHeight(fontSize, codeMetrics)),
			Margin: codeMetrics.margin,
		}
	default:
		return Extent{Box: blockFloor}
	}
}

// ListItemHeight 估算单个列表条目（不含列表外边距）的高度。
func ListItemHeight(content string, fontSize float64) float64 {
	if fontSize <= 0 {
		fontSize = DefaultBodySize
	}
	lines := lineCount(content, listItemMetrics)
	return math.Max(listItemMetrics.floor, float64(lines)*lineHeight(fontSize, listItemMetrics))
}

func textExtent(content string, fontSize float64, m metrics) Extent {
	lines := lineCount(content, m)
	return Extent{
		Box:    math.Max(m.floor, float64(lines)*lineHeight(fontSize, m)),
		Margin: m.margin,
	}
}

// lineCount 按字符数估算折行后的行数；宽字符文本每行容纳的字符更少。
func lineCount(content string, m metrics) int {
	perLine := m.narrowPerLine
	if IsWideScript(content) {
		perLine = m.widePerLine
	}
	n := utf8.RuneCountInString(content)
	return (n + perLine - 1) / perLine
}

func lineHeight(fontSize float64, m metrics) float64 {
	return fontSize * PtToIn * m.lineFactor
}
