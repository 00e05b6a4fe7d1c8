package layout

import "github.com/ByLCY/deckflow/document"

const (
	// DefaultSlideWidth/DefaultSlideHeight 对应 16:9 幻灯片（英寸）。
	DefaultSlideWidth  = 10.0
	DefaultSlideHeight = 5.625
	DefaultMarginTop   = 0.5
	DefaultMarginBot   = 0.5
	defaultBreakLevel  = 2
)

// FontSizer 为节点提供解析后的字号（pt）。估算与渲染必须使用同一个 FontSizer，
// 否则此处计算的分页边界会与实际渲染结果不一致。返回值 <= 0 时使用内置默认值。
type FontSizer interface {
	FontSize(node document.Node) float64
}

// NewBudget 根据幻灯片高度与上下边距构造预算。
func NewBudget(slideHeight, marginTop, marginBottom float64) Budget {
	if slideHeight <= 0 {
		slideHeight = DefaultSlideHeight
	}
	return Budget{
		MarginTop: marginTop,
		MaxY:      slideHeight - marginBottom,
	}
}

// DefaultBudget 返回默认幻灯片尺寸下的预算。
func DefaultBudget() Budget {
	return NewBudget(DefaultSlideHeight, DefaultMarginTop, DefaultMarginBot)
}

func (b Budget) breakLevel() int {
	if b.BreakLevel <= 0 {
		return defaultBreakLevel
	}
	return b.BreakLevel
}

// resolveFontSize 优先使用 sizer 的结果，否则回退到内置默认字号。
func resolveFontSize(sizer FontSizer, node document.Node) float64 {
	if sizer != nil {
		if size := sizer.FontSize(node); size > 0 {
			return size
		}
	}
	return DefaultFontSize(node)
}
