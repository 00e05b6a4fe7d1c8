package layout

import "github.com/ByLCY/deckflow/document"

// 该文件定义分页与放置结果，供渲染与调试 JSON 共用。所有长度单位均为英寸。

// Budget 描述单页的纵向预算：内容从 MarginTop 开始，不得越过 MaxY。
type Budget struct {
	MarginTop float64 `json:"marginTop"`
	MaxY      float64 `json:"maxY"`
	// BreakLevel 为强制分页的标题级别上限（<= 该级别的标题总是新起一页），0 表示默认值 2。
	BreakLevel int `json:"breakLevel,omitempty"`
}

// Page 是分页器的输出单元：按阅读顺序排列的节点及其累计估算高度。
type Page struct {
	Nodes []document.Node `json:"-"`
	// Heights[i] 为 Nodes[i] 的估算高度（含外边距），渲染阶段无需重新计算。
	Heights []float64 `json:"heights"`
	// Height 为累计高度，起始值为 Budget.MarginTop。
	Height float64 `json:"height"`
}

// Deck 是放置阶段的结果，一张 Slide 对应一个实际渲染面。
type Deck struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Budget Budget  `json:"budget"`
	Slides []Slide `json:"slides"`
}

// Slide 记录一个渲染面上已定位的块。
type Slide struct {
	// Page 为来源 Page 的下标；列表拆分产生的续页与其来源页共享同一下标。
	Page      int     `json:"page"`
	Continued bool    `json:"continued,omitempty"`
	Blocks    []Block `json:"blocks"`
}

// Block 是一个已定位的节点（或列表片段）。
type Block struct {
	Node     document.Node `json:"-"`
	Y        float64       `json:"y"`
	Height   float64       `json:"height"`  // 内容框高度
	Advance  float64       `json:"advance"` // 光标前进量（内容框 + 外边距）
	FontSize float64       `json:"fontSize"`
	// 仅列表使用：本片段包含的条目、片段序号/总数，
	// 以及首个条目在展开后列表中的下标（用于有序列表续页编号）。
	Items     []ListEntry `json:"items,omitempty"`
	Fragment  int         `json:"fragment,omitempty"`
	Fragments int         `json:"fragments,omitempty"`
	Offset    int         `json:"offset,omitempty"`
}

// ListEntry 是展开后的列表条目，Depth 为嵌套深度（顶层为 0）。
type ListEntry struct {
	Content string  `json:"content"`
	Depth   int     `json:"depth"`
	Height  float64 `json:"height"`
}

// ListFragment 为列表子分页的一段，整体绘制在同一页上。
type ListFragment struct {
	Entries []ListEntry `json:"entries"`
	Height  float64     `json:"height"`
}
