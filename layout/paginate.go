package layout

import "github.com/ByLCY/deckflow/document"

// Paginate 将节点序列贪心地划分为页面。
//
// 规则按顺序应用于每个节点：
//  1. 强制分页：级别 <= BreakLevel 的标题且当前页非空时，关闭当前页；
//  2. 溢出分页：当前页非空且累计高度加上节点高度超过 MaxY 时，关闭当前页；
//  3. 将节点追加到当前页。
//
// 空页永远不会被关闭，因此每页至少包含一个节点；单个节点本身超出预算时独占一页。
// 表格作为不可拆分的整体参与普通的溢出判断。
func Paginate(nodes []document.Node, budget Budget, sizer FontSizer) []Page {
	var pages []Page
	current := newPage(budget)
	closePage := func() {
		pages = append(pages, current)
		current = newPage(budget)
	}

	for _, node := range nodes {
		h := EstimateHeight(node, resolveFontSize(sizer, node))
		if isSectionBreak(node, budget) && len(current.Nodes) > 0 {
			closePage()
		}
		if len(current.Nodes) > 0 && current.Height+h > budget.MaxY {
			closePage()
		}
		current.Nodes = append(current.Nodes, node)
		current.Heights = append(current.Heights, h)
		current.Height += h
	}
	if len(current.Nodes) > 0 {
		pages = append(pages, current)
	}
	return pages
}

func newPage(budget Budget) Page {
	return Page{Height: budget.MarginTop}
}

func isSectionBreak(node document.Node, budget Budget) bool {
	h, ok := node.(document.Heading)
	return ok && h.Level <= budget.breakLevel()
}
