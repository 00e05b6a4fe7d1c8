package layout

import "github.com/ByLCY/deckflow/document"

// ListEntries 展开列表条目并计算每条的估算高度；嵌套条目紧随其父条目之后。
func ListEntries(list document.List, fontSize float64) []ListEntry {
	flat := list.Flatten()
	entries := make([]ListEntry, 0, len(flat))
	for _, item := range flat {
		entries = append(entries, ListEntry{
			Content: item.Content,
			Depth:   item.Depth,
			Height:  ListItemHeight(item.Content, fontSize),
		})
	}
	return entries
}

// SplitList 对单个列表做条目级子分页。cursorY 为列表在当前页的起始位置。
//
// 条目依次累积到当前片段；当追加下一条会超过当前页剩余预算且片段已含至少一条时，
// 刷出片段并从新页（MarginTop）继续累积。嵌套条目遵循同一规则。
// 条目顺序不变，不会重复或丢失；零条目的列表返回一个空片段。
func SplitList(list document.List, fontSize, cursorY float64, budget Budget) []ListFragment {
	var (
		fragments []ListFragment
		current   ListFragment
		top       = cursorY
	)
	for _, entry := range ListEntries(list, fontSize) {
		if len(current.Entries) > 0 && top+current.Height+entry.Height > budget.MaxY {
			fragments = append(fragments, current)
			current = ListFragment{}
			top = budget.MarginTop
		}
		current.Entries = append(current.Entries, entry)
		current.Height += entry.Height
	}
	if len(current.Entries) > 0 || len(fragments) == 0 {
		fragments = append(fragments, current)
	}
	return fragments
}
