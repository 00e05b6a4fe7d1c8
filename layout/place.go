package layout

import "github.com/ByLCY/deckflow/document"

// Place 为分页结果中的每个节点计算纵向位置，生成可直接渲染的 Deck。
//
// 每张幻灯片的光标从 MarginTop 开始；放不下的列表交由 SplitList 拆分，
// 除最后一段外的片段留在当前幻灯片，随后开启续页，同页后续节点接在最后一段之后。
func Place(pages []Page, budget Budget, sizer FontSizer) *Deck {
	deck := &Deck{
		Width:  DefaultSlideWidth,
		Height: DefaultSlideHeight,
		Budget: budget,
	}
	for pageIdx, page := range pages {
		slide := Slide{Page: pageIdx}
		cursorY := budget.MarginTop

		for _, node := range page.Nodes {
			fontSize := resolveFontSize(sizer, node)
			ext := Measure(node, fontSize)

			list, isList := node.(document.List)
			if !isList {
				slide.Blocks = append(slide.Blocks, Block{
					Node:     node,
					Y:        cursorY,
					Height:   ext.Box,
					Advance:  ext.Total(),
					FontSize: fontSize,
				})
				cursorY += ext.Total()
				continue
			}

			if cursorY+ext.Total() <= budget.MaxY {
				slide.Blocks = append(slide.Blocks, Block{
					Node:      node,
					Y:         cursorY,
					Height:    ext.Box,
					Advance:   ext.Total(),
					FontSize:  fontSize,
					Items:     ListEntries(list, fontSize),
					Fragments: 1,
				})
				cursorY += ext.Total()
				continue
			}

			fragments := SplitList(list, fontSize, cursorY, budget)
			offset := 0
			for i, frag := range fragments {
				if i > 0 {
					deck.Slides = append(deck.Slides, slide)
					slide = Slide{Page: pageIdx, Continued: true}
					cursorY = budget.MarginTop
				}
				advance := frag.Height
				if i == len(fragments)-1 {
					advance += listMargin
				}
				slide.Blocks = append(slide.Blocks, Block{
					Node:      node,
					Y:         cursorY,
					Height:    frag.Height,
					Advance:   advance,
					FontSize:  fontSize,
					Items:     frag.Entries,
					Fragment:  i,
					Fragments: len(fragments),
					Offset:    offset,
				})
				offset += len(frag.Entries)
				cursorY += advance
			}
		}
		deck.Slides = append(deck.Slides, slide)
	}
	return deck
}
