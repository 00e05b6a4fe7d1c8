package layout

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// wideScript 覆盖 CJK 符号与标点、平假名/片假名、全角/半角形式以及 CJK 统一表意文字。
var wideScript = rangetable.Merge(
	&unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x3000, Hi: 0x303F, Stride: 1}}},
	&unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x3040, Hi: 0x30FF, Stride: 1}}},
	&unicode.RangeTable{R16: []unicode.Range16{{Lo: 0xFF00, Hi: 0xFF9F, Stride: 1}}},
	&unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x4E00, Hi: 0x9FAF, Stride: 1}}},
)

// IsWideScript 判断文本中是否含有至少一个宽字符（CJK）。空串返回 false。
func IsWideScript(text string) bool {
	return strings.ContainsFunc(text, func(r rune) bool {
		return unicode.Is(wideScript, r)
	})
}
