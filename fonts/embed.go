package fonts

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体使用 Go 字体族，按 "embed:go-regular"、"embed:go-mono-bold-italic" 等名称引用。
var builtin = map[string][]byte{
	"go-regular":          goregular.TTF,
	"go-bold":             gobold.TTF,
	"go-italic":           goitalic.TTF,
	"go-bold-italic":      gobolditalic.TTF,
	"go-mono":             gomono.TTF,
	"go-mono-bold":        gomonobold.TTF,
	"go-mono-italic":      gomonoitalic.TTF,
	"go-mono-bold-italic": gomonobolditalic.TTF,
}

// Load 返回字体字节数据：带 "embed:" 前缀时读取内置字体，否则按文件路径读取。
func Load(src string) ([]byte, error) {
	if name, ok := strings.CutPrefix(src, "embed:"); ok {
		data, found := builtin[name]
		if !found {
			return nil, fmt.Errorf("读取内置字体 %s 失败: 不存在", name)
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

// Builtin 返回与字形风格匹配的内置字体名称。
func Builtin(mono, bold, italic bool) string {
	name := "go"
	if mono {
		name += "-mono"
	}
	switch {
	case bold && italic:
		name += "-bold-italic"
	case bold:
		name += "-bold"
	case italic:
		name += "-italic"
	case !mono:
		name += "-regular"
	}
	return name
}

// IsMonospace 粗略判断字体名是否为等宽字体。
func IsMonospace(face string) bool {
	f := strings.ToLower(face)
	for _, hint := range []string{"mono", "courier", "consolas", "menlo", "monaco", "code"} {
		if strings.Contains(f, hint) {
			return true
		}
	}
	return false
}
