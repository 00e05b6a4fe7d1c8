package convert

import (
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"github.com/ByLCY/deckflow/config"
)

const defaultBaseName = "slides"

// buildOutputPath returns output file path. When dst already names a PDF file
// it is used as is, otherwise dst is a directory and the file name is derived
// from the source name or, for standard input, from the document title.
func buildOutputPath(src, dst, title string) string {
	if strings.EqualFold(filepath.Ext(dst), ".pdf") {
		return dst
	}
	return filepath.Join(dst, buildDefaultFileName(src, title))
}

func buildDefaultFileName(src, title string) string {
	var baseName string
	if src == stdinSource {
		baseName = slug.Make(title)
	} else {
		baseName = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	if len(baseName) == 0 {
		baseName = defaultBaseName
	}
	return config.CleanFileName(baseName) + ".pdf"
}
