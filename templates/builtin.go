package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/maruel/natural"
)

//go:embed builtin
var builtinFS embed.FS

// DefaultID is the template used when none is configured.
const DefaultID = "default"

// BuiltinIDs returns the ids of the embedded templates in natural order.
func BuiltinIDs() []string {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Sort(natural.StringSlice(ids))
	return ids
}

func isBuiltin(id string) bool {
	for _, b := range BuiltinIDs() {
		if b == id {
			return true
		}
	}
	return false
}

func loadBuiltin(id string) (*Template, error) {
	for _, ext := range Extensions {
		name := path.Join("builtin", id+ext)
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			continue
		}
		return Decode(name, data)
	}
	return nil, fmt.Errorf("%w: %q", ErrTemplateNotFound, id)
}
