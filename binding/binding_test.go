package binding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ByLCY/deckflow/document"
)

func TestInterpolatePaths(t *testing.T) {
	data := Data{
		"title": "Review",
		"team":  map[string]any{"lead": "Ana", "members": []any{"Bo", "Cy"}},
		"count": 3,
	}
	cases := map[string]string{
		"${title} deck":           "Review deck",
		"${ team.lead }":          "Ana",
		"${team.members[1]}":      "Cy",
		"${team.members}":         "Bo, Cy",
		"${count} items":          "3 items",
		"${missing} stays":        "${missing} stays",
		"${team.members[9]}":      "${team.members[9]}",
		"${} empty":               "${} empty",
		"no placeholders at all":  "no placeholders at all",
		"${title}/${team.lead}":   "Review/Ana",
		"${team.members[x]} bad":  "${team.members[x]} bad",
		"${title.deeper} not map": "${title.deeper} not map",
	}
	for in, want := range cases {
		if got, _ := Interpolate(in, data); got != want {
			t.Errorf("Interpolate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestInterpolateNoData(t *testing.T) {
	if got, n := Interpolate("${a}", nil); got != "${a}" || n != 0 {
		t.Fatalf("got %q/%d", got, n)
	}
}

func TestBindDocument(t *testing.T) {
	doc := &document.Document{Nodes: []document.Node{
		document.Heading{Level: 1, Content: "${title}"},
		document.Paragraph{Content: "By ${author}"},
		document.List{Items: []document.ListItem{
			{Content: "${author}", Children: []document.ListItem{{Content: "${title}"}}},
		}},
		document.Code{Content: "echo ${title}"},
		document.Table{Rows: [][]string{{"${title}", "x"}}},
	}}
	data := Merge(map[string]string{"title": "Meta", "author": "Ana"}, Data{"title": "Override"})

	n := Bind(doc, data)
	if n != 5 {
		t.Fatalf("expected 5 replacements, got %d", n)
	}
	if h := doc.Nodes[0].(document.Heading); h.Content != "Override" || h.Level != 1 {
		t.Errorf("heading = %#v", h)
	}
	if l := doc.Nodes[2].(document.List); l.Items[0].Children[0].Content != "Override" {
		t.Errorf("nested item not bound: %#v", l)
	}
	if c := doc.Nodes[3].(document.Code); c.Content != "echo ${title}" {
		t.Errorf("code must stay verbatim, got %q", c.Content)
	}
	if tbl := doc.Nodes[4].(document.Table); tbl.Rows[0][0] != "Override" {
		t.Errorf("table cell = %q", tbl.Rows[0][0])
	}
}

func TestLoadData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`{"sales": {"q3": [10, 12]}}`), 0644); err != nil {
		t.Fatal(err)
	}
	d, err := LoadData(path)
	if err != nil {
		t.Fatalf("LoadData() error = %v", err)
	}
	if got, _ := Interpolate("${sales.q3[1]}", d); got != "12" {
		t.Errorf("got %q", got)
	}
	if _, err := LoadData(filepath.Join(t.TempDir(), "none.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
