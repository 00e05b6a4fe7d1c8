package markdown

import (
	"testing"

	"github.com/ByLCY/deckflow/document"
)

const sample = `---
title: Quarterly Review
tags: [finance, internal]
---
# Results

Revenue grew **12%** and costs fell *slightly*,
see [the report](https://example.com).

## Highlights

- first
  - detail a
    - deeper
  - detail b
- second

1. one
2. two

` + "```go\nfmt.Println(\"hi\")\nreturn\n```" + `

| Region | Q1 | Q2 |
|---|---|---|
| EU | 1 | 2 |
| US | 3 |

![Chart](chart.png)

> quoted
> text

---
`

func TestParseDocument(t *testing.T) {
	doc, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if doc.Meta["title"] != "Quarterly Review" || doc.Meta["tags"] != "finance, internal" {
		t.Fatalf("unexpected meta %#v", doc.Meta)
	}

	kinds := []document.Kind{
		document.KindHeading,
		document.KindParagraph,
		document.KindHeading,
		document.KindList,
		document.KindList,
		document.KindCode,
		document.KindTable,
		document.KindImage,
		document.KindParagraph,
		document.KindUnknown,
	}
	if len(doc.Nodes) != len(kinds) {
		for i, n := range doc.Nodes {
			t.Logf("%d: %#v", i, n)
		}
		t.Fatalf("expected %d nodes, got %d", len(kinds), len(doc.Nodes))
	}
	for i, k := range kinds {
		if doc.Nodes[i].Kind() != k {
			t.Fatalf("node %d: got %s want %s", i, doc.Nodes[i].Kind(), k)
		}
	}

	if h := doc.Nodes[0].(document.Heading); h.Level != 1 || h.Content != "Results" {
		t.Fatalf("unexpected heading %#v", h)
	}
	p := doc.Nodes[1].(document.Paragraph)
	want := "Revenue grew **12%** and costs fell *slightly*, see the report."
	if p.Content != want {
		t.Fatalf("paragraph:\n got %q\nwant %q", p.Content, want)
	}

	bullets := doc.Nodes[3].(document.List)
	if bullets.Ordered || len(bullets.Items) != 2 {
		t.Fatalf("unexpected bullet list %#v", bullets)
	}
	children := bullets.Items[0].Children
	if len(children) != 3 || children[0].Content != "detail a" || children[1].Content != "deeper" || children[2].Content != "detail b" {
		t.Fatalf("deeper levels should flatten into the nested level: %#v", children)
	}
	if !doc.Nodes[4].(document.List).Ordered {
		t.Fatalf("second list should be ordered")
	}

	code := doc.Nodes[5].(document.Code)
	if code.Lang != "go" || code.Content != "fmt.Println(\"hi\")\nreturn" {
		t.Fatalf("unexpected code %#v", code)
	}

	tbl := doc.Nodes[6].(document.Table)
	if !tbl.Header || len(tbl.Rows) != 3 || tbl.Rows[0][0] != "Region" {
		t.Fatalf("unexpected table %#v", tbl)
	}
	if tbl.Columns() != 3 {
		t.Fatalf("expected 3 columns, got %d", tbl.Columns())
	}

	img := doc.Nodes[7].(document.Image)
	if img.Src != "chart.png" || img.Alt != "Chart" {
		t.Fatalf("unexpected image %#v", img)
	}
	if q := doc.Nodes[8].(document.Paragraph); q.Content != "quoted text" {
		t.Fatalf("unexpected blockquote %#v", q)
	}
}

func TestParseEmphasisForms(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"__strong__ and _em_", "**strong** and *em*"},
		{"***both***", "***both***"},
		{"use `a*b` here", "use a*b here"},
		{"<https://go.dev>", "https://go.dev"},
	}
	for _, tc := range cases {
		doc, err := Parse([]byte(tc.in))
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if len(doc.Nodes) != 1 {
			t.Fatalf("%q: expected one node, got %d", tc.in, len(doc.Nodes))
		}
		if got := doc.Nodes[0].(document.Paragraph).Content; got != tc.want {
			t.Errorf("%q: got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestFrontMatterOptional(t *testing.T) {
	doc, err := Parse([]byte("# Only\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Meta) != 0 || len(doc.Nodes) != 1 {
		t.Fatalf("unexpected document %#v", doc)
	}

	// an unterminated fence is ordinary content
	doc, err = Parse([]byte("---\nnot: closed\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Meta) != 0 {
		t.Fatalf("unterminated front matter must not fill meta")
	}

	if _, err := Parse([]byte("---\n: [\n---\n# x\n")); err == nil {
		t.Fatalf("expected front matter error")
	}
}

func TestParseEmpty(t *testing.T) {
	doc, err := Parse(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Nodes) != 0 {
		t.Fatalf("expected no nodes, got %d", len(doc.Nodes))
	}
}
