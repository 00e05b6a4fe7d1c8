package canvasrenderer

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/deckflow/document"
	"github.com/ByLCY/deckflow/inline"
	"github.com/ByLCY/deckflow/layout"
	"github.com/ByLCY/deckflow/templates"
)

type canvasFace = canvas.FontFace

func testFace(t *testing.T, bold, italic bool) *canvas.FontFace {
	t.Helper()
	r := NewRenderer(Options{})
	face, err := r.fontFace("", 12, "000000", bold, italic)
	if err != nil {
		t.Fatalf("font face: %v", err)
	}
	return face
}

func plainSpans(s string) []inline.Span { return []inline.Span{{Text: s}} }

func TestWrapSpansGreedyWrapsText(t *testing.T) {
	face := testFace(t, false, false)
	lines := wrapSpans(plainSpans("hello world again"), 10, func(inline.Span) *canvas.FontFace { return face })
	if len(lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if strings.HasPrefix(ln.content(), " ") {
			t.Fatalf("line %d starts with whitespace: %q", i, ln.content())
		}
	}
}

func TestWrapSpansHonorsNewlines(t *testing.T) {
	face := testFace(t, false, false)
	lines := wrapSpans(plainSpans("foo\n\nbar"), 100, func(inline.Span) *canvas.FontFace { return face })
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines including blank, got %d", len(lines))
	}
	if lines[1].content() != "" {
		t.Fatalf("expected middle line to be blank, got %q", lines[1].content())
	}
}

// TestWrapSpansWidthLimit 验证每行宽度不超过限制（mm）。
func TestWrapSpansWidthLimit(t *testing.T) {
	face := testFace(t, false, false)
	limit := 30.0
	content := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa bbb cc"
	lines := wrapSpans(plainSpans(content), limit, func(inline.Span) *canvas.FontFace { return face })
	if len(lines) < 2 {
		t.Fatalf("expected at least two lines, got %d", len(lines))
	}
	var joined strings.Builder
	for i, ln := range lines {
		if ln.width-limit > 1e-6 {
			t.Fatalf("line %d width exceeds limit: width=%g limit=%g", i, ln.width, limit)
		}
		joined.WriteString(ln.content())
	}
	if got := strings.ReplaceAll(joined.String(), " ", ""); got != strings.ReplaceAll(content, " ", "") {
		t.Fatalf("text lost while wrapping: %q", got)
	}
}

func TestWrapSpansKeepsFacesPerSpan(t *testing.T) {
	plain := testFace(t, false, false)
	bold := testFace(t, true, false)
	pick := func(s inline.Span) *canvas.FontFace {
		if s.Bold {
			return bold
		}
		return plain
	}
	lines := wrapSpans(inline.Parse("**Total** due today"), 1000, pick)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	segs := lines[0].segs
	if len(segs) != 2 {
		t.Fatalf("expected bold and plain segments, got %d", len(segs))
	}
	if segs[0].face != bold || segs[0].text != "Total" {
		t.Fatalf("first segment should be bold 'Total', got %q", segs[0].text)
	}
	if segs[1].face != plain || segs[1].text != " due today" {
		t.Fatalf("second segment should be plain, got %q", segs[1].text)
	}
}

func TestTokenizeSplitsWideRunes(t *testing.T) {
	tokens := tokenizeContent("ab 日本")
	want := []string{"ab", " ", "日", "本"}
	if strings.Join(tokens, "|") != strings.Join(want, "|") {
		t.Fatalf("got %q want %q", tokens, want)
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for x := 0; x < 40; x++ {
		for y := 0; y < 20; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "chart.png"))

	tpl, err := templates.NewCache("").GetOrLoad("corporate-blue")
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	sheet, err := tpl.Sheet("")
	if err != nil {
		t.Fatalf("sheet: %v", err)
	}

	var items []document.ListItem
	for i := 0; i < 25; i++ {
		items = append(items, document.ListItem{Content: "step with *emphasis*", Children: []document.ListItem{{Content: "detail"}}})
	}
	nodes := []document.Node{
		document.Heading{Level: 1, Content: "Quarterly **Review**"},
		document.Paragraph{Content: "Revenue grew ***sharply*** this quarter."},
		document.List{Ordered: true, Items: items},
		document.Heading{Level: 2, Content: "Numbers"},
		document.Table{Header: true, Rows: [][]string{{"Region", "Q1", "Q2"}, {"EU", "1"}}},
		document.Code{Lang: "go", Content: "func main() {\n\tprintln(1)\n}"},
		document.Image{Src: "chart.png", Alt: "Chart"},
		document.Image{Src: "missing.png", Alt: "Missing"},
		document.Unknown{Type: "thematic_break"},
	}
	budget := layout.DefaultBudget()
	pages := layout.Paginate(nodes, budget, sheet)
	deck := layout.Place(pages, budget, sheet)

	r := NewRenderer(Options{Sheet: sheet, BaseDir: dir, Meta: Meta{Title: "Review", Creator: "deckflow"}})
	out, err := r.Render(deck)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestRenderRejectsEmptyDeck(t *testing.T) {
	r := NewRenderer(Options{})
	if _, err := r.Render(nil); err == nil {
		t.Fatalf("nil deck should fail")
	}
	if _, err := r.Render(&layout.Deck{}); err == nil {
		t.Fatalf("deck without slides should fail")
	}
}

func TestConfiguredFontMissing(t *testing.T) {
	r := NewRenderer(Options{Fonts: map[string]string{"Brand": filepath.Join(t.TempDir(), "none.ttf")}})
	if _, err := r.fontFace("Brand", 12, "000000", false, false); err == nil {
		t.Fatalf("missing configured font should fail")
	}
	if _, err := r.fontFace("Other", 12, "000000", false, false); err != nil {
		t.Fatalf("unconfigured face should fall back: %v", err)
	}
}

func imageThenCaption(src string) *layout.Deck {
	nodes := []document.Node{
		document.Image{Src: src, Alt: "Tall"},
		document.Paragraph{Content: "Caption below the picture."},
	}
	budget := layout.DefaultBudget()
	return layout.Place(layout.Paginate(nodes, budget, nil), budget, nil)
}

func TestImageStaysInsideItsBlock(t *testing.T) {
	deck := imageThenCaption("tall.png")
	if len(deck.Slides) != 1 || len(deck.Slides[0].Blocks) != 2 {
		t.Fatalf("expected one slide with two blocks, got %+v", deck.Slides)
	}
	img, next := deck.Slides[0].Blocks[0], deck.Slides[0].Blocks[1]

	// 方形大图若按剩余预算缩放会压住后面的段落
	maxW := toMM(deck.Width - 2*contentLeft)
	maxH := toMM(imageHeight(deck.Budget, img, false))
	scale := fitScale(1000, 1000, maxW, maxH)
	if bottom := toMM(img.Y) + 1000*scale; bottom > toMM(next.Y)+1e-9 {
		t.Fatalf("image bottom %.2fmm overlaps next block at %.2fmm", bottom, toMM(next.Y))
	}

	if got, want := imageHeight(deck.Budget, img, true), deck.Budget.MaxY-img.Y; math.Abs(got-want) > 1e-9 {
		t.Fatalf("last image should use remaining budget: got %v want %v", got, want)
	}
	low := layout.Block{Y: deck.Budget.MaxY - 0.1, Height: 0.5}
	if got := imageHeight(deck.Budget, low, true); got != 0.5 {
		t.Fatalf("image near the bottom keeps its own box, got %v", got)
	}
}

func TestRenderImageFollowedByParagraph(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "tall.png"))

	out, err := NewRenderer(Options{BaseDir: dir}).Render(imageThenCaption("tall.png"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
}
