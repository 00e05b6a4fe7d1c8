package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/deckflow/document"
	"github.com/ByLCY/deckflow/fonts"
	"github.com/ByLCY/deckflow/inline"
	"github.com/ByLCY/deckflow/layout"
	"github.com/ByLCY/deckflow/renderer"
	"github.com/ByLCY/deckflow/templates"
)

// 版式常量：英寸除非另有说明。
const (
	contentLeft  = 0.5
	listIndent   = 0.2
	nestedIndent = 0.3
	bulletGap    = 0.25
	codePadding  = 0.1
	codeLeading  = 1.4

	tableBorderWidth = 0.2 // mm
	cellPadding      = 1.0 // mm
)

// Renderer draws placed slide decks via github.com/tdewolff/canvas.
type Renderer struct {
	sheet       *templates.Sheet
	baseDir     string
	fontFiles   map[string]string
	systemFonts bool
	meta        Meta

	fontMu   sync.Mutex
	families map[string]*canvas.FontFamily
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	// Sheet 提供样式；nil 时使用内置默认样式。
	Sheet *templates.Sheet
	// BaseDir 用于解析相对的图片与背景路径。
	BaseDir string
	// Fonts 将字体名映射到 TTF/OTF 文件；"Arial Bold"、"Arial Italic"、
	// "Arial Bold Italic" 形式的键提供对应字形。
	Fonts map[string]string
	// SystemFonts 允许在未配置字体文件时查找系统字体。
	SystemFonts bool
	Meta        Meta
}

// Meta is written into the PDF info dictionary.
type Meta struct {
	Title    string
	Subject  string
	Keywords string
	Author   string
	Creator  string
}

// NewRenderer creates a canvas-based renderer.
func NewRenderer(opts Options) *Renderer {
	files := make(map[string]string, len(opts.Fonts))
	for name, path := range opts.Fonts {
		if name != "" && path != "" {
			files[name] = path
		}
	}
	return &Renderer{
		sheet:       opts.Sheet,
		baseDir:     opts.BaseDir,
		fontFiles:   files,
		systemFonts: opts.SystemFonts,
		meta:        opts.Meta,
		families:    map[string]*canvas.FontFamily{},
	}
}

// Render renders the deck into a PDF byte slice, one page per slide.
func (r *Renderer) Render(deck *layout.Deck) ([]byte, error) {
	if deck == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(deck.Slides) == 0 {
		return nil, fmt.Errorf("缺少可渲染的幻灯片")
	}

	width, height := toMM(deck.Width), toMM(deck.Height)
	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	writer.SetInfo(r.meta.Title, r.meta.Subject, r.meta.Keywords, r.meta.Author, r.meta.Creator)
	for i, slide := range deck.Slides {
		if i > 0 {
			writer.NewPage(width, height)
		}
		c := canvas.New(width, height)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，与放置结果一致

		if err := r.drawSlide(ctx, deck, slide); err != nil {
			return nil, fmt.Errorf("第 %d 张幻灯片: %w", i+1, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawSlide(ctx *canvas.Context, deck *layout.Deck, slide layout.Slide) error {
	r.drawBackground(ctx, deck)
	for i, b := range slide.Blocks {
		var err error
		switch n := b.Node.(type) {
		case document.Heading:
			err = r.drawText(ctx, deck, b, n.Content)
		case document.Paragraph:
			err = r.drawText(ctx, deck, b, n.Content)
		case document.List:
			err = r.drawList(ctx, deck, b, n)
		case document.Code:
			err = r.drawCode(ctx, deck, b, n)
		case document.Table:
			err = r.drawTable(ctx, deck, b, n)
		case document.Image:
			err = r.drawImage(ctx, deck, b, n, i == len(slide.Blocks)-1)
		}
		// Unknown 节点只占位，不绘制
		if err != nil {
			return err
		}
	}
	return nil
}

// blockStyle 以放置阶段确定的字号为准，保证渲染与分页使用同一字号。
func (r *Renderer) blockStyle(b layout.Block) templates.Resolved {
	style := r.sheet.StyleFor(b.Node)
	if b.FontSize > 0 {
		style.FontSize = b.FontSize
	}
	return style
}

func (r *Renderer) drawBackground(ctx *canvas.Context, deck *layout.Deck) {
	bg := r.sheet.Background()
	w, h := toMM(deck.Width), toMM(deck.Height)
	if bg.Color != "" {
		ctx.SetFillColor(parseColor(bg.Color))
		ctx.SetStrokeColor(canvas.Transparent)
		ctx.DrawPath(0, 0, canvas.Rectangle(w, h))
	}
	if bg.Image == "" {
		return
	}
	img, err := r.loadImage(bg.Image)
	if err != nil {
		return // 背景图缺失时保留纯色背景
	}
	if px := img.Bounds().Dx(); px > 0 {
		ctx.DrawImage(0, 0, img, canvas.DPMM(float64(px)/w))
	}
}

func (r *Renderer) drawText(ctx *canvas.Context, deck *layout.Deck, b layout.Block, content string) error {
	style := r.blockStyle(b)
	faces, err := r.faceSet(style)
	if err != nil {
		return err
	}
	width := toMM(deck.Width - 2*contentLeft)
	lines := wrapSpans(inline.Parse(content), width, faces.pick)
	drawLines(ctx, lines, toMM(contentLeft), toMM(b.Y), width, toMM(b.Height), style.Align, style.Valign, faces.plain)
	return nil
}

func (r *Renderer) drawList(ctx *canvas.Context, deck *layout.Deck, b layout.Block, list document.List) error {
	style := r.blockStyle(b)
	faces, err := r.faceSet(style)
	if err != nil {
		return err
	}

	// 续页片段的编号接着前面的片段
	number := 0
	if list.Ordered {
		for i, it := range list.Flatten() {
			if i >= b.Offset {
				break
			}
			if it.Depth == 0 {
				number++
			}
		}
	}

	cursorY := b.Y
	for _, e := range b.Items {
		x := contentLeft + listIndent + float64(e.Depth)*nestedIndent
		marker := "•"
		if e.Depth > 0 {
			marker = "–"
		}
		if list.Ordered && e.Depth == 0 {
			number++
			marker = strconv.Itoa(number) + "."
		}
		top := toMM(cursorY)
		ctx.DrawText(toMM(x), top+faces.plain.Metrics().Ascent, canvas.NewTextLine(faces.plain, marker, canvas.Left))

		textX := x + bulletGap
		width := toMM(deck.Width - contentLeft - textX)
		lines := wrapSpans(inline.Parse(e.Content), width, faces.pick)
		drawLines(ctx, lines, toMM(textX), top, width, toMM(e.Height), "left", "top", faces.plain)
		cursorY += e.Height
	}
	return nil
}

func (r *Renderer) drawCode(ctx *canvas.Context, deck *layout.Deck, b layout.Block, code document.Code) error {
	style := r.blockStyle(b)
	face, err := r.fontFace(style.FontFace, style.FontSize, style.Color, style.Bold, style.Italic)
	if err != nil {
		return err
	}

	x, y := toMM(contentLeft), toMM(b.Y)
	ctx.SetFillColor(canvas.Hex("#F3F4F6"))
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.DrawPath(x, y, canvas.Rectangle(toMM(deck.Width-2*contentLeft), toMM(b.Height)))

	pad := toMM(codePadding)
	lineHeight := ptToMM(style.FontSize * codeLeading)
	baseline := y + pad + face.Metrics().Ascent
	for i, line := range strings.Split(code.Content, "\n") {
		line = strings.ReplaceAll(line, "\t", "    ")
		ctx.DrawText(x+pad, baseline+float64(i)*lineHeight, canvas.NewTextLine(face, line, canvas.Left))
	}
	return nil
}

func (r *Renderer) drawTable(ctx *canvas.Context, deck *layout.Deck, b layout.Block, tbl document.Table) error {
	cols := tbl.Columns()
	grid := tbl.Grid()
	if cols == 0 || len(grid) == 0 {
		return nil
	}
	style := r.blockStyle(b)
	faces, err := r.faceSet(style)
	if err != nil {
		return err
	}
	header := style
	header.Bold = true
	headerFaces, err := r.faceSet(header)
	if err != nil {
		return err
	}

	tableWidth := toMM(deck.Width - 2*contentLeft)
	colWidth := tableWidth / float64(cols)
	y := toMM(b.Y)
	for rowIdx, row := range grid {
		isHeader := tbl.Header && rowIdx == 0
		fs := faces
		if isHeader {
			fs = headerFaces
		}

		cells := make([][]textLine, len(row))
		rowHeight := 0.0
		for i, cell := range row {
			cells[i] = wrapSpans(inline.Parse(cell), colWidth-2*cellPadding, fs.pick)
			h := 0.0
			for _, ln := range cells[i] {
				h += ln.height(fs.plain)
			}
			rowHeight = math.Max(rowHeight, h)
		}
		rowHeight += 2 * cellPadding

		x := toMM(contentLeft)
		for i := range row {
			fill := color.Color(canvas.White)
			if isHeader {
				fill = canvas.Hex("#f8f8f8")
			}
			ctx.SetFillColor(fill)
			ctx.SetStrokeColor(canvas.Hex("#D1D5DB"))
			ctx.SetStrokeWidth(tableBorderWidth)
			ctx.DrawPath(x, y, canvas.Rectangle(colWidth, rowHeight))
			drawLines(ctx, cells[i], x+cellPadding, y+cellPadding, colWidth-2*cellPadding, rowHeight, style.Align, "top", fs.plain)
			x += colWidth
		}
		y += rowHeight
	}
	return nil
}

// last 为 true 时图片是本页最后一个块，可以占用剩余的全部预算。
func (r *Renderer) drawImage(ctx *canvas.Context, deck *layout.Deck, b layout.Block, img document.Image, last bool) error {
	maxW := toMM(deck.Width - 2*contentLeft)
	maxH := toMM(imageHeight(deck.Budget, b, last))
	x, y := toMM(contentLeft), toMM(b.Y)

	data, err := r.loadImage(img.Src)
	if err != nil || data.Bounds().Dx() == 0 || data.Bounds().Dy() == 0 {
		return r.drawImagePlaceholder(ctx, b, img, x, y, maxW)
	}
	pxW, pxH := float64(data.Bounds().Dx()), float64(data.Bounds().Dy())
	scale := fitScale(pxW, pxH, maxW, maxH)
	x += (maxW - pxW*scale) / 2
	ctx.DrawImage(x, y, data, canvas.DPMM(1/scale))
	return nil
}

// imageHeight 返回图片可用高度（英寸）：其后还有块时不得超出放置阶段预留的内容框。
func imageHeight(budget layout.Budget, b layout.Block, last bool) float64 {
	if !last {
		return b.Height
	}
	return math.Max(budget.MaxY-b.Y, b.Height)
}

// fitScale 返回把 pxW × pxH 像素等比放入 maxW × maxH 毫米的缩放（毫米/像素）。
func fitScale(pxW, pxH, maxW, maxH float64) float64 {
	return math.Min(maxW/pxW, maxH/pxH)
}

func (r *Renderer) drawImagePlaceholder(ctx *canvas.Context, b layout.Block, img document.Image, x, y, width float64) error {
	style := r.blockStyle(b)
	face, err := r.fontFace(style.FontFace, style.FontSize, "9CA3AF", false, true)
	if err != nil {
		return err
	}
	height := toMM(b.Height)
	ctx.SetFillColor(canvas.Transparent)
	ctx.SetStrokeColor(canvas.Hex("#9CA3AF"))
	ctx.SetStrokeWidth(tableBorderWidth)
	ctx.DrawPath(x, y, canvas.Rectangle(width, height))

	label := img.Alt
	if label == "" {
		label = img.Src
	}
	metrics := face.Metrics()
	baseline := y + (height-metrics.LineHeight)/2 + metrics.Ascent
	ctx.DrawText(x+width/2, baseline, canvas.NewTextLine(face, "["+label+"]", canvas.Center))
	return nil
}

func (r *Renderer) loadImage(src string) (image.Image, error) {
	if strings.Contains(src, "://") {
		return nil, fmt.Errorf("不支持远程图片 %s", src)
	}
	path := src
	if !filepath.IsAbs(path) {
		if r.baseDir == "" {
			return nil, fmt.Errorf("未指定资源目录时不允许使用相对路径：%s", src)
		}
		path = filepath.Join(r.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("读取图片 %s 失败: %w", src, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", src, err)
	}
	return img, nil
}

// drawLines 按对齐方式逐段绘制已折行文本，x/y/width/boxHeight 为 mm。
func drawLines(ctx *canvas.Context, lines []textLine, x, y, width, boxHeight float64, align, valign string, fallback *canvas.FontFace) {
	total := 0.0
	for _, ln := range lines {
		total += ln.height(fallback)
	}
	cursorY := y
	switch strings.ToLower(valign) {
	case "middle", "center":
		cursorY += math.Max((boxHeight-total)/2, 0)
	case "bottom":
		cursorY += math.Max(boxHeight-total, 0)
	}

	for _, ln := range lines {
		startX := x
		switch strings.ToLower(align) {
		case "center":
			startX = x + (width-ln.width)/2
		case "right", "end":
			startX = x + width - ln.width
		}
		baseline := cursorY + ln.ascent(fallback)
		for _, seg := range ln.segs {
			ctx.DrawText(startX, baseline, canvas.NewTextLine(seg.face, seg.text, canvas.Left))
			startX += seg.face.TextWidth(seg.text)
		}
		cursorY += ln.height(fallback)
	}
}

// faces 是同一样式下四种字形的字体面。
type faces struct {
	plain, bold, italic, boldItalic *canvas.FontFace
}

func (f faces) pick(span inline.Span) *canvas.FontFace {
	switch {
	case span.Bold && span.Italic:
		return f.boldItalic
	case span.Bold:
		return f.bold
	case span.Italic:
		return f.italic
	default:
		return f.plain
	}
}

// faceSet 构造样式对应的字体面；样式本身的粗体/斜体与行内标记叠加。
func (r *Renderer) faceSet(style templates.Resolved) (faces, error) {
	var out faces
	targets := []struct {
		dst          **canvas.FontFace
		bold, italic bool
	}{
		{&out.plain, false, false},
		{&out.bold, true, false},
		{&out.italic, false, true},
		{&out.boldItalic, true, true},
	}
	for _, t := range targets {
		face, err := r.fontFace(style.FontFace, style.FontSize, style.Color, style.Bold || t.bold, style.Italic || t.italic)
		if err != nil {
			return out, err
		}
		*t.dst = face
	}
	return out, nil
}

func (r *Renderer) fontFace(name string, sizePt float64, hex string, bold, italic bool) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(name)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePt, parseColor(hex), fontStyle(bold, italic), canvas.FontNormal), nil
}

var variants = []struct {
	bold, italic bool
	suffix       string
}{
	{false, false, ""},
	{true, false, " Bold"},
	{false, true, " Italic"},
	{true, true, " Bold Italic"},
}

func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.families[name]; ok {
		return family, nil
	}
	familyName := name
	if familyName == "" {
		familyName = "Body"
	}
	family := canvas.NewFontFamily(familyName)
	for _, v := range variants {
		if err := r.loadVariant(family, name, v.suffix, v.bold, v.italic); err != nil {
			return nil, err
		}
	}
	r.families[name] = family
	return family, nil
}

// loadVariant 依次尝试：配置的字体文件、系统字体、内置 Go 字体。
func (r *Renderer) loadVariant(family *canvas.FontFamily, name, suffix string, bold, italic bool) error {
	style := fontStyle(bold, italic)
	if path, ok := r.fontFiles[name+suffix]; ok {
		data, err := fonts.Load(path)
		if err != nil {
			return err
		}
		if err := family.LoadFont(data, 0, style); err != nil {
			return fmt.Errorf("加载字体 %s 失败: %w", path, err)
		}
		return nil
	}
	if r.systemFonts && name != "" {
		if err := family.LoadSystemFont(name+suffix, style); err == nil {
			return nil
		}
	}
	data, err := fonts.Load("embed:" + fonts.Builtin(fonts.IsMonospace(name), bold, italic))
	if err != nil {
		return err
	}
	return family.LoadFont(data, 0, style)
}

func fontStyle(bold, italic bool) canvas.FontStyle {
	style := canvas.FontRegular
	if bold {
		style = canvas.FontBold
	}
	if italic {
		style |= canvas.FontItalic
	}
	return style
}

func parseColor(hex string) color.Color {
	hex = strings.TrimPrefix(hex, "#")
	if hex == "" {
		return canvas.Black
	}
	return canvas.Hex("#" + hex)
}

func toMM(in float64) float64 { return layout.InchesToMM(in) }

// ptToMM 将点(pt)转换为毫米(mm)。
func ptToMM(pt float64) float64 { return pt * layout.MmPerInch / layout.PointsPerInch }
