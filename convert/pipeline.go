package convert

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ByLCY/deckflow/binding"
	"github.com/ByLCY/deckflow/config"
	"github.com/ByLCY/deckflow/document"
	"github.com/ByLCY/deckflow/inline"
	"github.com/ByLCY/deckflow/layout"
	"github.com/ByLCY/deckflow/markdown"
	canvasrenderer "github.com/ByLCY/deckflow/renderer/canvas"
	"github.com/ByLCY/deckflow/templates"
)

// Result holds every intermediate stage of a conversion.
type Result struct {
	Doc   *document.Document
	Sheet *templates.Sheet
	Pages []layout.Page
	Deck  *layout.Deck
}

// Title returns document title: "title" front matter key or the first
// heading with emphasis markers removed.
func (r *Result) Title() string {
	if r.Doc == nil {
		return ""
	}
	if t := r.Doc.Meta["title"]; t != "" {
		return t
	}
	for _, n := range r.Doc.Nodes {
		if h, ok := n.(document.Heading); ok {
			return inline.Strip(h.Content)
		}
	}
	return ""
}

// Plan returns debug view of pagination and placement.
func (r *Result) Plan() *layout.Plan {
	return layout.NewPlan(r.Pages, r.Deck)
}

// Pipeline turns markdown source into placed slides and then into PDF. The
// same template sheet drives estimation and rendering so page breaks
// computed here match what is drawn.
type Pipeline struct {
	Cache *templates.Cache
	Conv  config.ConversionConfig
	Log   *zap.Logger
	// Data is merged over front matter to fill ${...} placeholders.
	Data binding.Data
}

// Layout parses source, resolves template and paginates content.
func (p *Pipeline) Layout(ctx context.Context, src []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text, err := decodeSource(src)
	if err != nil {
		return nil, fmt.Errorf("unable to decode source: %w", err)
	}
	doc, err := markdown.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse markdown: %w", err)
	}
	if n := binding.Bind(doc, binding.Merge(doc.Meta, p.Data)); n > 0 {
		p.Log.Debug("Placeholders substituted", zap.Int("count", n))
	}

	tmpl, err := p.Cache.GetOrLoad(p.Conv.Template)
	if err != nil {
		return nil, fmt.Errorf("unable to load template %q: %w", p.Conv.Template, err)
	}
	sheet, err := tmpl.Sheet(p.Conv.Layout)
	if err != nil {
		return nil, err
	}
	width, height := sheet.SlideSize()
	budget := p.Conv.Budget(height)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pages := layout.Paginate(doc.Nodes, budget, sheet)
	deck := layout.Place(pages, budget, sheet)
	deck.Width, deck.Height = width, height

	p.Log.Debug("Layout computed",
		zap.String("template", tmpl.ID),
		zap.String("layout", sheet.Layout.Name),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("pages", len(pages)),
		zap.Int("slides", len(deck.Slides)))

	return &Result{Doc: doc, Sheet: sheet, Pages: pages, Deck: deck}, nil
}

// Render draws placed slides into PDF. Relative image paths are resolved
// against baseDir.
func (p *Pipeline) Render(ctx context.Context, res *Result, baseDir string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	meta := res.Doc.Meta
	r := canvasrenderer.NewRenderer(canvasrenderer.Options{
		Sheet:       res.Sheet,
		BaseDir:     baseDir,
		Fonts:       p.Conv.Fonts,
		SystemFonts: p.Conv.SystemFonts,
		Meta: canvasrenderer.Meta{
			Title:    res.Title(),
			Subject:  firstOf(meta, "subject", "description"),
			Keywords: firstOf(meta, "keywords", "tags"),
			Author:   meta["author"],
			Creator:  config.AppName,
		},
	})
	data, err := r.Render(res.Deck)
	if err != nil {
		return nil, fmt.Errorf("unable to render slides: %w", err)
	}
	return data, nil
}

// decodeSource accepts UTF-8 with or without BOM as well as UTF-16 with BOM.
func decodeSource(src []byte) ([]byte, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), src)
	return out, err
}

func firstOf(meta map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := meta[k]; v != "" {
			return v
		}
	}
	return ""
}
