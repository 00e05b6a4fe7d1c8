package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ByLCY/deckflow/config"
	"github.com/ByLCY/deckflow/layout"
	"github.com/ByLCY/deckflow/state"
	"github.com/ByLCY/deckflow/templates"
)

const sampleDeck = `---
title: Quarterly Review
author: Platform Team
tags: [review, q3]
---

# Quarterly Review

Numbers for the **third** quarter.

## Highlights

- Latency down by *a third*
- Two regions added
  - eu-west
  - ap-south
- Billing moved to the new ledger

## Code

` + "```go\nfunc main() {}\n```" + `

| Metric | Q2 | Q3 |
|--------|----|----|
| p99    | 40 | 27 |
`

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	// system fonts differ between machines
	cfg.Conversion.SystemFonts = false
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "review.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func TestProcess_SingleFile(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := writeSource(t, sampleDeck)
	dst := t.TempDir()
	plan := filepath.Join(dst, "plan.json")

	err := process(ctx, options{src: src, dst: dst, planPath: plan}, env, env.Log)
	if err != nil {
		t.Fatalf("process() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dst, "review.pdf"))
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}

	raw, err := os.ReadFile(plan)
	if err != nil {
		t.Fatalf("plan not written: %v", err)
	}
	var p layout.Plan
	if err := json.Unmarshal(raw, &p); err != nil {
		t.Fatalf("plan is not valid JSON: %v", err)
	}
	// level 1 and two level 2 headings start three pages
	if len(p.Pages) != 3 {
		t.Errorf("expected 3 pages, got %d", len(p.Pages))
	}
	if p.Width != 10 || p.Height != 5.625 {
		t.Errorf("unexpected slide size %vx%v", p.Width, p.Height)
	}
}

func TestProcess_RefusesToOverwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := writeSource(t, sampleDeck)
	dst := filepath.Join(t.TempDir(), "out.pdf")
	if err := os.WriteFile(dst, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	err := process(ctx, options{src: src, dst: dst}, env, env.Log)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected existing output error, got %v", err)
	}
	if data, _ := os.ReadFile(dst); string(data) != "keep" {
		t.Fatal("existing file must not be touched")
	}

	if err := process(ctx, options{src: src, dst: dst, overwrite: true}, env, env.Log); err != nil {
		t.Fatalf("process() with overwrite error = %v", err)
	}
	if data, _ := os.ReadFile(dst); !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("file should have been overwritten")
	}
}

func TestProcess_EmptySource(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := writeSource(t, "---\ntitle: nothing\n---\n")
	if err := process(ctx, options{src: src, dst: t.TempDir()}, env, env.Log); err == nil {
		t.Fatal("expected error for source without content")
	}
}

func TestProcess_NonExistentSource(t *testing.T) {
	ctx, env := setupTestEnv(t)
	if err := process(ctx, options{src: "/nonexistent/deck.md", dst: t.TempDir()}, env, env.Log); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestProcess_UnknownTemplate(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.Cfg.Conversion.Template = "no-such-template"
	src := writeSource(t, sampleDeck)
	if err := process(ctx, options{src: src, dst: t.TempDir()}, env, env.Log); err == nil {
		t.Fatal("expected error for unknown template")
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, env := setupTestEnv(t)
	ctx, cancel := context.WithCancel(ctx)
	cancel()
	src := writeSource(t, sampleDeck)
	if err := process(ctx, options{src: src, dst: t.TempDir()}, env, env.Log); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestPipelineLayout(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Conversion.Template = "corporate-blue"
	p := &Pipeline{Cache: env.TemplateCache(), Conv: env.Cfg.Conversion, Log: env.Log}

	res, err := p.Layout(context.Background(), []byte(sampleDeck))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if res.Title() != "Quarterly Review" {
		t.Errorf("Title() = %q", res.Title())
	}
	if res.Sheet.Layout.Name != "Title and Content" {
		t.Errorf("expected default layout, got %q", res.Sheet.Layout.Name)
	}
	// font sizes on placed blocks come from the template sheet
	first := res.Deck.Slides[0].Blocks[0]
	if want := res.Sheet.FontSize(first.Node); first.FontSize != want {
		t.Errorf("block font size %v, sheet says %v", first.FontSize, want)
	}
	if !env.TemplateCache().Cached("corporate-blue") {
		t.Error("template should stay cached after layout")
	}
}

func TestPipelineBreakLevel(t *testing.T) {
	_, env := setupTestEnv(t)
	env.Cfg.Conversion.BreakLevel = 1
	p := &Pipeline{Cache: env.TemplateCache(), Conv: env.Cfg.Conversion, Log: env.Log}

	res, err := p.Layout(context.Background(), []byte(sampleDeck))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if res.Deck.Budget.BreakLevel != 1 {
		t.Errorf("budget break level = %d", res.Deck.Budget.BreakLevel)
	}
	if len(res.Pages) >= 3 {
		t.Errorf("level 2 headings must not force pages, got %d pages", len(res.Pages))
	}
}

func TestPipelineTitleFallsBackToHeading(t *testing.T) {
	_, env := setupTestEnv(t)
	p := &Pipeline{Cache: env.TemplateCache(), Conv: env.Cfg.Conversion, Log: env.Log}
	res, err := p.Layout(context.Background(), []byte("# The **bold** plan\n\ntext\n"))
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	if got := res.Title(); got != "The bold plan" {
		t.Errorf("Title() = %q", got)
	}
}

func TestDecodeSourceUTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	src, _, err := transform.Bytes(enc, []byte("# 标题\n"))
	if err != nil {
		t.Fatal(err)
	}
	out, err := decodeSource(src)
	if err != nil {
		t.Fatalf("decodeSource() error = %v", err)
	}
	if string(out) != "# 标题\n" {
		t.Errorf("decodeSource() = %q", out)
	}

	bom := append([]byte{0xEF, 0xBB, 0xBF}, "# a\n"...)
	if out, _ = decodeSource(bom); string(out) != "# a\n" {
		t.Errorf("UTF-8 BOM not removed: %q", out)
	}
}

func TestWriteTemplateList(t *testing.T) {
	list, err := templates.NewCache("").List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var buf bytes.Buffer
	if err := writeTemplateList(&buf, list, "default"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "default *") {
		t.Errorf("current template not marked:\n%s", out)
	}
	if !strings.Contains(out, "vibrant-creative") || !strings.Contains(out, "builtin") {
		t.Errorf("built-ins missing:\n%s", out)
	}
}

func TestProcess_DataFile(t *testing.T) {
	ctx, env := setupTestEnv(t)
	src := writeSource(t, "---\nteam: Platform\n---\n# ${team} update by ${owner.name}\n\nBody.\n")
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "data.yaml")
	if err := os.WriteFile(dataPath, []byte("owner:\n  name: Ana\n"), 0644); err != nil {
		t.Fatal(err)
	}
	plan := filepath.Join(dir, "plan.json")

	err := process(ctx, options{src: src, dst: dir, planPath: plan, dataPath: dataPath}, env, env.Log)
	if err != nil {
		t.Fatalf("process() error = %v", err)
	}
	raw, err := os.ReadFile(plan)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "Platform update by Ana") {
		t.Errorf("placeholders not substituted:\n%s", raw)
	}
}
