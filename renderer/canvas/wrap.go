package canvasrenderer

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/deckflow/inline"
)

// segment 是同一字体面下的一段文字。
type segment struct {
	text string
	face *canvas.FontFace
}

// textLine 是折行后的一行，宽度单位为 mm。
type textLine struct {
	segs  []segment
	width float64
}

func (l textLine) content() string {
	var sb strings.Builder
	for _, s := range l.segs {
		sb.WriteString(s.text)
	}
	return sb.String()
}

// height 取行内各字体面行高的最大值。
func (l textLine) height(fallback *canvas.FontFace) float64 {
	h := 0.0
	for _, s := range l.segs {
		h = math.Max(h, s.face.Metrics().LineHeight)
	}
	if h == 0 && fallback != nil {
		h = fallback.Metrics().LineHeight
	}
	return h
}

func (l textLine) ascent(fallback *canvas.FontFace) float64 {
	a := 0.0
	for _, s := range l.segs {
		a = math.Max(a, s.face.Metrics().Ascent)
	}
	if a == 0 && fallback != nil {
		a = fallback.Metrics().Ascent
	}
	return a
}

// wrapSpans 贪心折行：优先在空白处分割，单个词超过限制时在词内拆分；
// 显式换行总是开启新行。行首空白被丢弃。
func wrapSpans(spans []inline.Span, width float64, faceFor func(inline.Span) *canvas.FontFace) []textLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	var (
		lines   []textLine
		current textLine
	)
	emit := func(force bool) {
		if len(current.segs) == 0 {
			if force {
				lines = append(lines, textLine{})
			}
			return
		}
		lines = append(lines, current)
		current = textLine{}
	}
	appendText := func(face *canvas.FontFace, s string, w float64) {
		if n := len(current.segs); n > 0 && current.segs[n-1].face == face {
			current.segs[n-1].text += s
		} else {
			current.segs = append(current.segs, segment{text: s, face: face})
		}
		current.width += w
	}

	for _, span := range spans {
		face := faceFor(span)
		for _, token := range tokenizeContent(span.Text) {
			if token == "\n" {
				emit(true)
				continue
			}
			if len(current.segs) == 0 && strings.TrimSpace(token) == "" {
				continue
			}
			tokenWidth := face.TextWidth(token)
			if current.width > 0 && current.width+tokenWidth > limit {
				emit(false)
				if strings.TrimSpace(token) == "" {
					continue
				}
			}
			if tokenWidth <= limit {
				appendText(face, token, tokenWidth)
				continue
			}
			for _, chunk := range splitTokenByWidth(token, limit, face) {
				chunkWidth := face.TextWidth(chunk)
				if current.width > 0 && current.width+chunkWidth > limit {
					emit(false)
				}
				appendText(face, chunk, chunkWidth)
			}
		}
	}
	emit(len(lines) == 0)
	return lines
}

func tokenizeContent(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		// 宽字符逐字成词，便于中日文在任意字符间换行
		wide := unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace || wide {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
		if wide {
			flush()
		}
	}
	flush()
	return tokens
}

func splitTokenByWidth(token string, limit float64, face *canvas.FontFace) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var builder strings.Builder
	for _, r := range token {
		builder.WriteRune(r)
		if face.TextWidth(builder.String()) > limit && utf8.RuneCountInString(builder.String()) > 1 {
			runes := []rune(builder.String())
			parts = append(parts, string(runes[:len(runes)-1]))
			builder.Reset()
			builder.WriteRune(r)
		}
	}
	if builder.Len() > 0 {
		parts = append(parts, builder.String())
	}
	return parts
}
