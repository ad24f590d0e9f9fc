// Package extract produces positioned text tokens from raw document
// bytes. The parsing pipeline only depends on the Extractor contract,
// not on any document format.
package extract

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/etros/scorebook/internal/boxscore"
)

// Extractor yields the positioned token stream of one document.
type Extractor interface {
	Extract(data []byte) ([]boxscore.Token, error)
}

// PDFExtractor reads text runs with their page coordinates from PDF
// bytes.
type PDFExtractor struct{}

// NewPDFExtractor creates a PDF-backed extractor.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract returns the word-level tokens across all pages. PDF user
// space puts the origin at the bottom-left, so Y is flipped per page to
// match the reconstructor's top-first convention.
func (e *PDFExtractor) Extract(data []byte) (tokens []boxscore.Token, err error) {
	// The pdf library panics on some malformed inputs instead of
	// returning an error.
	defer func() {
		if r := recover(); r != nil {
			tokens = nil
			err = fmt.Errorf("reading pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}

	var yOffset float64
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		words, maxY := mergeGlyphs(page.Content().Text)
		for _, w := range words {
			tokens = append(tokens, boxscore.Token{
				Text: w.text,
				X:    w.x,
				Y:    yOffset + maxY - w.y,
			})
		}

		// Later pages continue below the previous one so line grouping
		// never merges rows across a page break.
		yOffset += maxY + 1
	}

	return tokens, nil
}

type wordRun struct {
	text string
	x, y float64
}

// mergeGlyphs rebuilds words from the per-glyph entries the library
// emits. Glyphs on the same baseline belong to one word while each
// starts at (or just past) the right edge of the previous one; an
// explicit space glyph or a wider horizontal gap ends the word.
func mergeGlyphs(texts []pdf.Text) ([]wordRun, float64) {
	var maxY float64
	for _, t := range texts {
		if t.Y > maxY {
			maxY = t.Y
		}
	}

	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var (
		words []wordRun
		cur   strings.Builder
		curX  float64
		curY  float64
		endX  float64
	)

	flush := func() {
		if cur.Len() > 0 {
			words = append(words, wordRun{text: cur.String(), x: curX, y: curY})
			cur.Reset()
		}
	}

	for _, t := range sorted {
		if strings.TrimSpace(t.S) == "" {
			flush()
			endX = t.X + t.W
			continue
		}

		if cur.Len() > 0 && sameBaseline(t.Y, curY) && t.X <= endX+wordGap(t.FontSize) {
			cur.WriteString(t.S)
		} else {
			flush()
			curX, curY = t.X, t.Y
			cur.WriteString(t.S)
		}
		endX = t.X + t.W
	}
	flush()

	return words, maxY
}

func sameBaseline(a, b float64) bool {
	return math.Abs(a-b) < 0.5
}

// wordGap is the horizontal slack tolerated between glyphs of one
// word, covering kerning adjustments that shift a glyph slightly past
// its neighbor's advance width.
func wordGap(fontSize float64) float64 {
	if fontSize <= 0 {
		return 1.0
	}
	return fontSize * 0.25
}
