// Package readtime estimates how long a post takes to read.
package readtime

import (
	"fmt"
	"math"

	"github.com/eringen/spacetraveling/content"
)

const (
	// WordsPerMinute is the assumed reading speed.
	WordsPerMinute = 200
	// Offset is added to the raw estimate before rounding up.
	Offset = 3
)

// Renderer converts a rich-text body to HTML. Body words are counted on the
// rendered output, markup included.
type Renderer interface {
	AsHTML(body []content.RichTextSpan) string
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(body []content.RichTextSpan) string

// AsHTML calls f(body).
func (f RendererFunc) AsHTML(body []content.RichTextSpan) string {
	return f(body)
}

// Estimator produces "<N> min" reading times. It holds no mutable state and
// is safe for concurrent use.
type Estimator struct {
	renderer Renderer
}

// New returns an Estimator that counts body words on r's output.
func New(r Renderer) *Estimator {
	return &Estimator{renderer: r}
}

// Estimate returns the reading time of blocks. Only the first block's word
// count feeds the estimate; an empty sequence counts as zero words and
// yields "3 min".
func (e *Estimator) Estimate(blocks []content.ContentBlock) string {
	counts := make([]int, len(blocks))
	for i, b := range blocks {
		counts[i] = CountWords(b.Heading) + CountWords(e.renderer.AsHTML(b.Body))
	}
	words := 0
	if len(counts) > 0 {
		words = counts[0]
	}
	minutes := float64(words) / WordsPerMinute
	return fmt.Sprintf("%d min", int(math.Ceil(minutes+Offset)))
}

// CountWords splits s on every single whitespace character and returns the
// number of pieces. Adjacent, leading and trailing whitespace produce empty
// pieces, which are counted. The empty string has no words.
func CountWords(s string) int {
	if s == "" {
		return 0
	}
	n := 1
	for _, r := range s {
		if isSpace(r) {
			n++
		}
	}
	return n
}

// isSpace matches the ECMAScript \s class: WhiteSpace and LineTerminator.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
