package readtime_test

import (
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/readtime"
	"github.com/eringen/spacetraveling/richtext"
)

// plain renders a body as its texts joined by single spaces.
var plain = readtime.RendererFunc(func(body []content.RichTextSpan) string {
	parts := make([]string, len(body))
	for i, s := range body {
		parts[i] = s.Text
	}
	return strings.Join(parts, " ")
})

func words(n int) string {
	w := make([]string, n)
	for i := range w {
		w[i] = "word"
	}
	return strings.Join(w, " ")
}

func block(heading string, texts ...string) content.ContentBlock {
	b := content.ContentBlock{Heading: heading}
	for _, t := range texts {
		b.Body = append(b.Body, content.RichTextSpan{Type: content.TypeParagraph, Text: t})
	}
	return b
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		name   string
		blocks []content.ContentBlock
		want   string
	}{
		{"empty sequence", nil, "3 min"},
		{"three words", []content.ContentBlock{block("Hello", "world test")}, "4 min"},
		{"exactly 200 words", []content.ContentBlock{block("", words(200))}, "4 min"},
		{"201 words", []content.ContentBlock{block("", words(201))}, "5 min"},
		{"400 words", []content.ContentBlock{block("", words(400))}, "5 min"},
		{"401 words", []content.ContentBlock{block("", words(401))}, "6 min"},
		{"empty first block", []content.ContentBlock{block("")}, "3 min"},
	}
	est := readtime.New(plain)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, est.Estimate(tt.blocks))
		})
	}
}

func TestEstimateUsesOnlyFirstBlock(t *testing.T) {
	est := readtime.New(plain)
	blocks := []content.ContentBlock{
		block(""),
		block("Long section", words(5000)),
		block("Another", words(12000)),
	}
	assert.Equal(t, "3 min", est.Estimate(blocks))

	blocks[0] = block("", words(201))
	assert.Equal(t, "5 min", est.Estimate(blocks))
}

func TestEstimateCallsRendererForEveryBlock(t *testing.T) {
	calls := 0
	est := readtime.New(readtime.RendererFunc(func(body []content.RichTextSpan) string {
		calls++
		return ""
	}))
	est.Estimate([]content.ContentBlock{block("a"), block("b"), block("c")})
	assert.Equal(t, 3, calls)
}

func TestEstimateDoesNotMutateInput(t *testing.T) {
	blocks := []content.ContentBlock{block("Title here", "one two", "three")}
	before := blocks[0].Body[0].Text
	readtime.New(plain).Estimate(blocks)
	assert.Equal(t, before, blocks[0].Body[0].Text)
	assert.Len(t, blocks[0].Body, 2)
}

func TestEstimateWithRichTextRenderer(t *testing.T) {
	est := readtime.New(richtext.Renderer{})

	// <p>world test</p> splits into two pieces.
	assert.Equal(t, "4 min", est.Estimate([]content.ContentBlock{block("Hello", "world test")}))

	// Paragraphs are joined without whitespace, so the body splits into 395
	// pieces; with the heading that is 396 words.
	got := est.Estimate([]content.ContentBlock{block("Intro", words(198), words(198))})
	assert.Equal(t, "5 min", got)
}

func TestEstimateCountsImageMarkup(t *testing.T) {
	img := content.RichTextSpan{Type: content.TypeImage, URL: "https://images.prismic.io/x.png", Alt: "rocket"}
	body := richtext.Renderer{}.AsHTML([]content.RichTextSpan{img})

	// The image tag splits into five pieces on its attribute spaces.
	assert.Equal(t, 5, readtime.CountWords(body))
	got := readtime.New(richtext.Renderer{}).Estimate([]content.ContentBlock{{Body: []content.RichTextSpan{img}}})
	assert.Equal(t, "4 min", got)
}

func TestEstimateFormat(t *testing.T) {
	re := regexp.MustCompile(`^[1-9][0-9]* min$`)
	est := readtime.New(plain)
	for _, n := range []int{0, 1, 199, 200, 201, 999, 10000} {
		got := est.Estimate([]content.ContentBlock{block("", words(n))})
		require.Regexp(t, re, got, "words=%d", n)
	}
}

func TestEstimateConcurrent(t *testing.T) {
	est := readtime.New(plain)
	blocks := []content.ContentBlock{block("Hello", "world test")}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := est.Estimate(blocks); got != "4 min" {
				t.Errorf("Estimate = %q, want %q", got, "4 min")
			}
		}()
	}
	wg.Wait()
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"Hello", 1},
		{"world test", 2},
		{"a  b", 3},
		{" lead", 2},
		{"trail ", 2},
		{"tab\tand\nnewline", 3},
		{"nbsp\u00a0joined", 2},
		{"bom\ufeffjoined", 2},
		{"<p>world test</p>", 2},
		{"a<br />b", 2},
	}
	for _, tt := range tests {
		if got := readtime.CountWords(tt.input); got != tt.expected {
			t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.expected)
		}
	}
}
