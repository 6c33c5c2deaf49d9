package richtext

import (
	"bytes"
	"context"
	"testing"

	"github.com/eringen/spacetraveling/content"
)

func para(text string, marks ...content.Mark) content.RichTextSpan {
	return content.RichTextSpan{Type: content.TypeParagraph, Text: text, Spans: marks}
}

func TestAsHTMLBlocks(t *testing.T) {
	tests := []struct {
		name     string
		body     []content.RichTextSpan
		expected string
	}{
		{"empty", nil, ""},
		{"paragraph", []content.RichTextSpan{para("world test")}, "<p>world test</p>"},
		{"untyped defaults to paragraph", []content.RichTextSpan{{Text: "hi"}}, "<p>hi</p>"},
		{"two paragraphs", []content.RichTextSpan{para("a"), para("b")}, "<p>a</p><p>b</p>"},
		{"heading", []content.RichTextSpan{{Type: content.TypeHeading2, Text: "Title"}}, "<h2>Title</h2>"},
		{"preformatted", []content.RichTextSpan{{Type: content.TypePreformatted, Text: "x := 1"}}, "<pre>x := 1</pre>"},
		{
			"unordered list",
			[]content.RichTextSpan{{Type: content.TypeListItem, Text: "one"}, {Type: content.TypeListItem, Text: "two"}},
			"<ul><li>one</li><li>two</li></ul>",
		},
		{
			"list switches kind",
			[]content.RichTextSpan{{Type: content.TypeListItem, Text: "a"}, {Type: content.TypeOListItem, Text: "b"}, para("c")},
			"<ul><li>a</li></ul><ol><li>b</li></ol><p>c</p>",
		},
		{
			"image",
			[]content.RichTextSpan{{Type: content.TypeImage, URL: "https://images.prismic.io/x.png", Alt: "rocket"}},
			`<p class="block-img"><img src="https://images.prismic.io/x.png" alt="rocket" /></p>`,
		},
		{
			"unsafe image dropped",
			[]content.RichTextSpan{{Type: content.TypeImage, URL: "javascript:alert(1)"}},
			"",
		},
		{
			"embed",
			[]content.RichTextSpan{{Type: content.TypeEmbed, EmbedURL: "https://youtu.be/x", EmbedHTML: "<iframe></iframe>"}},
			`<div data-oembed="https://youtu.be/x"><iframe></iframe></div>`,
		},
	}
	for _, tt := range tests {
		if got := AsHTML(tt.body); got != tt.expected {
			t.Errorf("%s: AsHTML = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestAsHTMLEscapesAndBreaks(t *testing.T) {
	got := AsHTML([]content.RichTextSpan{para("a < b & \"c\"\nnext")})
	want := "<p>a &lt; b &amp; &quot;c&quot;<br />next</p>"
	if got != want {
		t.Errorf("AsHTML = %q, want %q", got, want)
	}
}

func TestAsHTMLMarks(t *testing.T) {
	tests := []struct {
		name     string
		block    content.RichTextSpan
		expected string
	}{
		{
			"strong",
			para("hello world", content.Mark{Start: 0, End: 5, Type: content.MarkStrong}),
			"<p><strong>hello</strong> world</p>",
		},
		{
			"nested",
			para("hello world", content.Mark{Start: 0, End: 11, Type: content.MarkStrong}, content.Mark{Start: 6, End: 11, Type: content.MarkEm}),
			"<p><strong>hello <em>world</em></strong></p>",
		},
		{
			"overlapping marks are split",
			para("abcd", content.Mark{Start: 0, End: 3, Type: content.MarkStrong}, content.Mark{Start: 2, End: 4, Type: content.MarkEm}),
			"<p><strong>ab<em>c</em></strong><em>d</em></p>",
		},
		{
			"hyperlink",
			para("see docs", content.Mark{Start: 4, End: 8, Type: content.MarkHyperlink, URL: "https://prismic.io"}),
			`<p>see <a href="https://prismic.io">docs</a></p>`,
		},
		{
			"unsafe hyperlink",
			para("bad", content.Mark{Start: 0, End: 3, Type: content.MarkHyperlink, URL: "javascript:x"}),
			"<p><a>bad</a></p>",
		},
		{
			"label",
			para("note", content.Mark{Start: 0, End: 4, Type: content.MarkLabel, Label: "codespan"}),
			`<p><span class="codespan">note</span></p>`,
		},
		{
			"out of range mark clamped",
			para("ação", content.Mark{Start: 2, End: 40, Type: content.MarkEm}),
			"<p>aç<em>ão</em></p>",
		},
		{
			"empty mark ignored",
			para("abc", content.Mark{Start: 2, End: 2, Type: content.MarkEm}),
			"<p>abc</p>",
		},
	}
	for _, tt := range tests {
		if got := AsHTML([]content.RichTextSpan{tt.block}); got != tt.expected {
			t.Errorf("%s: AsHTML = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestAsText(t *testing.T) {
	got := AsText([]content.RichTextSpan{para("Como utilizar"), {Type: content.TypeHeading1, Text: "Hooks"}})
	if got != "Como utilizar Hooks" {
		t.Errorf("AsText = %q", got)
	}
	if AsText(nil) != "" {
		t.Error("AsText(nil) should be empty")
	}
}

func TestHTMLComponent(t *testing.T) {
	var buf bytes.Buffer
	if err := HTML([]content.RichTextSpan{para("x")}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.String() != "<p>x</p>" {
		t.Errorf("component output = %q", buf.String())
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com", "https://example.com"},
		{"/post/hooks", "/post/hooks"},
		{"#top", "#top"},
		{"mailto:a@b.c", "mailto:a@b.c"},
		{"javascript:alert(1)", ""},
		{"example.com", ""},
		{"  ", ""},
	}
	for _, tt := range tests {
		if got := safeURL(tt.input); got != tt.expected {
			t.Errorf("safeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
