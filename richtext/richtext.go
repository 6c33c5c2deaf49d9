// Package richtext renders Prismic structured text to HTML and plain text.
//
// The HTML output follows the content API's reference serializer: blocks are
// concatenated without separators, text is escaped and newlines become
// "<br />". Word counts taken on this output depend on those details.
package richtext

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/content"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Renderer renders bodies with AsHTML. The zero value is ready to use.
type Renderer struct{}

// AsHTML implements readtime.Renderer.
func (Renderer) AsHTML(body []content.RichTextSpan) string {
	return AsHTML(body)
}

// HTML returns a templ.Component that writes the rendered body.
func HTML(body []content.RichTextSpan) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, AsHTML(body))
		return err
	})
}

// AsHTML returns the HTML representation of body.
func AsHTML(body []content.RichTextSpan) string {
	var buf bytes.Buffer
	Render(&buf, body)
	return buf.String()
}

// Render writes the HTML representation of body to buf.
func Render(buf *bytes.Buffer, body []content.RichTextSpan) {
	list := ""
	flushList := func() {
		if list != "" {
			buf.WriteString("</" + list + ">")
			list = ""
		}
	}

	for _, block := range body {
		switch blockType(block) {
		case content.TypeListItem, content.TypeOListItem:
			want := "ul"
			if block.Type == content.TypeOListItem {
				want = "ol"
			}
			if list != want {
				flushList()
				buf.WriteString("<" + want + ">")
				list = want
			}
			buf.WriteString("<li>")
			writeInline(buf, block.Text, block.Spans)
			buf.WriteString("</li>")
		case content.TypeImage:
			flushList()
			src := safeURL(block.URL)
			if src == "" {
				continue
			}
			buf.WriteString(`<p class="block-img"><img src="` + escaper.Replace(src) + `" alt="` + escaper.Replace(block.Alt) + `" /></p>`)
		case content.TypeEmbed:
			flushList()
			buf.WriteString(`<div data-oembed="` + escaper.Replace(block.EmbedURL) + `">`)
			buf.WriteString(block.EmbedHTML)
			buf.WriteString("</div>")
		default:
			flushList()
			tag := blockTag(blockType(block))
			buf.WriteString("<" + tag + ">")
			writeInline(buf, block.Text, block.Spans)
			buf.WriteString("</" + tag + ">")
		}
	}
	flushList()
}

// AsText returns the plain text of body, one space between blocks.
func AsText(body []content.RichTextSpan) string {
	parts := make([]string, len(body))
	for i, b := range body {
		parts[i] = b.Text
	}
	return strings.Join(parts, " ")
}

func blockType(b content.RichTextSpan) string {
	if b.Type == "" {
		return content.TypeParagraph
	}
	return b.Type
}

func blockTag(t string) string {
	switch t {
	case content.TypeHeading1:
		return "h1"
	case content.TypeHeading2:
		return "h2"
	case content.TypeHeading3:
		return "h3"
	case content.TypeHeading4:
		return "h4"
	case content.TypeHeading5:
		return "h5"
	case content.TypeHeading6:
		return "h6"
	case content.TypePreformatted:
		return "pre"
	default:
		return "p"
	}
}

// writeInline writes text with its marks applied. Overlapping marks are split
// so the emitted tags always nest.
func writeInline(buf *bytes.Buffer, text string, marks []content.Mark) {
	runes := []rune(text)
	n := len(runes)

	valid := make([]content.Mark, 0, len(marks))
	for _, m := range marks {
		if m.Start < 0 {
			m.Start = 0
		}
		if m.End > n {
			m.End = n
		}
		if m.Start >= m.End {
			continue
		}
		valid = append(valid, m)
	}
	if len(valid) == 0 {
		buf.WriteString(escapeText(text))
		return
	}
	sort.SliceStable(valid, func(i, j int) bool {
		if valid[i].Start != valid[j].Start {
			return valid[i].Start < valid[j].Start
		}
		return valid[i].End > valid[j].End
	})

	cuts := map[int]struct{}{0: {}, n: {}}
	for _, m := range valid {
		cuts[m.Start] = struct{}{}
		cuts[m.End] = struct{}{}
	}
	bounds := make([]int, 0, len(cuts))
	for c := range cuts {
		bounds = append(bounds, c)
	}
	sort.Ints(bounds)

	var stack []int // indexes into valid
	for i := 0; i+1 < len(bounds); i++ {
		from, to := bounds[i], bounds[i+1]
		var active []int
		for idx, m := range valid {
			if m.Start <= from && m.End >= to {
				active = append(active, idx)
			}
		}
		keep := 0
		for keep < len(stack) && keep < len(active) && stack[keep] == active[keep] {
			keep++
		}
		for len(stack) > keep {
			buf.WriteString(closeTag(valid[stack[len(stack)-1]]))
			stack = stack[:len(stack)-1]
		}
		for _, idx := range active[keep:] {
			buf.WriteString(openTag(valid[idx]))
			stack = append(stack, idx)
		}
		buf.WriteString(escapeText(string(runes[from:to])))
	}
	for len(stack) > 0 {
		buf.WriteString(closeTag(valid[stack[len(stack)-1]]))
		stack = stack[:len(stack)-1]
	}
}

func openTag(m content.Mark) string {
	switch m.Type {
	case content.MarkStrong:
		return "<strong>"
	case content.MarkEm:
		return "<em>"
	case content.MarkHyperlink:
		href := safeURL(m.URL)
		if href == "" {
			return "<a>"
		}
		return `<a href="` + escaper.Replace(href) + `">`
	case content.MarkLabel:
		return `<span class="` + escaper.Replace(m.Label) + `">`
	default:
		return "<span>"
	}
}

func closeTag(m content.Mark) string {
	switch m.Type {
	case content.MarkStrong:
		return "</strong>"
	case content.MarkEm:
		return "</em>"
	case content.MarkHyperlink:
		return "</a>"
	default:
		return "</span>"
	}
}

func escapeText(s string) string {
	return strings.ReplaceAll(escaper.Replace(s), "\n", "<br />")
}

// safeURL returns raw if it is a relative path, a fragment or uses an allowed
// scheme, and "" otherwise.
func safeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return val
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return val
	default:
		return ""
	}
}
