// Package content defines the validated document types shared by the content
// client, the renderers and the site. Values are built once per request or
// build and treated as immutable afterwards.
package content

import "time"

// Block types understood by the rich-text renderer.
const (
	TypeParagraph    = "paragraph"
	TypePreformatted = "preformatted"
	TypeHeading1     = "heading1"
	TypeHeading2     = "heading2"
	TypeHeading3     = "heading3"
	TypeHeading4     = "heading4"
	TypeHeading5     = "heading5"
	TypeHeading6     = "heading6"
	TypeListItem     = "list-item"
	TypeOListItem    = "o-list-item"
	TypeImage        = "image"
	TypeEmbed        = "embed"
)

// Inline mark types.
const (
	MarkStrong    = "strong"
	MarkEm        = "em"
	MarkHyperlink = "hyperlink"
	MarkLabel     = "label"
)

// Post is a single blog post as delivered by the content API.
type Post struct {
	UID                  string
	ID                   string
	FirstPublicationDate *time.Time
	LastPublicationDate  *time.Time
	Title                string
	Subtitle             string
	Author               string
	Banner               Banner
	Content              []ContentBlock
}

// Banner is the post's header image.
type Banner struct {
	URL string
	Alt string
}

// ContentBlock is one section of a post: a plain heading and a rich-text body.
type ContentBlock struct {
	Heading string
	Body    []RichTextSpan
}

// RichTextSpan is one block of rich text. Text is never nil; an absent value
// is the empty string. Type defaults to paragraph when empty.
type RichTextSpan struct {
	Type  string
	Text  string
	Spans []Mark

	// Image blocks.
	URL string
	Alt string

	// Embed blocks.
	EmbedHTML string
	EmbedURL  string
}

// Mark is an inline formatting range over the runes of RichTextSpan.Text.
// End is exclusive.
type Mark struct {
	Start int
	End   int
	Type  string
	URL   string // hyperlink target
	Label string // label name
}

// PostPagination is one page of posts plus the cursor to the next page.
// NextPage is empty when there are no more pages.
type PostPagination struct {
	Results  []Post
	NextPage string
}

// HasNext reports whether another page can be requested.
func (p PostPagination) HasNext() bool {
	return p.NextPage != ""
}
