package prismic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
)

// Wire types mirror the content API's JSON. Nullable fields are pointers and
// get normalized by toPost.

type apiRoot struct {
	Refs []struct {
		ID          string `json:"id"`
		Ref         string `json:"ref"`
		Label       string `json:"label"`
		IsMasterRef bool   `json:"isMasterRef"`
	} `json:"refs"`
}

type searchResponse struct {
	Page             int           `json:"page"`
	ResultsPerPage   int           `json:"results_per_page"`
	TotalResultsSize int           `json:"total_results_size"`
	TotalPages       int           `json:"total_pages"`
	NextPage         *string       `json:"next_page"`
	PrevPage         *string       `json:"prev_page"`
	Results          []apiDocument `json:"results"`
}

type apiDocument struct {
	ID                   string   `json:"id"`
	UID                  *string  `json:"uid"`
	Type                 string   `json:"type"`
	FirstPublicationDate *string  `json:"first_publication_date"`
	LastPublicationDate  *string  `json:"last_publication_date"`
	Data                 postData `json:"data"`
}

type postData struct {
	Title    json.RawMessage `json:"title"`
	Subtitle *string         `json:"subtitle"`
	Author   *string         `json:"author"`
	Banner   *struct {
		URL *string `json:"url"`
		Alt *string `json:"alt"`
	} `json:"banner"`
	Content []struct {
		Heading *string    `json:"heading"`
		Body    []apiBlock `json:"body"`
	} `json:"content"`
}

type apiBlock struct {
	Type   string    `json:"type"`
	Text   *string   `json:"text"`
	Spans  []apiSpan `json:"spans"`
	URL    *string   `json:"url"`
	Alt    *string   `json:"alt"`
	OEmbed *struct {
		EmbedURL string `json:"embed_url"`
		HTML     string `json:"html"`
	} `json:"oembed"`
}

type apiSpan struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
	Data  *struct {
		URL   string `json:"url"`
		Label string `json:"label"`
	} `json:"data"`
}

// toPagination converts a search response, validating every document.
func (r searchResponse) toPagination() (content.PostPagination, error) {
	page := content.PostPagination{
		Results:  make([]content.Post, 0, len(r.Results)),
		NextPage: str(r.NextPage),
	}
	for _, d := range r.Results {
		p, err := d.toPost()
		if err != nil {
			return content.PostPagination{}, err
		}
		page.Results = append(page.Results, p)
	}
	return page, nil
}

func (d apiDocument) toPost() (content.Post, error) {
	uid := str(d.UID)
	if err := ValidateUID(uid); err != nil {
		return content.Post{}, fmt.Errorf("%w: document %q: %v", ErrInvalidDocument, d.ID, err)
	}
	title, err := decodeTitle(d.Data.Title)
	if err != nil {
		return content.Post{}, fmt.Errorf("%w: document %q: %v", ErrInvalidDocument, uid, err)
	}
	first, err := parseTime(d.FirstPublicationDate)
	if err != nil {
		return content.Post{}, fmt.Errorf("%w: document %q: %v", ErrInvalidDocument, uid, err)
	}
	last, err := parseTime(d.LastPublicationDate)
	if err != nil {
		return content.Post{}, fmt.Errorf("%w: document %q: %v", ErrInvalidDocument, uid, err)
	}

	post := content.Post{
		UID:                  uid,
		ID:                   d.ID,
		FirstPublicationDate: first,
		LastPublicationDate:  last,
		Title:                title,
		Subtitle:             str(d.Data.Subtitle),
		Author:               str(d.Data.Author),
		Content:              make([]content.ContentBlock, 0, len(d.Data.Content)),
	}
	if d.Data.Banner != nil {
		post.Banner = content.Banner{URL: str(d.Data.Banner.URL), Alt: str(d.Data.Banner.Alt)}
	}
	for _, c := range d.Data.Content {
		post.Content = append(post.Content, content.ContentBlock{
			Heading: str(c.Heading),
			Body:    toSpans(c.Body),
		})
	}
	return post, nil
}

// decodeTitle accepts either a plain string or a rich-text array.
func decodeTitle(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var blocks []apiBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return "", errors.New("title is neither text nor rich text")
	}
	return richtext.AsText(toSpans(blocks)), nil
}

func toSpans(blocks []apiBlock) []content.RichTextSpan {
	out := make([]content.RichTextSpan, 0, len(blocks))
	for _, b := range blocks {
		span := content.RichTextSpan{
			Type: b.Type,
			Text: str(b.Text),
			URL:  str(b.URL),
			Alt:  str(b.Alt),
		}
		if b.OEmbed != nil {
			span.EmbedURL = b.OEmbed.EmbedURL
			span.EmbedHTML = b.OEmbed.HTML
		}
		for _, s := range b.Spans {
			m := content.Mark{Start: s.Start, End: s.End, Type: s.Type}
			if s.Data != nil {
				m.URL = s.Data.URL
				m.Label = s.Data.Label
			}
			span.Spans = append(span.Spans, m)
		}
		out = append(out, span)
	}
	return out
}

// The API emits offsets without a colon ("+0000").
var timeLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
}

func parseTime(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid timestamp %q", *s)
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ValidateUID reports whether uid can name a post. UIDs end up in URLs and
// file names, so path separators, dot segments and control characters are
// rejected.
func ValidateUID(uid string) error {
	switch {
	case uid == "":
		return errors.New("empty uid")
	case uid == "." || strings.Contains(uid, ".."):
		return fmt.Errorf("uid %q contains a dot segment", uid)
	case strings.ContainsAny(uid, `/\`):
		return fmt.Errorf("uid %q contains a path separator", uid)
	}
	for _, r := range uid {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return fmt.Errorf("uid %q contains whitespace or control characters", uid)
		}
	}
	return nil
}
