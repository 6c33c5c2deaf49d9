package spacetraveling

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"gopkg.in/yaml.v3"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

// FrontMatter is the YAML header of an exported post.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle,omitempty"`
	Author      string `yaml:"author,omitempty"`
	Date        string `yaml:"date,omitempty"`
	Updated     string `yaml:"updated,omitempty"`
	ReadingTime string `yaml:"reading_time"`
	Banner      string `yaml:"banner,omitempty"`
}

// Export writes every post to dir as <uid>.md: YAML front matter followed by
// the content converted to Markdown. It returns the number of posts written.
func (a *App) Export(ctx context.Context, dir string) (int, error) {
	posts, err := a.Cache.AllPosts(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch posts: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	for i, post := range posts {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := prismic.ValidateUID(post.UID); err != nil {
			return i, fmt.Errorf("export: %w", err)
		}
		doc, err := a.MarkdownPost(post)
		if err != nil {
			return i, err
		}
		if err := os.WriteFile(filepath.Join(dir, post.UID+".md"), doc, 0o644); err != nil {
			return i, fmt.Errorf("write %s: %w", post.UID, err)
		}
	}
	return len(posts), nil
}

// MarkdownPost renders post as a Markdown document with YAML front matter.
// Each content block becomes a "## heading" section.
func (a *App) MarkdownPost(post content.Post) ([]byte, error) {
	fm := FrontMatter{
		Title:       post.Title,
		Subtitle:    post.Subtitle,
		Author:      post.Author,
		ReadingTime: a.ReadingTime(post),
		Banner:      post.Banner.URL,
	}
	if post.FirstPublicationDate != nil {
		fm.Date = post.FirstPublicationDate.In(a.Config.Location).Format(time.RFC3339)
	}
	if post.LastPublicationDate != nil {
		fm.Updated = post.LastPublicationDate.In(a.Config.Location).Format(time.RFC3339)
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("encode front matter of %s: %w", post.UID, err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n")
	for _, block := range post.Content {
		buf.WriteString("\n")
		if block.Heading != "" {
			buf.WriteString("## " + block.Heading + "\n\n")
		}
		md, err := htmltomarkdown.ConvertString(richtext.AsHTML(block.Body))
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", post.UID, err)
		}
		if md != "" {
			buf.WriteString(md)
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}
