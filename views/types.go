package views

import "html/template"

// Site carries site-wide settings into every page.
type Site struct {
	Name        string
	URL         string
	Description string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image
}

// PostSummary is one entry of the post list.
type PostSummary struct {
	UID      string
	URL      string
	Title    string
	Subtitle string
	Author   string
	Date     string
}

// HomePage is the post list. Posts holds every post up to Page; NextURL is
// empty on the last page. PartialURL is where htmx fetches the next page's
// entries from.
type HomePage struct {
	Site       Site
	Meta       PageMeta
	JSONLD     template.JS
	Posts      []PostSummary
	Page       int
	NextURL    string
	PartialURL string
}

// Section is one rendered content block of a post.
type Section struct {
	Heading string
	HTML    template.HTML
}

// PostPage is a single post, ready to render.
type PostPage struct {
	Site        Site
	Meta        PageMeta
	JSONLD      template.JS
	UID         string
	Title       string
	Author      string
	Date        string
	ReadingTime string
	BannerURL   string
	BannerAlt   string
	Sections    []Section
	Preview     bool
}

type statusPage struct {
	Site    Site
	Meta    PageMeta
	JSONLD  template.JS
	Heading string
	Message string
}
