package spacetraveling

import (
	"html/template"
	"strings"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/richtext"
	"github.com/eringen/spacetraveling/views"
)

// homePage builds the list view for pages[0..n-1]; pages holds at least n
// entries.
func (a *App) homePage(pages []content.PostPagination, n int) views.HomePage {
	var posts []views.PostSummary
	for _, p := range pages[:n] {
		posts = append(posts, a.summaries(p.Results)...)
	}
	hp := views.HomePage{
		Site: a.site(),
		Meta: views.PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL, PagePath(n)),
			OGType:      "website",
		},
		JSONLD: template.JS(WebsiteJsonLD(a.Config)),
		Posts:  posts,
		Page:   n,
	}
	if pages[n-1].HasNext() {
		hp.NextURL = PagePath(n + 1)
		hp.PartialURL = partialPath(n + 1)
	}
	return hp
}

// partialPage builds the list view holding only page n.
func (a *App) partialPage(page content.PostPagination, n int) views.HomePage {
	hp := views.HomePage{Site: a.site(), Posts: a.summaries(page.Results), Page: n}
	if page.HasNext() {
		hp.NextURL = PagePath(n + 1)
		hp.PartialURL = partialPath(n + 1)
	}
	return hp
}

// partialPath is the URL the server answers with the posts partial of page n.
func partialPath(n int) string {
	return PagePath(n) + "?partial=posts"
}

func (a *App) summaries(posts []content.Post) []views.PostSummary {
	out := make([]views.PostSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, views.PostSummary{
			UID:      p.UID,
			URL:      PostPath(p.UID),
			Title:    p.Title,
			Subtitle: p.Subtitle,
			Author:   p.Author,
			Date:     FormatDate(p.FirstPublicationDate, a.Config.Location),
		})
	}
	return out
}

// postPage builds the detail view. The reading time and date are computed
// here so templates only print fields.
func (a *App) postPage(post content.Post, preview bool) views.PostPage {
	pp := views.PostPage{
		Site: a.site(),
		Meta: views.PageMeta{
			Title:       post.Title + " | " + a.Config.Name,
			Description: Describe(post),
			URL:         BuildURL(a.Config.URL, "post", post.UID),
			OGType:      "article",
			Image:       absoluteURL(a.Config.URL, post.Banner.URL),
		},
		JSONLD:      template.JS(BlogPostingJsonLD(post, a.Config)),
		UID:         post.UID,
		Title:       post.Title,
		Author:      post.Author,
		Date:        FormatDate(post.FirstPublicationDate, a.Config.Location),
		ReadingTime: a.ReadingTime(post),
		BannerURL:   post.Banner.URL,
		BannerAlt:   post.Banner.Alt,
		Preview:     preview,
	}
	if pp.BannerAlt == "" {
		pp.BannerAlt = "banner"
	}
	for _, block := range post.Content {
		pp.Sections = append(pp.Sections, views.Section{
			Heading: block.Heading,
			HTML:    template.HTML(richtext.AsHTML(block.Body)),
		})
	}
	return pp
}

// absoluteURL resolves a site-relative path such as a localized banner
// against the site URL; absolute URLs pass through.
func absoluteURL(base, ref string) string {
	if !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return ref
	}
	return strings.TrimSuffix(BuildURL(base), "/") + ref
}

// ReadingTime returns the estimated reading time of post, e.g. "4 min".
func (a *App) ReadingTime(post content.Post) string {
	return a.estimator.Estimate(post.Content)
}
