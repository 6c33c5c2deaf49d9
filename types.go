package spacetraveling

import (
	"context"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/views"
)

// Source is the content API the site reads posts from. *prismic.Client
// satisfies it. An empty ref means the published content.
type Source interface {
	Query(ctx context.Context, ref string) (content.PostPagination, error)
	NextPage(ctx context.Context, cursor string) (content.PostPagination, error)
	GetByUID(ctx context.Context, uid, ref string) (content.Post, error)
	GetByID(ctx context.Context, id, ref string) (content.Post, error)
}

// ViewFuncs holds the templ components the App renders pages with. Replace
// any of them with WithViews to customize the markup.
type ViewFuncs struct {
	Home         func(page views.HomePage) templ.Component
	PostsPartial func(page views.HomePage) templ.Component
	Post         func(page views.PostPage) templ.Component
	NotFound     func(site views.Site) templ.Component
	ServerError  func(site views.Site) templ.Component
}

// DefaultViews returns the built-in templates.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Home:         views.Home,
		PostsPartial: views.PostsPartial,
		Post:         views.Post,
		NotFound:     views.NotFound,
		ServerError:  views.ServerError,
	}
}
