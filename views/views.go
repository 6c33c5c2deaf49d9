// Package views holds the site's HTML templates as templ components.
package views

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"
)

const layoutTmpl = `{{define "layout"}}<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Meta.Title}}</title>
{{with .Meta.Description}}<meta name="description" content="{{.}}">
{{end}}<link rel="canonical" href="{{.Meta.URL}}">
<meta property="og:title" content="{{.Meta.Title}}">
<meta property="og:type" content="{{.Meta.OGType}}">
<meta property="og:url" content="{{.Meta.URL}}">
{{with .Meta.Image}}<meta property="og:image" content="{{.}}">
{{end}}<link rel="alternate" type="application/rss+xml" title="{{.Site.Name}}" href="/feed.xml">
<link rel="stylesheet" href="/public/styles.css">
<script src="https://unpkg.com/htmx.org@2.0.4" defer></script>
{{with .JSONLD}}<script type="application/ld+json">{{.}}</script>
{{end}}</head>
<body>
<header class="header"><a href="/"><img src="/public/logo.svg" alt="logo"></a></header>
{{template "main" .}}
</body>
</html>
{{end}}`

const homeTmpl = `{{define "main"}}<main class="container">
<div class="posts">
{{template "posts" .}}
</div>
</main>{{end}}
{{define "posts"}}{{range .Posts}}<a class="post" href="{{.URL}}">
<h2>{{.Title}}</h2>
<p>{{.Subtitle}}</p>
<div class="post-details">{{with .Date}}<p><time>{{.}}</time></p>{{end}}<p><span>{{.Author}}</span></p></div>
</a>
{{end}}{{with .NextURL}}<a class="load-more" href="{{.}}" hx-get="{{$.PartialURL}}" hx-swap="outerHTML" hx-push-url="{{.}}">Carregar mais posts</a>
{{end}}{{end}}`

const postTmpl = `{{define "main"}}{{if .Preview}}<aside class="preview">Modo preview <a href="/api/exit-preview">Sair do modo Preview</a></aside>
{{end}}<main>
{{with .BannerURL}}<div><img class="banner" src="{{.}}" alt="{{$.BannerAlt}}"></div>
{{end}}<article class="container post">
<h1>{{.Title}}</h1>
<div class="post-details">{{with .Date}}<p><time>{{.}}</time></p>{{end}}<p><span>{{.ReadingTime}}</span></p><p><span>{{.Author}}</span></p></div>
<section class="content">
{{range .Sections}}<div>
<h2>{{.Heading}}</h2>
<div class="box-content">{{.HTML}}</div>
</div>
{{end}}</section>
</article>
</main>{{end}}`

const statusTmpl = `{{define "main"}}<main class="container status">
<h1>{{.Heading}}</h1>
<p>{{.Message}}</p>
<p><a href="/">Voltar para o início</a></p>
</main>{{end}}`

var (
	homeT   = page(homeTmpl)
	postT   = page(postTmpl)
	statusT = page(statusTmpl)
)

func page(body string) *template.Template {
	t := template.Must(template.New("layout").Parse(layoutTmpl))
	return template.Must(t.Parse(body))
}

func component(t *template.Template, name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return t.ExecuteTemplate(w, name, data)
	})
}

// Home renders the full post list page.
func Home(p HomePage) templ.Component {
	return component(homeT, "layout", p)
}

// PostsPartial renders only the list entries and the load-more link, for
// appending the next page in place.
func PostsPartial(p HomePage) templ.Component {
	return component(homeT, "posts", p)
}

// Post renders a single post page.
func Post(p PostPage) templ.Component {
	return component(postT, "layout", p)
}

// NotFound renders the 404 page.
func NotFound(site Site) templ.Component {
	return component(statusT, "layout", statusPage{
		Site:    site,
		Meta:    PageMeta{Title: "Página não encontrada | " + site.Name, URL: site.URL, OGType: "website"},
		Heading: "Página não encontrada",
		Message: "O post que você procura não existe ou foi removido.",
	})
}

// ServerError renders the 500 page.
func ServerError(site Site) templ.Component {
	return component(statusT, "layout", statusPage{
		Site:    site,
		Meta:    PageMeta{Title: "Erro | " + site.Name, URL: site.URL, OGType: "website"},
		Heading: "Algo deu errado",
		Message: "Não foi possível carregar esta página. Tente novamente em instantes.",
	})
}
