// Package spacetraveling is a blog front-end for posts kept in a Prismic
// repository. It serves the post list and post pages over HTTP, and can
// also render the whole site to static files.
//
// Content is read through a Source, cached for SiteConfig.Revalidate and
// snapshotted to SQLite so pages keep rendering while the content API is
// unreachable.
package spacetraveling

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/readtime"
	"github.com/eringen/spacetraveling/richtext"
	"github.com/eringen/spacetraveling/views"
)

// App is the central spacetraveling application. It wires together the
// content source, snapshot store, cache, handlers, middleware and views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Source Source
	Store  *Store
	Cache  *PostCache
	Views  ViewFuncs

	estimator      *readtime.Estimator
	previewLimiter *RateLimiter
	customRoutes   []func(*App)
	staticDir      string
	ownsStore      bool
}

// New creates an App reading posts from src.
func New(cfg SiteConfig, src Source, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Source:    src,
		Views:     DefaultViews(),
		estimator: readtime.New(richtext.Renderer{}),
		staticDir: "public",
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Open initializes the snapshot store and the post cache. Build and Export
// only need Open; Start calls it as part of Init.
func (a *App) Open() error {
	if a.Source == nil {
		return fmt.Errorf("spacetraveling: a content Source is required")
	}
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("spacetraveling: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}
	if a.Cache == nil {
		a.Cache = NewPostCache(a.Source, a.Store, a.Config.Revalidate)
		if ps, ok := a.Source.(interface{ PageSize() int }); ok {
			a.Cache.pageSize = ps.PageSize()
		}
	}
	return nil
}

// Init prepares everything Start needs without listening, which lets tests
// drive a.Echo directly.
func (a *App) Init() error {
	if err := a.Open(); err != nil {
		return err
	}
	a.previewLimiter = NewRateLimiter(10, time.Minute)

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the App and serves HTTP on Config.Addr.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.GET("/public/*", a.handleAsset)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)

	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/", a.handleHome)
	e.GET("/page/:n/", a.handlePage)
	e.GET("/post", handlePostIndexRedirect)
	e.GET("/post/:slug/", a.handlePost)

	if a.previewEnabled() {
		e.GET("/api/preview", a.handlePreview)
		e.GET("/api/exit-preview", a.handleExitPreview)
	}
}

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.previewLimiter != nil {
		a.previewLimiter.Stop()
	}
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}
