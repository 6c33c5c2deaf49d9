package spacetraveling

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	return a.renderList(c, 1)
}

func (a *App) handlePage(c echo.Context) error {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 {
		return echo.ErrNotFound
	}
	if n == 1 {
		return c.Redirect(http.StatusMovedPermanently, "/")
	}
	return a.renderList(c, n)
}

// renderList renders posts of pages 1..n, or only page n for htmx requests
// asking for the posts partial.
func (a *App) renderList(c echo.Context, n int) error {
	pages, err := a.Cache.Pages(c.Request().Context(), n)
	if err != nil {
		return err
	}
	if len(pages) < n {
		return echo.ErrNotFound
	}
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "posts" {
		return Render(c, a.Views.PostsPartial(a.partialPage(pages[n-1], n)))
	}
	return Render(c, a.Views.Home(a.homePage(pages, n)))
}

func (a *App) handlePost(c echo.Context) error {
	slug := c.Param("slug")
	ctx := c.Request().Context()

	if ref := a.previewRef(c); ref != "" {
		post, err := a.Source.GetByUID(ctx, slug, ref)
		if err != nil {
			if isNotFound(err) {
				return echo.ErrNotFound
			}
			return err
		}
		return Render(c, a.Views.Post(a.postPage(post, true)))
	}

	post, err := a.Cache.GetPost(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return echo.ErrNotFound
		}
		return err
	}
	return Render(c, a.Views.Post(a.postPage(post, false)))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeSitemap(c.Response(), posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.AllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return a.writeRSS(c.Response(), posts)
}

func handlePostIndexRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

// handleAsset serves /public/* from the static dir, falling back to the
// embedded defaults.
func (a *App) handleAsset(c echo.Context) error {
	name := path.Clean("/" + c.Param("*"))[1:]
	if name == "" {
		return echo.ErrNotFound
	}
	return a.serveAsset(c, name)
}

func (a *App) handleFavicon(c echo.Context) error {
	return a.serveAsset(c, "favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body, err := a.robotsTxt()
	if err != nil {
		return echo.ErrNotFound
	}
	return c.String(http.StatusOK, body)
}

// robotsTxt is robots.txt with the sitemap location appended.
func (a *App) robotsTxt() (string, error) {
	data, err := a.readAsset("robots.txt")
	if err != nil {
		return "", err
	}
	sitemap := strings.TrimSuffix(BuildURL(a.Config.URL), "/") + "/sitemap.xml"
	return strings.TrimRight(string(data), "\n") + "\nSitemap: " + sitemap + "\n", nil
}

func (a *App) serveAsset(c echo.Context, name string) error {
	local := filepath.Join(a.staticDir, filepath.FromSlash(name))
	if st, err := os.Stat(local); err == nil && !st.IsDir() {
		return c.File(local)
	}
	return echo.StaticFileHandler(name, embeddedFS())(c)
}

// readAsset returns the static dir copy of name, or the embedded default.
func (a *App) readAsset(name string) ([]byte, error) {
	if data, err := os.ReadFile(filepath.Join(a.staticDir, filepath.FromSlash(name))); err == nil {
		return data, nil
	}
	return fs.ReadFile(embeddedFS(), name)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	if isNotFound(err) {
		err = echo.ErrNotFound
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.site()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
