package spacetraveling

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/prismic"
)

// bannerWorkers bounds concurrent banner downloads during a build.
const bannerWorkers = 4

// BuildReport summarizes a static build.
type BuildReport struct {
	Pages   int   // list pages written
	Posts   int   // post pages written
	Banners int   // banners localized
	Files   int   // files written in total
	Bytes   int64 // bytes written in total
}

// Build renders the whole site into Config.OutDir: every list page with its
// htmx partial, every post, the 404 page, the feed, the sitemap, robots.txt
// and the static assets. Open must have been called.
func (a *App) Build(ctx context.Context) (BuildReport, error) {
	b := &builder{app: a, out: a.Config.OutDir}
	if err := os.MkdirAll(b.out, 0o755); err != nil {
		return BuildReport{}, fmt.Errorf("create output dir: %w", err)
	}

	pages, err := a.Cache.Pages(ctx, 0)
	if err != nil {
		return BuildReport{}, fmt.Errorf("fetch posts: %w", err)
	}
	for _, p := range pages {
		for _, post := range p.Results {
			if err := prismic.ValidateUID(post.UID); err != nil {
				return BuildReport{}, fmt.Errorf("build: %w", err)
			}
		}
	}

	if a.Config.LocalizeBanners {
		pages, err = b.localizeBanners(ctx, pages)
		if err != nil {
			return b.report, err
		}
	}

	for n := 1; n <= len(pages); n++ {
		if err := b.writeListPage(ctx, pages, n); err != nil {
			return b.report, err
		}
	}

	var posts []content.Post
	for _, p := range pages {
		posts = append(posts, p.Results...)
	}
	for _, post := range posts {
		cmp := a.Views.Post(a.postPage(post, false))
		if err := b.render(ctx, filepath.Join("post", post.UID, "index.html"), cmp); err != nil {
			return b.report, err
		}
		b.report.Posts++
	}

	if err := b.render(ctx, "404.html", a.Views.NotFound(a.site())); err != nil {
		return b.report, err
	}
	if err := b.write("feed.xml", func(w io.Writer) error { return a.writeRSS(w, posts) }); err != nil {
		return b.report, err
	}
	if err := b.write("sitemap.xml", func(w io.Writer) error { return a.writeSitemap(w, posts) }); err != nil {
		return b.report, err
	}
	robots, err := a.robotsTxt()
	if err != nil {
		return b.report, fmt.Errorf("robots.txt: %w", err)
	}
	if err := b.write("robots.txt", func(w io.Writer) error {
		_, err := io.WriteString(w, robots)
		return err
	}); err != nil {
		return b.report, err
	}
	if err := b.copyAssets(); err != nil {
		return b.report, err
	}
	return b.report, nil
}

type builder struct {
	app    *App
	out    string
	report BuildReport
}

// writeListPage writes list page n and the partial htmx loads it from.
func (b *builder) writeListPage(ctx context.Context, pages []content.PostPagination, n int) error {
	a := b.app
	dir := ""
	if n > 1 {
		dir = filepath.Join("page", strconv.Itoa(n))
	}

	hp := a.homePage(pages, n)
	if hp.NextURL != "" {
		hp.PartialURL = hp.NextURL + "posts.html"
	}
	if err := b.render(ctx, filepath.Join(dir, "index.html"), a.Views.Home(hp)); err != nil {
		return err
	}
	if n > 1 {
		pp := a.partialPage(pages[n-1], n)
		if pp.NextURL != "" {
			pp.PartialURL = pp.NextURL + "posts.html"
		}
		if err := b.render(ctx, filepath.Join(dir, "posts.html"), a.Views.PostsPartial(pp)); err != nil {
			return err
		}
	}
	b.report.Pages++
	return nil
}

// localizeBanners downloads every banner into the output dir and returns
// pages whose posts point at the local copies. Posts whose banner fails keep
// the remote URL.
func (b *builder) localizeBanners(ctx context.Context, pages []content.PostPagination) ([]content.PostPagination, error) {
	out := make([]content.PostPagination, len(pages))
	hc := &http.Client{Timeout: 30 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bannerWorkers)
	banners := make([][]Banner, len(pages))
	for i, p := range pages {
		out[i] = content.PostPagination{
			Results:  append([]content.Post(nil), p.Results...),
			NextPage: p.NextPage,
		}
		banners[i] = make([]Banner, len(p.Results))
		for j, post := range p.Results {
			if post.Banner.URL == "" {
				continue
			}
			g.Go(func() error {
				bn, err := localizeBanner(gctx, hc, post.Banner.URL, b.out, post.UID)
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					log.Warnf("spacetraveling: banner of %q: %v", post.UID, err)
					return nil
				}
				banners[i][j] = bn
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range out {
		for j := range out[i].Results {
			bn := banners[i][j]
			if bn.Path == "" {
				continue
			}
			out[i].Results[j].Banner.URL = bn.Path
			b.report.Banners++
			b.report.Files++
			b.report.Bytes += int64(bn.Size)
		}
	}
	return out, nil
}

func (b *builder) render(ctx context.Context, name string, cmp templ.Component) error {
	return b.write(name, func(w io.Writer) error { return renderTo(ctx, w, cmp) })
}

// write creates out/name and fills it with fn, counting the bytes written.
func (b *builder) write(name string, fn func(io.Writer) error) error {
	path := filepath.Join(b.out, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir for %s: %w", name, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	cw := &countingWriter{w: f}
	if err := fn(cw); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	b.report.Files++
	b.report.Bytes += cw.n
	return nil
}

// copyAssets copies the embedded defaults, then the static dir over them,
// into out/public.
func (b *builder) copyAssets() error {
	dest := "public"
	if err := b.copyFS(embeddedFS(), dest); err != nil {
		return err
	}
	if st, err := os.Stat(b.app.staticDir); err == nil && st.IsDir() {
		return b.copyFS(os.DirFS(b.app.staticDir), dest)
	}
	return nil
}

func (b *builder) copyFS(src fs.FS, dest string) error {
	return fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		return b.write(filepath.Join(dest, filepath.FromSlash(p)), func(w io.Writer) error {
			f, err := src.Open(p)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = io.Copy(w, f)
			return err
		})
	})
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
