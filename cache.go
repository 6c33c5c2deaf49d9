package spacetraveling

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/prismic"
)

// ErrNotFound is returned when a requested post or page does not exist.
var ErrNotFound = errors.New("spacetraveling: not found")

// snapshotCursor marks pages rebuilt from the Store; they have no API cursor.
const snapshotCursor = "snapshot:"

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, prismic.ErrNotFound)
}

// PostCache keeps the page chain and individual posts fetched from a Source
// for ttl. Fresh posts are written to the Store; when the Source fails, stale
// entries are served, then the Store snapshot.
type PostCache struct {
	mu       sync.RWMutex
	pages    []content.PostPagination
	fetched  time.Time
	posts    map[string]cachedPost
	ttl      time.Duration
	source   Source
	store    *Store
	pageSize int
	now      func() time.Time
}

type cachedPost struct {
	post    content.Post
	fetched time.Time
}

// NewPostCache creates a PostCache backed by src, snapshotting into store.
func NewPostCache(src Source, store *Store, ttl time.Duration) *PostCache {
	return &PostCache{
		source:   src,
		store:    store,
		ttl:      ttl,
		posts:    make(map[string]cachedPost),
		pageSize: 2,
		now:      time.Now,
	}
}

func (c *PostCache) fresh(t time.Time) bool {
	return c.now().Sub(t) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.pages = nil
	c.posts = make(map[string]cachedPost)
	c.mu.Unlock()
}

// Page returns page n (1-based) of the post list. Pages are fetched by
// following next_page cursors from the first page.
func (c *PostCache) Page(ctx context.Context, n int) (content.PostPagination, error) {
	if n < 1 {
		return content.PostPagination{}, ErrNotFound
	}
	pages, err := c.ensurePages(ctx, n)
	if err != nil {
		return content.PostPagination{}, err
	}
	if len(pages) < n {
		return content.PostPagination{}, ErrNotFound
	}
	return pages[n-1], nil
}

// Pages returns the first n pages; n <= 0 returns every page.
func (c *PostCache) Pages(ctx context.Context, n int) ([]content.PostPagination, error) {
	pages, err := c.ensurePages(ctx, n)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(pages) > n {
		pages = pages[:n]
	}
	return pages, nil
}

// AllPosts returns every post from every page, in list order.
func (c *PostCache) AllPosts(ctx context.Context) ([]content.Post, error) {
	pages, err := c.Pages(ctx, 0)
	if err != nil {
		return nil, err
	}
	var posts []content.Post
	for _, p := range pages {
		posts = append(posts, p.Results...)
	}
	return posts, nil
}

// ensurePages makes sure at least want pages are loaded (all when want <= 0)
// or the chain ended. It tries a read lock first and only takes the write
// lock when it has to fetch.
func (c *PostCache) ensurePages(ctx context.Context, want int) ([]content.PostPagination, error) {
	c.mu.RLock()
	if c.pagesSatisfy(want) {
		pages := c.pages
		c.mu.RUnlock()
		return pages, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pagesSatisfy(want) {
		return c.pages, nil
	}

	pages := c.pages
	if pages == nil || !c.fresh(c.fetched) {
		pages = nil
	}
	fetched, err := c.walk(ctx, pages, want)
	if err != nil {
		if c.pages != nil && pagesCover(c.pages, want) {
			log.Warnf("spacetraveling: content source failed, serving cached pages: %v", err)
			if pages == nil {
				// Stale chain: keep it for another ttl before retrying.
				c.fetched = c.now()
			}
			return c.pages, nil
		}
		snap, serr := c.snapshotPages()
		if serr != nil || len(snap) <= len(c.pages) || !pagesCover(snap, want) {
			// A snapshot no longer than the live chain would end a chain the
			// source says continues.
			return nil, err
		}
		log.Warnf("spacetraveling: content source failed, serving snapshot: %v", err)
		return snap, nil
	}
	if pages == nil {
		c.fetched = c.now()
	}
	c.pages = fetched
	return c.pages, nil
}

func (c *PostCache) pagesSatisfy(want int) bool {
	return c.pages != nil && c.fresh(c.fetched) && pagesCover(c.pages, want)
}

// pagesCover reports whether pages hold want pages (all when want <= 0) or
// the whole chain.
func pagesCover(pages []content.PostPagination, want int) bool {
	if len(pages) == 0 {
		return false
	}
	if !pages[len(pages)-1].HasNext() {
		return true
	}
	return want > 0 && len(pages) >= want
}

// walk extends pages until want pages exist or the chain ends, snapshotting
// every fetched post.
func (c *PostCache) walk(ctx context.Context, pages []content.PostPagination, want int) ([]content.PostPagination, error) {
	out := append([]content.PostPagination(nil), pages...)
	for want <= 0 || len(out) < want {
		var page content.PostPagination
		var err error
		if len(out) == 0 {
			page, err = c.source.Query(ctx, "")
		} else {
			last := out[len(out)-1]
			if !last.HasNext() {
				break
			}
			page, err = c.source.NextPage(ctx, last.NextPage)
		}
		if err != nil {
			return nil, err
		}
		if len(out) == 0 && len(page.Results) > 0 {
			c.pageSize = len(page.Results)
		}
		c.snapshot(page.Results...)
		out = append(out, page)
	}
	return out, nil
}

// snapshotPages rebuilds a page chain from the Store.
func (c *PostCache) snapshotPages() ([]content.PostPagination, error) {
	if c.store == nil {
		return nil, errors.New("no snapshot store")
	}
	posts, err := c.store.ListPosts()
	if err != nil {
		return nil, err
	}
	var pages []content.PostPagination
	for i := 0; i < len(posts); i += c.pageSize {
		end := min(i+c.pageSize, len(posts))
		page := content.PostPagination{Results: posts[i:end]}
		if end < len(posts) {
			page.NextPage = snapshotCursor + strconv.Itoa(len(pages)+2)
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// GetPost returns a single post by uid.
func (c *PostCache) GetPost(ctx context.Context, uid string) (content.Post, error) {
	c.mu.RLock()
	cp, ok := c.posts[uid]
	c.mu.RUnlock()
	if ok && c.fresh(cp.fetched) {
		return cp.post, nil
	}

	post, err := c.source.GetByUID(ctx, uid, "")
	if err != nil {
		if isNotFound(err) {
			return content.Post{}, ErrNotFound
		}
		if ok {
			log.Warnf("spacetraveling: content source failed, serving cached %q: %v", uid, err)
			return cp.post, nil
		}
		if c.store != nil {
			if p, serr := c.store.GetPost(uid); serr == nil {
				log.Warnf("spacetraveling: content source failed, serving snapshot of %q: %v", uid, err)
				return p, nil
			}
		}
		return content.Post{}, err
	}

	c.snapshot(post)
	c.mu.Lock()
	c.posts[uid] = cachedPost{post: post, fetched: c.now()}
	c.mu.Unlock()
	return post, nil
}

func (c *PostCache) snapshot(posts ...content.Post) {
	if c.store == nil || len(posts) == 0 {
		return
	}
	if err := c.store.SavePosts(posts...); err != nil {
		log.Errorf("spacetraveling: snapshot posts: %v", err)
	}
}
