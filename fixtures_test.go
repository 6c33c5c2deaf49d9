package spacetraveling

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/prismic"
)

var errSourceDown = errors.New("content api unreachable")

// fakeSource serves a fixed page chain. Cursors are "c2", "c3", ...
type fakeSource struct {
	mu       sync.Mutex
	pages    []content.PostPagination
	drafts   map[string]content.Post // returned for any non-empty ref
	fail     bool
	queries  int
	nexts    int
	uidCalls int
	refs     []string
}

func newFakeSource(pageSize int, posts ...content.Post) *fakeSource {
	src := &fakeSource{drafts: map[string]content.Post{}}
	for i := 0; i < len(posts); i += pageSize {
		end := min(i+pageSize, len(posts))
		page := content.PostPagination{Results: posts[i:end]}
		if end < len(posts) {
			page.NextPage = "c" + strconv.Itoa(len(src.pages)+2)
		}
		src.pages = append(src.pages, page)
	}
	if len(src.pages) == 0 {
		src.pages = []content.PostPagination{{}}
	}
	return src
}

func (f *fakeSource) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *fakeSource) Query(ctx context.Context, ref string) (content.PostPagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.fail {
		return content.PostPagination{}, errSourceDown
	}
	return f.pages[0], nil
}

func (f *fakeSource) NextPage(ctx context.Context, cursor string) (content.PostPagination, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nexts++
	if f.fail {
		return content.PostPagination{}, errSourceDown
	}
	for _, p := range f.pages {
		if p.NextPage == cursor {
			n, _ := strconv.Atoi(cursor[1:])
			return f.pages[n-1], nil
		}
	}
	return content.PostPagination{}, prismic.ErrForeignCursor
}

func (f *fakeSource) GetByUID(ctx context.Context, uid, ref string) (content.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uidCalls++
	f.refs = append(f.refs, ref)
	if f.fail {
		return content.Post{}, errSourceDown
	}
	if ref != "" {
		if d, ok := f.drafts[uid]; ok {
			return d, nil
		}
	}
	for _, p := range f.pages {
		for _, post := range p.Results {
			if post.UID == uid {
				return post, nil
			}
		}
	}
	return content.Post{}, prismic.ErrNotFound
}

func (f *fakeSource) GetByID(ctx context.Context, id, ref string) (content.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.drafts {
		if d.ID == id {
			return d, nil
		}
	}
	for _, p := range f.pages {
		for _, post := range p.Results {
			if post.ID == id {
				return post, nil
			}
		}
	}
	return content.Post{}, prismic.ErrNotFound
}

func (f *fakeSource) counts() (queries, nexts, uidCalls int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries, f.nexts, f.uidCalls
}

func testTime(t *testing.T, s string) *time.Time {
	t.Helper()
	tm, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return &tm
}

// testPost builds a post with one content block of 8 words in total, which
// reads in "4 min".
func testPost(t *testing.T, uid, title, published string) content.Post {
	t.Helper()
	return content.Post{
		UID:                  uid,
		ID:                   "doc-" + uid,
		FirstPublicationDate: testTime(t, published),
		Title:                title,
		Subtitle:             "Pensando em sincronização em vez de ciclos de vida",
		Author:               "Joseph Oliveira",
		Banner:               content.Banner{URL: "https://images.prismic.io/" + uid + ".png"},
		Content: []content.ContentBlock{{
			Heading: "Proin et varius",
			Body: []content.RichTextSpan{{
				Type:  content.TypeParagraph,
				Text:  "Lorem ipsum dolor sit amet",
				Spans: []content.Mark{{Start: 0, End: 5, Type: content.MarkStrong}},
			}},
		}},
	}
}

// threePosts returns posts newest first.
func threePosts(t *testing.T) []content.Post {
	t.Helper()
	return []content.Post{
		testPost(t, "como-utilizar-hooks", "Como utilizar Hooks", "2021-03-15T19:25:28Z"),
		testPost(t, "criando-um-app-cra-do-zero", "Criando um app CRA do zero", "2021-03-10T12:00:00Z"),
		testPost(t, "primeiro-post", "Primeiro post", "2021-02-01T08:30:00Z"),
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// newTestApp returns an initialized App serving from src.
func newTestApp(t *testing.T, src Source, cfg SiteConfig) *App {
	t.Helper()
	if cfg.URL == "" {
		cfg.URL = "https://blog.example.com"
	}
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")
	a := New(cfg, src, WithStaticDir(t.TempDir()))
	if err := a.Init(); err != nil {
		t.Fatalf("init app: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func doRequest(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(a *App, target string) *httptest.ResponseRecorder {
	return doRequest(a, httptest.NewRequest(http.MethodGet, target, nil))
}
