// Package prismic is a small client for the Prismic v2 content API. It
// fetches post documents, follows next_page cursors and converts documents
// to validated content.Post values.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/eringen/spacetraveling/content"
)

var (
	// ErrNotFound is returned when no document matches a lookup.
	ErrNotFound = errors.New("prismic: document not found")
	// ErrForeignCursor is returned when a next_page cursor points outside
	// the configured repository.
	ErrForeignCursor = errors.New("prismic: cursor does not belong to this repository")
	// ErrInvalidDocument is returned when a document fails validation.
	ErrInvalidDocument = errors.New("prismic: invalid document")
	// ErrNoMasterRef is returned when the API root lists no master ref.
	ErrNoMasterRef = errors.New("prismic: no master ref")
)

// StatusError reports a non-200 response from the API.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("prismic: %s returned status %d", e.URL, e.Code)
}

// Client talks to one Prismic repository.
type Client struct {
	endpoint   *url.URL
	token      string
	httpClient *http.Client
	pageSize   int
	docType    string
	attempts   uint
	delay      time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithAccessToken sets the token used for private repositories.
func WithAccessToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageSize sets the number of posts per page (default 2).
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithDocumentType sets the custom type queried for posts (default "post").
func WithDocumentType(t string) Option {
	return func(c *Client) {
		if t != "" {
			c.docType = t
		}
	}
}

// WithRetry sets the number of attempts and the initial backoff delay for
// transient failures.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.delay = delay
	}
}

// New returns a Client for the API root endpoint, for example
// "https://spacetraveling.cdn.prismic.io/api/v2".
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(endpoint), "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q must be an absolute http(s) URL", endpoint)
	}
	c := &Client{
		endpoint:   u,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		pageSize:   2,
		docType:    "post",
		attempts:   3,
		delay:      200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PageSize returns the configured page size.
func (c *Client) PageSize() int {
	return c.pageSize
}

// MasterRef returns the ref of the currently published content.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	var root apiRoot
	if err := c.getJSON(ctx, c.withToken(*c.endpoint), &root); err != nil {
		return "", err
	}
	for _, r := range root.Refs {
		if r.IsMasterRef {
			return r.Ref, nil
		}
	}
	return "", ErrNoMasterRef
}

// Query returns the first page of posts, newest first. An empty ref means
// the master ref.
func (c *Client) Query(ctx context.Context, ref string) (content.PostPagination, error) {
	res, err := c.search(ctx, ref, fmt.Sprintf(`[[at(document.type,"%s")]]`, c.docType), c.pageSize)
	if err != nil {
		return content.PostPagination{}, err
	}
	return res.toPagination()
}

// NextPage fetches the page a next_page cursor points to.
func (c *Client) NextPage(ctx context.Context, cursor string) (content.PostPagination, error) {
	u, err := url.Parse(cursor)
	if err != nil {
		return content.PostPagination{}, fmt.Errorf("%w: %v", ErrForeignCursor, err)
	}
	if !strings.EqualFold(u.Host, c.endpoint.Host) || u.Scheme != c.endpoint.Scheme ||
		!strings.HasPrefix(u.Path, c.endpoint.Path+"/") {
		return content.PostPagination{}, ErrForeignCursor
	}
	var res searchResponse
	if err := c.getJSON(ctx, c.withToken(*u), &res); err != nil {
		return content.PostPagination{}, err
	}
	return res.toPagination()
}

// GetByUID returns the post with the given uid.
func (c *Client) GetByUID(ctx context.Context, uid, ref string) (content.Post, error) {
	q := fmt.Sprintf(`[[at(my.%s.uid,"%s")]]`, c.docType, escapeQuery(uid))
	return c.single(ctx, ref, q)
}

// GetByID returns the post with the given document id.
func (c *Client) GetByID(ctx context.Context, id, ref string) (content.Post, error) {
	q := fmt.Sprintf(`[[at(document.id,"%s")]]`, escapeQuery(id))
	return c.single(ctx, ref, q)
}

func (c *Client) single(ctx context.Context, ref, q string) (content.Post, error) {
	res, err := c.search(ctx, ref, q, 1)
	if err != nil {
		return content.Post{}, err
	}
	if len(res.Results) == 0 {
		return content.Post{}, ErrNotFound
	}
	return res.Results[0].toPost()
}

func (c *Client) search(ctx context.Context, ref, q string, pageSize int) (searchResponse, error) {
	if ref == "" {
		var err error
		if ref, err = c.MasterRef(ctx); err != nil {
			return searchResponse{}, err
		}
	}
	u := *c.endpoint
	u.Path += "/documents/search"
	params := url.Values{}
	params.Set("ref", ref)
	params.Set("q", q)
	params.Set("orderings", "[document.first_publication_date desc]")
	params.Set("pageSize", strconv.Itoa(pageSize))
	u.RawQuery = params.Encode()

	var res searchResponse
	if err := c.getJSON(ctx, c.withToken(u), &res); err != nil {
		return searchResponse{}, err
	}
	return res, nil
}

func (c *Client) withToken(u url.URL) string {
	if c.token != "" {
		params := u.Query()
		if params.Get("access_token") == "" {
			params.Set("access_token", c.token)
			u.RawQuery = params.Encode()
		}
	}
	return u.String()
}

// getJSON GETs rawURL and decodes the body into v, retrying network errors,
// 429 and 5xx responses with exponential backoff.
func (c *Client) getJSON(ctx context.Context, rawURL string, v any) error {
	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("prismic: build request: %w", err))
			}
			req.Header.Set("Accept", "application/json")
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("prismic: request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				io.Copy(io.Discard, resp.Body)
				serr := &StatusError{Code: resp.StatusCode, URL: redact(rawURL)}
				if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
					return serr
				}
				return retry.Unrecoverable(serr)
			}
			if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
				return retry.Unrecoverable(fmt.Errorf("prismic: decode response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// redact strips the access token from URLs that end up in errors and logs.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	params := u.Query()
	if params.Has("access_token") {
		params.Set("access_token", "redacted")
		u.RawQuery = params.Encode()
	}
	return u.String()
}

func escapeQuery(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
