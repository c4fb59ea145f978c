// Package prismic is a small client for the Prismic REST API v2: master
// ref discovery, predicate queries, cursor pagination and single-document
// lookups.
package prismic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const refTTL = 5 * time.Second

// Config configures a Client.
type Config struct {
	Endpoint    string        // repository API root, e.g. https://repo.cdn.prismic.io/api/v2
	AccessToken string        // optional, sent as access_token
	Timeout     time.Duration // per request (default 10s)
	HTTPClient  *http.Client  // overrides Timeout when set
	Logger      zerolog.Logger
}

// Client talks to one Prismic repository.
type Client struct {
	endpoint *url.URL
	token    string
	http     *http.Client
	log      zerolog.Logger

	mu        sync.Mutex
	master    string
	fetchedAt time.Time
}

// Query describes a documents/search call. Zero values are left to the
// API defaults.
type Query struct {
	Predicates []Predicate
	Orderings  string
	PageSize   int
	Page       int
	Lang       string
	Ref        string // empty uses the master ref
}

// New builds a Client. It fails only when the endpoint is not a usable URL.
func New(cfg Config) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.Endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q must be an absolute URL", cfg.Endpoint)
	}
	var hc http.Client
	if cfg.HTTPClient != nil {
		hc = *cfg.HTTPClient
	} else {
		hc.Timeout = cfg.Timeout
		if hc.Timeout == 0 {
			hc.Timeout = 10 * time.Second
		}
	}
	hc.Transport = &loggingRoundTripper{inner: transportOrDefault(hc.Transport), log: cfg.Logger}
	return &Client{
		endpoint: u,
		token:    cfg.AccessToken,
		http:     &hc,
		log:      cfg.Logger,
	}, nil
}

// Ref returns the current master ref, cached for a few seconds.
func (c *Client) Ref(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.master != "" && time.Since(c.fetchedAt) < refTTL {
		ref := c.master
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	u := *c.endpoint
	if c.token != "" {
		u.RawQuery = url.Values{"access_token": {c.token}}.Encode()
	}
	var root apiRoot
	if err := c.getJSON(ctx, u.String(), &root); err != nil {
		return "", err
	}
	for _, r := range root.Refs {
		if r.IsMasterRef {
			c.mu.Lock()
			c.master = r.Ref
			c.fetchedAt = time.Now()
			c.mu.Unlock()
			return r.Ref, nil
		}
	}
	return "", fmt.Errorf("prismic: api root lists no master ref")
}

// Query runs one documents/search request.
func (c *Client) Query(ctx context.Context, q Query) (*Response, error) {
	ref := q.Ref
	if ref == "" {
		var err error
		if ref, err = c.Ref(ctx); err != nil {
			return nil, err
		}
	}
	params := url.Values{"ref": {ref}}
	if len(q.Predicates) > 0 {
		params.Set("q", encodePredicates(q.Predicates))
	}
	if q.Orderings != "" {
		params.Set("orderings", q.Orderings)
	}
	if q.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Lang != "" {
		params.Set("lang", q.Lang)
	}
	if c.token != "" {
		params.Set("access_token", c.token)
	}
	u := *c.endpoint
	u.Path += "/documents/search"
	u.RawQuery = params.Encode()

	var resp Response
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueryAll runs q and follows next_page until it is null. A cursor seen
// twice aborts with ErrCursorLoop.
func (c *Client) QueryAll(ctx context.Context, q Query) ([]Document, error) {
	resp, err := c.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	docs := append([]Document(nil), resp.Results...)
	seen := map[string]bool{}
	for cursor := resp.Cursor(); cursor != ""; cursor = resp.Cursor() {
		if seen[cursor] {
			return nil, fmt.Errorf("%w: %s", ErrCursorLoop, cursor)
		}
		seen[cursor] = true
		if resp, err = c.Next(ctx, cursor); err != nil {
			return nil, err
		}
		docs = append(docs, resp.Results...)
	}
	return docs, nil
}

// Next fetches the page behind a next_page cursor. The cursor must use the
// endpoint's scheme and host. The access token is added when the cursor
// does not carry one.
func (c *Client) Next(ctx context.Context, cursor string) (*Response, error) {
	u, err := url.Parse(cursor)
	if err != nil {
		return nil, fmt.Errorf("prismic: parse cursor: %w", err)
	}
	if !strings.EqualFold(u.Scheme, c.endpoint.Scheme) || !strings.EqualFold(u.Host, c.endpoint.Host) {
		return nil, ErrForeignCursor
	}
	if c.token != "" {
		params := u.Query()
		if !params.Has("access_token") {
			params.Set("access_token", c.token)
			u.RawQuery = params.Encode()
		}
	}
	var resp Response
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByUID returns the document of type typ with the given uid.
func (c *Client) GetByUID(ctx context.Context, typ, uid, ref string) (*Document, error) {
	return c.single(ctx, ref, At("my."+typ+".uid", uid))
}

// GetByID returns the document with the given id.
func (c *Client) GetByID(ctx context.Context, id, ref string) (*Document, error) {
	return c.single(ctx, ref, At("document.id", id))
}

func (c *Client) single(ctx context.Context, ref string, p Predicate) (*Document, error) {
	resp, err := c.Query(ctx, Query{Predicates: []Predicate{p}, PageSize: 1, Ref: ref})
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	doc := resp.Results[0]
	return &doc, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("prismic: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &APIError{Status: resp.StatusCode, URL: redact(req.URL), Body: string(b)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("prismic: decode %s: %w", redact(req.URL), err)
	}
	return nil
}

// redact drops access_token from URLs that end up in logs and errors.
func redact(u *url.URL) string {
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "redacted")
		c := *u
		c.RawQuery = q.Encode()
		return c.String()
	}
	return u.String()
}

func transportOrDefault(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		return http.DefaultTransport
	}
	return rt
}

// loggingRoundTripper logs every outbound API call.
type loggingRoundTripper struct {
	inner http.RoundTripper
	log   zerolog.Logger
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := l.inner.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		l.log.Error().Err(err).
			Str("method", req.Method).
			Str("url", redact(req.URL)).
			Dur("duration", duration).
			Msg("prismic request failed")
		return nil, err
	}
	l.log.Debug().
		Str("method", req.Method).
		Str("url", redact(req.URL)).
		Int("status", resp.StatusCode).
		Dur("duration", duration).
		Msg("prismic request")
	return resp, nil
}
