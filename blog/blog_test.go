package blog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

func str(s string) *string { return &s }

func postDoc(uid, title, published string) prismic.Document {
	data, _ := json.Marshal(map[string]any{
		"title":    title,
		"subtitle": "sub " + uid,
		"author":   "Autor",
		"banner":   map[string]any{"url": "https://images.prismic.io/" + uid + ".png", "alt": nil},
		"content": []map[string]any{
			{"heading": "Intro", "body": []map[string]any{{"type": "paragraph", "text": "hello world", "spans": []any{}}}},
		},
	})
	doc := prismic.Document{ID: "id-" + uid, UID: uid, Type: DocumentType, Data: data}
	if published != "" {
		doc.FirstPublicationDate = str(published)
	}
	return doc
}

type fakeSource struct {
	mu      sync.Mutex
	pages   map[string]*prismic.Response
	first   *prismic.Response
	all     []prismic.Document
	byUID   map[string]prismic.Document
	byID    map[string]prismic.Document
	calls   atomic.Int32
	block   chan struct{}
	entered chan struct{}
	lastRef string
	err     error
}

func (f *fakeSource) Query(ctx context.Context, q prismic.Query) (*prismic.Response, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.first, nil
}

func (f *fakeSource) QueryAll(ctx context.Context, q prismic.Query) ([]prismic.Document, error) {
	f.calls.Add(1)
	return f.all, f.err
}

func (f *fakeSource) Next(ctx context.Context, cursor string) (*prismic.Response, error) {
	f.calls.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	resp, ok := f.pages[cursor]
	if !ok {
		return nil, prismic.ErrNotFound
	}
	return resp, nil
}

func (f *fakeSource) GetByUID(ctx context.Context, typ, uid, ref string) (*prismic.Document, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastRef = ref
	f.mu.Unlock()
	doc, ok := f.byUID[uid]
	if !ok {
		return nil, prismic.ErrNotFound
	}
	return &doc, nil
}

func (f *fakeSource) GetByID(ctx context.Context, id, ref string) (*prismic.Document, error) {
	doc, ok := f.byID[id]
	if !ok {
		return nil, prismic.ErrNotFound
	}
	return &doc, nil
}

func TestNormalizeSummary(t *testing.T) {
	p, err := NormalizeSummary(postDoc("como-utilizar-hooks", "Como utilizar Hooks", "2021-03-15T19:25:28+0000"))
	require.NoError(t, err)
	assert.Equal(t, "como-utilizar-hooks", p.UID)
	assert.Equal(t, "Como utilizar Hooks", p.Title)
	assert.Equal(t, "sub como-utilizar-hooks", p.Subtitle)
	assert.Equal(t, "Autor", p.Author)
	require.NotNil(t, p.FirstPublicationDate)
	assert.Equal(t, 15, p.FirstPublicationDate.Day())
	assert.Equal(t, "/post/como-utilizar-hooks/", p.Link())
}

func TestNormalizeSummaryNullDate(t *testing.T) {
	p, err := NormalizeSummary(postDoc("draft", "Draft", ""))
	require.NoError(t, err)
	assert.Nil(t, p.FirstPublicationDate)
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  prismic.Document
	}{
		{"missing uid", postDoc("", "Title", "")},
		{"missing title", postDoc("a", "", "")},
		{"bad date", postDoc("a", "Title", "yesterday")},
		{"no data", prismic.Document{UID: "a"}},
		{"wrong shape", prismic.Document{UID: "a", Data: json.RawMessage(`{"title": 3}`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSummary(tt.doc)
			assert.ErrorIs(t, err, ErrInvalidDocument)
			_, err = NormalizeDetail(tt.doc)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestNormalizeDetail(t *testing.T) {
	doc := postDoc("a", "Title", "2021-03-25T19:25:28+0000")
	p, err := NormalizeDetail(doc)
	require.NoError(t, err)
	assert.Equal(t, "https://images.prismic.io/a.png", p.Banner.URL)
	assert.Equal(t, "", p.Banner.Alt)
	require.Len(t, p.Content, 1)
	assert.Equal(t, "Intro", p.Content[0].Heading)
	require.Len(t, p.Content[0].Body, 1)
	assert.Equal(t, "hello world", p.Content[0].Body[0].Text)
	assert.Equal(t, "Title", p.Summary().Title)
}

func TestNormalizeDetailRejectsBadBanner(t *testing.T) {
	data := json.RawMessage(`{"title":"T","banner":{"url":"not a url"},"content":[]}`)
	_, err := NormalizeDetail(prismic.Document{UID: "a", Data: data})
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestFeedAppendIsAppendOnly(t *testing.T) {
	first := Batch{Posts: []PostSummary{{UID: "a"}, {UID: "b"}}, NextPage: "cursor-2", Page: 1}
	feed := NewFeed(first)
	require.True(t, feed.HasMore())

	next := feed.Append(Batch{Posts: []PostSummary{{UID: "c"}}, Page: 2})

	assert.Len(t, feed.Posts, 2, "original feed must not change")
	assert.Equal(t, "cursor-2", feed.NextPage)
	assert.Equal(t, []string{"a", "b", "c"}, uids(next.Posts))
	assert.False(t, next.HasMore())
	assert.Equal(t, 2, next.Page)

	next.Posts[0].UID = "changed"
	assert.Equal(t, "a", feed.Posts[0].UID, "feeds must not share backing arrays")
}

func uids(posts []PostSummary) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.UID
	}
	return out
}

func TestListingAndMore(t *testing.T) {
	next := "https://repo.cdn.prismic.io/api/v2/documents/search?page=2"
	src := &fakeSource{
		first: &prismic.Response{Page: 1, NextPage: &next, Results: []prismic.Document{
			postDoc("a", "A", "2021-03-25T19:25:28+0000"),
			postDoc("b", "B", ""),
		}},
		pages: map[string]*prismic.Response{
			next: {Page: 2, Results: []prismic.Document{postDoc("c", "C", "")}},
		},
	}
	l := NewLoader(src, "")

	b, err := l.Listing(context.Background())
	require.NoError(t, err)
	feed := NewFeed(b)
	assert.Equal(t, []string{"a", "b"}, uids(feed.Posts))
	assert.Equal(t, next, feed.NextPage)

	feed, err = l.More(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, uids(feed.Posts))
	assert.False(t, feed.HasMore())

	calls := src.calls.Load()
	again, err := l.More(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, feed, again)
	assert.Equal(t, calls, src.calls.Load(), "finished feed must not hit the backend")
}

func TestMoreFailureKeepsFeed(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	l := NewLoader(src, "")
	feed := Feed{Posts: []PostSummary{{UID: "a"}}, NextPage: "https://repo.cdn.prismic.io/x"}

	got, err := l.More(context.Background(), feed)
	require.Error(t, err)
	assert.Equal(t, feed, got)
}

func TestListingRejectsMalformedDocument(t *testing.T) {
	src := &fakeSource{first: &prismic.Response{Page: 1, Results: []prismic.Document{postDoc("", "A", "")}}}
	_, err := NewLoader(src, "").Listing(context.Background())
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func blockingPageSource(cursor string) *fakeSource {
	return &fakeSource{
		block:   make(chan struct{}),
		entered: make(chan struct{}, 8),
		pages:   map[string]*prismic.Response{cursor: {Page: 2, Results: []prismic.Document{postDoc("c", "C", "")}}},
	}
}

func TestPageSharesConcurrentCalls(t *testing.T) {
	cursor := "https://repo.cdn.prismic.io/next"
	src := blockingPageSource(cursor)
	l := NewLoader(src, "")

	results := make([]Batch, 4)
	var wg sync.WaitGroup
	page := func(i int) {
		defer wg.Done()
		b, err := l.Page(context.Background(), cursor)
		assert.NoError(t, err)
		results[i] = b
	}

	wg.Add(1)
	go page(0)
	<-src.entered

	var ready sync.WaitGroup
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		ready.Add(1)
		go func(i int) {
			ready.Done()
			page(i)
		}(i)
	}
	ready.Wait()
	time.Sleep(20 * time.Millisecond)
	close(src.block)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, b := range results {
		assert.Equal(t, []string{"c"}, uids(b.Posts))
	}
}

func TestPageSurvivesCanceledCaller(t *testing.T) {
	cursor := "https://repo.cdn.prismic.io/next"
	src := blockingPageSource(cursor)
	l := NewLoader(src, "")

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan error, 1)
	go func() {
		_, err := l.Page(ctx, cursor)
		first <- err
	}()
	<-src.entered

	type result struct {
		b   Batch
		err error
	}
	second := make(chan result, 1)
	go func() {
		b, err := l.Page(context.Background(), cursor)
		second <- result{b, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-first, context.Canceled)

	close(src.block)
	r := <-second
	require.NoError(t, r.err)
	assert.Equal(t, []string{"c"}, uids(r.b.Posts))
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestPaths(t *testing.T) {
	src := &fakeSource{all: []prismic.Document{
		postDoc("a", "A", ""), postDoc("b", "B", ""), postDoc("a", "A", ""), postDoc("", "?", ""),
	}}
	paths, err := NewLoader(src, "").Paths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, paths)
}

func TestDetail(t *testing.T) {
	src := &fakeSource{byUID: map[string]prismic.Document{"a": postDoc("a", "A", "")}}
	l := NewLoader(src, "")

	p, err := l.Detail(context.Background(), "a", "preview-ref")
	require.NoError(t, err)
	assert.Equal(t, "A", p.Title)
	assert.Equal(t, "preview-ref", src.lastRef)

	_, err = l.Detail(context.Background(), "missing", "")
	assert.ErrorIs(t, err, prismic.ErrNotFound)
}

func TestResolve(t *testing.T) {
	other := postDoc("page", "Page", "")
	other.Type = "page"
	src := &fakeSource{byID: map[string]prismic.Document{
		"id-a":    postDoc("a", "A", ""),
		"id-page": other,
	}}
	l := NewLoader(src, "")

	path, err := l.Resolve(context.Background(), "id-a", "ref")
	require.NoError(t, err)
	assert.Equal(t, "/post/a/", path)

	path, err = l.Resolve(context.Background(), "id-page", "ref")
	require.NoError(t, err)
	assert.Equal(t, "/", path)

	path, err = l.Resolve(context.Background(), "unknown", "ref")
	require.NoError(t, err)
	assert.Equal(t, "/", path)
}

func TestReadingTime(t *testing.T) {
	body := strings.TrimSpace(strings.Repeat("palavra ", 598))
	p := PostDetail{Content: []Section{{
		Heading: "Duas palavras",
		Body:    []richtext.Block{{Type: "paragraph", Text: body}},
	}}}
	assert.Equal(t, 600, WordCount(p))
	assert.Equal(t, 3, ReadingTime(p))

	p.Content[0].Body = append(p.Content[0].Body, richtext.Block{Type: "paragraph", Text: "mais"})
	assert.Equal(t, 4, ReadingTime(p))

	assert.Equal(t, 0, ReadingTime(PostDetail{}))
	assert.Equal(t, 1, ReadingTime(PostDetail{Content: []Section{{Heading: "x"}}}))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2021, time.March, 25, 19, 25, 28, 0, time.UTC)
	tests := []struct {
		name string
		tag  language.Tag
		loc  *time.Location
		want string
	}{
		{"portuguese", language.BrazilianPortuguese, nil, "25 mar 2021"},
		{"english", language.English, nil, "25 Mar 2021"},
		{"unknown falls back", language.Japanese, nil, "25 Mar 2021"},
		{"zone shifts day", language.BrazilianPortuguese, time.FixedZone("UTC+6", 6*3600), "26 mar 2021"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(&d, tt.tag, tt.loc))
		})
	}

	feb := time.Date(2021, time.February, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "03 fev 2021", FormatDate(&feb, language.BrazilianPortuguese, nil))
	assert.Equal(t, "", FormatDate(nil, language.BrazilianPortuguese, nil))
}
