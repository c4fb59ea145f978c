package spacetraveling

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"golang.org/x/text/language"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

const page2 = "https://repo.cdn.prismic.io/api/v2/documents/search?page=2"

func doc(uid, title string) prismic.Document {
	data, _ := json.Marshal(map[string]any{
		"title":    title,
		"subtitle": "sobre " + uid,
		"author":   "Autor",
		"banner":   map[string]any{"url": "https://images.prismic.io/" + uid + ".png"},
		"content": []map[string]any{{
			"heading": "Intro",
			"body":    []map[string]any{{"type": "paragraph", "text": "texto de " + uid}},
		}},
	})
	published := "2021-03-25T19:25:28+0000"
	return prismic.Document{ID: "id-" + uid, UID: uid, Type: blog.DocumentType, FirstPublicationDate: &published, Data: data}
}

// fakeSource serves a fixed repository: posts a, b on the first page, c
// behind page2, and "hidden" reachable by uid only.
type fakeSource struct {
	mu        sync.Mutex
	docs      map[string]prismic.Document
	nextErr   error
	queryErr  error
	detailErr error
	refs      []string
	details   int
}

func newFakeSource() *fakeSource {
	f := &fakeSource{docs: map[string]prismic.Document{}}
	for _, d := range []prismic.Document{doc("a", "Post A"), doc("b", "Post B"), doc("c", "Post C"), doc("hidden", "Post Oculto")} {
		f.docs[d.UID] = d
	}
	return f
}

func (f *fakeSource) Query(ctx context.Context, q prismic.Query) (*prismic.Response, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	next := page2
	return &prismic.Response{Page: 1, NextPage: &next, Results: []prismic.Document{f.docs["a"], f.docs["b"]}}, nil
}

func (f *fakeSource) QueryAll(ctx context.Context, q prismic.Query) ([]prismic.Document, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return []prismic.Document{f.docs["a"], f.docs["b"], f.docs["c"]}, nil
}

func (f *fakeSource) Next(ctx context.Context, cursor string) (*prismic.Response, error) {
	if f.nextErr != nil {
		return nil, f.nextErr
	}
	if cursor != page2 {
		return nil, prismic.ErrForeignCursor
	}
	return &prismic.Response{Page: 2, Results: []prismic.Document{f.docs["c"]}}, nil
}

func (f *fakeSource) GetByUID(ctx context.Context, typ, uid, ref string) (*prismic.Document, error) {
	f.mu.Lock()
	f.refs = append(f.refs, ref)
	f.details++
	f.mu.Unlock()
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	d, ok := f.docs[uid]
	if !ok {
		return nil, prismic.ErrNotFound
	}
	return &d, nil
}

func (f *fakeSource) GetByID(ctx context.Context, id, ref string) (*prismic.Document, error) {
	for _, d := range f.docs {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, prismic.ErrNotFound
}

func (f *fakeSource) detailCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.details
}

func (f *fakeSource) lastRef() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.refs) == 0 {
		return ""
	}
	return f.refs[len(f.refs)-1]
}

func testViews(t *testing.T, static bool) ViewFuncs {
	t.Helper()
	v := views.New(views.Site{Name: "spacetraveling", URL: "https://blog.example.com", Lang: language.BrazilianPortuguese}, nil)
	v.StaticLinks = static
	return DefaultViews(v)
}
