package blog

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/eringen/spacetraveling/prismic"
)

// ListingPageSize is the number of posts per listing page.
const ListingPageSize = 3

// pathsPageSize is the largest page the API serves; Paths walks every page.
const pathsPageSize = 100

const listingOrder = "[document.last_publication_date desc]"

// Source is the part of the Prismic client the loader needs.
type Source interface {
	Query(ctx context.Context, q prismic.Query) (*prismic.Response, error)
	QueryAll(ctx context.Context, q prismic.Query) ([]prismic.Document, error)
	Next(ctx context.Context, cursor string) (*prismic.Response, error)
	GetByUID(ctx context.Context, typ, uid, ref string) (*prismic.Document, error)
	GetByID(ctx context.Context, id, ref string) (*prismic.Document, error)
}

// Loader fetches and normalizes posts. Concurrent requests for the same
// cursor or uid share one backend call. A caller that gives up does not
// cancel the call for the others; the client timeout still bounds it.
type Loader struct {
	src   Source
	lang  string
	group singleflight.Group
}

// NewLoader returns a Loader reading from src. An empty lang uses the
// repository's default language.
func NewLoader(src Source, lang string) *Loader {
	return &Loader{src: src, lang: lang}
}

// Listing returns the first page of posts, most recently published first.
func (l *Loader) Listing(ctx context.Context) (Batch, error) {
	v, err := l.shared(ctx, "listing", func(ctx context.Context) (any, error) {
		resp, err := l.src.Query(ctx, prismic.Query{
			Predicates: []prismic.Predicate{prismic.At("document.type", DocumentType)},
			Orderings:  listingOrder,
			PageSize:   ListingPageSize,
			Lang:       l.lang,
		})
		if err != nil {
			return Batch{}, fmt.Errorf("listing: %w", err)
		}
		return batchFrom(resp)
	})
	if err != nil {
		return Batch{}, err
	}
	return v.(Batch), nil
}

// More loads the page behind f's cursor and returns f with it appended.
// A feed without a cursor is returned as is, without a request.
func (l *Loader) More(ctx context.Context, f Feed) (Feed, error) {
	if !f.HasMore() {
		return f, nil
	}
	b, err := l.Page(ctx, f.NextPage)
	if err != nil {
		return f, err
	}
	return f.Append(b), nil
}

// Page fetches the batch behind one cursor.
func (l *Loader) Page(ctx context.Context, cursor string) (Batch, error) {
	v, err := l.shared(ctx, "page:"+cursor, func(ctx context.Context) (any, error) {
		resp, err := l.src.Next(ctx, cursor)
		if err != nil {
			return Batch{}, fmt.Errorf("next page: %w", err)
		}
		return batchFrom(resp)
	})
	if err != nil {
		return Batch{}, err
	}
	return v.(Batch), nil
}

// Paths returns the uid of every post, following all pages.
func (l *Loader) Paths(ctx context.Context) ([]string, error) {
	docs, err := l.src.QueryAll(ctx, prismic.Query{
		Predicates: []prismic.Predicate{prismic.At("document.type", DocumentType)},
		Orderings:  listingOrder,
		PageSize:   pathsPageSize,
		Lang:       l.lang,
	})
	if err != nil {
		return nil, fmt.Errorf("paths: %w", err)
	}
	uids := make([]string, 0, len(docs))
	seen := make(map[string]bool, len(docs))
	for _, d := range docs {
		if d.UID == "" || seen[d.UID] {
			continue
		}
		seen[d.UID] = true
		uids = append(uids, d.UID)
	}
	return uids, nil
}

// Detail returns the post with the given uid. A non-empty ref reads that
// content release instead of the published one. Unknown uids yield an
// error wrapping prismic.ErrNotFound.
func (l *Loader) Detail(ctx context.Context, uid, ref string) (PostDetail, error) {
	v, err := l.shared(ctx, "detail:"+ref+":"+uid, func(ctx context.Context) (any, error) {
		doc, err := l.src.GetByUID(ctx, DocumentType, uid, ref)
		if err != nil {
			return PostDetail{}, fmt.Errorf("post %q: %w", uid, err)
		}
		return NormalizeDetail(*doc)
	})
	if err != nil {
		return PostDetail{}, err
	}
	return v.(PostDetail), nil
}

// Resolve maps a document id to the site path of the post under ref.
// Documents of other types resolve to "/".
func (l *Loader) Resolve(ctx context.Context, id, ref string) (string, error) {
	doc, err := l.src.GetByID(ctx, id, ref)
	if err != nil {
		if errors.Is(err, prismic.ErrNotFound) {
			return "/", nil
		}
		return "", fmt.Errorf("resolve %q: %w", id, err)
	}
	if doc.Type != DocumentType || doc.UID == "" {
		return "/", nil
	}
	return PostPath(doc.UID), nil
}

// shared runs fn once per key for all concurrent callers. fn gets a context
// detached from any single caller; each caller still returns as soon as its
// own ctx is done.
func (l *Loader) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := l.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func batchFrom(resp *prismic.Response) (Batch, error) {
	posts := make([]PostSummary, 0, len(resp.Results))
	for _, d := range resp.Results {
		p, err := NormalizeSummary(d)
		if err != nil {
			return Batch{}, err
		}
		posts = append(posts, p)
	}
	return Batch{Posts: posts, NextPage: resp.Cursor(), Page: resp.Page}, nil
}
