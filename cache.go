package spacetraveling

import (
	"sync"

	"github.com/eringen/spacetraveling/blog"
)

// PageStore is the pre-rendered page set of the server: the first listing
// page and every post resolved so far. Readers always see one consistent
// snapshot; Replace swaps it whole.
type PageStore struct {
	mu      sync.RWMutex
	listing *blog.Batch
	posts   map[string]blog.PostDetail
	order   []string
}

// NewPageStore returns an empty store.
func NewPageStore() *PageStore {
	return &PageStore{posts: make(map[string]blog.PostDetail)}
}

// Replace installs a freshly rendered set, dropping the previous one.
func (s *PageStore) Replace(listing blog.Batch, posts []blog.PostDetail) {
	m := make(map[string]blog.PostDetail, len(posts))
	order := make([]string, 0, len(posts))
	for _, p := range posts {
		if _, dup := m[p.UID]; !dup {
			order = append(order, p.UID)
		}
		m[p.UID] = p
	}
	s.mu.Lock()
	s.listing = &listing
	s.posts = m
	s.order = order
	s.mu.Unlock()
}

// Listing returns the stored first page.
func (s *PageStore) Listing() (blog.Batch, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listing == nil {
		return blog.Batch{}, false
	}
	return *s.listing, true
}

// SetListing stores the first page without touching the posts.
func (s *PageStore) SetListing(b blog.Batch) {
	s.mu.Lock()
	s.listing = &b
	s.mu.Unlock()
}

// Get returns the stored post with the given uid.
func (s *PageStore) Get(uid string) (blog.PostDetail, bool) {
	s.mu.RLock()
	p, ok := s.posts[uid]
	s.mu.RUnlock()
	return p, ok
}

// Put adds a post resolved after startup. Later reads of the uid are
// served from the store.
func (s *PageStore) Put(p blog.PostDetail) {
	s.mu.Lock()
	if _, ok := s.posts[p.UID]; !ok {
		s.order = append(s.order, p.UID)
	}
	s.posts[p.UID] = p
	s.mu.Unlock()
}

// Summaries lists every stored post in insertion order.
func (s *PageStore) Summaries() []blog.PostSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]blog.PostSummary, 0, len(s.order))
	for _, uid := range s.order {
		out = append(out, s.posts[uid].Summary())
	}
	return out
}

// Len is the number of stored posts.
func (s *PageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}
