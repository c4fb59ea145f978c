package blog

// Batch is one page of summaries as returned by the backend. NextPage is
// the opaque cursor of the following page, "" when there is none.
type Batch struct {
	Posts    []PostSummary
	NextPage string
	Page     int
}

// Feed is an immutable snapshot of the listing: everything loaded so far,
// the cursor to continue from and the last page number. Feeds are never
// modified in place; Append returns a new value.
type Feed struct {
	Posts    []PostSummary
	NextPage string
	Page     int
}

// NewFeed starts a feed from the first batch.
func NewFeed(first Batch) Feed {
	return Feed{}.Append(first)
}

// HasMore reports whether a cursor is held. Once it is empty the feed is
// finished.
func (f Feed) HasMore() bool {
	return f.NextPage != ""
}

// Append returns a feed holding f's posts followed by b's, with the cursor
// and page taken from b. f is left untouched.
func (f Feed) Append(b Batch) Feed {
	posts := make([]PostSummary, 0, len(f.Posts)+len(b.Posts))
	posts = append(posts, f.Posts...)
	posts = append(posts, b.Posts...)
	return Feed{Posts: posts, NextPage: b.NextPage, Page: b.Page}
}
