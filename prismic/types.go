package prismic

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a single-document query has no match.
	ErrNotFound = errors.New("prismic: document not found")

	// ErrForeignCursor is returned by Next when the cursor does not point at
	// the configured repository.
	ErrForeignCursor = errors.New("prismic: cursor does not belong to this repository")

	// ErrCursorLoop is returned by QueryAll when a page links back to a
	// cursor it already followed.
	ErrCursorLoop = errors.New("prismic: next_page repeats an earlier cursor")
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status int
	URL    string
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("prismic: %s: status=%d body=%s", e.URL, e.Status, e.Body)
}

// Ref is one content version exposed by the API root.
type Ref struct {
	ID          string `json:"id"`
	Ref         string `json:"ref"`
	Label       string `json:"label"`
	IsMasterRef bool   `json:"isMasterRef"`
}

type apiRoot struct {
	Refs []Ref `json:"refs"`
}

// Response is the paginated answer of documents/search. NextPage is nil
// when there are no more pages.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         *string    `json:"next_page"`
	PrevPage         *string    `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Cursor returns the next page URL, or "" at the end.
func (r *Response) Cursor() string {
	if r == nil || r.NextPage == nil {
		return ""
	}
	return *r.NextPage
}

// Document is a loosely typed Prismic document. Data is left raw so callers
// decode only the fields they need.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid"`
	Type                 string          `json:"type"`
	Href                 string          `json:"href"`
	Tags                 []string        `json:"tags"`
	FirstPublicationDate *string         `json:"first_publication_date"`
	LastPublicationDate  *string         `json:"last_publication_date"`
	Lang                 string          `json:"lang"`
	Data                 json.RawMessage `json:"data"`
}
