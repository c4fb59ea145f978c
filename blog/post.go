// Package blog holds the post records shown by the site and the loaders
// that build them from Prismic documents.
package blog

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/richtext"
)

// DocumentType is the Prismic custom type of blog posts.
const DocumentType = "posts"

// ErrInvalidDocument is returned when a document is missing required
// fields or carries values of the wrong shape.
var ErrInvalidDocument = errors.New("blog: invalid document")

var validate = validator.New()

// prismicTime is the layout of Prismic publication dates.
const prismicTime = "2006-01-02T15:04:05-0700"

// PostSummary is one entry of the listing.
type PostSummary struct {
	UID                  string `validate:"required"`
	FirstPublicationDate *time.Time
	Title                string `validate:"required"`
	Subtitle             string
	Author               string
}

// Link is the site path of the post.
func (p PostSummary) Link() string { return PostPath(p.UID) }

// Banner is the hero image of a post.
type Banner struct {
	URL string `validate:"omitempty,url"`
	Alt string
}

// Section is one heading plus its rich-text body.
type Section struct {
	Heading string
	Body    []richtext.Block
}

// PostDetail is a full post.
type PostDetail struct {
	UID                  string `validate:"required"`
	FirstPublicationDate *time.Time
	LastPublicationDate  *time.Time
	Title                string `validate:"required"`
	Subtitle             string
	Banner               Banner
	Author               string
	Content              []Section
}

// Link is the site path of the post.
func (p PostDetail) Link() string { return PostPath(p.UID) }

// Summary drops the content of a detail.
func (p PostDetail) Summary() PostSummary {
	return PostSummary{
		UID:                  p.UID,
		FirstPublicationDate: p.FirstPublicationDate,
		Title:                p.Title,
		Subtitle:             p.Subtitle,
		Author:               p.Author,
	}
}

// PostPath returns the route of a post.
func PostPath(uid string) string { return "/post/" + uid + "/" }

type summaryData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
}

type detailData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
	Banner   struct {
		URL string  `json:"url"`
		Alt *string `json:"alt"`
	} `json:"banner"`
	Content []struct {
		Heading string           `json:"heading"`
		Body    []richtext.Block `json:"body"`
	} `json:"content"`
}

// NormalizeSummary maps a document to a PostSummary. Only the named fields
// are read; the content body is ignored.
func NormalizeSummary(doc prismic.Document) (PostSummary, error) {
	var data summaryData
	if err := decodeData(doc, &data); err != nil {
		return PostSummary{}, err
	}
	published, err := parseTime(doc.FirstPublicationDate)
	if err != nil {
		return PostSummary{}, invalid(doc, err)
	}
	p := PostSummary{
		UID:                  doc.UID,
		FirstPublicationDate: published,
		Title:                data.Title,
		Subtitle:             data.Subtitle,
		Author:               data.Author,
	}
	if err := validate.Struct(p); err != nil {
		return PostSummary{}, invalid(doc, err)
	}
	return p, nil
}

// NormalizeDetail maps a document to a PostDetail. Each section gets its
// own copy of the body block list.
func NormalizeDetail(doc prismic.Document) (PostDetail, error) {
	var data detailData
	if err := decodeData(doc, &data); err != nil {
		return PostDetail{}, err
	}
	published, err := parseTime(doc.FirstPublicationDate)
	if err != nil {
		return PostDetail{}, invalid(doc, err)
	}
	updated, err := parseTime(doc.LastPublicationDate)
	if err != nil {
		return PostDetail{}, invalid(doc, err)
	}
	sections := make([]Section, len(data.Content))
	for i, c := range data.Content {
		sections[i] = Section{
			Heading: c.Heading,
			Body:    append([]richtext.Block(nil), c.Body...),
		}
	}
	p := PostDetail{
		UID:                  doc.UID,
		FirstPublicationDate: published,
		LastPublicationDate:  updated,
		Title:                data.Title,
		Subtitle:             data.Subtitle,
		Banner:               Banner{URL: data.Banner.URL},
		Author:               data.Author,
		Content:              sections,
	}
	if data.Banner.Alt != nil {
		p.Banner.Alt = *data.Banner.Alt
	}
	if err := validate.Struct(p); err != nil {
		return PostDetail{}, invalid(doc, err)
	}
	return p, nil
}

func decodeData(doc prismic.Document, out any) error {
	if len(doc.Data) == 0 {
		return invalid(doc, errors.New("missing data"))
	}
	if err := json.Unmarshal(doc.Data, out); err != nil {
		return invalid(doc, err)
	}
	return nil
}

func parseTime(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(prismicTime, *raw)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, *raw); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func invalid(doc prismic.Document, err error) error {
	return fmt.Errorf("%w: %s (uid %q): %v", ErrInvalidDocument, doc.ID, doc.UID, err)
}
