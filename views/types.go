package views

import (
	"time"

	"golang.org/x/text/language"
)

// Site holds site-wide settings every page needs.
type Site struct {
	Name        string
	URL         string // canonical base, no trailing slash needed
	Description string
	Author      string
	Lang        language.Tag   // drives <html lang> and month names
	Location    *time.Location // dates are shown in this zone; nil means UTC
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}
