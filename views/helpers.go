package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/eringen/spacetraveling/blog"
)

// BuildURL joins path segments onto a base URL, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block.
func WebsiteJsonLD(site Site) string {
	data := map[string]interface{}{
		"@context":   "https://schema.org",
		"@type":      "WebSite",
		"name":       site.Name,
		"url":        BuildURL(site.URL),
		"inLanguage": site.Lang.String(),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if site.Author != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  site.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting JSON-LD block for a post.
func BlogPostingJsonLD(site Site, post blog.PostDetail) string {
	postURL := BuildURL(site.URL, "post", post.UID)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": post.Subtitle,
		"url":         postURL,
		"wordCount":   blog.WordCount(post),
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  publisher(site),
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.FirstPublicationDate != nil {
		data["datePublished"] = post.FirstPublicationDate.Format(time.RFC3339)
	}
	if post.LastPublicationDate != nil {
		data["dateModified"] = post.LastPublicationDate.Format(time.RFC3339)
	}
	if post.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author,
		}
	}
	if post.Banner.URL != "" {
		data["image"] = post.Banner.URL
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// MoreHref is the fetch target of the load-more button. Served sites ask
// the server for the cursor; static exports read the pre-rendered page.
func MoreHref(feed blog.Feed, static bool) string {
	if !feed.HasMore() {
		return ""
	}
	if static {
		return StaticPagePath(feed.Page + 1)
	}
	return "/?" + url.Values{"cursor": {feed.NextPage}, "partial": {"posts"}}.Encode()
}

// StaticPagePath is the location of listing fragment n in a static export.
func StaticPagePath(n int) string {
	return "/page/" + strconv.Itoa(n) + "/"
}

func publisher(site Site) string {
	if site.Author != "" {
		return site.Author
	}
	return site.Name
}
