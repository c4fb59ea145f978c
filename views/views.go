// Package views renders the site's pages and fragments as templ components.
package views

import (
	"context"
	"html/template"
	"io"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/richtext"
)

// Views builds every page of the site. StaticLinks makes load-more buttons
// point at pre-rendered fragments instead of the server's cursor endpoint.
type Views struct {
	Site        Site
	StaticLinks bool

	conv richtext.Converter
	tmpl *template.Template
}

type page struct {
	Site        Site
	Meta        PageMeta
	JSONLD      template.JS
	Preview     bool
	Feed        blog.Feed
	More        string
	Post        blog.PostDetail
	BannerAlt   string
	ReadingTime int
	Fallback    string
}

// New parses the templates. A nil conv uses richtext.HTML resolving
// document links to post paths.
func New(site Site, conv richtext.Converter) *Views {
	if conv == nil {
		conv = richtext.HTML{LinkResolver: func(l richtext.Link) string { return blog.PostPath(l.UID) }}
	}
	if site.Location == nil {
		site.Location = time.UTC
	}
	v := &Views{Site: site, conv: conv}
	funcs := template.FuncMap{
		"date": func(t *time.Time) string { return blog.FormatDate(t, v.Site.Lang, v.Site.Location) },
		"richtext": func(blocks []richtext.Block) template.HTML {
			return template.HTML(v.conv.Convert(blocks))
		},
	}
	v.tmpl = template.Must(template.New("site").Funcs(funcs).Parse(layoutTemplates + listingTemplates + postTemplates))
	return v
}

func (v *Views) render(name string, data page) templ.Component {
	data.Site = v.Site
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return v.tmpl.ExecuteTemplate(w, name, data)
	})
}

func (v *Views) homeMeta() PageMeta {
	return PageMeta{
		Title:       v.Site.Name,
		Description: v.Site.Description,
		URL:         BuildURL(v.Site.URL),
		OGType:      "website",
	}
}

// Home is the listing page with the feed's posts and, while a cursor is
// held, the load-more button.
func (v *Views) Home(feed blog.Feed, preview bool) templ.Component {
	return v.render("home", page{
		Meta:    v.homeMeta(),
		JSONLD:  template.JS(WebsiteJsonLD(v.Site)),
		Preview: preview,
		Feed:    feed,
		More:    MoreHref(feed, v.StaticLinks),
	})
}

// PostList is the fragment appended by load-more: the batch's entries
// followed by the next button, if any.
func (v *Views) PostList(feed blog.Feed) templ.Component {
	return v.render("posts", page{Feed: feed, More: MoreHref(feed, v.StaticLinks)})
}

// LoadMoreFailed replaces the button after a failed fetch so the same
// cursor can be retried.
func (v *Views) LoadMoreFailed(feed blog.Feed) templ.Component {
	return v.render("more-failed", page{More: MoreHref(feed, v.StaticLinks)})
}

func (v *Views) postPage(p blog.PostDetail, preview bool) page {
	alt := p.Banner.Alt
	if alt == "" {
		alt = p.Title
	}
	return page{
		Meta: PageMeta{
			Title:       p.Title + " | " + v.Site.Name,
			Description: p.Subtitle,
			URL:         BuildURL(v.Site.URL, "post", p.UID),
			OGType:      "article",
			Image:       p.Banner.URL,
		},
		JSONLD:      template.JS(BlogPostingJsonLD(v.Site, p)),
		Preview:     preview,
		Post:        p,
		BannerAlt:   alt,
		ReadingTime: blog.ReadingTime(p),
	}
}

// Post is the full detail page.
func (v *Views) Post(p blog.PostDetail, preview bool) templ.Component {
	return v.render("post", v.postPage(p, preview))
}

// PostPartial is only the <main> element of the detail page, swapped in by
// the fallback placeholder once the post resolves.
func (v *Views) PostPartial(p blog.PostDetail) templ.Component {
	return v.render("article", v.postPage(p, false))
}

// Loading is the placeholder served for a uid outside the pre-rendered set.
func (v *Views) Loading(uid string) templ.Component {
	return v.render("loading", page{
		Meta:     PageMeta{Title: "Carregando... | " + v.Site.Name, OGType: "article"},
		Fallback: blog.PostPath(uid) + "?partial=post",
	})
}

func (v *Views) NotFound() templ.Component {
	return v.render("notfound", page{Meta: PageMeta{Title: "404 | " + v.Site.Name, OGType: "website"}})
}

func (v *Views) ServerError() templ.Component {
	return v.render("error", page{Meta: PageMeta{Title: "Erro | " + v.Site.Name, OGType: "website"}})
}
