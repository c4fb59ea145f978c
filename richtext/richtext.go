// Package richtext renders Prismic structured text as HTML and exposes the
// result as a templ component.
package richtext

import (
	"context"
	"encoding/json"
	"html"
	"io"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/a-h/templ"
)

// Block is one structured-text node: a paragraph, heading, list item,
// image or embed.
type Block struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	Spans      []Span      `json:"spans,omitempty"`
	URL        string      `json:"url,omitempty"`
	Alt        *string     `json:"alt,omitempty"`
	Copyright  *string     `json:"copyright,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
	LinkTo     *Link       `json:"linkTo,omitempty"`
	Oembed     *Oembed     `json:"oembed,omitempty"`
}

// Span marks a [Start, End) range of a block's text. Offsets count UTF-16
// code units, as the API produces them.
type Span struct {
	Start int             `json:"start"`
	End   int             `json:"end"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Link is a hyperlink target: a web URL, a media file or another document.
type Link struct {
	LinkType string `json:"link_type"`
	URL      string `json:"url,omitempty"`
	Target   string `json:"target,omitempty"`
	ID       string `json:"id,omitempty"`
	UID      string `json:"uid,omitempty"`
	Type     string `json:"type,omitempty"`
}

type Oembed struct {
	Type         string `json:"type"`
	EmbedURL     string `json:"embed_url"`
	ProviderName string `json:"provider_name"`
	HTML         string `json:"html"`
}

// Converter turns an ordered sequence of blocks into markup. Implementations
// must be pure: the same blocks always yield the same string.
type Converter interface {
	Convert(blocks []Block) string
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(blocks []Block) string

func (f ConverterFunc) Convert(blocks []Block) string { return f(blocks) }

// HTML is the default converter. LinkResolver maps document links to site
// paths; when nil, document links render without an href target.
type HTML struct {
	LinkResolver func(Link) string
}

// Component renders blocks through conv as a templ component.
func Component(conv Converter, blocks []Block) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, conv.Convert(blocks))
		return err
	})
}

// Convert renders blocks. Consecutive list items share one <ul> or <ol>.
func (h HTML) Convert(blocks []Block) string {
	var b strings.Builder
	list := ""
	closeList := func() {
		if list != "" {
			b.WriteString("</" + list + ">")
			list = ""
		}
	}
	for _, blk := range blocks {
		want := ""
		switch blk.Type {
		case "list-item":
			want = "ul"
		case "o-list-item":
			want = "ol"
		}
		if want != list {
			closeList()
			if want != "" {
				b.WriteString("<" + want + ">")
				list = want
			}
		}
		h.block(&b, blk)
	}
	closeList()
	return b.String()
}

func (h HTML) block(b *strings.Builder, blk Block) {
	switch blk.Type {
	case "heading1", "heading2", "heading3", "heading4", "heading5", "heading6":
		tag := "h" + blk.Type[len("heading"):]
		b.WriteString("<" + tag + ">" + h.spans(blk.Text, blk.Spans) + "</" + tag + ">")
	case "paragraph":
		b.WriteString("<p>" + h.spans(blk.Text, blk.Spans) + "</p>")
	case "preformatted":
		b.WriteString("<pre>" + h.spans(blk.Text, blk.Spans) + "</pre>")
	case "list-item", "o-list-item":
		b.WriteString("<li>" + h.spans(blk.Text, blk.Spans) + "</li>")
	case "image":
		h.image(b, blk)
	case "embed":
		if blk.Oembed == nil {
			return
		}
		b.WriteString(`<div data-oembed="` + html.EscapeString(blk.Oembed.EmbedURL) +
			`" data-oembed-type="` + html.EscapeString(blk.Oembed.Type) +
			`" data-oembed-provider="` + html.EscapeString(strings.ToLower(blk.Oembed.ProviderName)) + `">`)
		b.WriteString(blk.Oembed.HTML)
		b.WriteString("</div>")
	}
}

func (h HTML) image(b *strings.Builder, blk Block) {
	src := SafeURL(blk.URL)
	if src == "" {
		return
	}
	img := `<img src="` + src + `" alt="` + html.EscapeString(deref(blk.Alt)) + `"`
	if c := deref(blk.Copyright); c != "" {
		img += ` copyright="` + html.EscapeString(c) + `"`
	}
	if blk.Dimensions != nil && blk.Dimensions.Width > 0 {
		img += ` width="` + strconv.Itoa(blk.Dimensions.Width) + `" height="` + strconv.Itoa(blk.Dimensions.Height) + `"`
	}
	img += ` loading="lazy" />`
	if blk.LinkTo != nil {
		if href := h.href(*blk.LinkTo); href != "" {
			img = `<a href="` + href + `"` + targetAttr(*blk.LinkTo) + `>` + img + `</a>`
		}
	}
	b.WriteString(`<p class="block-img">` + img + `</p>`)
}

type openSpan struct {
	span  Span
	index int
}

// spans serializes text with its spans, nesting tags properly. Overlapping
// spans are closed and reopened at the boundary.
func (h HTML) spans(text string, spans []Span) string {
	units := utf16.Encode([]rune(text))
	n := len(units)

	bounds := map[int]struct{}{0: {}, n: {}}
	for _, s := range spans {
		bounds[clamp(s.Start, n)] = struct{}{}
		bounds[clamp(s.End, n)] = struct{}{}
	}
	points := make([]int, 0, len(bounds))
	for p := range bounds {
		points = append(points, p)
	}
	sort.Ints(points)

	var b strings.Builder
	var open []openSpan
	for i := 0; i < len(points)-1; i++ {
		from, to := points[i], points[i+1]

		var active []openSpan
		for idx, s := range spans {
			if clamp(s.Start, n) <= from && clamp(s.End, n) >= to && s.Start < s.End {
				active = append(active, openSpan{span: s, index: idx})
			}
		}
		sort.SliceStable(active, func(a, c int) bool {
			if active[a].span.Start != active[c].span.Start {
				return active[a].span.Start < active[c].span.Start
			}
			return active[a].span.End > active[c].span.End
		})

		keep := 0
		for keep < len(open) && keep < len(active) && open[keep].index == active[keep].index {
			keep++
		}
		for j := len(open) - 1; j >= keep; j-- {
			b.WriteString(closeTag(open[j].span))
		}
		open = open[:keep]
		for _, a := range active[keep:] {
			b.WriteString(h.openTag(a.span))
			open = append(open, a)
		}

		segment := string(utf16.Decode(units[from:to]))
		b.WriteString(strings.ReplaceAll(html.EscapeString(segment), "\n", "<br />"))
	}
	for j := len(open) - 1; j >= 0; j-- {
		b.WriteString(closeTag(open[j].span))
	}
	return b.String()
}

func (h HTML) openTag(s Span) string {
	switch s.Type {
	case "strong":
		return "<strong>"
	case "em":
		return "<em>"
	case "label":
		var data struct {
			Label string `json:"label"`
		}
		_ = json.Unmarshal(s.Data, &data)
		return `<span class="` + html.EscapeString(data.Label) + `">`
	case "hyperlink":
		var link Link
		_ = json.Unmarshal(s.Data, &link)
		href := h.href(link)
		if href == "" {
			return "<a>"
		}
		return `<a href="` + href + `"` + targetAttr(link) + `>`
	}
	return "<span>"
}

func closeTag(s Span) string {
	switch s.Type {
	case "strong":
		return "</strong>"
	case "em":
		return "</em>"
	case "hyperlink":
		return "</a>"
	}
	return "</span>"
}

func (h HTML) href(l Link) string {
	if l.LinkType == "Document" {
		if h.LinkResolver == nil {
			return ""
		}
		return SafeURL(h.LinkResolver(l))
	}
	return SafeURL(l.URL)
}

func targetAttr(l Link) string {
	if l.Target == "" {
		return ""
	}
	return ` target="` + html.EscapeString(l.Target) + `" rel="noopener noreferrer"`
}

// SafeURL validates and escapes a URL for use in an HTML attribute. It
// returns "" for anything but relative, http(s), mailto and tel URLs.
func SafeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}

// Text joins the plain text of every block with spaces.
func Text(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, blk := range blocks {
		if blk.Text != "" {
			parts = append(parts, blk.Text)
		}
	}
	return strings.Join(parts, " ")
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
