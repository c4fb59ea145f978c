package views

const layoutTemplates = `
{{define "head"}}<!DOCTYPE html>
<html lang="{{.Site.Lang}}">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Meta.Title}}</title>
{{with .Meta.Description}}<meta name="description" content="{{.}}">{{end}}
{{with .Meta.URL}}<link rel="canonical" href="{{.}}">
<meta property="og:url" content="{{.}}">{{end}}
<meta property="og:title" content="{{.Meta.Title}}">
<meta property="og:type" content="{{.Meta.OGType}}">
<meta property="og:site_name" content="{{.Site.Name}}">
{{with .Meta.Image}}<meta property="og:image" content="{{.}}">{{end}}
<link rel="alternate" type="application/rss+xml" title="{{.Site.Name}}" href="/feed.xml">
<link rel="stylesheet" href="/public/style.css">
<script src="/public/site.js" defer></script>
{{with .JSONLD}}<script type="application/ld+json">{{.}}</script>{{end}}
</head>
<body>
<header class="header"><div class="container"><a href="/" class="logo">{{.Site.Name}}<span>.</span></a></div></header>
{{end}}

{{define "foot"}}{{if .Preview}}<aside class="preview container"><a href="/api/exit-preview">Sair do modo Preview</a></aside>
{{end}}</body>
</html>
{{end}}
`

const listingTemplates = `
{{define "post-items"}}{{range .}}<a class="post" href="{{.Link}}">
<strong>{{.Title}}</strong>
<p>{{.Subtitle}}</p>
<div class="info"><time>{{date .FirstPublicationDate}}</time><span>{{.Author}}</span></div>
</a>
{{end}}{{end}}

{{define "load-more"}}{{if .More}}<div class="load-more" data-load-more-container>
<button type="button" data-load-more="{{.More}}">Carregar mais posts</button>
</div>
{{end}}{{end}}

{{define "home"}}{{template "head" .}}<main class="container home">
<div class="posts" data-posts>
{{template "post-items" .Feed.Posts}}</div>
{{template "load-more" .}}</main>
{{template "foot" .}}{{end}}

{{define "posts"}}{{template "post-items" .Feed.Posts}}{{template "load-more" .}}{{end}}

{{define "more-failed"}}<div class="load-more" data-load-more-container>
<p class="error">Não foi possível carregar mais posts.</p>
<button type="button" data-load-more="{{.More}}">Tentar novamente</button>
</div>
{{end}}
`

const postTemplates = `
{{define "article"}}<main class="post-page" data-title="{{.Meta.Title}}">
{{with .Post.Banner.URL}}<img class="banner" src="{{.}}" alt="{{$.BannerAlt}}">
{{end}}<article class="container post">
<h1>{{.Post.Title}}</h1>
<div class="info"><time>{{date .Post.FirstPublicationDate}}</time><span>{{.Post.Author}}</span><time>{{.ReadingTime}} min</time></div>
{{range .Post.Content}}<section>
<h2>{{.Heading}}</h2>
<div class="post-content">{{richtext .Body}}</div>
</section>
{{end}}</article>
</main>
{{end}}

{{define "post"}}{{template "head" .}}{{template "article" .}}{{template "foot" .}}{{end}}

{{define "loading"}}{{template "head" .}}<main class="post-page" data-fallback="{{.Fallback}}">
<h1 class="container">Carregando...</h1>
</main>
{{template "foot" .}}{{end}}

{{define "notfound"}}{{template "head" .}}<main class="container status">
<h1>404</h1>
<p>Post não encontrado.</p>
<a href="/">Voltar para o início</a>
</main>
{{template "foot" .}}{{end}}

{{define "error"}}{{template "head" .}}<main class="container status">
<h1>Algo deu errado</h1>
<p>Tente novamente em instantes.</p>
<a href="/">Voltar para o início</a>
</main>
{{template "foot" .}}{{end}}
`
