package spacetraveling

import "embed"

// EmbeddedAssets contains the static assets shipped with the site:
// site.js (load-more and fallback resolution) and style.css.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
