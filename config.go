package spacetraveling

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/eringen/spacetraveling/views"
)

// SiteConfig holds all configuration for a spacetraveling site.
type SiteConfig struct {
	Name        string // Site name (default "spacetraveling")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Publisher name for JSON-LD
	Locale      string // BCP 47 tag for dates and <html lang> (default "pt-BR")
	Timezone    string // IANA zone dates are shown in (default "UTC")

	Addr            string        // Listen address (default ":3000")
	ShutdownTimeout time.Duration // Graceful shutdown limit (default 10s)

	SessionSecret string // Enables preview mode when set
	CookieSecure  bool   // Set true for HTTPS

	OutputDir        string // Static export target (default "out")
	BuildConcurrency int    // Detail pages rendered in parallel (default 8)

	LoadMoreLimit  int           // Load-more requests per IP per window (default 30)
	LoadMoreWindow time.Duration // Load-more window (default 1min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "spacetraveling"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Locale == "" {
		c.Locale = "pt-BR"
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 10 * time.Second
	}
	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	if c.BuildConcurrency <= 0 {
		c.BuildConcurrency = 8
	}
	if c.LoadMoreLimit <= 0 {
		c.LoadMoreLimit = 30
	}
	if c.LoadMoreWindow == 0 {
		c.LoadMoreWindow = time.Minute
	}
}

// ViewSite resolves the locale and timezone into the settings views need.
func (c SiteConfig) ViewSite() (views.Site, error) {
	c.setDefaults()
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return views.Site{}, fmt.Errorf("spacetraveling: locale %q: %w", c.Locale, err)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return views.Site{}, fmt.Errorf("spacetraveling: timezone %q: %w", c.Timezone, err)
	}
	return views.Site{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		Lang:        tag,
		Location:    loc,
	}, nil
}

// PreviewEnabled reports whether preview sessions can be issued.
func (c SiteConfig) PreviewEnabled() bool {
	return c.SessionSecret != ""
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the logger used for requests and pre-rendering.
func WithLogger(l zerolog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}
