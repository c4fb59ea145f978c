// Package spacetraveling serves and exports a blog whose posts live in a
// Prismic repository, built with Go, Echo, and templ.
//
// Pages are rendered through the ViewFuncs struct, so templates can be
// swapped without touching handlers. The same views drive the server
// (serve) and the static export (Generator).
package spacetraveling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/views"
)

// ViewFuncs holds the components the app calls when rendering pages.
type ViewFuncs struct {
	Home           func(feed blog.Feed, preview bool) templ.Component
	PostList       func(feed blog.Feed) templ.Component
	LoadMoreFailed func(feed blog.Feed) templ.Component
	Post           func(post blog.PostDetail, preview bool) templ.Component
	PostPartial    func(post blog.PostDetail) templ.Component
	Loading        func(uid string) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// DefaultViews wires the bundled templates.
func DefaultViews(v *views.Views) ViewFuncs {
	return ViewFuncs{
		Home:           v.Home,
		PostList:       v.PostList,
		LoadMoreFailed: v.LoadMoreFailed,
		Post:           v.Post,
		PostPartial:    v.PostPartial,
		Loading:        v.Loading,
		NotFound:       v.NotFound,
		ServerError:    v.ServerError,
	}
}

// App is the site server. It wires together the loader, the pre-rendered
// page set, handlers, middleware, and views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Loader *blog.Loader
	Pages  *PageStore
	Views  ViewFuncs
	Logger zerolog.Logger

	moreLimiter  *RateLimiter
	customRoutes []func(*App)
	setupOnce    sync.Once
}

// New creates an App with the given configuration, loader and views.
func New(cfg SiteConfig, loader *blog.Loader, vf ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Loader: loader,
		Pages:  NewPageStore(),
		Views:  vf,
		Logger: zerolog.Nop(),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Setup installs middleware and routes. It is called by Start and may be
// called directly to use the App as an http.Handler.
func (a *App) Setup() {
	a.setupOnce.Do(func() {
		a.moreLimiter = NewRateLimiter(a.Config.LoadMoreLimit, a.Config.LoadMoreWindow)
		a.setupMiddleware()
		a.setupRoutes()
		for _, fn := range a.customRoutes {
			fn(a)
		}
	})
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.StaticFS("/public", assets)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/post", handlePostIndexRedirect)
	e.GET("/post/", handlePostIndexRedirect)
	e.GET("/post/:slug/", a.handlePost)

	e.GET("/api/preview", a.handlePreview)
	e.GET("/api/exit-preview", a.handleExitPreview)
}

// ServeHTTP lets the App be mounted or tested as a plain handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.Setup()
	a.Echo.ServeHTTP(w, r)
}

// Prerender loads the first listing page and every post into the page
// set. Any backend error aborts and leaves the previous set in place.
func (a *App) Prerender(ctx context.Context) error {
	start := time.Now()
	listing, err := a.Loader.Listing(ctx)
	if err != nil {
		return fmt.Errorf("spacetraveling: prerender: %w", err)
	}
	uids, err := a.Loader.Paths(ctx)
	if err != nil {
		return fmt.Errorf("spacetraveling: prerender: %w", err)
	}
	posts, err := loadDetails(ctx, a.Loader, uids, a.Config.BuildConcurrency)
	if err != nil {
		return fmt.Errorf("spacetraveling: prerender: %w", err)
	}
	a.Pages.Replace(listing, posts)
	a.Logger.Info().
		Int("posts", len(posts)).
		Dur("took", time.Since(start)).
		Msg("pre-rendered page set")
	return nil
}

// Start pre-renders the page set and serves until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	a.Setup()
	if err := a.Prerender(ctx); err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", a.Config.Addr).Msg("listening")
		if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("spacetraveling: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	a.Logger.Info().Msg("shutting down")
	return a.Echo.Shutdown(shutdownCtx)
}

// Close releases background resources.
func (a *App) Close() error {
	if a.moreLimiter != nil {
		a.moreLimiter.Close()
	}
	return nil
}

// loadDetails fetches every uid with at most limit requests in flight.
// The result keeps the order of uids. The first failure cancels the rest.
func loadDetails(ctx context.Context, loader *blog.Loader, uids []string, limit int) ([]blog.PostDetail, error) {
	posts := make([]blog.PostDetail, len(uids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, uid := range uids {
		g.Go(func() error {
			p, err := loader.Detail(gctx, uid, "")
			if err != nil {
				return err
			}
			posts[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return posts, nil
}
