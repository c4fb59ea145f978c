package spacetraveling

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/blog"
	"github.com/eringen/spacetraveling/prismic"
)

func (a *App) handleHome(c echo.Context) error {
	if c.QueryParam("partial") == "posts" {
		return a.handleLoadMore(c)
	}
	listing, err := a.listing(c.Request().Context())
	if err != nil {
		return err
	}
	preview := a.previewRef(c) != ""
	if preview {
		c.Response().Header().Set("Cache-Control", "no-store")
	}
	return Render(c, a.Views.Home(blog.NewFeed(listing), preview))
}

// handleLoadMore serves the fragment behind one cursor. A failed fetch
// answers with a retry fragment for the same cursor.
func (a *App) handleLoadMore(c echo.Context) error {
	cursor := c.QueryParam("cursor")
	if cursor == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing cursor")
	}
	pending := blog.Feed{NextPage: cursor}
	if !a.moreLimiter.Allow(c.RealIP()) {
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.LoadMoreFailed(pending))
	}
	feed, err := a.Loader.More(c.Request().Context(), pending)
	if err != nil {
		if errors.Is(err, prismic.ErrForeignCursor) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid cursor")
		}
		a.Logger.Warn().Err(err).Str("cursor", cursor).Msg("load more failed")
		return RenderStatus(c, http.StatusBadGateway, a.Views.LoadMoreFailed(pending))
	}
	return Render(c, a.Views.PostList(feed))
}

func (a *App) listing(ctx context.Context) (blog.Batch, error) {
	if b, ok := a.Pages.Listing(); ok {
		return b, nil
	}
	b, err := a.Loader.Listing(ctx)
	if err != nil {
		return blog.Batch{}, err
	}
	a.Pages.SetListing(b)
	return b, nil
}

func (a *App) handlePost(c echo.Context) error {
	uid := c.Param("slug")
	ctx := c.Request().Context()

	if ref := a.previewRef(c); ref != "" {
		c.Response().Header().Set("Cache-Control", "no-store")
		post, err := a.Loader.Detail(ctx, uid, ref)
		if err != nil {
			return a.postError(c, err)
		}
		return Render(c, a.Views.Post(post, true))
	}

	if c.QueryParam("partial") == "post" {
		post, ok := a.Pages.Get(uid)
		if !ok {
			var err error
			if post, err = a.Loader.Detail(ctx, uid, ""); err != nil {
				return a.postError(c, err)
			}
			a.Pages.Put(post)
		}
		return Render(c, a.Views.PostPartial(post))
	}

	if post, ok := a.Pages.Get(uid); ok {
		return Render(c, a.Views.Post(post, false))
	}
	// Not pre-rendered: serve the placeholder, its script asks for the partial.
	c.Response().Header().Set("Cache-Control", "no-store")
	return Render(c, a.Views.Loading(uid))
}

func (a *App) postError(c echo.Context, err error) error {
	if errors.Is(err, prismic.ErrNotFound) {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	return err
}

func (a *App) handleSitemap(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeSitemap(c.Response(), a.Config.URL, a.Pages.Summaries())
}

func (a *App) handleFeed(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeRSS(c.Response(), a.Config, a.Pages.Summaries())
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, robotsTxt(a.Config.URL))
}

func handlePostIndexRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("server error")
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
