package spacetraveling

import (
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	sessionName = "preview_session"
	previewKey  = "ref"
)

// handlePreview starts a preview session for the release in ?token and
// redirects to the previewed document.
func (a *App) handlePreview(c echo.Context) error {
	if !a.Config.PreviewEnabled() {
		return echo.ErrNotFound
	}
	ref := c.QueryParam("token")
	if ref == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing token")
	}
	target := "/"
	if id := c.QueryParam("documentId"); id != "" {
		path, err := a.Loader.Resolve(c.Request().Context(), id, ref)
		if err != nil {
			return err
		}
		target = path
	}
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values[previewKey] = ref
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

func (a *App) handleExitPreview(c echo.Context) error {
	if a.Config.PreviewEnabled() {
		sess, err := session.Get(sessionName, c)
		if err != nil {
			return err
		}
		delete(sess.Values, previewKey)
		sess.Options.MaxAge = -1
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return err
		}
	}
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

// previewRef returns the release ref of the current preview session, or ""
// outside preview mode.
func (a *App) previewRef(c echo.Context) string {
	if !a.Config.PreviewEnabled() {
		return ""
	}
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return ""
	}
	ref, _ := sess.Values[previewKey].(string)
	return ref
}
