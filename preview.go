package spacetraveling

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// handlePreview starts a preview session. The content API redirects editors
// here with the preview ref as token and the edited document's id.
func (a *App) handlePreview(c echo.Context) error {
	if !a.previewLimiter.Allow(c.RealIP()) {
		return c.String(http.StatusTooManyRequests, "Too many preview requests. Try again later.")
	}
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing preview token")
	}

	dest := "/"
	if id := c.QueryParam("documentId"); id != "" {
		post, err := a.Source.GetByID(c.Request().Context(), id, token)
		if err != nil && !isNotFound(err) {
			return err
		}
		if err == nil {
			dest = PostPath(post.UID)
		}
	}

	if err := setPreviewRef(c, token); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, dest)
}

func (a *App) handleExitPreview(c echo.Context) error {
	if err := clearPreviewRef(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}
