package tripengine

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/views"
)

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded assets first, then the user's static dir for everything else.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := http.FileServer(http.FS(embeddedFS))
	e.GET("/public/tripmap.js", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.GET("/public/style.css", echo.WrapHandler(http.StripPrefix("/public/", embeddedHandler)))
	e.Static("/public", a.Config.StaticDir)

	e.GET("/", a.handleHome)
	e.GET("/post", a.handlePost)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	if a.Config.MetricsEnabled {
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
			Gatherer: a.Metrics.Registry,
		}))
	}

	a.setupAuthoringRoutes()
}

func (a *App) handleHome(c echo.Context) error {
	cat := a.Cache.Catalog()
	state := views.ParseGalleryState(c.QueryParam("expanded"), cat)
	return Render(c, views.Home(a.Config.View(), views.ServerLinks(), cat, state))
}

func (a *App) handlePost(c echo.Context) error {
	id, err := strconv.ParseInt(c.QueryParam("id"), 10, 64)
	if err != nil {
		return a.renderNotFound(c)
	}
	post, err := a.Cache.Catalog().FindByID(id)
	if errors.Is(err, content.ErrNotFound) {
		return a.renderNotFound(c)
	}
	if err != nil {
		return err
	}
	return Render(c, views.PostPage(a.Config.View(), views.ServerLinks(), post))
}

func (a *App) handleFeed(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeRSS(c.Response(), a.Config, a.Cache.Catalog().Posts())
}

func (a *App) handleSitemap(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return writeSitemap(c.Response(), a.Config, a.Cache.Catalog().Posts())
}

func (a *App) renderNotFound(c echo.Context) error {
	return RenderStatus(c, http.StatusNotFound, views.NotFound(a.Config.View(), views.ServerLinks(), nil))
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = a.renderNotFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Log.Errorw("server error", "uri", c.Request().RequestURI, "error", err)
		_ = RenderStatus(c, code, views.ErrorPage(a.Config.View(), views.ServerLinks(),
			"Something went wrong", "The page could not be rendered. Check the server log."))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
