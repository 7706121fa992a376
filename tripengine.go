// Package tripengine builds a static travel blog from post files and serves a
// local preview with an authoring tool for writing new trips.
//
// The static build renders the gallery, one detail page per post, an RSS feed
// and a sitemap. The preview server renders the same pages from a cached
// catalog and hosts the editor, which saves drafts as downloadable post files.
package tripengine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/editor"
	"github.com/eringen/tripengine/geocode"
)

// App is the central tripengine application. It wires together the catalog
// cache, the editor, the geocoder, handlers and middleware.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Cache   *CatalogCache
	Editor  *editor.Editor
	Log     *zap.SugaredLogger
	Metrics *Metrics

	source       content.Source
	geocoder     editor.Geocoder
	clock        editor.Clock
	customRoutes []func(*App)
	setupOnce    sync.Once

	metaMu sync.Mutex
	meta   editor.Metadata
}

// WithLogger sets the application logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(a *App) { a.Log = l }
}

// WithSource replaces the data directory as the catalog source.
func WithSource(src content.Source) Option {
	return func(a *App) { a.source = src }
}

// WithGeocoder replaces the Nominatim client used by the location picker.
func WithGeocoder(g editor.Geocoder) Option {
	return func(a *App) { a.geocoder = g }
}

// WithClock sets the clock that stamps saved post ids.
func WithClock(c editor.Clock) Option {
	return func(a *App) { a.clock = c }
}

// New creates a tripengine App for cfg.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:  cfg,
		Echo:    echo.New(),
		Metrics: NewMetrics(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.Log == nil {
		a.Log = zap.NewNop().Sugar()
	}
	if a.source == nil {
		a.source = content.NewDirSource(cfg.DataDir)
	}
	if a.geocoder == nil {
		a.geocoder = a.newGeocoder()
	}
	a.Cache = NewCatalogCache(a.source, cfg.CatalogCacheTTL, a.Log.Named("catalog"))

	edOpts := []editor.Option{
		editor.WithGeocoder(a.geocoder),
		editor.WithLogger(a.Log.Named("editor")),
	}
	if a.clock != nil {
		edOpts = append(edOpts, editor.WithClock(a.clock))
	}
	a.Editor = editor.New(edOpts...)

	a.Echo.HideBanner = true
	a.Echo.HidePort = true
	return a
}

func (a *App) newGeocoder() *geocode.Client {
	return NewGeocoder(a.Config.Geocoder, a.Log.Named("geocode"))
}

// NewGeocoder builds the place search client described by cfg. Extra options
// are applied last.
func NewGeocoder(cfg GeocoderConfig, log *zap.SugaredLogger, extra ...geocode.Option) *geocode.Client {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	opts := []geocode.Option{
		geocode.WithBaseURL(cfg.BaseURL),
		geocode.WithUserAgent(cfg.UserAgent),
		geocode.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		geocode.WithLogger(log),
	}
	switch {
	case cfg.DisableHint:
		opts = append(opts, geocode.WithHint(""))
	case cfg.Hint != "":
		opts = append(opts, geocode.WithHint(cfg.Hint))
	}
	return geocode.New(append(opts, extra...)...)
}

// Handler returns the preview server with middleware and routes installed.
func (a *App) Handler() http.Handler {
	a.setupOnce.Do(func() {
		a.setupMiddleware()
		a.setupRoutes()
		for _, fn := range a.customRoutes {
			fn(a)
		}
	})
	return a.Echo
}

// Start serves the preview until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	a.Handler()
	a.Editor.CreateDraft()

	errc := make(chan error, 1)
	go func() {
		a.Log.Infow("preview server listening", "addr", a.Config.Addr)
		errc <- a.Echo.Start(a.Config.Addr)
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("tripengine: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("tripengine: shutdown: %w", err)
	}
	return nil
}
