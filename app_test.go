package tripengine_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/eringen/tripengine"
	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/geocode"
)

// ---- fixtures --------------------------------------------------------------

func trips() content.StaticSource {
	return content.StaticSource{
		{
			ID:        1,
			Title:     "Hokkaido Trip",
			Date:      "2024.01.01 - 2024.01.03",
			Thumbnail: content.DefaultThumbnail,
			Tags:      []string{"Japan"},
			Days: []content.Day{
				{Title: "Day 1", Locations: []content.Location{
					{Name: "Sapporo", Coords: content.NewCoords(141.35, 43.06), Content: "<p>Ramen</p>"},
				}},
			},
		},
		{
			ID:    22,
			Title: "Seoul Weekend",
			Date:  "2024.03.09 - 2024.03.10",
			Tags:  []string{"Korea"},
			Days: []content.Day{
				{Title: "Day 1", Locations: []content.Location{
					{Name: "Gyeongbokgung", Coords: content.NewCoords(126.977, 37.579)},
				}},
			},
		},
	}
}

type fakeGeocoder struct {
	SearchFn func(ctx context.Context, query string) ([]geocode.Candidate, error)
}

func (f *fakeGeocoder) Search(ctx context.Context, query string) ([]geocode.Candidate, error) {
	return f.SearchFn(ctx, query)
}

func sapporoGeocoder() *fakeGeocoder {
	return &fakeGeocoder{SearchFn: func(context.Context, string) ([]geocode.Candidate, error) {
		return []geocode.Candidate{
			{Name: "Sapporo", DisplayAddress: "Sapporo, Hokkaido, Japan", Lng: 141.35, Lat: 43.06},
		}, nil
	}}
}

func newTestApp(t *testing.T, src content.Source, opts ...tripengine.Option) *tripengine.App {
	t.Helper()
	cfg := tripengine.SiteConfig{
		Name:      "Slow Roads",
		URL:       "https://trips.example.com",
		DataDir:   t.TempDir(),
		StaticDir: t.TempDir(),
		OutputDir: t.TempDir(),
	}
	opts = append([]tripengine.Option{
		tripengine.WithSource(src),
		tripengine.WithGeocoder(sapporoGeocoder()),
		tripengine.WithClock(func() time.Time { return time.UnixMilli(1717200000000) }),
	}, opts...)
	return tripengine.New(cfg, opts...)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// editorClient drives the authoring pages with the CSRF cookie issued by the
// first GET.
type editorClient struct {
	t     *testing.T
	h     http.Handler
	token string
}

func newEditorClient(t *testing.T, h http.Handler) *editorClient {
	t.Helper()
	rec := get(t, h, "/editor")
	require.Equal(t, http.StatusOK, rec.Code)
	var token string
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "_csrf" {
			token = ck.Value
		}
	}
	require.NotEmpty(t, token)

	doc := parse(t, rec)
	hidden, _ := doc.Find(`input[name="_csrf"]`).Attr("value")
	require.Equal(t, token, hidden)
	return &editorClient{t: t, h: h, token: token}
}

func (c *editorClient) post(target string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-CSRF-Token", c.token)
	req.AddCookie(&http.Cookie{Name: "_csrf", Value: c.token})
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	return rec
}

func parse(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}
