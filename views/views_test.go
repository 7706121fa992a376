package views_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/editor"
	"github.com/eringen/tripengine/geocode"
	"github.com/eringen/tripengine/mapview"
	"github.com/eringen/tripengine/views"
)

// ---- helpers ---------------------------------------------------------------

var site = views.SiteConfig{
	Name:        "Slow Roads",
	URL:         "https://trips.example.com",
	Description: "Notes from the road",
	Author:      "Kim",
}

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func mapSpecs(t *testing.T, doc *goquery.Document) []mapview.Spec {
	t.Helper()
	sel := doc.Find("#" + views.MapSpecsID)
	if sel.Length() == 0 {
		return nil
	}
	var specs []mapview.Spec
	require.NoError(t, json.Unmarshal([]byte(sel.Text()), &specs))
	return specs
}

func hokkaido() content.Post {
	return content.Post{
		ID:        1704067200000,
		Title:     "Hokkaido Trip",
		Date:      "2024.01.01 - 2024.01.03",
		Thumbnail: "https://img.example.com/hokkaido.jpg",
		Tags:      []string{"Japan", "Winter"},
		Days: []content.Day{
			{Title: "Day 1", Locations: []content.Location{
				{Name: "Sapporo", Coords: content.NewCoords(141.35, 43.06), Description: "Snow festival",
					Content: "<p>Ramen <b>everywhere</b></p><script>alert(1)</script>"},
				{Name: "Otaru", Coords: content.NewCoords(141.0, 43.19)},
			}},
			{Title: "", Locations: nil},
			{Title: "Day 3", Locations: []content.Location{{Name: "Lake Toya", Coords: content.NewCoords(140.85, 42.6)}}},
		},
	}
}

func seoul() content.Post {
	return content.Post{
		ID:    1704153600000,
		Title: "Seoul <Weekend>",
		Tags:  []string{"Korea", "Winter"},
		Days: []content.Day{{Title: "Day 1", Locations: []content.Location{
			{Name: "Gyeongbokgung", Coords: content.NewCoords(126.977, 37.5796)},
		}}},
	}
}

// ---- home ------------------------------------------------------------------

func TestHome_CardsMapAndCategories(t *testing.T) {
	c := content.NewCatalog([]content.Post{hokkaido(), seoul()})

	doc := render(t, views.Home(site, views.StaticLinks(), c, views.Collapsed))

	cards := doc.Find("article.card")
	require.Equal(t, 2, cards.Length())
	assert.Equal(t, "Hokkaido Trip", cards.First().Find(".card-title a").Text())
	href, _ := cards.First().Find(".card-title a").Attr("href")
	assert.Equal(t, "post.html?id=1704067200000", href)
	assert.Equal(t, "Ramen everywhere", cards.First().Find(".card-preview").Text())
	assert.Equal(t, views.NoPreview, cards.Last().Find(".card-preview").Text())
	assert.Equal(t, 0, doc.Find(".card.expanded").Length())
	assert.Equal(t, 2, doc.Find(".card-details[hidden]").Length())

	assert.Equal(t, views.CategoriesTitle, doc.Find(".categories h2").Text())
	var tags []string
	doc.Find(".category h3").Each(func(_ int, s *goquery.Selection) { tags = append(tags, s.Text()) })
	assert.Equal(t, []string{"Japan", "Winter", "Korea"}, tags)
	assert.Equal(t, 2, doc.Find(`.category[data-tag="Winter"] li`).Length())

	specs := mapSpecs(t, doc)
	require.Len(t, specs, 1)
	assert.Equal(t, views.OverviewMapID, specs[0].Container)
	assert.Len(t, specs[0].Markers, 4)
	assert.Equal(t, 1, doc.Find("#"+views.OverviewMapID).Length())
}

func TestHome_EscapesTitles(t *testing.T) {
	c := content.NewCatalog([]content.Post{seoul()})
	var buf bytes.Buffer

	require.NoError(t, views.Home(site, views.StaticLinks(), c, views.Collapsed).Render(context.Background(), &buf))

	assert.Contains(t, buf.String(), "Seoul &lt;Weekend&gt;")
	assert.NotContains(t, buf.String(), "<Weekend>")
}

func TestHome_ExpandedCard(t *testing.T) {
	c := content.NewCatalog([]content.Post{hokkaido(), seoul()})

	doc := render(t, views.Home(site, views.ServerLinks(), c, views.ExpandedOn(hokkaido().ID)))

	expanded := doc.Find(".card.expanded")
	require.Equal(t, 1, expanded.Length())
	assert.Equal(t, 3, expanded.Find(".card-places li").Length())
	_, hidden := expanded.Find(".card-details").Attr("hidden")
	assert.False(t, hidden)
	toggle, _ := expanded.Find(".card-toggle").Attr("href")
	assert.Equal(t, "/", toggle)
	other, _ := doc.Find(".card").Last().Find(".card-toggle").Attr("href")
	assert.Equal(t, "/?expanded=1704153600000", other)
}

func TestHome_EmptyCatalog(t *testing.T) {
	doc := render(t, views.Home(site, views.StaticLinks(), content.NewCatalog(nil), views.Collapsed))

	assert.Equal(t, "No trips yet.", doc.Find(".gallery .empty").Text())
	assert.Equal(t, 0, doc.Find("#"+views.MapSpecsID).Length())
	assert.Equal(t, 0, doc.Find(".categories").Length())
}

// ---- gallery state ---------------------------------------------------------

func TestGalleryState_Toggle(t *testing.T) {
	s := views.Collapsed.Toggle(1)
	assert.True(t, s.IsExpanded(1))

	s = s.Toggle(2)
	assert.False(t, s.IsExpanded(1), "expanding another card collapses the first")
	assert.True(t, s.IsExpanded(2))

	s = s.Toggle(2)
	_, ok := s.Expanded()
	assert.False(t, ok)
}

func TestParseGalleryState(t *testing.T) {
	c := content.NewCatalog([]content.Post{hokkaido()})

	assert.True(t, views.ParseGalleryState("1704067200000", c).IsExpanded(1704067200000))
	assert.Equal(t, views.Collapsed, views.ParseGalleryState("42", c))
	assert.Equal(t, views.Collapsed, views.ParseGalleryState("abc", c))
	assert.Equal(t, views.Collapsed, views.ParseGalleryState("", c))
}

// ---- detail page -----------------------------------------------------------

func TestPostPage_DaysMapsAndContent(t *testing.T) {
	doc := render(t, views.PostPage(site, views.StaticLinks(), hokkaido()))

	assert.Equal(t, "Hokkaido Trip", doc.Find("h1").Text())
	assert.Equal(t, "2024.01.01 - 2024.01.03", doc.Find(".trip-date").Text())
	assert.Equal(t, 3, doc.Find(".visited li").Length())

	var titles []string
	doc.Find("section.day h2").Each(func(_ int, s *goquery.Selection) { titles = append(titles, s.Text()) })
	assert.Equal(t, []string{"Day 1", "Day 2", "Day 3"}, titles)

	notes := doc.Find("#loc-0-0 .location-content")
	assert.Equal(t, 1, notes.Find("b").Length())
	assert.Equal(t, 0, notes.Find("script").Length())

	specs := mapSpecs(t, doc)
	var containers []string
	for _, s := range specs {
		containers = append(containers, s.Container)
	}
	assert.Equal(t, []string{"day-map-0", "day-map-2", mapview.RouteMapID}, containers)
	assert.Equal(t, 0, doc.Find("#day-map-1").Length(), "empty day has no map")
	assert.Equal(t, 1, doc.Find("#"+mapview.RouteMapID).Length())
	assert.Contains(t, doc.Find(`script[type="application/ld+json"]`).Text(), "GeoCoordinates")
}

func TestPostPage_BaseHref(t *testing.T) {
	links := views.StaticLinks()
	links.Base = "../"

	doc := render(t, views.PostPage(site, links, seoul()))

	base, ok := doc.Find("base").Attr("href")
	require.True(t, ok)
	assert.Equal(t, "../", base)
}

func TestNotFound_RendersNoMap(t *testing.T) {
	doc := render(t, views.NotFound(site, views.ServerLinks(), nil))

	assert.Equal(t, views.NotFoundTitle, doc.Find("h1").Text())
	home, _ := doc.Find(".not-found a.back").Attr("href")
	assert.Equal(t, "/", home)
	assert.Equal(t, 0, doc.Find("#"+views.MapSpecsID).Length())
	assert.Equal(t, 0, doc.Find(".map").Length())
	_, ok := doc.Find("body").Attr("data-known-ids")
	assert.False(t, ok)
}

func TestNotFound_KnownIDs(t *testing.T) {
	doc := render(t, views.NotFound(site, views.StaticLinks(), []int64{1, 22}))

	ids, _ := doc.Find("body").Attr("data-known-ids")
	assert.Equal(t, "1,22", ids)
}

// ---- editor ----------------------------------------------------------------

type stubGeocoder struct{}

func (stubGeocoder) Search(_ context.Context, _ string) ([]geocode.Candidate, error) {
	return []geocode.Candidate{
		{Name: "Lake Toya", DisplayAddress: "Lake Toya, Hokkaido, Japan", Lng: 140.85, Lat: 42.6},
	}, nil
}

func TestEditorPage_DraftAndPicker(t *testing.T) {
	e := editor.New(editor.WithGeocoder(stubGeocoder{}))
	e.CreateDraft()
	_, err := e.ConfirmLocation(0, "Sapporo", content.NewCoords(141.35, 43.06), "city")
	require.NoError(t, err)
	p, err := e.OpenLocationPicker(0)
	require.NoError(t, err)
	_, err = p.Search(context.Background(), "toya")
	require.NoError(t, err)
	_, err = p.Select(0)
	require.NoError(t, err)
	snap, err := e.Snapshot()
	require.NoError(t, err)
	state := p.State()

	doc := render(t, views.EditorPage(site, views.ServerLinks(), views.EditorView{
		CSRF:   "tok",
		Meta:   editor.Metadata{Title: "Hokkaido <Trip>"},
		Draft:  snap,
		Picker: &state,
		Error:  "title is required",
	}))

	csrf, _ := doc.Find(`input[name="_csrf"]`).Attr("value")
	assert.Equal(t, "tok", csrf)
	title, _ := doc.Find("#title").Attr("value")
	assert.Equal(t, "Hokkaido <Trip>", title)
	assert.Equal(t, "title is required", doc.Find(".message-error").Text())
	assert.Equal(t, "Sapporo", doc.Find("#loc-0-0 h3").Text())
	ref := snap.Days[0].Locations[0].Ref
	assert.Equal(t, 1, doc.Find(`textarea[name="`+views.SourceField(ref.Session)+`"]`).Length())
	remove, _ := doc.Find("#loc-0-0 button").Last().Attr("formaction")
	assert.Equal(t, "/editor/location/remove?day=0&loc=0", remove)

	assert.Equal(t, "Lake Toya", doc.Find(".candidates button").Text())
	assert.Equal(t, 0, doc.Find(".picker button[disabled]").Length())
	specs := mapSpecs(t, doc)
	require.Len(t, specs, 1)
	assert.Equal(t, views.PickerMapID, specs[0].Container)
	require.NotNil(t, specs[0].FlyTo)
	assert.Equal(t, float64(mapview.FlyToZoom), specs[0].FlyTo.Zoom)
}

func TestEditorPage_NoPicker(t *testing.T) {
	e := editor.New()
	e.CreateDraft()
	snap, err := e.Snapshot()
	require.NoError(t, err)

	doc := render(t, views.EditorPage(site, views.ServerLinks(), views.EditorView{Draft: snap}))

	assert.Equal(t, 0, doc.Find(".picker").Length())
	assert.Equal(t, 0, doc.Find("#"+views.MapSpecsID).Length())
	assert.Equal(t, 0, doc.Find(`button[formaction="/editor/day/remove?day=0"]`).Length(), "last day cannot be removed")
	assert.Equal(t, 1, doc.Find(`button[formaction="/editor/picker/open?day=0"]`).Length())
}

func TestPreviewPage(t *testing.T) {
	e := editor.New()
	e.CreateDraft()
	_, err := e.ConfirmLocation(0, "Sapporo", content.NewCoords(141.35, 43.06), "")
	require.NoError(t, err)
	_, err = e.AddDay()
	require.NoError(t, err)
	pv, err := e.BuildPreview(editor.Metadata{Title: "Draft trip"})
	require.NoError(t, err)

	doc := render(t, views.PreviewPage(site, views.ServerLinks(), pv))

	assert.Equal(t, "Draft trip", doc.Find("h1").Text())
	assert.Equal(t, 2, doc.Find("section.day").Length())
	assert.Equal(t, 1, doc.Find(".preview-banner").Length())
	assert.Len(t, mapSpecs(t, doc), 2)
}

// ---- sanitize --------------------------------------------------------------

func TestPreviewText_Truncates(t *testing.T) {
	long := make([]byte, 150)
	for i := range long {
		long[i] = 'a'
	}
	p := content.Post{Days: []content.Day{{Locations: []content.Location{
		{Name: "empty"},
		{Name: "long", Content: "<p>" + string(long) + "</p>"},
	}}}}

	got := views.PreviewText(p)

	assert.Len(t, got, views.PreviewLength+3)
	assert.Equal(t, "...", got[len(got)-3:])
}

func TestSafeImageSrc(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://img.example.com/a.jpg", "https://img.example.com/a.jpg"},
		{"public/a.jpg", "public/a.jpg"},
		{"data:image/png;base64,AAAA", "data:image/png;base64,AAAA"},
		{"data:text/html;base64,AAAA", ""},
		{"javascript:alert(1)", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, views.SafeImageSrc(tt.in), tt.in)
	}
}
