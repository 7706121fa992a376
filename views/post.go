package views

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/mapview"
)

// NotFoundTitle heads the page shown for an absent or unknown post id.
const NotFoundTitle = "Post not found"

// PostPage renders the detail page of p with a map per non-empty day and the
// sticky route map.
func PostPage(site SiteConfig, links Links, p content.Post) templ.Component {
	body, specs := tripBody(site, links, p)
	return Layout(Page{
		Site:  site,
		Links: links,
		Meta: PageMeta{
			Title:       p.Title,
			Description: PreviewText(p),
			URL:         AbsolutePostURL(site, p),
			OGType:      "article",
			Image:       p.Thumbnail,
		},
		Maps:   specs,
		JSONLD: TripJsonLD(site, p),
		Body:   body,
	})
}

func tripBody(site SiteConfig, links Links, p content.Post) (templ.Component, []mapview.Spec) {
	a, sb := newAdapter(site)
	dayMaps := make([]mapview.Handle, len(p.Days))
	for i, d := range p.Days {
		if len(d.Locations) > 0 {
			dayMaps[i] = mapview.DayMap(a, p, i)
		}
	}
	route := mapview.RouteMap(a, p)

	body := component(func(ctx context.Context, w *writer) {
		w.raw(`<div class="trip">`)
		w.raw(`<article class="trip-body">`)
		w.raw(`<header class="trip-header">`)
		w.elem("h1", p.Title)
		if p.Date != "" {
			w.elem("p", p.Date, "class", "trip-date")
		}
		tagList(w, p.Tags)
		w.raw("</header>")
		image(w, p.Thumbnail, p.Title, "trip-thumbnail")

		if locs := p.Locations(); len(locs) > 0 {
			w.raw(`<section class="visited">`)
			w.elem("h2", "Visited places")
			w.raw("<ol>")
			for i, d := range p.Days {
				for j, l := range d.Locations {
					w.raw("<li>")
					w.elem("a", l.Name, "href", "#"+locationID(i, j), "data-fly", l.Coords.String())
					w.raw("</li>")
				}
			}
			w.raw("</ol></section>")
		}

		for i, d := range p.Days {
			w.open("section", "class", "day", "id", fmt.Sprintf("day-%d", i))
			w.elem("h2", p.DayTitle(i))
			if dayMaps[i] != mapview.NoMap {
				w.open("div", "id", mapview.DayMapID(i), "class", "map map-day")
				w.close("div")
			}
			for j, l := range d.Locations {
				location(ctx, w, locationID(i, j), l)
			}
			w.close("section")
		}
		w.raw("</article>")

		if route != mapview.NoMap {
			w.raw(`<aside class="trip-route">`)
			w.open("div", "id", mapview.RouteMapID, "class", "map map-route")
			w.close("div")
			w.raw("</aside>")
		}
		w.raw("</div>")
		w.elem("a", "Back to all trips", "class", "back", "href", links.Home)
	})
	return body, sb.Specs()
}

func locationID(day, loc int) string {
	return fmt.Sprintf("loc-%d-%d", day, loc)
}

func location(ctx context.Context, w *writer, id string, l content.Location) {
	w.open("div", "class", "location", "id", id, "data-fly", l.Coords.String())
	w.elem("h3", l.Name)
	if l.Description != "" {
		w.elem("p", l.Description, "class", "location-description")
	}
	image(w, string(l.Image), l.Name, "location-image")
	if l.Content != "" {
		w.raw(`<div class="location-content">`)
		w.render(ctx, RichContent(l.Content))
		w.raw("</div>")
	}
	w.close("div")
}

// NotFound renders the detail page for an id that matches no post. It never
// carries a map. knownIDs is only needed by the static build.
func NotFound(site SiteConfig, links Links, knownIDs []int64) templ.Component {
	body := component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="not-found">`)
		w.elem("h1", NotFoundTitle)
		w.elem("p", "This trip does not exist or has been removed.")
		w.elem("a", "Back to home", "class", "back", "href", links.Home)
		w.raw("</section>")
	})
	return Layout(Page{
		Site:     site,
		Links:    links,
		Meta:     PageMeta{Title: NotFoundTitle},
		KnownIDs: knownIDs,
		Body:     body,
	})
}

// ErrorPage renders a generic failure page.
func ErrorPage(site SiteConfig, links Links, title, message string) templ.Component {
	body := component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="error">`)
		w.elem("h1", title)
		w.elem("p", message)
		w.elem("a", "Back to home", "class", "back", "href", links.Home)
		w.raw("</section>")
	})
	return Layout(Page{Site: site, Links: links, Meta: PageMeta{Title: title}, Body: body})
}
