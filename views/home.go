package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/mapview"
)

// OverviewMapID is the container of the home page map.
const OverviewMapID = "overview-map"

// CategoriesTitle heads the per-tag section of the home page.
const CategoriesTitle = "Trips by region"

// Home renders the gallery page: the overview map, one card per post and
// the posts grouped by tag.
func Home(site SiteConfig, links Links, c *content.Catalog, state GalleryState) templ.Component {
	a, sb := newAdapter(site)
	h := mapview.OverviewMap(a, OverviewMapID, links.Post, c.Posts())

	body := component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="intro">`)
		w.elem("h1", site.Name)
		if site.Description != "" {
			w.elem("p", site.Description)
		}
		w.raw("</section>")

		if h != mapview.NoMap {
			w.open("div", "id", OverviewMapID, "class", "map map-overview")
			w.close("div")
		}

		w.raw(`<section class="gallery">`)
		w.elem("h2", "Trips")
		if c.Len() == 0 {
			w.elem("p", "No trips yet.", "class", "empty")
		}
		for _, p := range c.Posts() {
			card(w, links, p, state)
		}
		w.raw("</section>")

		categories(w, links, c)
	})

	return Layout(Page{
		Site:   site,
		Links:  links,
		Meta:   PageMeta{Title: site.Name, URL: buildURL(site.URL), OGType: "website"},
		Maps:   sb.Specs(),
		JSONLD: WebsiteJsonLD(site),
		Body:   body,
	})
}

func card(w *writer, links Links, p content.Post, state GalleryState) {
	id := strconv.FormatInt(p.ID, 10)
	expanded := state.IsExpanded(p.ID)
	class := "card"
	if expanded {
		class += " expanded"
	}
	w.open("article", "class", class, "id", "post-"+id, "data-post-id", id)
	image(w, p.Thumbnail, p.Title, "card-thumbnail")
	w.raw(`<h3 class="card-title">`)
	w.elem("a", p.Title, "href", links.PostHref(p.ID))
	w.raw("</h3>")
	if p.Date != "" {
		w.elem("p", p.Date, "class", "card-date")
	}
	tagList(w, p.Tags)
	w.elem("p", PreviewText(p), "class", "card-preview")

	// tripmap.js toggles hidden details in place.
	if expanded {
		w.open("div", "class", "card-details")
	} else {
		w.open("div", "class", "card-details", "hidden", "hidden")
	}
	if names := p.LocationNames(); len(names) > 0 {
		w.raw(`<ul class="card-places">`)
		for _, n := range names {
			w.elem("li", n)
		}
		w.raw("</ul>")
	}
	w.elem("a", "Read the full trip", "class", "card-read", "href", links.PostHref(p.ID))
	w.close("div")

	label := "Show more"
	if expanded {
		label = "Show less"
	}
	w.elem("a", label, "class", "card-toggle", "href", state.Toggle(p.ID).Href(links.Home))
	w.close("article")
}

func categories(w *writer, links Links, c *content.Catalog) {
	tags := c.Tags()
	if len(tags) == 0 {
		return
	}
	w.raw(`<section class="categories">`)
	w.elem("h2", CategoriesTitle)
	for _, tag := range tags {
		w.open("div", "class", "category", "data-tag", tag)
		w.elem("h3", tag)
		w.raw("<ul>")
		for _, p := range c.PostsByTag(tag) {
			w.raw("<li>")
			w.elem("a", p.Title, "href", links.PostHref(p.ID))
			w.raw("</li>")
		}
		w.raw("</ul>")
		w.close("div")
	}
	w.raw("</section>")
}
