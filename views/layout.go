package views

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/tripengine/mapview"
)

// Map library assets loaded by every page that shows a map.
const (
	MapLibreScript = "https://unpkg.com/maplibre-gl@4.7.1/dist/maplibre-gl.js"
	MapLibreCSS    = "https://unpkg.com/maplibre-gl@4.7.1/dist/maplibre-gl.css"
)

// MapSpecsID is the id of the script element holding the page's map specs.
const MapSpecsID = "map-specs"

// Page is the shell shared by every page.
type Page struct {
	Site   SiteConfig
	Links  Links
	Meta   PageMeta
	Maps   []mapview.Spec
	JSONLD string
	// KnownIDs is set on the static not-found page so the script can forward
	// post.html?id=N to the generated page of a known post.
	KnownIDs []int64
	Body     templ.Component
}

// Layout renders p as a complete HTML document.
func Layout(p Page) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		title := p.Site.Name
		if p.Meta.Title != "" && p.Meta.Title != p.Site.Name {
			title = p.Meta.Title + " | " + p.Site.Name
		}
		desc := p.Meta.Description
		if desc == "" {
			desc = p.Site.Description
		}

		w.raw("<!DOCTYPE html>")
		w.open("html", "lang", "en")
		w.raw("<head>", `<meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		if p.Links.Base != "" {
			w.open("base", "href", p.Links.Base)
		}
		w.elem("title", title)
		w.open("meta", "name", "description", "content", desc)
		if p.Meta.URL != "" {
			w.open("link", "rel", "canonical", "href", p.Meta.URL)
			w.open("meta", "property", "og:url", "content", p.Meta.URL)
		}
		w.open("meta", "property", "og:title", "content", title)
		w.open("meta", "property", "og:description", "content", desc)
		if p.Meta.OGType != "" {
			w.open("meta", "property", "og:type", "content", p.Meta.OGType)
		}
		if src := SafeImageSrc(p.Meta.Image); src != "" && !strings.HasPrefix(src, "data:") {
			w.open("meta", "property", "og:image", "content", src)
		}
		if p.Links.Feed != "" {
			w.open("link", "rel", "alternate", "type", "application/rss+xml", "title", p.Site.Name, "href", p.Links.Feed)
		}
		w.open("link", "rel", "stylesheet", "href", MapLibreCSS)
		w.open("link", "rel", "stylesheet", "href", p.Links.Asset("style.css"))
		w.open("script", "src", MapLibreScript, "defer", "defer")
		w.close("script")
		w.open("script", "src", p.Links.Asset("tripmap.js"), "defer", "defer")
		w.close("script")
		if p.JSONLD != "" {
			// json.Marshal escapes <, > and &, so the block cannot close the script early.
			w.raw(`<script type="application/ld+json">`, p.JSONLD, "</script>")
		}
		w.raw("</head>")

		if len(p.KnownIDs) > 0 {
			ids := make([]string, len(p.KnownIDs))
			for i, id := range p.KnownIDs {
				ids[i] = strconv.FormatInt(id, 10)
			}
			w.open("body", "data-known-ids", strings.Join(ids, ","))
		} else {
			w.raw("<body>")
		}

		w.raw(`<header class="site-header">`)
		w.elem("a", p.Site.Name, "class", "site-name", "href", p.Links.Home)
		w.raw(`<nav>`)
		w.elem("a", "Trips", "href", p.Links.Home)
		if p.Links.Editor != "" {
			w.elem("a", "New trip", "href", p.Links.Editor)
		}
		if p.Links.Feed != "" {
			w.elem("a", "RSS", "href", p.Links.Feed)
		}
		w.raw("</nav></header>")

		w.raw(`<main>`)
		w.render(ctx, p.Body)
		w.raw("</main>")

		w.raw(`<footer class="site-footer">`)
		if p.Site.Author != "" {
			w.elem("p", "Written by "+p.Site.Author)
		}
		w.raw("</footer>")

		if len(p.Maps) > 0 {
			specs, err := json.Marshal(p.Maps)
			if err != nil {
				w.err = err
				return
			}
			w.raw(`<script type="application/json" id="`+MapSpecsID+`">`, string(specs), "</script>")
		}
		w.raw("</body></html>")
	})
}

// newAdapter returns a map adapter recording into a fresh SpecBackend.
func newAdapter(site SiteConfig) (*mapview.Adapter, *mapview.SpecBackend) {
	sb := mapview.NewSpecBackend()
	return mapview.New(sb, mapview.WithStyleURL(site.MapStyle)), sb
}

func tagList(w *writer, tags []string) {
	if len(tags) == 0 {
		return
	}
	w.raw(`<ul class="tags">`)
	for _, t := range tags {
		w.elem("li", t, "class", "tag")
	}
	w.raw("</ul>")
}

func image(w *writer, src, alt, class string) {
	src = SafeImageSrc(src)
	if src == "" {
		return
	}
	w.open("img", "src", src, "alt", alt, "class", class, "loading", "lazy")
}
