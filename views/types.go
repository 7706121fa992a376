package views

import (
	"strconv"

	"github.com/eringen/tripengine/mapview"
)

// SiteConfig holds the site-wide settings every page needs.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	MapStyle    string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}

// Links are the site paths a page points to. The static build and the
// preview server differ only here.
type Links struct {
	Base   string // emitted as <base href> when set
	Home   string
	Post   string
	Assets string
	Feed   string
	Editor string // empty hides authoring links
}

// StaticLinks are the relative paths of the static build.
func StaticLinks() Links {
	return Links{Home: "index.html", Post: "post.html", Assets: "public", Feed: "feed.xml"}
}

// ServerLinks are the paths served by the preview server.
func ServerLinks() Links {
	return Links{Home: "/", Post: "/post", Assets: "/public", Feed: "/feed.xml", Editor: "/editor"}
}

// PostHref links to the detail page of post id.
func (l Links) PostHref(id int64) string {
	return mapview.PostHref(l.Post, id)
}

// Asset returns the path of an embedded or user asset.
func (l Links) Asset(name string) string {
	return l.Assets + "/" + name
}

// StaticPostPath is where the static build writes the detail page of id.
func StaticPostPath(id int64) string {
	return "post/" + strconv.FormatInt(id, 10) + ".html"
}
