package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"

	"github.com/eringen/tripengine/content"
)

// buildURL joins path segments onto a base URL.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join("/", u.Path, path.Join(pathSegments...))
	return u.String()
}

// AbsolutePostURL is the public URL of the detail page of p.
func AbsolutePostURL(cfg SiteConfig, p content.Post) string {
	return buildURL(cfg.URL, StaticPostPath(p.ID))
}

// JoinTags formats a tag slice as a comma-separated string for form fields.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// WebsiteJsonLD produces a Schema.org WebSite JSON-LD block using cfg values.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      buildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// TripJsonLD produces a Schema.org BlogPosting JSON-LD block for a trip,
// listing its visited places.
func TripJsonLD(cfg SiteConfig, post content.Post) string {
	postURL := AbsolutePostURL(cfg, post)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": PreviewText(post),
		"url":         postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if len(post.Tags) > 0 {
		data["keywords"] = strings.Join(post.Tags, ", ")
	}
	var places []map[string]interface{}
	for _, l := range post.Locations() {
		places = append(places, map[string]interface{}{
			"@type": "Place",
			"name":  l.Name,
			"geo": map[string]interface{}{
				"@type":     "GeoCoordinates",
				"longitude": l.Coords.Lng(),
				"latitude":  l.Coords.Lat(),
			},
		})
	}
	if len(places) > 0 {
		data["contentLocation"] = places
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
