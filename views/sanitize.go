package views

import (
	"html"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"

	"github.com/eringen/tripengine/content"
)

// Location content is author-written HTML. It is the only markup pages embed
// unescaped, and it always passes the UGC policy first.
var (
	richPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// PreviewLength is the number of characters shown on a gallery card.
const PreviewLength = 100

// NoPreview is shown on cards whose post has no written content.
const NoPreview = "No preview available..."

// RichContent renders sanitized location content.
func RichContent(s string) templ.Component {
	return templ.Raw(Sanitize(s))
}

// Sanitize applies the rich content policy.
func Sanitize(s string) string {
	return richPolicy.Sanitize(s)
}

// PlainText strips every tag from s and collapses whitespace.
func PlainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(plainPolicy.Sanitize(s))), " ")
}

// PreviewText returns the card teaser of p: the first PreviewLength
// characters of its first written location, or NoPreview.
func PreviewText(p content.Post) string {
	for _, l := range p.Locations() {
		text := PlainText(l.Content)
		if text == "" {
			continue
		}
		if utf8.RuneCountInString(text) <= PreviewLength {
			return text
		}
		return string([]rune(text)[:PreviewLength]) + "..."
	}
	return NoPreview
}

// SafeImageSrc returns s when it is usable as an <img src>: an image data
// URI, an http(s) URL or a relative path. Anything else yields "".
func SafeImageSrc(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(s), "data:") {
		if content.DataURI(s).IsImage() {
			return s
		}
		return ""
	}
	u, err := url.Parse(s)
	if err != nil {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "":
		return s
	}
	return ""
}
