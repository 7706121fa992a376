package tripengine

import (
	"encoding/xml"
	"io"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// writeSitemap lists the home page and the generated page of every post.
func writeSitemap(w io.Writer, cfg SiteConfig, posts []content.Post) error {
	site := cfg.View()
	urls := []sitemapURL{{Loc: cfg.URL}}
	seen := make(map[int64]bool, len(posts))
	for _, p := range posts {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		u := sitemapURL{Loc: views.AbsolutePostURL(site, p)}
		if t, ok := tripStart(p.Date); ok {
			u.LastMod = t.Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(sitemap)
}
