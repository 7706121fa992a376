package tripengine

import (
	"encoding/xml"
	"io"
	"time"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/views"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
	Categories  []string `xml:"category"`
}

// tripStart parses the first date of a "YYYY.MM.DD - YYYY.MM.DD" range.
func tripStart(date string) (time.Time, bool) {
	if len(date) < len("2006.01.02") {
		return time.Time{}, false
	}
	t, err := time.Parse("2006.01.02", date[:len("2006.01.02")])
	return t, err == nil
}

func writeRSS(w io.Writer, cfg SiteConfig, posts []content.Post) error {
	site := cfg.View()
	items := make([]rssItem, 0, len(posts))
	for _, p := range posts {
		pubDate := ""
		if t, ok := tripStart(p.Date); ok {
			pubDate = t.Format(time.RFC1123Z)
		}
		postURL := views.AbsolutePostURL(site, p)
		items = append(items, rssItem{
			Title:       p.Title,
			Link:        postURL,
			Description: views.PreviewText(p),
			PubDate:     pubDate,
			GUID:        postURL,
			Categories:  p.Tags,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       cfg.Name,
			Link:        cfg.URL,
			Description: cfg.Description,
			Items:       items,
		},
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(feed)
}
