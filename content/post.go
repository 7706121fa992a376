// Package content holds the travel-blog content model: posts, their days and
// visited locations, the read-only catalog built from static data, and the
// codec for the post files the editor produces.
package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// DefaultThumbnail is used when a post is saved without a thumbnail.
const DefaultThumbnail = "https://images.unsplash.com/photo-1488646953014-85cb44e25828?w=400"

// Post is a single trip entry. Identity is ID, which the editor derives from
// the save timestamp in milliseconds.
type Post struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	Thumbnail string   `json:"thumbnail"`
	Tags      []string `json:"tags"`
	Days      []Day    `json:"days"`
}

// Day is one day of a trip. It has no id of its own and is addressed by its
// position within the post.
type Day struct {
	Title     string     `json:"title"`
	Locations []Location `json:"locations"`
}

// Location is a visited place, addressed by position within its day.
type Location struct {
	Name        string  `json:"name"`
	Coords      Coords  `json:"coords"`
	Description string  `json:"description"`
	Image       DataURI `json:"image"`
	Content     string  `json:"content"`
}

// Coords is a [longitude, latitude] pair, in that order, matching the map
// library's LngLat convention.
type Coords [2]float64

// NewCoords builds a Coords from longitude and latitude.
func NewCoords(lng, lat float64) Coords {
	return Coords{lng, lat}
}

// Lng returns the longitude.
func (c Coords) Lng() float64 { return c[0] }

// Lat returns the latitude.
func (c Coords) Lat() float64 { return c[1] }

// Validate reports whether c is a finite pair inside the WGS84 ranges.
func (c Coords) Validate() error {
	lng, lat := c.Lng(), c.Lat()
	if math.IsNaN(lng) || math.IsInf(lng, 0) || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return fmt.Errorf("%w: coordinates must be finite numbers", ErrValidation)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrValidation, lng)
	}
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrValidation, lat)
	}
	return nil
}

// UnmarshalJSON requires exactly two numbers.
func (c *Coords) UnmarshalJSON(b []byte) error {
	var pair []float64
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("coords: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("coords: want [lng, lat], got %d values", len(pair))
	}
	*c = Coords{pair[0], pair[1]}
	return nil
}

// String formats the pair the way the editor shows it under a location name.
func (c Coords) String() string {
	return fmt.Sprintf("%v, %v", c.Lng(), c.Lat())
}

// DataURI is an inline "data:<mime>;base64,..." payload. The empty value
// serializes as JSON null.
type DataURI string

// MarshalJSON implements json.Marshaler.
func (d DataURI) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DataURI) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*d = DataURI(s)
	return nil
}

// MediaType returns the MIME type declared by the URI, or "" when d is not
// a data URI.
func (d DataURI) MediaType() string {
	s := string(d)
	if !strings.HasPrefix(s, "data:") {
		return ""
	}
	s = s[len("data:"):]
	end := strings.IndexAny(s, ";,")
	if end < 0 {
		return ""
	}
	return strings.ToLower(s[:end])
}

// IsImage reports whether d carries an image MIME type.
func (d DataURI) IsImage() bool {
	return strings.HasPrefix(d.MediaType(), "image/")
}

// CheckCoords validates the coordinates of every location.
func (p Post) CheckCoords() error {
	for i, d := range p.Days {
		for j, l := range d.Locations {
			if err := l.Coords.Validate(); err != nil {
				return fmt.Errorf("day %d location %d (%s): %w", i+1, j+1, l.Name, err)
			}
		}
	}
	return nil
}

// Locations returns every location of the post in day order.
func (p Post) Locations() []Location {
	var out []Location
	for _, d := range p.Days {
		out = append(out, d.Locations...)
	}
	return out
}

// LocationNames lists the names of every visited place in day order.
func (p Post) LocationNames() []string {
	var names []string
	for _, d := range p.Days {
		for _, l := range d.Locations {
			names = append(names, l.Name)
		}
	}
	return names
}

// HasTag reports whether the post carries tag.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DayTitle returns the title of day i, or the numbered default when the day
// was stored without one.
func (p Post) DayTitle(i int) string {
	if i >= 0 && i < len(p.Days) && p.Days[i].Title != "" {
		return p.Days[i].Title
	}
	return DefaultDayTitle(i)
}

// DefaultDayTitle is the title given to the zero-based day i.
func DefaultDayTitle(i int) string {
	return fmt.Sprintf("Day %d", i+1)
}

// FormatDateRange renders two "YYYY-MM-DD" dates as the display range
// "YYYY.MM.DD - YYYY.MM.DD".
func FormatDateRange(start, end string) string {
	return strings.ReplaceAll(start, "-", ".") + " - " + strings.ReplaceAll(end, "-", ".")
}
