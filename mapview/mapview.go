// Package mapview is a thin façade over the browser map library. Pages do not
// talk to the library directly: they describe maps through an Adapter, whose
// Backend records the commands. SpecBackend turns them into a JSON document
// the embedded tripmap.js script replays with maplibre.
package mapview

import (
	"github.com/eringen/tripengine/content"
)

// DefaultStyleURL is the vector tile style every map uses unless overridden.
const DefaultStyleURL = "https://tiles.openfreemap.org/styles/liberty"

// Handle identifies a rendered map. The zero Handle stands for "no map" and
// every operation on it is a no-op.
type Handle string

// NoMap is the zero Handle.
const NoMap Handle = ""

// ActionKind says what clicking a marker does.
type ActionKind string

const (
	ActionPopup    ActionKind = "popup"
	ActionNavigate ActionKind = "navigate"
	ActionZoom     ActionKind = "zoom"
)

// Action is the click behaviour of a marker, resolved by the caller.
type Action struct {
	Kind ActionKind `json:"kind"`
	Href string     `json:"href,omitempty"`
	Zoom float64    `json:"zoom,omitempty"`
}

// Navigate returns an action that opens href.
func Navigate(href string) Action { return Action{Kind: ActionNavigate, Href: href} }

// ZoomIn returns an action that flies to the marker at zoom.
func ZoomIn(zoom float64) Action { return Action{Kind: ActionZoom, Zoom: zoom} }

// Popup is the plain-text content of a marker popup. The script inserts it
// as text, never as markup.
type Popup struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Footer   string `json:"footer,omitempty"`
}

// Marker is one point on a map.
type Marker struct {
	Coords content.Coords `json:"coords"`
	Color  string         `json:"color,omitempty"`
	Label  string         `json:"label,omitempty"`
	Popup  *Popup         `json:"popup,omitempty"`
	Action Action         `json:"action"`
}

// Style configures a new map.
type Style struct {
	URL string
	// Center, when set, fixes the initial camera. Otherwise the map opens on
	// the mean position of its markers.
	Center *content.Coords
	// Zoom is the initial zoom for maps with several markers.
	Zoom float64
	// SingleZoom is the zoom used when the map shows a single marker.
	SingleZoom float64
	// Compact selects the small marker rendering.
	Compact bool
}

// FitOptions tunes FitToBounds.
type FitOptions struct {
	Padding int
	MaxZoom float64
	// SingleZoom is used instead of bounds fitting for a single location.
	SingleZoom float64
}

// Bounds is a south-west, north-east pair.
type Bounds [2]content.Coords

// Backend performs map commands.
type Backend interface {
	Create(container, styleURL string, center content.Coords, zoom float64, compact bool) Handle
	AddMarker(h Handle, m Marker)
	FitBounds(h Handle, b Bounds, padding int, maxZoom float64)
	JumpTo(h Handle, center content.Coords, zoom float64)
	FlyTo(h Handle, center content.Coords, zoom float64)
	Remove(h Handle)
}

// Adapter exposes the map operations pages need.
type Adapter struct {
	backend  Backend
	styleURL string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithStyleURL sets the style used by maps whose Style leaves URL empty.
// An empty url keeps DefaultStyleURL.
func WithStyleURL(url string) Option {
	return func(a *Adapter) {
		if url != "" {
			a.styleURL = url
		}
	}
}

// New returns an Adapter over b.
func New(b Backend, opts ...Option) *Adapter {
	a := &Adapter{backend: b, styleURL: DefaultStyleURL}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RenderMarkers creates a map in container showing markers. With no markers
// nothing is created and NoMap is returned.
func (a *Adapter) RenderMarkers(container string, markers []Marker, style Style) Handle {
	if len(markers) == 0 {
		return NoMap
	}
	if style.URL == "" {
		style.URL = a.styleURL
	}
	coords := make([]content.Coords, len(markers))
	for i, m := range markers {
		coords[i] = m.Coords
	}
	center := Mean(coords)
	zoom := style.Zoom
	if style.Center != nil {
		center = *style.Center
	} else if len(markers) == 1 && style.SingleZoom > 0 {
		zoom = style.SingleZoom
	}

	h := a.backend.Create(container, style.URL, center, zoom, style.Compact)
	for _, m := range markers {
		a.backend.AddMarker(h, m)
	}
	return h
}

// Blank creates a map without markers. style.Center is required; without
// it nothing is created.
func (a *Adapter) Blank(container string, style Style) Handle {
	if style.Center == nil {
		return NoMap
	}
	if style.URL == "" {
		style.URL = a.styleURL
	}
	return a.backend.Create(container, style.URL, *style.Center, style.Zoom, style.Compact)
}

// FitToBounds frames coords on map h. A single location is centred directly
// at opts.SingleZoom and an empty list changes nothing.
func (a *Adapter) FitToBounds(h Handle, coords []content.Coords, opts FitOptions) {
	if h == NoMap || len(coords) == 0 {
		return
	}
	if len(coords) == 1 {
		zoom := opts.SingleZoom
		if zoom == 0 {
			zoom = opts.MaxZoom
		}
		a.backend.JumpTo(h, coords[0], zoom)
		return
	}
	a.backend.FitBounds(h, BoundsOf(coords), opts.Padding, opts.MaxZoom)
}

// FlyTo animates map h to coords at zoom.
func (a *Adapter) FlyTo(h Handle, coords content.Coords, zoom float64) {
	if h == NoMap {
		return
	}
	a.backend.FlyTo(h, coords, zoom)
}

// Destroy releases map h.
func (a *Adapter) Destroy(h Handle) {
	if h == NoMap {
		return
	}
	a.backend.Remove(h)
}

// BoundsOf returns the smallest box holding every coordinate.
func BoundsOf(coords []content.Coords) Bounds {
	if len(coords) == 0 {
		return Bounds{}
	}
	sw, ne := coords[0], coords[0]
	for _, c := range coords[1:] {
		sw = content.NewCoords(min(sw.Lng(), c.Lng()), min(sw.Lat(), c.Lat()))
		ne = content.NewCoords(max(ne.Lng(), c.Lng()), max(ne.Lat(), c.Lat()))
	}
	return Bounds{sw, ne}
}

// Mean returns the average position of coords.
func Mean(coords []content.Coords) content.Coords {
	if len(coords) == 0 {
		return content.Coords{}
	}
	var lng, lat float64
	for _, c := range coords {
		lng += c.Lng()
		lat += c.Lat()
	}
	n := float64(len(coords))
	return content.NewCoords(lng/n, lat/n)
}
