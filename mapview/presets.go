package mapview

import (
	"fmt"
	"strconv"

	"github.com/eringen/tripengine/content"
)

// Camera defaults and fit presets used by the site pages.
var (
	OverviewCenter = content.NewCoords(139.6917, 35.6895)
	PickerCenter   = content.NewCoords(127.0, 37.5)
)

const (
	OverviewZoom = 5
	PickerZoom   = 5
	FlyToZoom    = 14

	overviewColor = "#3498db"
	numberedColor = "#4a90e2"
)

var (
	// DayFit frames the per-day maps of a post.
	DayFit = FitOptions{Padding: 50, MaxZoom: 12, SingleZoom: 12}
	// RouteFit frames the sticky map with the whole trip.
	RouteFit = FitOptions{Padding: 20, MaxZoom: 10, SingleZoom: 12}
)

// PostHref builds the detail link of a post. base is the page path, such as
// "post.html" in the static build or "/post" on the preview server.
func PostHref(base string, id int64) string {
	return base + "?id=" + strconv.FormatInt(id, 10)
}

// OverviewMap places every location of every post on one map. Clicking a
// marker opens its post.
func OverviewMap(a *Adapter, container, postBase string, posts []content.Post) Handle {
	var markers []Marker
	for _, p := range posts {
		for _, l := range p.Locations() {
			markers = append(markers, Marker{
				Coords: l.Coords,
				Color:  overviewColor,
				Popup:  &Popup{Title: l.Name, Subtitle: l.Description, Footer: p.Title},
				Action: Navigate(PostHref(postBase, p.ID)),
			})
		}
	}
	center := OverviewCenter
	return a.RenderMarkers(container, markers, Style{Center: &center, Zoom: OverviewZoom})
}

// DayMapID is the container id of the map for zero-based day i.
func DayMapID(i int) string { return fmt.Sprintf("day-map-%d", i) }

// RouteMapID is the container id of the sticky trip map.
const RouteMapID = "route-map"

// DayMap renders day i of p with numbered markers.
func DayMap(a *Adapter, p content.Post, i int) Handle {
	if i < 0 || i >= len(p.Days) {
		return NoMap
	}
	locs := p.Days[i].Locations
	markers := make([]Marker, len(locs))
	coords := make([]content.Coords, len(locs))
	for j, l := range locs {
		coords[j] = l.Coords
		markers[j] = Marker{
			Coords: l.Coords,
			Color:  numberedColor,
			Label:  strconv.Itoa(j + 1),
			Popup:  &Popup{Title: l.Name, Subtitle: l.Description},
			Action: ZoomIn(FlyToZoom),
		}
	}
	h := a.RenderMarkers(DayMapID(i), markers, Style{Zoom: 10, SingleZoom: DayFit.SingleZoom})
	a.FitToBounds(h, coords, DayFit)
	return h
}

// RouteMap renders every location of p, numbered across days, on the
// compact sticky map.
func RouteMap(a *Adapter, p content.Post) Handle {
	var markers []Marker
	var coords []content.Coords
	for i, d := range p.Days {
		for _, l := range d.Locations {
			coords = append(coords, l.Coords)
			markers = append(markers, Marker{
				Coords: l.Coords,
				Color:  numberedColor,
				Label:  strconv.Itoa(len(markers) + 1),
				Popup:  &Popup{Title: l.Name, Subtitle: p.DayTitle(i)},
				Action: ZoomIn(FlyToZoom),
			})
		}
	}
	h := a.RenderMarkers(RouteMapID, markers, Style{Zoom: 8, SingleZoom: RouteFit.SingleZoom, Compact: true})
	a.FitToBounds(h, coords, RouteFit)
	return h
}

// PickerMap is the map shown in the location picker. It opens on the default
// camera and, once a location is picked, marks it and flies there.
func PickerMap(a *Adapter, container string, picked *content.Coords) Handle {
	center := PickerCenter
	style := Style{Center: &center, Zoom: PickerZoom}
	if picked == nil {
		return a.Blank(container, style)
	}
	h := a.RenderMarkers(container, []Marker{{Coords: *picked, Action: Action{Kind: ActionPopup}}}, style)
	a.FlyTo(h, *picked, FlyToZoom)
	return h
}
