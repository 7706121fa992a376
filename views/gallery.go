package views

import (
	"strconv"

	"github.com/eringen/tripengine/content"
)

// GalleryState is the expansion state of the home gallery. At most one card
// is expanded.
type GalleryState struct {
	id       int64
	expanded bool
}

// Collapsed is the state with no expanded card.
var Collapsed = GalleryState{}

// ExpandedOn returns the state with card id expanded.
func ExpandedOn(id int64) GalleryState {
	return GalleryState{id: id, expanded: true}
}

// ParseGalleryState reads the "expanded" query value. Unknown or malformed
// ids give the collapsed state.
func ParseGalleryState(raw string, c *content.Catalog) GalleryState {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Collapsed
	}
	if _, err := c.FindByID(id); err != nil {
		return Collapsed
	}
	return ExpandedOn(id)
}

// Toggle is the state after clicking card id: the expanded card collapses,
// any other card expands and every other card collapses.
func (s GalleryState) Toggle(id int64) GalleryState {
	if s.IsExpanded(id) {
		return Collapsed
	}
	return ExpandedOn(id)
}

// IsExpanded reports whether card id is expanded.
func (s GalleryState) IsExpanded(id int64) bool {
	return s.expanded && s.id == id
}

// Expanded returns the expanded card, if any.
func (s GalleryState) Expanded() (int64, bool) {
	return s.id, s.expanded
}

// Href is the link that leads to s from home.
func (s GalleryState) Href(home string) string {
	if !s.expanded {
		return home
	}
	return home + "?expanded=" + strconv.FormatInt(s.id, 10)
}
