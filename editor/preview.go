package editor

import (
	"fmt"
	"strings"

	"github.com/eringen/tripengine/content"
)

// Preview is what the post would look like if saved now. Empty days are
// included so the author sees them.
type Preview struct {
	Title     string
	DateRange string
	Thumbnail content.DataURI
	Tags      []string
	Days      []content.Day
}

// BuildPreview projects the draft and meta into a Preview. It does not change
// any state, and live session content wins over stored content.
func (e *Editor) BuildPreview(meta Metadata) (Preview, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return Preview{}, fmt.Errorf("editor.Editor.BuildPreview: %w", err)
	}
	title := strings.TrimSpace(meta.Title)
	if title == "" {
		return Preview{}, fmt.Errorf("%w: title is required", content.ErrValidation)
	}

	p := Preview{
		Title:     title,
		DateRange: meta.DateRange(),
		Thumbnail: d.thumbnail,
		Tags:      meta.TagList(),
		Days:      make([]content.Day, len(d.days)),
	}
	for i, dd := range d.days {
		locs := make([]content.Location, len(dd.locations))
		for j, dl := range dd.locations {
			locs[j] = dl.loc
			locs[j].Content = d.liveContent(dl)
		}
		p.Days[i] = content.Day{Title: content.DefaultDayTitle(i), Locations: locs}
	}
	return p, nil
}

// Snapshot is the authoring view of the draft.
type Snapshot struct {
	Days      []SnapshotDay
	Thumbnail content.DataURI
}

// SnapshotDay is one day of a Snapshot.
type SnapshotDay struct {
	Title     string
	Locations []SnapshotLocation
}

// SnapshotLocation carries a location together with its session state.
type SnapshotLocation struct {
	Ref      LocationRef
	Location content.Location
	Source   string
	Dirty    bool
}

// Snapshot returns a copy of the draft for rendering the authoring page.
func (e *Editor) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return Snapshot{}, fmt.Errorf("editor.Editor.Snapshot: %w", err)
	}
	snap := Snapshot{Thumbnail: d.thumbnail, Days: make([]SnapshotDay, len(d.days))}
	for i, dd := range d.days {
		day := SnapshotDay{Title: content.DefaultDayTitle(i)}
		for j, dl := range dd.locations {
			sl := SnapshotLocation{
				Ref:      LocationRef{Day: i, Loc: j, Session: dl.session},
				Location: dl.loc,
			}
			if s, ok := d.sessions[dl.session]; ok {
				sl.Source = s.source
				sl.Dirty = s.dirty
				sl.Location.Content = d.liveContent(dl)
			}
			day.Locations = append(day.Locations, sl)
		}
		snap.Days[i] = day
	}
	return snap, nil
}
