package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/geocode"
)

// Picker is the location-selection sub-flow for one day. A location is ready
// to confirm once a search candidate has been selected or a name and
// coordinates were entered manually. Only one picker is open at a time.
type Picker struct {
	e   *Editor
	day int

	seq        uint64
	cancel     context.CancelFunc
	query      string
	searching  bool
	candidates []geocode.Candidate

	name   string
	coords content.Coords
	picked bool
}

// PickerState is a snapshot of a picker for rendering.
type PickerState struct {
	Day        int
	Query      string
	Searching  bool
	Candidates []geocode.Candidate
	Name       string
	Coords     content.Coords
	Picked     bool
}

// OpenLocationPicker starts the location picker for day, closing any other
// picker first.
func (e *Editor) OpenLocationPicker(day int) (*Picker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return nil, fmt.Errorf("editor.Editor.OpenLocationPicker: %w", err)
	}
	if _, err := d.day(day); err != nil {
		return nil, err
	}
	e.closePickerLocked()
	e.picker = &Picker{e: e, day: day}
	return e.picker, nil
}

// Picker returns the open picker.
func (e *Editor) Picker() (*Picker, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.picker == nil {
		return nil, ErrNoPicker
	}
	return e.picker, nil
}

// ClosePicker closes the open picker. Searches still in flight are cancelled
// and their results discarded on arrival.
func (e *Editor) ClosePicker() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closePickerLocked()
}

func (e *Editor) closePickerLocked() {
	if e.picker == nil {
		return
	}
	if e.picker.cancel != nil {
		e.picker.cancel()
		e.picker.cancel = nil
	}
	e.picker = nil
}

func (p *Picker) openLocked() bool {
	return p.e.picker == p
}

// Search runs a place search. A newer search on the same picker supersedes
// this one: its result is then discarded and ErrStale returned. Closing the
// picker has the same effect.
func (p *Picker) Search(ctx context.Context, query string) ([]geocode.Candidate, error) {
	e := p.e
	e.mu.Lock()
	if !p.openLocked() {
		e.mu.Unlock()
		return nil, fmt.Errorf("editor.Picker.Search: %w", ErrNoPicker)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		e.mu.Unlock()
		return nil, fmt.Errorf("%w: enter a place name to search", content.ErrValidation)
	}
	if e.geocoder == nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("editor.Picker.Search: %w: no geocoder configured", geocode.ErrSearchFailed)
	}
	if p.cancel != nil {
		p.cancel()
	}
	p.seq++
	seq := p.seq
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.query = query
	p.searching = true
	g := e.geocoder
	e.mu.Unlock()

	found, err := g.Search(ctx, query)

	e.mu.Lock()
	defer e.mu.Unlock()
	cancel()
	if !p.openLocked() || p.seq != seq {
		e.log.Debugw("discarding superseded search", "query", query)
		return nil, fmt.Errorf("search %q: %w", query, ErrStale)
	}
	p.searching = false
	p.cancel = nil
	if err != nil {
		p.candidates = nil
		return nil, fmt.Errorf("editor.Picker.Search: %w", err)
	}
	p.candidates = append([]geocode.Candidate(nil), found...)
	return append([]geocode.Candidate(nil), found...), nil
}

// Select picks candidate i of the latest search.
func (p *Picker) Select(i int) (geocode.Candidate, error) {
	p.e.mu.Lock()
	defer p.e.mu.Unlock()
	if !p.openLocked() {
		return geocode.Candidate{}, fmt.Errorf("editor.Picker.Select: %w", ErrNoPicker)
	}
	if i < 0 || i >= len(p.candidates) {
		return geocode.Candidate{}, fmt.Errorf("%w: no search result %d", content.ErrValidation, i)
	}
	c := p.candidates[i]
	p.name = strings.TrimSpace(strings.Split(c.Name, ",")[0])
	p.coords = c.Coords()
	p.picked = true
	return c, nil
}

// SetManual enters a location by hand.
func (p *Picker) SetManual(name string, lng, lat float64) error {
	p.e.mu.Lock()
	defer p.e.mu.Unlock()
	if !p.openLocked() {
		return fmt.Errorf("editor.Picker.SetManual: %w", ErrNoPicker)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: location name is required", content.ErrValidation)
	}
	coords := content.NewCoords(lng, lat)
	if err := coords.Validate(); err != nil {
		return err
	}
	p.name = name
	p.coords = coords
	p.picked = true
	return nil
}

// Confirm adds the picked location to the picker's day and closes the
// picker.
func (p *Picker) Confirm(description string) (LocationRef, error) {
	e := p.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if !p.openLocked() {
		return LocationRef{}, fmt.Errorf("editor.Picker.Confirm: %w", ErrNoPicker)
	}
	if !p.picked {
		return LocationRef{}, fmt.Errorf("%w: select a search result or enter a location first", content.ErrValidation)
	}
	ref, err := e.confirmLocked(p.day, p.name, p.coords, description)
	if err != nil {
		return LocationRef{}, err
	}
	e.closePickerLocked()
	return ref, nil
}

// Day returns the index of the day the picker adds to.
func (p *Picker) Day() int {
	p.e.mu.Lock()
	defer p.e.mu.Unlock()
	return p.day
}

// State returns a snapshot of the picker.
func (p *Picker) State() PickerState {
	p.e.mu.Lock()
	defer p.e.mu.Unlock()
	return PickerState{
		Day:        p.day,
		Query:      p.query,
		Searching:  p.searching,
		Candidates: append([]geocode.Candidate(nil), p.candidates...),
		Name:       p.name,
		Coords:     p.coords,
		Picked:     p.picked,
	}
}
