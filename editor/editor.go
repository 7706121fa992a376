// Package editor holds the authoring state machine for a single new post.
//
// An Editor owns at most one Draft. Days and locations are addressed by
// position, but every location carries the surrogate id of its editing
// session, so removing a day or a location never leaves a session keyed to
// the wrong place. All mutations are serialized by the editor's mutex;
// geocoder calls and image reads run outside it and are reconciled through
// sequence numbers and tickets when they complete.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/geocode"
)

var (
	// ErrNoDraft is returned when an operation needs a draft and none is open.
	ErrNoDraft = errors.New("no draft open")
	// ErrStale is returned when an asynchronous result arrives for a picker,
	// session or draft that has since been closed or superseded. The result
	// is discarded.
	ErrStale = errors.New("stale result discarded")
	// ErrNoPicker is returned when a picker operation is attempted while no
	// location picker is open.
	ErrNoPicker = errors.New("no location picker open")
)

// Geocoder finds candidate places for a free-text query.
type Geocoder interface {
	Search(ctx context.Context, query string) ([]geocode.Candidate, error)
}

// Clock returns the current time. Save derives post ids from it.
type Clock func() time.Time

// Editor is the authoring controller. It is safe for concurrent use.
type Editor struct {
	mu       sync.Mutex
	now      Clock
	geocoder Geocoder
	log      *zap.SugaredLogger
	policy   *bluemonday.Policy

	draft  *draft
	picker *Picker
	gen    uint64
}

// Option configures an Editor.
type Option func(*Editor)

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(e *Editor) { e.now = c }
}

// WithGeocoder sets the place search used by location pickers.
func WithGeocoder(g Geocoder) Option {
	return func(e *Editor) { e.geocoder = g }
}

// WithLogger sets the editor logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Editor) { e.log = l }
}

// New returns an Editor with no open draft.
func New(opts ...Option) *Editor {
	e := &Editor{
		now:    time.Now,
		log:    zap.NewNop().Sugar(),
		policy: bluemonday.UGCPolicy(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type draft struct {
	gen       uint64
	days      []*draftDay
	sessions  map[uuid.UUID]*Session
	thumbnail content.DataURI
	thumbSeq  uint64
}

type draftDay struct {
	locations []*draftLocation
}

type draftLocation struct {
	loc     content.Location
	session uuid.UUID
}

// LocationRef identifies a location both by its current position and by the
// stable id of its editing session.
type LocationRef struct {
	Day     int
	Loc     int
	Session uuid.UUID
}

// CreateDraft opens a fresh draft holding one empty day, replacing any draft
// already open. Pending searches and reads of the old draft become stale.
func (e *Editor) CreateDraft() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.log.Debugw("draft created", "generation", e.gen)
}

// DiscardDraft drops the open draft, if any.
func (e *Editor) DiscardDraft() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closePickerLocked()
	e.draft = nil
	e.gen++
}

// HasDraft reports whether a draft is open.
func (e *Editor) HasDraft() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft != nil
}

func (e *Editor) resetLocked() {
	e.closePickerLocked()
	e.gen++
	e.draft = &draft{
		gen:      e.gen,
		days:     []*draftDay{{}},
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (e *Editor) draftLocked() (*draft, error) {
	if e.draft == nil {
		return nil, ErrNoDraft
	}
	return e.draft, nil
}

func (d *draft) day(i int) (*draftDay, error) {
	if i < 0 || i >= len(d.days) {
		return nil, fmt.Errorf("%w: day %d does not exist", content.ErrValidation, i)
	}
	return d.days[i], nil
}

func (d *draft) location(day, loc int) (*draftLocation, error) {
	dd, err := d.day(day)
	if err != nil {
		return nil, err
	}
	if loc < 0 || loc >= len(dd.locations) {
		return nil, fmt.Errorf("%w: location %d of day %d does not exist", content.ErrValidation, loc, day)
	}
	return dd.locations[loc], nil
}

// find returns the current position of the location owning session id.
func (d *draft) find(id uuid.UUID) (*draftLocation, LocationRef, bool) {
	for di, dd := range d.days {
		for li, dl := range dd.locations {
			if dl.session == id {
				return dl, LocationRef{Day: di, Loc: li, Session: id}, true
			}
		}
	}
	return nil, LocationRef{}, false
}

// DayCount returns the number of days in the draft.
func (e *Editor) DayCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return 0
	}
	return len(e.draft.days)
}

// AddDay appends an empty day and returns its index.
func (e *Editor) AddDay() (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return 0, fmt.Errorf("editor.Editor.AddDay: %w", err)
	}
	d.days = append(d.days, &draftDay{})
	return len(d.days) - 1, nil
}

// RemoveDay removes day i together with the editing sessions of its
// locations. The last remaining day cannot be removed.
func (e *Editor) RemoveDay(i int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return fmt.Errorf("editor.Editor.RemoveDay: %w", err)
	}
	dd, err := d.day(i)
	if err != nil {
		return err
	}
	if len(d.days) <= 1 {
		return fmt.Errorf("%w: at least one day is required", content.ErrInvariantViolation)
	}
	for _, dl := range dd.locations {
		delete(d.sessions, dl.session)
	}
	d.days = append(d.days[:i], d.days[i+1:]...)
	if p := e.picker; p != nil {
		switch {
		case p.day == i:
			e.closePickerLocked()
		case p.day > i:
			p.day--
		}
	}
	return nil
}

// ConfirmLocation appends a ready location to day and opens its editing
// session. Nothing changes when name is blank or coords is invalid.
func (e *Editor) ConfirmLocation(day int, name string, coords content.Coords, description string) (LocationRef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.confirmLocked(day, name, coords, description)
}

func (e *Editor) confirmLocked(day int, name string, coords content.Coords, description string) (LocationRef, error) {
	d, err := e.draftLocked()
	if err != nil {
		return LocationRef{}, fmt.Errorf("editor.Editor.ConfirmLocation: %w", err)
	}
	dd, err := d.day(day)
	if err != nil {
		return LocationRef{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return LocationRef{}, fmt.Errorf("%w: location name is required", content.ErrValidation)
	}
	if err := coords.Validate(); err != nil {
		return LocationRef{}, err
	}

	s := newSession(e)
	d.sessions[s.id] = s
	dd.locations = append(dd.locations, &draftLocation{
		loc: content.Location{
			Name:        name,
			Coords:      coords,
			Description: strings.TrimSpace(description),
		},
		session: s.id,
	})
	return LocationRef{Day: day, Loc: len(dd.locations) - 1, Session: s.id}, nil
}

// RemoveLocation removes one location and its editing session. Sessions of
// other locations are untouched.
func (e *Editor) RemoveLocation(day, loc int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return fmt.Errorf("editor.Editor.RemoveLocation: %w", err)
	}
	dl, err := d.location(day, loc)
	if err != nil {
		return err
	}
	delete(d.sessions, dl.session)
	dd := d.days[day]
	dd.locations = append(dd.locations[:loc], dd.locations[loc+1:]...)
	return nil
}

// SetLocationImage attaches img to a location, or clears it when img is
// empty. Only image data URIs are accepted.
func (e *Editor) SetLocationImage(day, loc int, img content.DataURI) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return fmt.Errorf("editor.Editor.SetLocationImage: %w", err)
	}
	dl, err := d.location(day, loc)
	if err != nil {
		return err
	}
	if err := checkImage(img); err != nil {
		return err
	}
	dl.loc.Image = img
	return nil
}

// SetLocationContent stores the rich-text HTML of a location. The last
// write wins.
func (e *Editor) SetLocationContent(day, loc int, html string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return fmt.Errorf("editor.Editor.SetLocationContent: %w", err)
	}
	dl, err := d.location(day, loc)
	if err != nil {
		return err
	}
	e.commitLocked(d, dl, html)
	return nil
}

func (e *Editor) commitLocked(d *draft, dl *draftLocation, html string) {
	clean := e.policy.Sanitize(html)
	dl.loc.Content = clean
	if s, ok := d.sessions[dl.session]; ok {
		s.html = clean
		s.dirty = false
	}
}

// Location returns a copy of the stored location at (day, loc).
func (e *Editor) Location(day, loc int) (content.Location, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return content.Location{}, err
	}
	dl, err := d.location(day, loc)
	if err != nil {
		return content.Location{}, err
	}
	return dl.loc, nil
}

// LocationCount returns the number of locations in day.
func (e *Editor) LocationCount(day int) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return 0, err
	}
	dd, err := d.day(day)
	if err != nil {
		return 0, err
	}
	return len(dd.locations), nil
}

// SetThumbnail sets the post thumbnail. It must be an image data URI.
func (e *Editor) SetThumbnail(img content.DataURI) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return fmt.Errorf("editor.Editor.SetThumbnail: %w", err)
	}
	if img == "" {
		return fmt.Errorf("%w: thumbnail is empty", content.ErrValidation)
	}
	if err := checkImage(img); err != nil {
		return err
	}
	d.thumbnail = img
	d.thumbSeq++
	return nil
}

// ClearThumbnail removes the thumbnail. Pending thumbnail reads become stale.
func (e *Editor) ClearThumbnail() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return fmt.Errorf("editor.Editor.ClearThumbnail: %w", err)
	}
	d.thumbnail = ""
	d.thumbSeq++
	return nil
}

func checkImage(img content.DataURI) error {
	if img != "" && !img.IsImage() {
		return fmt.Errorf("%w: only image files can be attached", content.ErrValidation)
	}
	return nil
}
