package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/markdown"
)

// Session is the live rich-text editing context of one location. It is
// identified by a surrogate id assigned when the location is confirmed and
// dies with the location.
type Session struct {
	e  *Editor
	id uuid.UUID

	source   string
	html     string
	dirty    bool
	imageSeq uint64
}

func newSession(e *Editor) *Session {
	return &Session{e: e, id: uuid.New()}
}

// ID returns the session's surrogate id.
func (s *Session) ID() uuid.UUID { return s.id }

// Session returns the editing session of the location at (day, loc).
func (e *Editor) Session(day, loc int) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return nil, fmt.Errorf("editor.Editor.Session: %w", err)
	}
	dl, err := d.location(day, loc)
	if err != nil {
		return nil, err
	}
	s, ok := d.sessions[dl.session]
	if !ok {
		return nil, fmt.Errorf("editor.Editor.Session: %w: session missing for day %d location %d", content.ErrInvariantViolation, day, loc)
	}
	return s, nil
}

// SessionByID returns a session and the current position of its location.
func (e *Editor) SessionByID(id uuid.UUID) (*Session, LocationRef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return nil, LocationRef{}, fmt.Errorf("editor.Editor.SessionByID: %w", err)
	}
	s, ok := d.sessions[id]
	if !ok {
		return nil, LocationRef{}, fmt.Errorf("session %s: %w", id, ErrStale)
	}
	_, ref, ok := d.find(id)
	if !ok {
		return nil, LocationRef{}, fmt.Errorf("session %s: %w: no owning location", id, content.ErrInvariantViolation)
	}
	return s, ref, nil
}

// alive reports whether s still belongs to the open draft. Callers hold e.mu.
func (s *Session) alive() (*draft, bool) {
	d := s.e.draft
	if d == nil {
		return nil, false
	}
	return d, d.sessions[s.id] == s
}

// Type replaces the live buffer with the Markdown source without storing it
// on the location.
func (s *Session) Type(source string) error {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	if _, ok := s.alive(); !ok {
		return fmt.Errorf("editor.Session.Type: %w", ErrStale)
	}
	s.source = source
	s.html = s.e.policy.Sanitize(markdown.ToHTML(source))
	s.dirty = true
	return nil
}

// Edit replaces the live buffer with source and stores the rendered HTML on
// the location.
func (s *Session) Edit(source string) error {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	d, ok := s.alive()
	if !ok {
		return fmt.Errorf("editor.Session.Edit: %w", ErrStale)
	}
	dl, _, found := d.find(s.id)
	if !found {
		return fmt.Errorf("editor.Session.Edit: %w: no owning location", content.ErrInvariantViolation)
	}
	s.source = source
	s.e.commitLocked(d, dl, markdown.ToHTML(source))
	return nil
}

// Commit stores the live buffer on the location.
func (s *Session) Commit() error {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	d, ok := s.alive()
	if !ok {
		return fmt.Errorf("editor.Session.Commit: %w", ErrStale)
	}
	if !s.dirty {
		return nil
	}
	dl, _, found := d.find(s.id)
	if !found {
		return fmt.Errorf("editor.Session.Commit: %w: no owning location", content.ErrInvariantViolation)
	}
	s.e.commitLocked(d, dl, s.html)
	return nil
}

// Source returns the Markdown last given to Type or Edit.
func (s *Session) Source() string {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	return s.source
}

// HTML returns the live rendered content.
func (s *Session) HTML() string {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	return s.html
}

// Dirty reports whether the live buffer holds uncommitted changes.
func (s *Session) Dirty() bool {
	s.e.mu.Lock()
	defer s.e.mu.Unlock()
	return s.dirty
}

// liveContent returns the content preview and save should use for dl.
// Callers hold e.mu.
func (d *draft) liveContent(dl *draftLocation) string {
	if s, ok := d.sessions[dl.session]; ok && s.dirty {
		return s.html
	}
	return dl.loc.Content
}
