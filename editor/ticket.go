package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/eringen/tripengine/content"
)

type ticketKind int

const (
	imageTicket ticketKind = iota + 1
	thumbnailTicket
)

// Ticket identifies one asynchronous image read. A ticket is honoured only
// while its target still exists and no newer read for the same slot began.
type Ticket struct {
	kind    ticketKind
	gen     uint64
	session uuid.UUID
	seq     uint64
}

// Session returns the editing session the read targets, or uuid.Nil for a
// thumbnail read.
func (t Ticket) Session() uuid.UUID { return t.session }

// BeginImageRead starts a read for the image of the location at (day, loc).
func (e *Editor) BeginImageRead(day, loc int) (Ticket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return Ticket{}, fmt.Errorf("editor.Editor.BeginImageRead: %w", err)
	}
	dl, err := d.location(day, loc)
	if err != nil {
		return Ticket{}, err
	}
	s := d.sessions[dl.session]
	if s == nil {
		return Ticket{}, fmt.Errorf("editor.Editor.BeginImageRead: %w: session missing", content.ErrInvariantViolation)
	}
	s.imageSeq++
	return Ticket{kind: imageTicket, gen: d.gen, session: s.id, seq: s.imageSeq}, nil
}

// CompleteImageRead attaches img to whichever position the ticket's location
// holds now. It returns ErrStale when the location was removed, the draft was
// replaced or a newer read for the same location began.
func (e *Editor) CompleteImageRead(t Ticket, img content.DataURI) (LocationRef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.kind != imageTicket {
		return LocationRef{}, fmt.Errorf("%w: not an image ticket", content.ErrValidation)
	}
	d := e.draft
	if d == nil || d.gen != t.gen {
		return LocationRef{}, fmt.Errorf("image read: %w", ErrStale)
	}
	s, ok := d.sessions[t.session]
	if !ok || s.imageSeq != t.seq {
		return LocationRef{}, fmt.Errorf("image read: %w", ErrStale)
	}
	if err := checkImage(img); err != nil {
		return LocationRef{}, err
	}
	dl, ref, ok := d.find(t.session)
	if !ok {
		return LocationRef{}, fmt.Errorf("image read: %w", ErrStale)
	}
	dl.loc.Image = img
	return ref, nil
}

// BeginThumbnailRead starts a read for the post thumbnail.
func (e *Editor) BeginThumbnailRead() (Ticket, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return Ticket{}, fmt.Errorf("editor.Editor.BeginThumbnailRead: %w", err)
	}
	d.thumbSeq++
	return Ticket{kind: thumbnailTicket, gen: d.gen, seq: d.thumbSeq}, nil
}

// CompleteThumbnailRead sets the thumbnail read under t.
func (e *Editor) CompleteThumbnailRead(t Ticket, img content.DataURI) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t.kind != thumbnailTicket {
		return fmt.Errorf("%w: not a thumbnail ticket", content.ErrValidation)
	}
	d := e.draft
	if d == nil || d.gen != t.gen || d.thumbSeq != t.seq {
		return fmt.Errorf("thumbnail read: %w", ErrStale)
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
