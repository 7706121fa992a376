package editor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/eringen/tripengine/content"
)

var validate = validator.New()

// Metadata is the post-level input of the authoring form.
type Metadata struct {
	Title     string `form:"title" json:"title" validate:"required"`
	StartDate string `form:"startDate" json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate   string `form:"endDate" json:"endDate" validate:"required,datetime=2006-01-02"`
	Tags      string `form:"tags" json:"tags"`
}

var fieldLabels = map[string]string{
	"Title":     "title",
	"StartDate": "start date",
	"EndDate":   "end date",
}

// Validate checks the fields required for saving.
func (m Metadata) Validate() error {
	m.Title = strings.TrimSpace(m.Title)
	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", content.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, label+" is required")
		case "datetime":
			msgs = append(msgs, label+" must be a YYYY-MM-DD date")
		default:
			msgs = append(msgs, label+" is invalid")
		}
	}
	return fmt.Errorf("%w: %s", content.ErrValidation, strings.Join(msgs, ", "))
}

// TagList splits the comma separated tags, dropping blanks. It never
// returns nil.
func (m Metadata) TagList() []string {
	tags := []string{}
	for _, t := range strings.Split(m.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// DateRange formats the trip dates for display, or returns "" when either
// date is missing.
func (m Metadata) DateRange() string {
	if m.StartDate == "" || m.EndDate == "" {
		return ""
	}
	return content.FormatDateRange(m.StartDate, m.EndDate)
}

// Frozen is a post built from the draft but not yet committed. The draft
// stays open until Commit.
type Frozen struct {
	Post content.Post
	gen  uint64
}

// Freeze converts the draft into a post without changing it. Days without
// locations are dropped and the remaining days renumbered. Live session
// content wins over stored content.
func (e *Editor) Freeze(meta Metadata) (Frozen, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return Frozen{}, fmt.Errorf("editor.Editor.Freeze: %w", err)
	}
	if err := meta.Validate(); err != nil {
		return Frozen{}, err
	}

	days := make([]content.Day, 0, len(d.days))
	for _, dd := range d.days {
		if len(dd.locations) == 0 {
			continue
		}
		locs := make([]content.Location, 0, len(dd.locations))
		for _, dl := range dd.locations {
			loc := dl.loc
			loc.Content = d.liveContent(dl)
			locs = append(locs, loc)
		}
		days = append(days, content.Day{Title: content.DefaultDayTitle(len(days)), Locations: locs})
	}
	if len(days) == 0 {
		return Frozen{}, fmt.Errorf("%w: add at least one location", content.ErrValidation)
	}

	thumb := string(d.thumbnail)
	if thumb == "" {
		thumb = content.DefaultThumbnail
	}
	post := content.Post{
		ID:        e.now().UnixMilli(),
		Title:     strings.TrimSpace(meta.Title),
		Date:      meta.DateRange(),
		Thumbnail: thumb,
		Tags:      meta.TagList(),
		Days:      days,
	}
	return Frozen{Post: post, gen: d.gen}, nil
}

// Commit resets the editor to a fresh draft once the frozen post has been
// delivered. It fails with ErrStale when the draft was replaced since Freeze.
func (e *Editor) Commit(f Frozen) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	d, err := e.draftLocked()
	if err != nil {
		return fmt.Errorf("editor.Editor.Commit: %w", err)
	}
	if d.gen != f.gen {
		return fmt.Errorf("editor.Editor.Commit: %w", ErrStale)
	}
	e.resetLocked()
	e.log.Infow("post saved", "id", f.Post.ID, "title", f.Post.Title, "days", len(f.Post.Days))
	return nil
}

// Save freezes the draft and commits it at once. The draft is left unchanged
// when validation fails.
func (e *Editor) Save(meta Metadata) (content.Post, error) {
	f, err := e.Freeze(meta)
	if err != nil {
		return content.Post{}, err
	}
	if err := e.Commit(f); err != nil {
		return content.Post{}, err
	}
	return f.Post, nil
}
