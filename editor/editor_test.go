package editor_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/editor"
)

// ---- helpers ---------------------------------------------------------------

var saveTime = time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)

func newEditor(t *testing.T, opts ...editor.Option) *editor.Editor {
	t.Helper()
	base := []editor.Option{editor.WithClock(func() time.Time { return saveTime })}
	e := editor.New(append(base, opts...)...)
	e.CreateDraft()
	return e
}

func sapporo() content.Coords { return content.NewCoords(141.35, 43.06) }

func hokkaidoMeta() editor.Metadata {
	return editor.Metadata{Title: "Hokkaido Trip", StartDate: "2024-01-01", EndDate: "2024-01-03"}
}

type fakePlace struct {
	name   string
	coords content.Coords
	story  string
}

func fakePlaces(n int) []fakePlace {
	f := gofakeit.New(42)
	out := make([]fakePlace, n)
	for i := range out {
		out[i] = fakePlace{
			name:   f.City(),
			coords: content.NewCoords(f.Longitude(), f.Latitude()),
			story:  "**" + f.Word() + "** " + f.Word(),
		}
	}
	return out
}

// ---- lifecycle -------------------------------------------------------------

func TestEditor_CreateDraft_StartsWithOneDay(t *testing.T) {
	e := newEditor(t)

	assert.True(t, e.HasDraft())
	assert.Equal(t, 1, e.DayCount())
	n, err := e.LocationCount(0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEditor_NoDraft(t *testing.T) {
	e := editor.New()

	_, err := e.AddDay()
	assert.ErrorIs(t, err, editor.ErrNoDraft)
	_, err = e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	assert.ErrorIs(t, err, editor.ErrNoDraft)
	_, err = e.Save(hokkaidoMeta())
	assert.ErrorIs(t, err, editor.ErrNoDraft)
}

func TestEditor_DiscardDraft(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)

	e.DiscardDraft()

	assert.False(t, e.HasDraft())
	assert.Zero(t, e.DayCount())
}

// ---- days ------------------------------------------------------------------

func TestEditor_RemoveDay_LastDayIsInvariantViolation(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "city")
	require.NoError(t, err)

	err = e.RemoveDay(0)

	assert.ErrorIs(t, err, content.ErrInvariantViolation)
	assert.Equal(t, 1, e.DayCount())
	loc, err := e.Location(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Sapporo", loc.Name)
}

func TestEditor_RemoveDay_OutOfRange(t *testing.T) {
	e := newEditor(t)
	_, err := e.AddDay()
	require.NoError(t, err)

	assert.ErrorIs(t, e.RemoveDay(5), content.ErrValidation)
	assert.Equal(t, 2, e.DayCount())
}

func TestEditor_RemoveDay_ShiftsLaterSessions(t *testing.T) {
	e := newEditor(t)
	places := fakePlaces(3)
	for i, p := range places {
		if i > 0 {
			_, err := e.AddDay()
			require.NoError(t, err)
		}
		_, err := e.ConfirmLocation(i, p.name, p.coords, "")
		require.NoError(t, err)
		s, err := e.Session(i, 0)
		require.NoError(t, err)
		require.NoError(t, s.Edit(p.story))
	}
	removed, err := e.Session(1, 0)
	require.NoError(t, err)

	require.NoError(t, e.RemoveDay(1))

	assert.Equal(t, 2, e.DayCount())
	s, err := e.Session(1, 0)
	require.NoError(t, err)
	assert.Equal(t, places[2].story, s.Source())
	loc, err := e.Location(1, 0)
	require.NoError(t, err)
	assert.Equal(t, places[2].name, loc.Name)
	assert.Equal(t, s.HTML(), loc.Content)
	assert.ErrorIs(t, removed.Edit("gone"), editor.ErrStale)
}

// ---- locations -------------------------------------------------------------

func TestEditor_ConfirmLocation_Validation(t *testing.T) {
	tests := []struct {
		name   string
		place  string
		coords content.Coords
	}{
		{"blank name", "   ", sapporo()},
		{"longitude out of range", "Nowhere", content.NewCoords(200, 10)},
		{"latitude out of range", "Nowhere", content.NewCoords(10, -91)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t)

			_, err := e.ConfirmLocation(0, tt.place, tt.coords, "")

			assert.ErrorIs(t, err, content.ErrValidation)
			n, _ := e.LocationCount(0)
			assert.Zero(t, n)
		})
	}
}

func TestEditor_ConfirmLocation_StartsReady(t *testing.T) {
	e := newEditor(t)

	ref, err := e.ConfirmLocation(0, " Sapporo ", sapporo(), " snow festival ")

	require.NoError(t, err)
	assert.Equal(t, 0, ref.Day)
	assert.Equal(t, 0, ref.Loc)
	loc, err := e.Location(0, 0)
	require.NoError(t, err)
	assert.Equal(t, content.Location{Name: "Sapporo", Coords: sapporo(), Description: "snow festival"}, loc)
	s, err := e.Session(0, 0)
	require.NoError(t, err)
	assert.Equal(t, ref.Session, s.ID())
}

func TestEditor_ConfirmThenRemove_RoundTrip(t *testing.T) {
	e := newEditor(t)
	places := fakePlaces(4)
	for _, p := range places[:3] {
		_, err := e.ConfirmLocation(0, p.name, p.coords, "")
		require.NoError(t, err)
	}
	for i, p := range places[:3] {
		s, err := e.Session(0, i)
		require.NoError(t, err)
		require.NoError(t, s.Edit(p.story))
	}

	_, err := e.ConfirmLocation(0, places[3].name, places[3].coords, "")
	require.NoError(t, err)
	require.NoError(t, e.RemoveLocation(0, 3))

	n, err := e.LocationCount(0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, e.RemoveLocation(0, 1))
	for pos, want := range []fakePlace{places[0], places[2]} {
		s, err := e.Session(0, pos)
		require.NoError(t, err)
		assert.Equal(t, want.story, s.Source(), "session at %d", pos)
		loc, err := e.Location(0, pos)
		require.NoError(t, err)
		assert.Equal(t, want.name, loc.Name)
	}
}

func TestEditor_RemoveLocation_OtherDaysUntouched(t *testing.T) {
	e := newEditor(t)
	_, err := e.AddDay()
	require.NoError(t, err)
	_, err = e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)
	_, err = e.ConfirmLocation(1, "Otaru", content.NewCoords(141.0, 43.19), "")
	require.NoError(t, err)
	other, err := e.Session(1, 0)
	require.NoError(t, err)
	require.NoError(t, other.Edit("canal"))

	require.NoError(t, e.RemoveLocation(0, 0))

	s, err := e.Session(1, 0)
	require.NoError(t, err)
	assert.Same(t, other, s)
	assert.Equal(t, "canal", s.Source())
}

func TestEditor_SetLocationImage(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)

	require.NoError(t, e.SetLocationImage(0, 0, "data:image/png;base64,iVBORw0KGgo="))
	loc, _ := e.Location(0, 0)
	assert.True(t, loc.Image.IsImage())

	assert.ErrorIs(t, e.SetLocationImage(0, 0, "data:text/plain;base64,aGk="), content.ErrValidation)
	loc, _ = e.Location(0, 0)
	assert.True(t, loc.Image.IsImage(), "rejected input leaves the image in place")

	require.NoError(t, e.SetLocationImage(0, 0, ""))
	loc, _ = e.Location(0, 0)
	assert.Empty(t, loc.Image)
}

func TestEditor_SetLocationContent_SanitizesAndLastWriteWins(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)

	require.NoError(t, e.SetLocationContent(0, 0, "<p>first</p>"))
	require.NoError(t, e.SetLocationContent(0, 0, `<p onclick="x()">second</p><script>alert(1)</script>`))

	loc, err := e.Location(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "<p>second</p>", loc.Content)
}

func TestEditor_Thumbnail(t *testing.T) {
	e := newEditor(t)

	assert.ErrorIs(t, e.SetThumbnail("https://example.com/a.jpg"), content.ErrValidation)
	require.NoError(t, e.SetThumbnail("data:image/jpeg;base64,/9j/"))
	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, content.DataURI("data:image/jpeg;base64,/9j/"), snap.Thumbnail)

	require.NoError(t, e.ClearThumbnail())
	snap, _ = e.Snapshot()
	assert.Empty(t, snap.Thumbnail)
}

// ---- sessions --------------------------------------------------------------

func TestSession_TypeIsLiveUntilCommit(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)
	s, err := e.Session(0, 0)
	require.NoError(t, err)

	require.NoError(t, s.Type("## Ramen alley"))

	assert.True(t, s.Dirty())
	assert.Equal(t, "<h2>Ramen alley</h2>", s.HTML())
	loc, _ := e.Location(0, 0)
	assert.Empty(t, loc.Content)

	require.NoError(t, s.Commit())
	assert.False(t, s.Dirty())
	loc, _ = e.Location(0, 0)
	assert.Equal(t, "<h2>Ramen alley</h2>", loc.Content)
}

func TestEditor_SessionByID(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)
	ref, err := e.ConfirmLocation(0, "Otaru", content.NewCoords(141.0, 43.19), "")
	require.NoError(t, err)
	require.NoError(t, e.RemoveLocation(0, 0))

	s, now, err := e.SessionByID(ref.Session)

	require.NoError(t, err)
	assert.Equal(t, ref.Session, s.ID())
	assert.Equal(t, 0, now.Loc)
}

// ---- preview ---------------------------------------------------------------

func TestEditor_BuildPreview_IdempotentAndLive(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)
	_, err = e.AddDay()
	require.NoError(t, err)
	require.NoError(t, e.SetLocationContent(0, 0, "<p>stored</p>"))
	s, err := e.Session(0, 0)
	require.NoError(t, err)
	require.NoError(t, s.Type("live"))
	meta := hokkaidoMeta()
	meta.Tags = "japan, winter"

	first, err := e.BuildPreview(meta)
	require.NoError(t, err)
	second, err := e.BuildPreview(meta)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.Days, 2, "empty days are previewed")
	assert.Equal(t, "<p>live</p>", first.Days[0].Locations[0].Content)
	assert.Equal(t, "Day 2", first.Days[1].Title)
	assert.Equal(t, []string{"japan", "winter"}, first.Tags)
	assert.Equal(t, "2024.01.01 - 2024.01.03", first.DateRange)
	loc, _ := e.Location(0, 0)
	assert.Equal(t, "<p>stored</p>", loc.Content, "preview does not commit")
}

func TestEditor_BuildPreview_RequiresTitle(t *testing.T) {
	e := newEditor(t)

	_, err := e.BuildPreview(editor.Metadata{})

	assert.ErrorIs(t, err, content.ErrValidation)
}

func TestEditor_BuildPreview_DatesOptional(t *testing.T) {
	e := newEditor(t)

	p, err := e.BuildPreview(editor.Metadata{Title: "Soon"})

	require.NoError(t, err)
	assert.Empty(t, p.DateRange)
	assert.Equal(t, []string{}, p.Tags)
}

// ---- save ------------------------------------------------------------------

func TestEditor_Save_HokkaidoScenario(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)

	post, err := e.Save(hokkaidoMeta())

	require.NoError(t, err)
	assert.Equal(t, saveTime.UnixMilli(), post.ID)
	assert.Equal(t, "Hokkaido Trip", post.Title)
	assert.Equal(t, "2024.01.01 - 2024.01.03", post.Date)
	assert.Equal(t, []string{}, post.Tags)
	assert.Equal(t, content.DefaultThumbnail, post.Thumbnail)
	require.Len(t, post.Days, 1)
	assert.Equal(t, "Day 1", post.Days[0].Title)
	require.Len(t, post.Days[0].Locations, 1)
	assert.Equal(t, "Sapporo", post.Days[0].Locations[0].Name)
	assert.Equal(t, sapporo(), post.Days[0].Locations[0].Coords)

	assert.Equal(t, 1, e.DayCount(), "editor resets to a fresh draft")
	n, _ := e.LocationCount(0)
	assert.Zero(t, n)
}

func TestEditor_Freeze_LeavesDraftOpen(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)

	f, err := e.Freeze(hokkaidoMeta())

	require.NoError(t, err)
	assert.Equal(t, "Sapporo", f.Post.Days[0].Locations[0].Name)
	n, err := e.LocationCount(0)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "draft untouched until commit")

	require.NoError(t, e.Commit(f))
	n, err = e.LocationCount(0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEditor_Commit_ReplacedDraftIsStale(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)
	f, err := e.Freeze(hokkaidoMeta())
	require.NoError(t, err)

	e.CreateDraft()
	_, err = e.ConfirmLocation(0, "Otaru", content.NewCoords(140.99, 43.19), "")
	require.NoError(t, err)

	assert.ErrorIs(t, e.Commit(f), editor.ErrStale)
	loc, err := e.Location(0, 0)
	require.NoError(t, err)
	assert.Equal(t, "Otaru", loc.Name)
}

func TestEditor_Save_DropsEmptyDaysAndRenumbers(t *testing.T) {
	e := newEditor(t)
	_, err := e.AddDay()
	require.NoError(t, err)
	_, err = e.AddDay()
	require.NoError(t, err)
	_, err = e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)
	_, err = e.ConfirmLocation(2, "Hakodate", content.NewCoords(140.73, 41.77), "")
	require.NoError(t, err)

	post, err := e.Save(hokkaidoMeta())

	require.NoError(t, err)
	require.Len(t, post.Days, 2)
	assert.Equal(t, "Day 1", post.Days[0].Title)
	assert.Equal(t, "Day 2", post.Days[1].Title)
	assert.Equal(t, "Hakodate", post.Days[1].Locations[0].Name)
}

func TestEditor_Save_LocationThenEmptyDay(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)
	_, err = e.AddDay()
	require.NoError(t, err)

	post, err := e.Save(hokkaidoMeta())

	require.NoError(t, err)
	assert.Len(t, post.Days, 1)
}

func TestEditor_Save_ValidationLeavesDraft(t *testing.T) {
	tests := []struct {
		name string
		meta editor.Metadata
	}{
		{"missing title", editor.Metadata{Title: "  ", StartDate: "2024-01-01", EndDate: "2024-01-03"}},
		{"missing start", editor.Metadata{Title: "Trip", EndDate: "2024-01-03"}},
		{"missing end", editor.Metadata{Title: "Trip", StartDate: "2024-01-01"}},
		{"malformed date", editor.Metadata{Title: "Trip", StartDate: "01/01/2024", EndDate: "2024-01-03"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEditor(t)
			_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
			require.NoError(t, err)

			_, err = e.Save(tt.meta)

			assert.ErrorIs(t, err, content.ErrValidation)
			n, _ := e.LocationCount(0)
			assert.Equal(t, 1, n)
		})
	}
}

func TestMetadata_Validate_DateFormat(t *testing.T) {
	err := editor.Metadata{Title: "Trip", StartDate: "01/01/2024", EndDate: "2024-01-03"}.Validate()

	assert.ErrorIs(t, err, content.ErrValidation)
	assert.ErrorContains(t, err, "start date must be a YYYY-MM-DD date")
}

func TestEditor_Save_NoLocations(t *testing.T) {
	e := newEditor(t)
	_, err := e.AddDay()
	require.NoError(t, err)

	_, err = e.Save(hokkaidoMeta())

	assert.ErrorIs(t, err, content.ErrValidation)
	assert.Equal(t, 2, e.DayCount())
}

func TestEditor_Save_UsesLiveContentThumbnailAndTags(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)
	s, err := e.Session(0, 0)
	require.NoError(t, err)
	require.NoError(t, s.Type("*uncommitted*"))
	require.NoError(t, e.SetThumbnail("data:image/jpeg;base64,/9j/"))
	meta := hokkaidoMeta()
	meta.Tags = " japan , ,hokkaido,"

	post, err := e.Save(meta)

	require.NoError(t, err)
	assert.Equal(t, "<p><em>uncommitted</em></p>", post.Days[0].Locations[0].Content)
	assert.Equal(t, "data:image/jpeg;base64,/9j/", post.Thumbnail)
	assert.Equal(t, []string{"japan", "hokkaido"}, post.Tags)
}

func TestEditor_Save_EncodesToPostFile(t *testing.T) {
	e := newEditor(t)
	_, err := e.ConfirmLocation(0, "Sapporo", sapporo(), "")
	require.NoError(t, err)
	post, err := e.Save(hokkaidoMeta())
	require.NoError(t, err)

	name, data, err := content.EncodePostFile(post)
	require.NoError(t, err)
	back, err := content.DecodePostFile(data)

	require.NoError(t, err)
	assert.Equal(t, "hokkaido-trip.js", name)
	assert.Equal(t, post, back)
}
