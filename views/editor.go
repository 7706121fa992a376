package views

import (
	"context"
	"strconv"

	"github.com/a-h/templ"
	"github.com/google/uuid"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/editor"
	"github.com/eringen/tripengine/mapview"
)

// PickerMapID is the container of the location picker map.
const PickerMapID = "picker-map"

// Authoring form field names shared with the server handlers.
const (
	FieldCSRF        = "_csrf"
	FieldQuery       = "q"
	FieldManualName  = "manualName"
	FieldManualLng   = "manualLng"
	FieldManualLat   = "manualLat"
	FieldDescription = "description"
	FieldThumbnail   = "thumbnail"
)

// SourceField is the textarea holding the markdown source of a session.
func SourceField(id uuid.UUID) string { return "source-" + id.String() }

// ImageField is the file input for the image of a session's location.
func ImageField(id uuid.UUID) string { return "image-" + id.String() }

// EditorView is everything the authoring page shows.
type EditorView struct {
	CSRF    string
	Meta    editor.Metadata
	Draft   editor.Snapshot
	Picker  *editor.PickerState
	Message string
	Error   string
}

// EditorPage renders the authoring page. The whole draft is one multipart
// form; each button posts it to its own action.
func EditorPage(site SiteConfig, links Links, v EditorView) templ.Component {
	a, sb := newAdapter(site)
	if v.Picker != nil {
		var picked *content.Coords
		if v.Picker.Picked {
			c := v.Picker.Coords
			picked = &c
		}
		mapview.PickerMap(a, PickerMapID, picked)
	}
	action := func(path string, args ...int) string {
		u := links.Editor + path
		for i := 0; i+1 < len(args); i += 2 {
			sep := "&"
			if i == 0 {
				sep = "?"
			}
			u += sep + editorArgs[args[i]] + "=" + strconv.Itoa(args[i+1])
		}
		return u
	}

	body := component(func(ctx context.Context, w *writer) {
		w.raw(`<section class="editor">`)
		w.elem("h1", "New trip")
		if v.Error != "" {
			w.elem("p", v.Error, "class", "message message-error", "role", "alert")
		}
		if v.Message != "" {
			w.elem("p", v.Message, "class", "message message-ok", "role", "status")
		}

		w.open("form", "method", "post", "action", links.Editor, "enctype", "multipart/form-data", "class", "editor-form")
		w.open("input", "type", "hidden", "name", FieldCSRF, "value", v.CSRF)

		w.raw(`<fieldset class="meta">`)
		w.elem("legend", "Trip")
		textInput(w, "Title", "title", "text", v.Meta.Title)
		textInput(w, "Start date", "startDate", "date", v.Meta.StartDate)
		textInput(w, "End date", "endDate", "date", v.Meta.EndDate)
		textInput(w, "Tags (comma separated)", "tags", "text", v.Meta.Tags)
		w.raw(`<div class="thumbnail">`)
		image(w, string(v.Draft.Thumbnail), "Thumbnail", "thumbnail-preview")
		w.elem("label", "Thumbnail", "for", FieldThumbnail)
		w.open("input", "type", "file", "id", FieldThumbnail, "name", FieldThumbnail, "accept", "image/*")
		button(w, "Upload thumbnail", action("/thumbnail"))
		if v.Draft.Thumbnail != "" {
			button(w, "Remove thumbnail", action("/thumbnail/clear"))
		}
		w.raw("</div></fieldset>")

		for i, d := range v.Draft.Days {
			w.open("fieldset", "class", "day", "id", "day-"+strconv.Itoa(i))
			w.elem("legend", d.Title)
			for _, l := range d.Locations {
				locationEditor(ctx, w, l, action)
			}
			if v.Picker != nil && v.Picker.Day == i {
				picker(w, *v.Picker, action)
			} else {
				button(w, "Add location", action("/picker/open", argDay, i))
			}
			if len(v.Draft.Days) > 1 {
				button(w, "Remove day", action("/day/remove", argDay, i))
			}
			w.close("fieldset")
		}

		w.raw(`<div class="editor-actions">`)
		button(w, "Add day", action("/day/add"))
		button(w, "Preview", action("/preview"))
		button(w, "Save", action("/save"))
		button(w, "Discard draft", action("/discard"))
		w.raw("</div>")
		w.raw("</form></section>")
	})

	return Layout(Page{
		Site:  site,
		Links: links,
		Meta:  PageMeta{Title: "New trip"},
		Maps:  sb.Specs(),
		Body:  body,
	})
}

const (
	argDay = iota
	argLoc
	argIndex
)

var editorArgs = []string{argDay: "day", argLoc: "loc", argIndex: "i"}

func textInput(w *writer, label, name, typ, value string) {
	w.raw(`<div class="field">`)
	w.elem("label", label, "for", name)
	w.open("input", "type", typ, "id", name, "name", name, "value", value)
	w.raw("</div>")
}

func button(w *writer, label, formaction string) {
	w.elem("button", label, "type", "submit", "formaction", formaction, "formnovalidate", "formnovalidate")
}

func locationEditor(ctx context.Context, w *writer, l editor.SnapshotLocation, action func(string, ...int) string) {
	ref := l.Ref
	w.open("div", "class", "location", "id", locationID(ref.Day, ref.Loc), "data-session", ref.Session.String())
	w.elem("h3", l.Location.Name)
	w.elem("p", l.Location.Coords.String(), "class", "coords")
	if l.Location.Description != "" {
		w.elem("p", l.Location.Description, "class", "location-description")
	}

	image(w, string(l.Location.Image), l.Location.Name, "location-image")
	w.open("input", "type", "file", "name", ImageField(ref.Session), "accept", "image/*")
	button(w, "Upload image", action("/location/image", argDay, ref.Day, argLoc, ref.Loc))
	if l.Location.Image != "" {
		button(w, "Remove image", action("/location/image/clear", argDay, ref.Day, argLoc, ref.Loc))
	}

	field := SourceField(ref.Session)
	w.elem("label", "Notes", "for", field)
	w.elem("textarea", l.Source, "id", field, "name", field, "rows", "8")
	w.elem("p", "## heading, **bold**, *italic*, ++underline++, - lists, > quotes, [links](https://...)", "class", "hint")
	if l.Dirty {
		w.elem("span", "Unsaved changes", "class", "badge dirty")
	}
	button(w, "Save notes", action("/location/content", argDay, ref.Day, argLoc, ref.Loc))
	if l.Location.Content != "" {
		w.raw(`<div class="location-content">`)
		w.render(ctx, RichContent(l.Location.Content))
		w.raw("</div>")
	}
	button(w, "Remove location", action("/location/remove", argDay, ref.Day, argLoc, ref.Loc))
	w.close("div")
}

func picker(w *writer, p editor.PickerState, action func(string, ...int) string) {
	w.raw(`<div class="picker">`)
	w.elem("h3", "Add a location")
	w.raw(`<div class="field">`)
	w.elem("label", "Search", "for", FieldQuery)
	w.open("input", "type", "search", "id", FieldQuery, "name", FieldQuery, "value", p.Query)
	button(w, "Search", action("/picker/search"))
	w.raw("</div>")

	if len(p.Candidates) > 0 {
		w.raw(`<ul class="candidates">`)
		for i, c := range p.Candidates {
			w.raw("<li>")
			w.elem("button", c.Name, "type", "submit", "formaction", action("/picker/select", argIndex, i), "formnovalidate", "formnovalidate")
			w.elem("small", c.DisplayAddress)
			w.raw("</li>")
		}
		w.raw("</ul>")
	} else if p.Query != "" && !p.Searching {
		w.elem("p", "No places found. Enter the location by hand below.", "class", "hint")
	}

	w.open("div", "id", PickerMapID, "class", "map map-picker")
	w.close("div")

	w.raw(`<fieldset class="manual">`)
	w.elem("legend", "Manual entry")
	textInput(w, "Name", FieldManualName, "text", p.Name)
	lng, lat := "", ""
	if p.Picked {
		lng = strconv.FormatFloat(p.Coords.Lng(), 'f', -1, 64)
		lat = strconv.FormatFloat(p.Coords.Lat(), 'f', -1, 64)
	}
	textInput(w, "Longitude", FieldManualLng, "text", lng)
	textInput(w, "Latitude", FieldManualLat, "text", lat)
	button(w, "Use these coordinates", action("/picker/manual"))
	w.raw("</fieldset>")

	if p.Picked {
		w.elem("p", "Selected: "+p.Name+" ("+p.Coords.String()+")", "class", "picked")
	}
	textInput(w, "Description", FieldDescription, "text", "")
	if p.Picked {
		button(w, "Confirm location", action("/picker/confirm"))
	} else {
		w.elem("button", "Confirm location", "type", "submit", "disabled", "disabled")
	}
	button(w, "Cancel", action("/picker/close"))
	w.raw("</div>")
}

// PreviewPage renders the draft the way its detail page would look.
func PreviewPage(site SiteConfig, links Links, p editor.Preview) templ.Component {
	post := content.Post{
		Title:     p.Title,
		Date:      p.DateRange,
		Thumbnail: string(p.Thumbnail),
		Tags:      p.Tags,
		Days:      p.Days,
	}
	trip, specs := tripBody(site, links, post)
	body := component(func(ctx context.Context, w *writer) {
		w.raw(`<div class="preview-banner">`)
		w.elem("p", "Preview. Nothing has been saved.")
		w.elem("a", "Back to the editor", "href", links.Editor)
		w.raw("</div>")
		w.render(ctx, trip)
	})
	return Layout(Page{
		Site:  site,
		Links: links,
		Meta:  PageMeta{Title: "Preview: " + p.Title},
		Maps:  specs,
		Body:  body,
	})
}
