package tripengine

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/tripengine/content"
	"github.com/eringen/tripengine/editor"
	"github.com/eringen/tripengine/geocode"
	"github.com/eringen/tripengine/views"
)

// manualInput is the hand-entered location of the picker.
type manualInput struct {
	Name string `form:"manualName" validate:"required"`
	Lng  string `form:"manualLng" validate:"required,longitude"`
	Lat  string `form:"manualLat" validate:"required,latitude"`
}

// editorAction performs one authoring step and returns the status message
// shown above the form.
type editorAction func(c echo.Context) (string, error)

func (a *App) setupAuthoringRoutes() {
	g := a.Echo.Group("/editor")
	g.GET("", a.handleEditor)
	g.POST("", a.action(func(echo.Context) (string, error) { return "", nil }))

	g.POST("/day/add", a.action(a.addDay))
	g.POST("/day/remove", a.action(a.removeDay))

	g.POST("/picker/open", a.action(a.openPicker))
	g.POST("/picker/search", a.action(a.searchPlaces))
	g.POST("/picker/select", a.action(a.selectPlace))
	g.POST("/picker/manual", a.action(a.manualPlace))
	g.POST("/picker/confirm", a.action(a.confirmPlace))
	g.POST("/picker/close", a.action(a.closePicker))

	g.POST("/location/remove", a.action(a.removeLocation))
	g.POST("/location/content", a.action(a.commitContent))
	g.POST("/location/image", a.action(a.uploadLocationImage))
	g.POST("/location/image/clear", a.action(a.clearLocationImage))

	g.POST("/thumbnail", a.action(a.uploadThumbnail))
	g.POST("/thumbnail/clear", a.action(a.clearThumbnail))

	g.POST("/discard", a.action(a.discardDraft))
	g.POST("/preview", a.handlePreview)
	g.POST("/save", a.handleSave)
}

func (a *App) handleEditor(c echo.Context) error {
	a.ensureDraft()
	return a.renderEditor(c, http.StatusOK, "", "")
}

func (a *App) ensureDraft() {
	if !a.Editor.HasDraft() {
		a.Editor.CreateDraft()
	}
}

// action wraps an authoring step: it keeps the posted metadata and typed
// notes, runs fn and re-renders the editor with the outcome.
func (a *App) action(fn editorAction) echo.HandlerFunc {
	return func(c echo.Context) error {
		a.ensureDraft()
		if _, err := a.syncForm(c); err != nil {
			return a.editorError(c, err)
		}
		msg, err := fn(c)
		if err != nil {
			return a.editorError(c, err)
		}
		return a.renderEditor(c, http.StatusOK, msg, "")
	}
}

// syncForm stores the posted metadata and pushes every posted notes field
// into its session's live buffer.
func (a *App) syncForm(c echo.Context) (editor.Metadata, error) {
	var meta editor.Metadata
	if err := c.Bind(&meta); err != nil {
		return editor.Metadata{}, fmt.Errorf("%w: unreadable form", content.ErrValidation)
	}
	a.metaMu.Lock()
	a.meta = meta
	a.metaMu.Unlock()

	params, err := c.FormParams()
	if err != nil {
		return meta, nil
	}
	snap, err := a.Editor.Snapshot()
	if err != nil {
		return meta, err
	}
	for _, d := range snap.Days {
		for _, l := range d.Locations {
			vals, ok := params[views.SourceField(l.Ref.Session)]
			if !ok || len(vals) == 0 || vals[0] == l.Source {
				continue
			}
			s, _, err := a.Editor.SessionByID(l.Ref.Session)
			if err != nil {
				continue
			}
			if err := s.Type(vals[0]); err != nil {
				return meta, err
			}
		}
	}
	return meta, nil
}

func (a *App) currentMeta() editor.Metadata {
	a.metaMu.Lock()
	defer a.metaMu.Unlock()
	return a.meta
}

func (a *App) renderEditor(c echo.Context, code int, msg, errMsg string) error {
	snap, err := a.Editor.Snapshot()
	if err != nil {
		return err
	}
	v := views.EditorView{
		CSRF:    CsrfToken(c),
		Meta:    a.currentMeta(),
		Draft:   snap,
		Message: msg,
		Error:   errMsg,
	}
	if p, err := a.Editor.Picker(); err == nil {
		st := p.State()
		v.Picker = &st
	}
	return RenderStatus(c, code, views.EditorPage(a.Config.View(), views.ServerLinks(), v))
}

// editorError shows failures inline. Unknown errors go to the error handler.
func (a *App) editorError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, content.ErrValidation), errors.Is(err, content.ErrInvariantViolation):
		return a.renderEditor(c, http.StatusUnprocessableEntity, "", userMessage(err))
	case errors.Is(err, geocode.ErrSearchFailed):
		return a.renderEditor(c, http.StatusBadGateway, "",
			"The place search is not reachable right now. Try again, or enter the location by hand.")
	case errors.Is(err, editor.ErrStale):
		return a.renderEditor(c, http.StatusConflict, "", "That result is out of date and was discarded.")
	case errors.Is(err, editor.ErrNoPicker):
		return a.renderEditor(c, http.StatusConflict, "", "The location picker is closed.")
	case errors.Is(err, editor.ErrNoDraft):
		a.ensureDraft()
		return a.renderEditor(c, http.StatusConflict, "", "The draft was reset.")
	}
	return err
}

// userMessage strips the sentinel prefix from err.
func userMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{content.ErrValidation, content.ErrInvariantViolation} {
		prefix := sentinel.Error() + ": "
		if i := strings.Index(msg, prefix); i >= 0 {
			return msg[i+len(prefix):]
		}
	}
	return msg
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", content.ErrValidation, name)
	}
	return v, nil
}

func dayLoc(c echo.Context) (int, int, error) {
	day, err := intParam(c, "day")
	if err != nil {
		return 0, 0, err
	}
	loc, err := intParam(c, "loc")
	if err != nil {
		return 0, 0, err
	}
	return day, loc, nil
}

// ---- days ----

func (a *App) addDay(echo.Context) (string, error) {
	n, err := a.Editor.AddDay()
	if err != nil {
		return "", err
	}
	return content.DefaultDayTitle(n) + " added.", nil
}

func (a *App) removeDay(c echo.Context) (string, error) {
	day, err := intParam(c, "day")
	if err != nil {
		return "", err
	}
	if err := a.Editor.RemoveDay(day); err != nil {
		return "", err
	}
	return "Day removed.", nil
}

// ---- picker ----

func (a *App) openPicker(c echo.Context) (string, error) {
	day, err := intParam(c, "day")
	if err != nil {
		return "", err
	}
	_, err = a.Editor.OpenLocationPicker(day)
	return "", err
}

func (a *App) searchPlaces(c echo.Context) (string, error) {
	p, err := a.Editor.Picker()
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), a.Config.Geocoder.Timeout)
	defer cancel()
	found, err := p.Search(ctx, c.FormValue(views.FieldQuery))
	switch {
	case err == nil:
		a.Metrics.GeocodeSearches.WithLabelValues("ok").Inc()
	case errors.Is(err, geocode.ErrSearchFailed):
		a.Metrics.GeocodeSearches.WithLabelValues("failed").Inc()
		return "", err
	default:
		return "", err
	}
	if len(found) == 0 {
		return "No places found.", nil
	}
	return fmt.Sprintf("%d places found.", len(found)), nil
}

func (a *App) selectPlace(c echo.Context) (string, error) {
	i, err := intParam(c, "i")
	if err != nil {
		return "", err
	}
	p, err := a.Editor.Picker()
	if err != nil {
		return "", err
	}
	_, err = p.Select(i)
	return "", err
}

func (a *App) manualPlace(c echo.Context) (string, error) {
	var in manualInput
	if err := c.Bind(&in); err != nil {
		return "", fmt.Errorf("%w: unreadable form", content.ErrValidation)
	}
	if err := c.Validate(&in); err != nil {
		return "", fmt.Errorf("%w: enter a name, a longitude between -180 and 180 and a latitude between -90 and 90", content.ErrValidation)
	}
	lng, _ := strconv.ParseFloat(in.Lng, 64)
	lat, _ := strconv.ParseFloat(in.Lat, 64)
	p, err := a.Editor.Picker()
	if err != nil {
		return "", err
	}
	return "", p.SetManual(in.Name, lng, lat)
}

func (a *App) confirmPlace(c echo.Context) (string, error) {
	p, err := a.Editor.Picker()
	if err != nil {
		return "", err
	}
	if _, err := p.Confirm(c.FormValue(views.FieldDescription)); err != nil {
		return "", err
	}
	return "Location added.", nil
}

func (a *App) closePicker(echo.Context) (string, error) {
	a.Editor.ClosePicker()
	return "", nil
}

// ---- locations ----

func (a *App) removeLocation(c echo.Context) (string, error) {
	day, loc, err := dayLoc(c)
	if err != nil {
		return "", err
	}
	if err := a.Editor.RemoveLocation(day, loc); err != nil {
		return "", err
	}
	return "Location removed.", nil
}

func (a *App) commitContent(c echo.Context) (string, error) {
	day, loc, err := dayLoc(c)
	if err != nil {
		return "", err
	}
	s, err := a.Editor.Session(day, loc)
	if err != nil {
		return "", err
	}
	if err := s.Commit(); err != nil {
		return "", err
	}
	return "Notes saved.", nil
}

func (a *App) uploadLocationImage(c echo.Context) (string, error) {
	day, loc, err := dayLoc(c)
	if err != nil {
		return "", err
	}
	ticket, err := a.Editor.BeginImageRead(day, loc)
	if err != nil {
		return "", err
	}
	img, err := readUpload(c, views.ImageField(ticket.Session()))
	if err != nil {
		return "", err
	}
	if _, err := a.Editor.CompleteImageRead(ticket, img); err != nil {
		return "", err
	}
	return "Image attached.", nil
}

func (a *App) clearLocationImage(c echo.Context) (string, error) {
	day, loc, err := dayLoc(c)
	if err != nil {
		return "", err
	}
	if err := a.Editor.SetLocationImage(day, loc, ""); err != nil {
		return "", err
	}
	return "Image removed.", nil
}

func (a *App) uploadThumbnail(c echo.Context) (string, error) {
	ticket, err := a.Editor.BeginThumbnailRead()
	if err != nil {
		return "", err
	}
	img, err := readUpload(c, views.FieldThumbnail)
	if err != nil {
		return "", err
	}
	if err := a.Editor.CompleteThumbnailRead(ticket, img); err != nil {
		return "", err
	}
	return "Thumbnail set.", nil
}

func (a *App) clearThumbnail(echo.Context) (string, error) {
	if err := a.Editor.ClearThumbnail(); err != nil {
		return "", err
	}
	return "Thumbnail removed.", nil
}

func readUpload(c echo.Context, field string) (content.DataURI, error) {
	file, err := c.FormFile(field)
	if err != nil {
		return "", fmt.Errorf("%w: choose an image first", content.ErrValidation)
	}
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()
	return ImportImage(src)
}

// ---- draft ----

func (a *App) discardDraft(echo.Context) (string, error) {
	a.Editor.DiscardDraft()
	a.Editor.CreateDraft()
	a.metaMu.Lock()
	a.meta = editor.Metadata{}
	a.metaMu.Unlock()
	return "Draft discarded.", nil
}

func (a *App) handlePreview(c echo.Context) error {
	a.ensureDraft()
	meta, err := a.syncForm(c)
	if err != nil {
		return a.editorError(c, err)
	}
	pv, err := a.Editor.BuildPreview(meta)
	if err != nil {
		return a.editorError(c, err)
	}
	return Render(c, views.PreviewPage(a.Config.View(), views.ServerLinks(), pv))
}

// handleSave converts the draft into a post file and returns it as a
// download. With SaveDir set the file is also written there. The draft is
// reset only after the file is ready.
func (a *App) handleSave(c echo.Context) error {
	a.ensureDraft()
	meta, err := a.syncForm(c)
	if err != nil {
		return a.editorError(c, err)
	}
	frozen, err := a.Editor.Freeze(meta)
	if err != nil {
		return a.editorError(c, err)
	}
	name, data, err := content.EncodePostFile(frozen.Post)
	if err != nil {
		return err
	}
	if dir := a.Config.SaveDir; dir != "" {
		if err := writePostFile(dir, name, data); err != nil {
			a.Log.Errorw("post file not written", "dir", dir, "error", err)
			return a.renderEditor(c, http.StatusInternalServerError, "",
				"The post file could not be written to "+dir+". The draft is unchanged.")
		}
		a.Log.Infow("post file written", "path", filepath.Join(dir, name), "id", frozen.Post.ID)
	}
	if err := a.Editor.Commit(frozen); err != nil {
		return a.editorError(c, err)
	}

	a.Metrics.PostsSaved.Inc()
	a.metaMu.Lock()
	a.meta = editor.Metadata{}
	a.metaMu.Unlock()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	return c.Blob(http.StatusOK, "text/javascript; charset=utf-8", data)
}

func writePostFile(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
