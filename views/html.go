package views

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// writer accumulates the first write error so components can emit markup
// without checking every call.
type writer struct {
	out io.Writer
	err error
}

func (w *writer) raw(parts ...string) {
	for _, p := range parts {
		if w.err != nil {
			return
		}
		_, w.err = io.WriteString(w.out, p)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) attr(name, val string) {
	w.raw(" ", name, `="`, templ.EscapeString(val), `"`)
}

// open writes a start tag with the given name/value attribute pairs.
func (w *writer) open(tag string, attrs ...string) {
	w.raw("<", tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		w.attr(attrs[i], attrs[i+1])
	}
	w.raw(">")
}

func (w *writer) close(tag string) {
	w.raw("</", tag, ">")
}

// elem writes a complete element with escaped text content.
func (w *writer) elem(tag, text string, attrs ...string) {
	w.open(tag, attrs...)
	w.text(text)
	w.close(tag)
}

func (w *writer) render(ctx context.Context, c templ.Component) {
	if w.err != nil || c == nil {
		return
	}
	w.err = c.Render(ctx, w.out)
}

func component(fn func(ctx context.Context, w *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{out: out}
		fn(ctx, w)
		return w.err
	})
}
