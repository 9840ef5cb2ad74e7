package lookup

import (
	"context"

	"github.com/muurk/positions/internal/urls"
)

// Widget is a rendered lookup input: the element id the grid knows it by
// and the controller behind it.
type Widget struct {
	ElementID  string
	Kind       Kind
	Controller *Controller
}

// Input forwards a keystroke to the widget's controller.
func (w *Widget) Input(ctx context.Context, text string) uint64 {
	return w.Controller.Input(ctx, text)
}

// Close stops the widget's controller.
func (w *Widget) Close() {
	w.Controller.Close()
}

// Editor builds and reads the custom cell editor of one lookup column.
type Editor interface {
	Kind() Kind
	Render(initial string) *Widget
	ReadValue(w *Widget) string
}

// Options configures the editors built by NewEditors.
type Options struct {
	Endpoints urls.Endpoints
	Searcher  Searcher

	// OnResult receives every current search result of every widget.
	OnResult func(Result)

	// Cascade, when set, is triggered on every product input and selection.
	Cascade *UnitCascade
}

type fieldEditor struct {
	kind    Kind
	opts    Options
	onInput func(string)
}

func (e *fieldEditor) Kind() Kind { return e.kind }

// Render returns a widget holding initial as its text and committed value.
func (e *fieldEditor) Render(initial string) *Widget {
	c := NewController(e.kind, e.kind.Endpoint(e.opts.Endpoints), e.opts.Searcher, e.opts.OnResult)
	c.onInput = e.onInput
	c.SetText(initial)
	return &Widget{ElementID: e.kind.ElementID(), Kind: e.kind, Controller: c}
}

// ReadValue returns what the widget's input currently holds.
func (e *fieldEditor) ReadValue(w *Widget) string {
	if w == nil || w.Controller == nil {
		return ""
	}
	return w.Controller.Text()
}

// NewEditor returns the editor of one lookup kind.
func NewEditor(kind Kind, opts Options) Editor {
	e := &fieldEditor{kind: kind, opts: opts}
	if kind == KindProduct && opts.Cascade != nil {
		e.onInput = opts.Cascade.Trigger
	}
	return e
}

// NewEditors returns one editor per lookup kind.
func NewEditors(opts Options) map[Kind]Editor {
	editors := make(map[Kind]Editor, len(Kinds()))
	for _, k := range Kinds() {
		editors[k] = NewEditor(k, opts)
	}
	return editors
}
