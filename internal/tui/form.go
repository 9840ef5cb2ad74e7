package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/positions/internal/gridconfig"
	"github.com/muurk/positions/internal/lookup"
	"github.com/muurk/positions/internal/positions"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSelect
	fieldLookup
	fieldReadonly
)

// formField is one input of the edit form.
type formField struct {
	column gridconfig.Column
	label  string
	kind   fieldKind
	input  textinput.Model

	choices []positions.Option
	choice  int

	editor lookup.Editor
	widget *lookup.Widget
}

func (f *formField) value() string {
	switch f.kind {
	case fieldSelect:
		return f.choices[f.choice].Key
	case fieldLookup:
		return f.editor.ReadValue(f.widget)
	default:
		return f.input.Value()
	}
}

func (f *formField) focusable() bool { return f.kind != fieldReadonly }

// form edits one row. oper is positions.OperEdit or positions.OperAdd.
type form struct {
	oper   string
	base   positions.PostData
	fields []*formField
	focus  int

	suggestions []positions.Candidate
	suggestIdx  int
	query       string
}

// newForm builds inputs for every visible editable column of cfg.
func newForm(cfg *gridconfig.GridConfig, base positions.PostData, editors map[lookup.Kind]lookup.Editor, debounce time.Duration) *form {
	f := &form{oper: base[positions.FieldOper], base: base.Clone()}
	labels := cfg.Labels()

	for i, col := range cfg.Columns() {
		if col.EditOptions.DefaultValue != "" && f.base[col.Index] == "" {
			f.base[col.Index] = col.EditOptions.DefaultValue
		}
		if !col.Editable || col.Hidden {
			continue
		}

		initial := base[col.Index]
		field := &formField{column: col, label: labels[i], input: textinput.New()}
		field.input.Prompt = ""
		field.input.SetValue(initial)

		switch {
		case col.EditOptions.Readonly:
			field.kind = fieldReadonly
		case col.EditType == gridconfig.EditSelect:
			field.kind = fieldSelect
			field.choices = col.EditOptions.Choices()
			field.choice = choiceIndex(field.choices, initial)
		case col.EditType == gridconfig.EditCustom && editors[lookup.Kind(col.EditOptions.Lookup)] != nil:
			field.kind = fieldLookup
			field.editor = editors[lookup.Kind(col.EditOptions.Lookup)]
			field.widget = field.editor.Render(initial)
			field.widget.Controller.Debounce = debounce
		case col.EditType == gridconfig.EditDate:
			field.input.Placeholder = "YYYY-MM-DD"
		}
		f.fields = append(f.fields, field)
	}

	f.focus = -1
	f.move(1)
	return f
}

// choiceIndex finds the choice whose key or label equals value. Rows carry
// labels; forms submit keys.
func choiceIndex(choices []positions.Option, value string) int {
	for i, c := range choices {
		if value != "" && (c.Key == value || c.Value == value) {
			return i
		}
	}
	return 0
}

func (f *form) focused() *formField {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return nil
	}
	return f.fields[f.focus]
}

// move shifts focus by delta to the next focusable field, wrapping around.
// Leaving a lookup field commits its typed text.
func (f *form) move(delta int) {
	if cur := f.focused(); cur != nil {
		cur.input.Blur()
		if cur.kind == fieldLookup {
			cur.widget.Controller.Blur()
		}
	}
	f.clearSuggestions()

	n := len(f.fields)
	for step := 1; step <= n; step++ {
		i := ((f.focus+delta*step)%n + n) % n
		if f.fields[i].focusable() {
			f.focus = i
			f.fields[i].input.Focus()
			return
		}
	}
}

func (f *form) clearSuggestions() {
	f.suggestions = nil
	f.suggestIdx = 0
	f.query = ""
}

// update feeds a key to the focused field. Typing into a lookup field
// starts a search.
func (f *form) update(ctx context.Context, msg tea.KeyMsg) tea.Cmd {
	field := f.focused()
	if field == nil {
		return nil
	}

	switch field.kind {
	case fieldSelect:
		switch msg.String() {
		case "left":
			field.choice = (field.choice - 1 + len(field.choices)) % len(field.choices)
		case "right", " ":
			field.choice = (field.choice + 1) % len(field.choices)
		}
		return nil
	case fieldReadonly:
		return nil
	}

	before := field.input.Value()
	var cmd tea.Cmd
	field.input, cmd = field.input.Update(msg)
	if field.kind == fieldLookup && field.input.Value() != before {
		f.clearSuggestions()
		field.widget.Input(ctx, field.input.Value())
	}
	return cmd
}

// showResult displays a lookup result if it belongs to the focused field's
// latest search.
func (f *form) showResult(r lookup.Result) bool {
	field := f.focused()
	if field == nil || field.kind != fieldLookup || field.widget.Kind != r.Kind {
		return false
	}
	if r.Generation != field.widget.Controller.Generation() || r.Err != nil {
		return false
	}
	f.suggestions = r.Candidates
	f.suggestIdx = 0
	f.query = r.Query
	return true
}

func (f *form) moveSuggestion(delta int) {
	if len(f.suggestions) == 0 {
		return
	}
	f.suggestIdx = (f.suggestIdx + delta + len(f.suggestions)) % len(f.suggestions)
}

// choose commits the highlighted suggestion into the focused lookup field.
func (f *form) choose() bool {
	field := f.focused()
	if field == nil || field.kind != fieldLookup || len(f.suggestions) == 0 {
		return false
	}
	c := f.suggestions[f.suggestIdx]
	field.widget.Controller.Select(c)
	field.input.SetValue(c.Label())
	field.input.CursorEnd()
	f.clearSuggestions()
	return true
}

// setUnit shows a propagated product unit in the unit field.
func (f *form) setUnit(unit string) {
	for _, field := range f.fields {
		if field.column.Index == positions.FieldUnit {
			field.input.SetValue(unit)
		}
	}
}

// postData returns the form as the grid would submit it.
func (f *form) postData() positions.PostData {
	pd := f.base.Clone()
	for _, field := range f.fields {
		if field.kind == fieldLookup {
			field.widget.Controller.Blur()
		}
		pd[field.column.Index] = strings.TrimSpace(field.value())
	}
	return pd
}

// close cancels every running lookup search of the form. It does not wait:
// a result already on its way arrives after the form is gone and is ignored.
func (f *form) close() {
	for _, field := range f.fields {
		if field.widget != nil {
			field.widget.Controller.Blur()
		}
	}
}
