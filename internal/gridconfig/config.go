package gridconfig

import (
	"errors"
	"fmt"

	"github.com/muurk/positions/internal/positions"
	"github.com/muurk/positions/internal/urls"
)

// ErrFrozen is returned by every mutating method once a config is published.
var ErrFrozen = errors.New("grid config is frozen")

// EditType is the kind of widget used to edit a column.
type EditType string

const (
	EditText   EditType = "text"
	EditSelect EditType = "select"
	EditCustom EditType = "custom"
	EditDate   EditType = "date"
)

// PlaceholderKey and PlaceholderLabel form the empty choice rendered ahead
// of every select vocabulary.
const (
	PlaceholderKey   = "0"
	PlaceholderLabel = "--"
)

// EditOptions configures a column's edit widget.
type EditOptions struct {
	DefaultValue string
	Readonly     bool

	// Lookup names the lookup field kind driving a custom editor.
	Lookup string

	// DataURL is where a select column's vocabulary comes from.
	DataURL string

	// Value is the select vocabulary in server order.
	Value []positions.Option
}

// ValueMap returns the vocabulary as key to label.
func (o EditOptions) ValueMap() map[string]string {
	m := make(map[string]string, len(o.Value))
	for _, opt := range o.Value {
		m[opt.Key] = opt.Value
	}
	return m
}

// Choices returns the select choices as rendered: the placeholder first,
// then the vocabulary.
func (o EditOptions) Choices() []positions.Option {
	out := make([]positions.Option, 0, len(o.Value)+1)
	out = append(out, positions.Option{Key: PlaceholderKey, Value: PlaceholderLabel})
	return append(out, o.Value...)
}

// EditRules holds the per-column validation switches.
type EditRules struct {
	Required bool

	// Positive runs positions.ValidatePositive on the value.
	Positive bool

	// EditHidden marks a rule that belongs to a column hidden by the server.
	EditHidden bool
}

// Rule is the effective validation rule of a column.
type Rule struct {
	Required bool
	Positive bool
	active   bool
}

// Active reports whether the rule should be evaluated.
func (r Rule) Active() bool { return r.active }

// Column is one grid column, identified by Index.
type Column struct {
	Name      string
	Index     string
	Key       bool
	Hidden    bool
	Editable  bool
	Required  bool
	Width     int
	Formatter string

	EditType    EditType
	EditOptions EditOptions
	EditRules   EditRules
}

// Rule returns the column's validation rule. It is inactive while the
// column is hidden on server request.
func (c Column) Rule() Rule {
	return Rule{
		Required: c.EditRules.Required,
		Positive: c.EditRules.Positive,
		active:   !(c.Hidden && c.EditRules.EditHidden),
	}
}

// Validate checks one submitted value against the column's rule.
func (c Column) Validate(value string, mode positions.ValidationMode) error {
	rule := c.Rule()
	if !rule.Active() {
		return nil
	}
	if rule.Required && value == "" {
		return positions.NewClientValidationError(c.Index, fmt.Sprintf("%s: field is required", c.Name))
	}
	if rule.Positive {
		return positions.ValidatePositive(c.Index, value, mode)
	}
	return nil
}

func (c Column) clone() Column {
	c.EditOptions.Value = append([]positions.Option(nil), c.EditOptions.Value...)
	return c
}

// GridConfig describes the grid: data source, paging, sorting and columns.
// It is built once, enriched by the Bootstrapper and frozen when published.
type GridConfig struct {
	FormID   string
	URL      string
	RowNum   int
	SortName string

	labels  []string
	columns []Column
	frozen  bool
}

// New returns an unfrozen config with the given columns. Each column's
// header label starts out as its Name.
func New(formID, url string, columns []Column) *GridConfig {
	cfg := &GridConfig{
		FormID:   formID,
		URL:      url,
		RowNum:   positions.DefaultPageSize,
		SortName: positions.FieldID,
		columns:  make([]Column, len(columns)),
		labels:   make([]string, len(columns)),
	}
	for i, c := range columns {
		cfg.columns[i] = c.clone()
		cfg.labels[i] = c.Name
	}
	return cfg
}

// Frozen reports whether the config has been published.
func (g *GridConfig) Frozen() bool { return g.frozen }

// Freeze makes the config read-only.
func (g *GridConfig) Freeze() { g.frozen = true }

// Clone returns an unfrozen deep copy.
func (g *GridConfig) Clone() *GridConfig {
	out := *g
	out.frozen = false
	out.labels = append([]string(nil), g.labels...)
	out.columns = make([]Column, len(g.columns))
	for i, c := range g.columns {
		out.columns[i] = c.clone()
	}
	return &out
}

// Columns returns a copy of the columns in display order.
func (g *GridConfig) Columns() []Column {
	out := make([]Column, len(g.columns))
	for i, c := range g.columns {
		out[i] = c.clone()
	}
	return out
}

// Labels returns a copy of the column header labels in display order.
func (g *GridConfig) Labels() []string {
	return append([]string(nil), g.labels...)
}

// Column returns a copy of the column with the given index.
func (g *GridConfig) Column(index string) (Column, bool) {
	i := g.find(index)
	if i < 0 {
		return Column{}, false
	}
	return g.columns[i].clone(), true
}

// Visible returns the columns that are not hidden, with their labels.
func (g *GridConfig) Visible() ([]Column, []string) {
	var cols []Column
	var labels []string
	for i, c := range g.columns {
		if c.Hidden {
			continue
		}
		cols = append(cols, c.clone())
		labels = append(labels, g.labels[i])
	}
	return cols, labels
}

func (g *GridConfig) find(index string) int {
	for i, c := range g.columns {
		if c.Index == index {
			return i
		}
	}
	return -1
}

func (g *GridConfig) mutable(index string) (int, error) {
	if g.frozen {
		return -1, ErrFrozen
	}
	i := g.find(index)
	if i < 0 {
		return -1, fmt.Errorf("no column %q", index)
	}
	return i, nil
}

// HideColumn hides a column at the server's request and deactivates its
// validation rule while hidden.
func (g *GridConfig) HideColumn(index string) error {
	i, err := g.mutable(index)
	if err != nil {
		return err
	}
	g.columns[i].Hidden = true
	g.columns[i].EditRules.EditHidden = true
	return nil
}

// SetOptions attaches a select vocabulary to a column.
func (g *GridConfig) SetOptions(index string, options []positions.Option) error {
	i, err := g.mutable(index)
	if err != nil {
		return err
	}
	g.columns[i].EditOptions.Value = append([]positions.Option(nil), options...)
	return nil
}

// TranslateLabels replaces every header label with translate(label).
func (g *GridConfig) TranslateLabels(translate func(label string) string) error {
	if g.frozen {
		return ErrFrozen
	}
	for i, label := range g.labels {
		g.labels[i] = translate(label)
	}
	return nil
}

// ValidateRow checks a submitted form against every editable column's rule.
func (g *GridConfig) ValidateRow(pd positions.PostData, mode positions.ValidationMode) error {
	for _, c := range g.columns {
		if !c.Editable {
			continue
		}
		value, ok := pd[c.Index]
		if !ok {
			continue
		}
		if err := c.Validate(value, mode); err != nil {
			return err
		}
	}
	return nil
}

// Default returns the base config of the positions grid for one document.
func Default(formID string) *GridConfig {
	lookup := func(name, kind string) Column {
		return Column{
			Name: name, Index: name, Editable: true, Required: true,
			EditType: EditCustom, EditOptions: EditOptions{Lookup: kind},
		}
	}
	quantity := func(name string) Column {
		return Column{
			Name: name, Index: name, Editable: true, Required: true, Formatter: "number",
			EditType: EditText, EditRules: EditRules{Positive: true},
		}
	}
	sel := func(name, dataURL string) Column {
		return Column{
			Name: name, Index: name, Editable: true, Required: true,
			EditType: EditSelect, EditOptions: EditOptions{DataURL: dataURL},
		}
	}

	storage := lookup(positions.FieldStorageLocation, positions.FieldStorageLocation)
	storage.Required = false

	columns := []Column{
		{Name: "ID", Index: positions.FieldID, Key: true, Hidden: true},
		{
			Name: positions.FieldDocument, Index: positions.FieldDocument, Hidden: true, Editable: true,
			EditType: EditText, EditOptions: EditOptions{DefaultValue: formID},
		},
		lookup(positions.FieldProduct, positions.FieldProduct),
		lookup(positions.FieldAdditionalCode, positions.FieldAdditionalCode),
		quantity(positions.FieldQuantity),
		{
			Name: positions.FieldUnit, Index: positions.FieldUnit, Editable: true, Width: 60,
			EditType: EditText, EditOptions: EditOptions{Readonly: true},
		},
		quantity(positions.FieldGivenQuantity),
		sel(positions.FieldGivenUnit, urls.UnitsPath),
		{Name: positions.FieldConversion, Index: positions.FieldConversion, Editable: true, Required: true, EditType: EditText},
		{
			Name: positions.FieldExpirationDate, Index: positions.FieldExpirationDate, Editable: true,
			Required: true, Width: 150, EditType: EditDate,
		},
		lookup(positions.FieldPallet, positions.FieldPallet),
		sel(positions.FieldTypeOfPallet, urls.TypeOfPalletsPath),
		storage,
	}

	return New(formID, urls.New("").DocumentRows(formID), columns)
}
