package positions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Row field names as they appear on the wire and in the grid's edit form.
const (
	FieldOper            = "oper"
	FieldID              = "id"
	FieldDocument        = "document"
	FieldProduct         = "product"
	FieldAdditionalCode  = "additional_code"
	FieldQuantity        = "quantity"
	FieldUnit            = "unit"
	FieldGivenQuantity   = "givenquantity"
	FieldGivenUnit       = "givenunit"
	FieldConversion      = "conversion"
	FieldExpirationDate  = "expirationdate"
	FieldPallet          = "pallet"
	FieldTypeOfPallet    = "type_of_pallet"
	FieldStorageLocation = "storage_location"
)

// Values of the FieldOper marker the grid adds to every submitted form.
const (
	OperEdit   = "edit"
	OperAdd    = "add"
	OperDelete = "del"
)

// NewRowID is the sentinel id carried by a row that has not been persisted yet.
const NewRowID = "0"

// DefaultPageSize is the number of rows requested per page.
const DefaultPageSize = 150

// RowFields lists the row fields in grid column order, id first.
var RowFields = []string{
	FieldID, FieldDocument, FieldProduct, FieldAdditionalCode, FieldQuantity, FieldUnit,
	FieldGivenQuantity, FieldGivenUnit, FieldConversion, FieldExpirationDate,
	FieldPallet, FieldTypeOfPallet, FieldStorageLocation,
}

// DisplaySettings is the body of the grid display settings endpoint.
type DisplaySettings struct {
	ShowStorageLocation bool `json:"showstoragelocation"`
}

// UnmarshalJSON accepts the flag as a JSON bool or a string ("true"/"1").
// A missing flag decodes as false.
func (d *DisplaySettings) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.ShowStorageLocation = cast.ToBool(raw["showstoragelocation"])
	return nil
}

// Option is one entry of a server vocabulary (units, pallet types).
type Option struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UnmarshalJSON accepts numeric or string keys.
func (o *Option) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key   any `json:"key"`
		Value any `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	key, err := cast.ToStringE(raw.Key)
	if err != nil {
		return fmt.Errorf("option key: %w", err)
	}
	o.Key = key
	o.Value = cast.ToString(raw.Value)
	return nil
}

// Candidate is one lookup search result. Products, additional codes and
// storage locations carry a code; pallets carry a number.
type Candidate struct {
	ID     string `json:"id"`
	Code   string `json:"code,omitempty"`
	Number string `json:"number,omitempty"`
}

// UnmarshalJSON accepts numeric ids.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID     any `json:"id"`
		Code   any `json:"code"`
		Number any `json:"number"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ID = cast.ToString(raw.ID)
	c.Code = cast.ToString(raw.Code)
	c.Number = cast.ToString(raw.Number)
	return nil
}

// Label returns the value committed to the field when the candidate is chosen.
func (c Candidate) Label() string {
	if c.Code != "" {
		return c.Code
	}
	return c.Number
}

// Quantity is a nullable decimal that tolerates the loose encodings the
// backend produces: numbers, quoted numbers, empty strings and null.
type Quantity struct {
	decimal.NullDecimal
}

// NewQuantity returns a valid Quantity.
func NewQuantity(d decimal.Decimal) Quantity {
	return Quantity{decimal.NullDecimal{Decimal: d, Valid: true}}
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	s = strings.Trim(s, `"`)
	if s == "" || s == "null" {
		q.Valid = false
		q.Decimal = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid quantity %q: %w", s, err)
	}
	q.Decimal = d
	q.Valid = true
	return nil
}

// MarshalJSON renders a bare JSON number, or null.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Valid {
		return []byte("null"), nil
	}
	return []byte(q.Decimal.String()), nil
}

// String returns the decimal text, or "" when null.
func (q Quantity) String() string {
	if !q.Valid {
		return ""
	}
	return q.Decimal.String()
}

// RowRecord is one document position as served by the row data endpoint.
type RowRecord struct {
	ID              string   `json:"id"`
	Document        string   `json:"document"`
	Product         string   `json:"product"`
	AdditionalCode  string   `json:"additional_code"`
	Quantity        Quantity `json:"quantity"`
	Unit            string   `json:"unit"`
	GivenQuantity   Quantity `json:"givenquantity"`
	GivenUnit       string   `json:"givenunit"`
	Conversion      Quantity `json:"conversion"`
	ExpirationDate  string   `json:"expirationdate"`
	Pallet          string   `json:"pallet"`
	TypeOfPallet    string   `json:"type_of_pallet"`
	StorageLocation string   `json:"storage_location"`
}

// UnmarshalJSON accepts numeric ids and references.
func (r *RowRecord) UnmarshalJSON(data []byte) error {
	type plain RowRecord
	var aux struct {
		plain
		ID       any `json:"id"`
		Document any `json:"document"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = RowRecord(aux.plain)
	r.ID = cast.ToString(aux.ID)
	r.Document = cast.ToString(aux.Document)
	return nil
}

// Cell returns the text of one field, keyed by its wire name.
func (r RowRecord) Cell(field string) string {
	switch field {
	case FieldID:
		return r.ID
	case FieldDocument:
		return r.Document
	case FieldProduct:
		return r.Product
	case FieldAdditionalCode:
		return r.AdditionalCode
	case FieldQuantity:
		return r.Quantity.String()
	case FieldUnit:
		return r.Unit
	case FieldGivenQuantity:
		return r.GivenQuantity.String()
	case FieldGivenUnit:
		return r.GivenUnit
	case FieldConversion:
		return r.Conversion.String()
	case FieldExpirationDate:
		return r.ExpirationDate
	case FieldPallet:
		return r.Pallet
	case FieldTypeOfPallet:
		return r.TypeOfPallet
	case FieldStorageLocation:
		return r.StorageLocation
	}
	return ""
}

// Page is one page of rows.
type Page struct {
	Page    int         `json:"page"`
	Total   int         `json:"total"`
	Records int         `json:"records"`
	Rows    []RowRecord `json:"rows"`
}

// UnmarshalJSON accepts paging counters encoded as strings.
func (p *Page) UnmarshalJSON(data []byte) error {
	var aux struct {
		Page    any         `json:"page"`
		Total   any         `json:"total"`
		Records any         `json:"records"`
		Rows    []RowRecord `json:"rows"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Page = cast.ToInt(aux.Page)
	p.Total = cast.ToInt(aux.Total)
	p.Records = cast.ToInt(aux.Records)
	p.Rows = aux.Rows
	if p.Rows == nil {
		p.Rows = []RowRecord{}
	}
	return nil
}

// PageRequest holds paging, sorting and toolbar filter parameters.
type PageRequest struct {
	Page      int
	Rows      int
	SortField string
	SortOrder string
	Filters   map[string]string
}

// DefaultPageRequest returns the first page sorted by id.
func DefaultPageRequest() PageRequest {
	return PageRequest{Page: 1, Rows: DefaultPageSize, SortField: FieldID, SortOrder: "asc"}
}

// Values encodes the request as grid query parameters.
func (r PageRequest) Values() url.Values {
	v := url.Values{}
	page := r.Page
	if page < 1 {
		page = 1
	}
	rows := r.Rows
	if rows < 1 {
		rows = DefaultPageSize
	}
	sidx := r.SortField
	if sidx == "" {
		sidx = FieldID
	}
	sord := r.SortOrder
	if sord != "desc" {
		sord = "asc"
	}
	v.Set("page", strconv.Itoa(page))
	v.Set("rows", strconv.Itoa(rows))
	v.Set("sidx", sidx)
	v.Set("sord", sord)
	if len(r.Filters) > 0 {
		v.Set("_search", "true")
		for field, value := range r.Filters {
			v.Set(field, value)
		}
	}
	return v
}

// PostData is the grid's raw edit form: field name to submitted text,
// including the FieldOper marker and the row id.
type PostData map[string]string

// NewAddPostData returns the form of a freshly inserted row for a document.
func NewAddPostData(document string) PostData {
	return PostData{
		FieldOper:     OperAdd,
		FieldID:       NewRowID,
		FieldDocument: document,
	}
}

// PostDataFromRecord returns the edit form for an existing row.
func PostDataFromRecord(r RowRecord) PostData {
	pd := PostData{FieldOper: OperEdit}
	for _, field := range RowFields {
		pd[field] = r.Cell(field)
	}
	return pd
}

// ID returns the row id.
func (pd PostData) ID() string { return pd[FieldID] }

// Clone returns a copy that can be mutated independently.
func (pd PostData) Clone() PostData {
	out := make(PostData, len(pd))
	for k, v := range pd {
		out[k] = v
	}
	return out
}

// Fields returns the field names in a stable order.
func (pd PostData) Fields() []string {
	keys := make([]string, 0, len(pd))
	for k := range pd {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EditBody serializes the form for an edit: everything except the oper marker.
func (pd PostData) EditBody() ([]byte, error) {
	out := pd.Clone()
	delete(out, FieldOper)
	return json.Marshal(out)
}

// AddBody serializes the form for an add: the oper marker and the id are
// stripped because the server assigns identity.
func (pd PostData) AddBody() ([]byte, error) {
	out := pd.Clone()
	delete(out, FieldOper)
	delete(out, FieldID)
	return json.Marshal(out)
}
