package devserver

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/muurk/positions/internal/positions"
)

// Store errors. Handlers map them to a JSON {"message"} response.
var (
	ErrNotFound        = errors.New("position not found")
	ErrNegativeAmount  = errors.New("quantity must be a positive number")
	ErrMissingDocument = errors.New("document is required")
)

// Store holds the development backend's data in memory. It is safe for
// concurrent use.
type Store struct {
	mu     sync.RWMutex
	rows   map[int]positions.RowRecord
	nextID int

	// ShowStorageLocation is served by the display settings endpoint
	ShowStorageLocation bool

	Units       []positions.Option
	PalletTypes []positions.Option

	Products         []positions.Candidate
	AdditionalCodes  []positions.Candidate
	PalletNumbers    []positions.Candidate
	StorageLocations []positions.Candidate

	// ProductUnits maps a product code to its unit
	ProductUnits map[string]string
}

// NewStore returns an empty store with the default vocabularies.
func NewStore() *Store {
	return &Store{
		rows:   make(map[int]positions.RowRecord),
		nextID: 1,
		Units: []positions.Option{
			{Key: "1", Value: "kg"},
			{Key: "2", Value: "szt"},
			{Key: "3", Value: "m"},
		},
		PalletTypes: []positions.Option{
			{Key: "1", Value: "EUR"},
			{Key: "2", Value: "EUR2"},
			{Key: "3", Value: "CHEP"},
		},
		ProductUnits: make(map[string]string),
	}
}

// NewSampleStore returns a store seeded with a small catalog and a few rows
// on document 1.
func NewSampleStore() *Store {
	s := NewStore()
	s.ShowStorageLocation = true
	s.Products = []positions.Candidate{
		{ID: "1", Code: "PROD-100"},
		{ID: "2", Code: "PROD-200"},
		{ID: "3", Code: "BOLT-M8"},
	}
	s.ProductUnits = map[string]string{"PROD-100": "kg", "PROD-200": "szt", "BOLT-M8": "szt"}
	s.AdditionalCodes = []positions.Candidate{
		{ID: "1", Code: "AC-RED"},
		{ID: "2", Code: "AC-BLUE"},
	}
	s.PalletNumbers = []positions.Candidate{
		{ID: "1", Number: "P-0001"},
		{ID: "2", Number: "P-0002"},
	}
	s.StorageLocations = []positions.Candidate{
		{ID: "1", Code: "A-01-01"},
		{ID: "2", Code: "A-01-02"},
		{ID: "3", Code: "B-02-01"},
	}

	for _, pd := range []positions.PostData{
		{positions.FieldDocument: "1", positions.FieldProduct: "PROD-100", positions.FieldQuantity: "12.5",
			positions.FieldUnit: "kg", positions.FieldPallet: "P-0001", positions.FieldTypeOfPallet: "EUR",
			positions.FieldStorageLocation: "A-01-01"},
		{positions.FieldDocument: "1", positions.FieldProduct: "BOLT-M8", positions.FieldQuantity: "400",
			positions.FieldUnit: "szt", positions.FieldGivenQuantity: "4", positions.FieldGivenUnit: "opak",
			positions.FieldConversion: "100"},
	} {
		_, _ = s.Create(pd)
	}
	return s
}

// Query selects a page of one document's rows.
type Query struct {
	Document  string
	Page      int
	Rows      int
	SortField string
	SortOrder string
	Filters   map[string]string
}

// List returns one page of rows. Filters match case-insensitive substrings.
func (s *Store) List(q Query) positions.Page {
	s.mu.RLock()
	var matched []positions.RowRecord
	for _, r := range s.rows {
		if r.Document != q.Document || !matches(r, q.Filters) {
			continue
		}
		matched = append(matched, r)
	}
	s.mu.RUnlock()

	sortRows(matched, q.SortField, q.SortOrder == "desc")

	size := q.Rows
	if size < 1 {
		size = positions.DefaultPageSize
	}
	total := (len(matched) + size - 1) / size
	page := q.Page
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}

	return positions.Page{
		Page:    page,
		Total:   total,
		Records: len(matched),
		Rows:    append([]positions.RowRecord{}, matched[start:end]...),
	}
}

func matches(r positions.RowRecord, filters map[string]string) bool {
	for field, want := range filters {
		if !strings.Contains(strings.ToLower(r.Cell(field)), strings.ToLower(want)) {
			return false
		}
	}
	return true
}

func sortRows(rows []positions.RowRecord, field string, desc bool) {
	if field == "" {
		field = positions.FieldID
	}
	less := func(a, b positions.RowRecord) bool {
		if field == positions.FieldID {
			return cast.ToInt(a.ID) < cast.ToInt(b.ID)
		}
		return a.Cell(field) < b.Cell(field)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if desc {
			return less(rows[j], rows[i])
		}
		return less(rows[i], rows[j])
	})
}

// Get returns one row.
func (s *Store) Get(id string) (positions.RowRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[cast.ToInt(id)]
	if !ok {
		return positions.RowRecord{}, ErrNotFound
	}
	return r, nil
}

// Create stores a new row and returns it with its assigned id.
func (s *Store) Create(pd positions.PostData) (positions.RowRecord, error) {
	if pd[positions.FieldDocument] == "" {
		return positions.RowRecord{}, ErrMissingDocument
	}
	r, err := s.apply(positions.RowRecord{}, pd)
	if err != nil {
		return positions.RowRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = strconv.Itoa(s.nextID)
	s.rows[s.nextID] = r
	s.nextID++
	return r, nil
}

// Update merges pd into an existing row. The id and document of the row are
// kept.
func (s *Store) Update(id string, pd positions.PostData) (positions.RowRecord, error) {
	key := cast.ToInt(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.rows[key]
	if !ok {
		return positions.RowRecord{}, ErrNotFound
	}
	r, err := s.apply(current, pd)
	if err != nil {
		return positions.RowRecord{}, err
	}
	r.ID = current.ID
	r.Document = current.Document
	s.rows[key] = r
	return r, nil
}

// Delete removes a row and returns it.
func (s *Store) Delete(id string) (positions.RowRecord, error) {
	key := cast.ToInt(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rows[key]
	if !ok {
		return positions.RowRecord{}, ErrNotFound
	}
	delete(s.rows, key)
	return r, nil
}

// apply copies submitted fields onto r. Negative quantities are rejected.
// Select fields arrive as vocabulary keys and are stored as their labels.
func (s *Store) apply(r positions.RowRecord, pd positions.PostData) (positions.RowRecord, error) {
	for field, value := range pd {
		switch field {
		case positions.FieldDocument:
			r.Document = value
		case positions.FieldProduct:
			r.Product = value
		case positions.FieldAdditionalCode:
			r.AdditionalCode = value
		case positions.FieldQuantity, positions.FieldGivenQuantity, positions.FieldConversion:
			q, err := parseQuantity(value)
			if err != nil {
				return r, fmt.Errorf("%s: %w", field, err)
			}
			switch field {
			case positions.FieldQuantity:
				r.Quantity = q
			case positions.FieldGivenQuantity:
				r.GivenQuantity = q
			default:
				r.Conversion = q
			}
		case positions.FieldUnit:
			r.Unit = value
		case positions.FieldGivenUnit:
			r.GivenUnit = labelFor(s.Units, value)
		case positions.FieldExpirationDate:
			r.ExpirationDate = value
		case positions.FieldPallet:
			r.Pallet = value
		case positions.FieldTypeOfPallet:
			r.TypeOfPallet = labelFor(s.PalletTypes, value)
		case positions.FieldStorageLocation:
			r.StorageLocation = value
		}
	}
	return r, nil
}

func parseQuantity(value string) (positions.Quantity, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return positions.Quantity{}, nil
	}
	d, err := decimal.NewFromString(strings.Replace(value, ",", ".", 1))
	if err != nil {
		return positions.Quantity{}, fmt.Errorf("invalid number %q", value)
	}
	if d.IsNegative() {
		return positions.Quantity{}, ErrNegativeAmount
	}
	return positions.NewQuantity(d), nil
}

// labelFor maps a select key to its label. The "0" placeholder clears the
// field; unknown keys are stored as sent.
func labelFor(options []positions.Option, key string) string {
	if key == "0" {
		return ""
	}
	for _, o := range options {
		if o.Key == key {
			return o.Value
		}
	}
	return key
}

// Search returns the candidates whose label contains every space-separated
// term of query, case-insensitively.
func Search(candidates []positions.Candidate, query string) []positions.Candidate {
	terms := strings.Fields(strings.ToLower(query))
	out := []positions.Candidate{}
	for _, c := range candidates {
		label := strings.ToLower(c.Label())
		ok := true
		for _, t := range terms {
			if !strings.Contains(label, t) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// ProductUnit returns the unit of a product, or "" when unknown.
func (s *Store) ProductUnit(product string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ProductUnits[product]
}
