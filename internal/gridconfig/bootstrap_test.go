package gridconfig

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/muurk/positions/internal/notice"
	"github.com/muurk/positions/internal/positions"
)

// fakeFetcher answers the three bootstrap calls and records their order.
type fakeFetcher struct {
	mu       sync.Mutex
	calls    []string
	settings positions.DisplaySettings
	units    []positions.Option
	pallets  []positions.Option
	failOn   string
	onCall   func(step string)
}

func (f *fakeFetcher) call(step string) error {
	f.mu.Lock()
	f.calls = append(f.calls, step)
	f.mu.Unlock()
	if f.onCall != nil {
		f.onCall(step)
	}
	if f.failOn == step {
		return positions.NewServerValidationError(500, step+" unavailable")
	}
	return nil
}

func (f *fakeFetcher) DisplaySettings(ctx context.Context) (positions.DisplaySettings, error) {
	return f.settings, f.call("settings")
}

func (f *fakeFetcher) Units(ctx context.Context) ([]positions.Option, error) {
	return f.units, f.call("units")
}

func (f *fakeFetcher) PalletTypes(ctx context.Context) ([]positions.Option, error) {
	return f.pallets, f.call("pallets")
}

type prefixTranslator struct{}

func (prefixTranslator) Translate(key string) string { return "T:" + key }

func newFetcher() *fakeFetcher {
	return &fakeFetcher{
		settings: positions.DisplaySettings{ShowStorageLocation: true},
		units:    []positions.Option{{Key: "1", Value: "kg"}},
		pallets:  []positions.Option{{Key: "3", Value: "EUR"}, {Key: "4", Value: "CHEP"}},
	}
}

func TestRunPublishesAfterAllSteps(t *testing.T) {
	fetcher := newFetcher()
	var published []*GridConfig
	fetcher.onCall = func(string) {
		if len(published) != 0 {
			t.Error("config published before every fetch completed")
		}
	}

	b := NewBootstrapper(fetcher, nil, nil)
	cfg, err := b.Run(context.Background(), Default("42"), PublishFunc(func(c *GridConfig) {
		published = append(published, c)
	}))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if diff := cmp.Diff([]string{"settings", "units", "pallets"}, fetcher.calls); diff != "" {
		t.Errorf("fetch order mismatch (-want +got):\n%s", diff)
	}
	if len(published) != 1 || published[0] != cfg {
		t.Fatalf("published = %v", published)
	}
	if !cfg.Frozen() {
		t.Error("published config must be frozen")
	}
}

func TestVocabulariesAttached(t *testing.T) {
	cfg, err := NewBootstrapper(newFetcher(), nil, nil).Prepare(context.Background(), Default("42"))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	unit, _ := cfg.Column(positions.FieldGivenUnit)
	if diff := cmp.Diff(map[string]string{"1": "kg"}, unit.EditOptions.ValueMap()); diff != "" {
		t.Errorf("givenunit options mismatch (-want +got):\n%s", diff)
	}

	pallet, _ := cfg.Column(positions.FieldTypeOfPallet)
	if diff := cmp.Diff(map[string]string{"3": "EUR", "4": "CHEP"}, pallet.EditOptions.ValueMap()); diff != "" {
		t.Errorf("type_of_pallet options mismatch (-want +got):\n%s", diff)
	}

	wantChoices := []positions.Option{{Key: "0", Value: "--"}, {Key: "3", Value: "EUR"}, {Key: "4", Value: "CHEP"}}
	if diff := cmp.Diff(wantChoices, pallet.EditOptions.Choices()); diff != "" {
		t.Errorf("choices mismatch (-want +got):\n%s", diff)
	}
}

func TestHiddenStorageLocation(t *testing.T) {
	fetcher := newFetcher()
	fetcher.settings.ShowStorageLocation = false

	cfg, err := NewBootstrapper(fetcher, nil, nil).Prepare(context.Background(), Default("42"))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	col, ok := cfg.Column(positions.FieldStorageLocation)
	if !ok {
		t.Fatal("storage_location column missing")
	}
	if !col.Hidden {
		t.Error("storage_location should be hidden")
	}
	if !col.EditRules.EditHidden {
		t.Error("storage_location rule should be marked edithidden")
	}
	if col.Rule().Active() {
		t.Error("storage_location rule should be inactive while hidden")
	}

	visible, _ := cfg.Visible()
	for _, c := range visible {
		if c.Index == positions.FieldStorageLocation {
			t.Error("hidden column listed as visible")
		}
	}
}

func TestShownStorageLocationUntouched(t *testing.T) {
	cfg, err := NewBootstrapper(newFetcher(), nil, nil).Prepare(context.Background(), Default("42"))
	if err != nil {
		t.Fatal(err)
	}
	col, _ := cfg.Column(positions.FieldStorageLocation)
	if col.Hidden || col.EditRules.EditHidden || !col.Rule().Active() {
		t.Errorf("storage_location = %+v", col)
	}
}

func TestFailureAtEachStepPublishesNothing(t *testing.T) {
	tests := []struct {
		failOn    string
		wantCalls []string
	}{
		{"settings", []string{"settings"}},
		{"units", []string{"settings", "units"}},
		{"pallets", []string{"settings", "units", "pallets"}},
	}

	for _, tt := range tests {
		t.Run(tt.failOn, func(t *testing.T) {
			fetcher := newFetcher()
			fetcher.failOn = tt.failOn
			collector := &notice.Collector{}
			published := false

			base := Default("42")
			_, err := NewBootstrapper(fetcher, nil, collector).Run(context.Background(), base,
				PublishFunc(func(*GridConfig) { published = true }))

			if err == nil {
				t.Fatal("Run() should fail")
			}
			if published {
				t.Error("partial config was published")
			}
			if diff := cmp.Diff(tt.wantCalls, fetcher.calls); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
			last, ok := collector.Last()
			if !ok || last.Kind != notice.KindFailure || last.Content != tt.failOn+" unavailable" {
				t.Errorf("notice = %+v", last)
			}
			if base.Frozen() {
				t.Error("base config must not be frozen")
			}
			unit, _ := base.Column(positions.FieldGivenUnit)
			if len(unit.EditOptions.Value) != 0 {
				t.Error("base config must not be mutated")
			}
		})
	}
}

func TestLabelsTranslated(t *testing.T) {
	cfg, err := NewBootstrapper(newFetcher(), prefixTranslator{}, nil).Prepare(context.Background(), Default("42"))
	if err != nil {
		t.Fatal(err)
	}
	labels := cfg.Labels()
	if labels[0] != "T:qcadooView.gridColumn.ID" {
		t.Errorf("labels[0] = %q", labels[0])
	}
	if labels[7] != "T:qcadooView.gridColumn.givenunit" {
		t.Errorf("labels[7] = %q", labels[7])
	}
}

func TestFrozenConfigRejectsMutation(t *testing.T) {
	cfg := Default("42")
	cfg.Freeze()

	if err := cfg.HideColumn(positions.FieldStorageLocation); !errors.Is(err, ErrFrozen) {
		t.Errorf("HideColumn() error = %v, want ErrFrozen", err)
	}
	if err := cfg.SetOptions(positions.FieldGivenUnit, nil); !errors.Is(err, ErrFrozen) {
		t.Errorf("SetOptions() error = %v, want ErrFrozen", err)
	}
	if err := cfg.TranslateLabels(func(s string) string { return s }); !errors.Is(err, ErrFrozen) {
		t.Errorf("TranslateLabels() error = %v, want ErrFrozen", err)
	}

	clone := cfg.Clone()
	if clone.Frozen() {
		t.Error("Clone() should be unfrozen")
	}
	if err := clone.HideColumn(positions.FieldStorageLocation); err != nil {
		t.Errorf("clone HideColumn() error = %v", err)
	}
	if col, _ := cfg.Column(positions.FieldStorageLocation); col.Hidden {
		t.Error("mutating the clone changed the original")
	}
}

func TestColumnsReturnsCopies(t *testing.T) {
	cfg := Default("42")
	if err := cfg.SetOptions(positions.FieldGivenUnit, []positions.Option{{Key: "1", Value: "kg"}}); err != nil {
		t.Fatal(err)
	}
	cols := cfg.Columns()
	cols[7].EditOptions.Value[0].Value = "changed"

	col, _ := cfg.Column(positions.FieldGivenUnit)
	if col.EditOptions.Value[0].Value != "kg" {
		t.Error("Columns() leaked internal state")
	}
}

func TestDefaultLayout(t *testing.T) {
	cfg := Default("42")

	if cfg.URL != "/integration/rest/documentPositions/42.html" {
		t.Errorf("URL = %s", cfg.URL)
	}
	if cfg.RowNum != 150 || cfg.SortName != "id" {
		t.Errorf("paging = %d/%s", cfg.RowNum, cfg.SortName)
	}

	var indexes []string
	for _, c := range cfg.Columns() {
		indexes = append(indexes, c.Index)
	}
	if diff := cmp.Diff(positions.RowFields, indexes); diff != "" {
		t.Errorf("column order mismatch (-want +got):\n%s", diff)
	}

	doc, _ := cfg.Column(positions.FieldDocument)
	if doc.EditOptions.DefaultValue != "42" || !doc.Hidden {
		t.Errorf("document column = %+v", doc)
	}
	unit, _ := cfg.Column(positions.FieldUnit)
	if !unit.EditOptions.Readonly || unit.Width != 60 {
		t.Errorf("unit column = %+v", unit)
	}
	product, _ := cfg.Column(positions.FieldProduct)
	if product.EditType != EditCustom || product.EditOptions.Lookup != positions.FieldProduct {
		t.Errorf("product column = %+v", product)
	}
}

func TestValidateRowUsesColumnRules(t *testing.T) {
	cfg := Default("42")
	pd := positions.PostData{positions.FieldQuantity: "-5", positions.FieldGivenQuantity: "3"}

	if err := cfg.ValidateRow(pd, positions.ValidationCompatible); err != nil {
		t.Errorf("compatible ValidateRow() error = %v", err)
	}
	if err := cfg.ValidateRow(pd, positions.ValidationStrict); !positions.IsClientValidationError(err) {
		t.Errorf("strict ValidateRow() error = %v", err)
	}
}

func TestRunAgainstClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/integration/rest/documentPositions/gridConfig.html":
			w.Write([]byte(`{"showstoragelocation":false}`))
		case "/rest/units":
			w.Write([]byte(`[{"key":1,"value":"kg"}]`))
		case "/rest/typeOfPallets":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"Pallet types unavailable"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	collector := &notice.Collector{}
	b := NewBootstrapper(positions.NewClient(server.URL), nil, collector)
	cfg, err := b.Run(context.Background(), Default("42"), PublishFunc(func(*GridConfig) {
		t.Error("nothing should be published")
	}))

	if cfg != nil || err == nil {
		t.Fatalf("Run() = %v, %v", cfg, err)
	}
	last, _ := collector.Last()
	if last.Content != "Pallet types unavailable" {
		t.Errorf("notice = %q", last.Content)
	}
}
