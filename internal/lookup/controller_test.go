package lookup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/muurk/positions/internal/positions"
	"github.com/muurk/positions/internal/urls"
)

// stubSearcher returns one candidate per query. Queries listed in block wait
// for release and ignore cancellation, like a server that answers anyway.
type stubSearcher struct {
	mu      sync.Mutex
	queries []string
	block   map[string]chan struct{}
	err     error
}

func (s *stubSearcher) Search(ctx context.Context, endpoint, query string) ([]positions.Candidate, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	ch := s.block[query]
	s.mu.Unlock()

	if ch != nil {
		<-ch
	}
	if s.err != nil {
		return nil, s.err
	}
	if query == "none" {
		return nil, nil
	}
	return []positions.Candidate{{ID: "1", Code: "code-" + query}}, nil
}

func collect() (func(Result), func() []Result) {
	var mu sync.Mutex
	var results []Result
	return func(r Result) {
			mu.Lock()
			defer mu.Unlock()
			results = append(results, r)
		}, func() []Result {
			mu.Lock()
			defer mu.Unlock()
			return append([]Result(nil), results...)
		}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestOnlyLatestSearchRenders(t *testing.T) {
	release := make(chan struct{})
	searcher := &stubSearcher{block: map[string]chan struct{}{"ab": release}}
	deliver, results := collect()

	c := NewController(KindProduct, "/rest/products", searcher, deliver)

	first := c.Input(context.Background(), "ab")
	waitFor(t, func() bool {
		searcher.mu.Lock()
		defer searcher.mu.Unlock()
		return len(searcher.queries) == 1
	})
	second := c.Input(context.Background(), "abc")

	waitFor(t, func() bool { return len(results()) == 1 })
	close(release)
	c.Close()

	got := results()
	if len(got) != 1 {
		t.Fatalf("results = %+v, want exactly one", got)
	}
	if got[0].Generation != second || got[0].Query != "abc" {
		t.Errorf("result = %+v, want generation %d query abc", got[0], second)
	}
	if first >= second {
		t.Errorf("generations not increasing: %d, %d", first, second)
	}
}

func TestStateMachine(t *testing.T) {
	deliver, results := collect()
	c := NewController(KindPallet, "/rest/palletnumbers", &stubSearcher{}, deliver)
	defer c.Close()

	if c.State() != StateIdle {
		t.Fatalf("initial state = %v", c.State())
	}

	c.Input(context.Background(), "PL")
	waitFor(t, func() bool { return len(results()) == 1 })
	if c.State() != StateSuggesting {
		t.Errorf("state = %v, want suggesting", c.State())
	}
	if s := c.Suggestions(); len(s) != 1 || s[0].Label() != "code-PL" {
		t.Errorf("suggestions = %+v", s)
	}

	c.Select(c.Suggestions()[0])
	if c.State() != StateIdle || c.Value() != "code-PL" || c.Text() != "code-PL" {
		t.Errorf("after select: state=%v value=%q text=%q", c.State(), c.Value(), c.Text())
	}

	c.Input(context.Background(), "none")
	waitFor(t, func() bool { return len(results()) == 2 })
	if c.State() != StateIdle {
		t.Errorf("empty result state = %v, want idle", c.State())
	}
}

func TestBlankInputDoesNotSearch(t *testing.T) {
	release := make(chan struct{})
	searcher := &stubSearcher{block: map[string]chan struct{}{"ab": release}}
	deliver, results := collect()
	c := NewController(KindProduct, "/rest/products", searcher, deliver)

	first := c.Input(context.Background(), "ab")
	waitFor(t, func() bool {
		searcher.mu.Lock()
		defer searcher.mu.Unlock()
		return len(searcher.queries) == 1
	})

	cleared := c.Input(context.Background(), "   ")
	if cleared <= first {
		t.Errorf("blank input generation %d should supersede %d", cleared, first)
	}
	if c.State() != StateIdle || len(c.Suggestions()) != 0 {
		t.Errorf("after blank input: state=%v suggestions=%v", c.State(), c.Suggestions())
	}

	close(release)
	c.Close()

	searcher.mu.Lock()
	defer searcher.mu.Unlock()
	if len(searcher.queries) != 1 || searcher.queries[0] != "ab" {
		t.Errorf("queries = %q, want only \"ab\"", searcher.queries)
	}
	if got := results(); len(got) != 0 {
		t.Errorf("superseded search delivered %+v", got)
	}
}

func TestBlurCommitsRawText(t *testing.T) {
	release := make(chan struct{})
	searcher := &stubSearcher{block: map[string]chan struct{}{"typed": release}}
	deliver, results := collect()
	c := NewController(KindStorageLocation, "/x", searcher, deliver)
	c.SetText("old")

	c.Input(context.Background(), "typed")
	if c.State() != StateSearching {
		t.Errorf("state = %v, want searching", c.State())
	}
	c.Blur()
	close(release)
	c.Close()

	if c.Value() != "typed" {
		t.Errorf("Value() = %q, want typed", c.Value())
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
	if len(results()) != 0 {
		t.Errorf("search superseded by blur still delivered: %+v", results())
	}
}

func TestSearchErrorDelivered(t *testing.T) {
	deliver, results := collect()
	c := NewController(KindAdditionalCode, "/x", &stubSearcher{err: errors.New("boom")}, deliver)
	defer c.Close()

	c.Input(context.Background(), "x")
	waitFor(t, func() bool { return len(results()) == 1 })
	if results()[0].Err == nil {
		t.Error("expected error result")
	}
	if c.State() != StateIdle {
		t.Errorf("state = %v, want idle", c.State())
	}
}

func TestDebounceCoalescesInput(t *testing.T) {
	searcher := &stubSearcher{}
	deliver, results := collect()
	c := NewController(KindProduct, "/x", searcher, deliver)
	c.Debounce = 50 * time.Millisecond
	defer c.Close()

	c.Input(context.Background(), "a")
	c.Input(context.Background(), "ab")
	c.Input(context.Background(), "abc")
	waitFor(t, func() bool { return len(results()) == 1 })
	time.Sleep(80 * time.Millisecond)

	searcher.mu.Lock()
	defer searcher.mu.Unlock()
	if len(searcher.queries) != 1 || searcher.queries[0] != "abc" {
		t.Errorf("queries = %v, want [abc]", searcher.queries)
	}
}

type stubUnits struct {
	mu       sync.Mutex
	products []string
}

func (s *stubUnits) ProductUnit(ctx context.Context, product string) (string, error) {
	s.mu.Lock()
	s.products = append(s.products, product)
	s.mu.Unlock()
	if product == "missing" {
		return "", errors.New("not found")
	}
	return "unit-of-" + product, nil
}

func TestUnitCascade(t *testing.T) {
	units := &stubUnits{}
	var mu sync.Mutex
	var pushed []string
	sink := UnitSinkFunc(func(u string) {
		mu.Lock()
		defer mu.Unlock()
		pushed = append(pushed, u)
	})

	cascade := NewUnitCascade(context.Background(), units, sink)
	cascade.Debounce = 30 * time.Millisecond

	cascade.Trigger("P-1")
	cascade.Trigger("P-12")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(pushed) == 1
	})

	cascade.Trigger("missing")
	time.Sleep(60 * time.Millisecond)
	cascade.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(pushed) != 1 || pushed[0] != "unit-of-P-12" {
		t.Errorf("pushed = %v", pushed)
	}
	units.mu.Lock()
	defer units.mu.Unlock()
	if units.products[0] != "P-12" {
		t.Errorf("first fetched product = %s, want P-12", units.products[0])
	}
}

func TestUnitCascadeCancelDropsPendingFetch(t *testing.T) {
	units := &stubUnits{}
	pushed := make(chan string, 1)
	cascade := NewUnitCascade(context.Background(), units, UnitSinkFunc(func(u string) { pushed <- u }))
	cascade.Debounce = 50 * time.Millisecond

	cascade.Trigger("P-1")
	cascade.Cancel()
	cascade.Close()

	select {
	case u := <-pushed:
		t.Errorf("canceled fetch pushed %q", u)
	default:
	}
	units.mu.Lock()
	defer units.mu.Unlock()
	if len(units.products) != 0 {
		t.Errorf("fetched %v after cancel", units.products)
	}
}

func TestProductEditorTriggersCascade(t *testing.T) {
	units := &stubUnits{}
	got := make(chan string, 1)
	cascade := NewUnitCascade(context.Background(), units, UnitSinkFunc(func(u string) { got <- u }))
	cascade.Debounce = 0
	defer cascade.Close()

	editors := NewEditors(Options{
		Endpoints: urls.New("http://erp.local"),
		Searcher:  &stubSearcher{},
		Cascade:   cascade,
	})

	w := editors[KindProduct].Render("")
	defer w.Close()
	if w.ElementID != "square" || w.Controller.Endpoint != "http://erp.local/rest/products" {
		t.Errorf("widget = %+v endpoint = %s", w, w.Controller.Endpoint)
	}

	w.Input(context.Background(), "P-7")
	select {
	case u := <-got:
		if u != "unit-of-P-7" {
			t.Errorf("unit = %s", u)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("unit was not propagated")
	}
	if editors[KindProduct].ReadValue(w) != "P-7" {
		t.Errorf("ReadValue() = %q", editors[KindProduct].ReadValue(w))
	}
}

func TestEditorsPerKind(t *testing.T) {
	editors := NewEditors(Options{Endpoints: urls.New("http://h"), Searcher: &stubSearcher{}})

	tests := []struct {
		kind     Kind
		endpoint string
	}{
		{KindProduct, "http://h/rest/products"},
		{KindAdditionalCode, "http://h/rest/additionalcodes"},
		{KindPallet, "http://h/rest/palletnumbers"},
		{KindStorageLocation, "http://h/integration/rest/documentPositions/storagelocations.html"},
	}
	for _, tt := range tests {
		e, ok := editors[tt.kind]
		if !ok {
			t.Fatalf("no editor for %s", tt.kind)
		}
		w := e.Render("initial")
		if w.Controller.Endpoint != tt.endpoint {
			t.Errorf("%s endpoint = %s, want %s", tt.kind, w.Controller.Endpoint, tt.endpoint)
		}
		if e.ReadValue(w) != "initial" || w.Controller.Value() != "initial" {
			t.Errorf("%s initial value = %q", tt.kind, e.ReadValue(w))
		}
		w.Close()
	}

	if _, err := ParseKind("unit"); err == nil {
		t.Error("ParseKind(unit) should fail")
	}
}
