package lookup

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/positions"
)

// Searcher runs a lookup search. *positions.Client implements it.
type Searcher interface {
	Search(ctx context.Context, endpoint, query string) ([]positions.Candidate, error)
}

// State is the lookup field's position in its Idle → Searching →
// (Idle | Suggesting) cycle.
type State int

const (
	StateIdle State = iota
	StateSearching
	StateSuggesting
)

func (s State) String() string {
	switch s {
	case StateSearching:
		return "searching"
	case StateSuggesting:
		return "suggesting"
	default:
		return "idle"
	}
}

// Result is delivered once per search that is still current when it
// completes. Superseded searches deliver nothing.
type Result struct {
	Kind       Kind
	Generation uint64
	Query      string
	Candidates []positions.Candidate
	Err        error
}

// Controller drives one lookup field. At most one search is in flight; every
// new input cancels the previous search and bumps the generation, and a
// response whose generation is no longer current is dropped. Blank input
// clears the suggestions without searching.
type Controller struct {
	Kind     Kind
	Endpoint string
	Debounce time.Duration

	searcher Searcher
	deliver  func(Result)
	onInput  func(text string)

	gens generations

	// mu guards the fields below and is taken before gens.mu.
	mu          sync.Mutex
	state       State
	text        string
	value       string
	suggestions []positions.Candidate
	wg          sync.WaitGroup
}

// NewController creates a controller. deliver is called from a search
// goroutine with every current result; it may be nil.
func NewController(kind Kind, endpoint string, searcher Searcher, deliver func(Result)) *Controller {
	return &Controller{
		Kind:     kind,
		Endpoint: endpoint,
		searcher: searcher,
		deliver:  deliver,
	}
}

// SetText sets the field's text and committed value without searching.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.value = text
}

// Input handles a keystroke or paste: the previous search is canceled and a
// new one starts after the debounce delay.
func (c *Controller) Input(ctx context.Context, text string) uint64 {
	blank := strings.TrimSpace(text) == ""

	c.mu.Lock()
	var gen uint64
	var searchCtx context.Context
	if blank {
		gen = c.gens.stop()
		c.state = StateIdle
	} else {
		gen, searchCtx = c.gens.next(ctx)
		c.state = StateSearching
	}
	c.text = text
	c.suggestions = nil
	onInput := c.onInput
	c.mu.Unlock()

	if blank {
		logging.LogLookup(string(c.Kind), gen, "cleared")
	} else {
		logging.LogLookup(string(c.Kind), gen, "input")
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			c.search(searchCtx, gen, text)
		}()
	}

	if onInput != nil {
		onInput(text)
	}
	return gen
}

func (c *Controller) search(ctx context.Context, gen uint64, query string) {
	if !wait(ctx, c.Debounce) {
		logging.LogLookup(string(c.Kind), gen, "debounce canceled")
		return
	}

	candidates, err := c.searcher.Search(ctx, c.Endpoint, query)

	c.mu.Lock()
	if !c.gens.current(gen) {
		c.mu.Unlock()
		logging.LogLookup(string(c.Kind), gen, "stale result dropped")
		return
	}
	if err != nil || len(candidates) == 0 {
		c.state = StateIdle
		c.suggestions = nil
	} else {
		c.state = StateSuggesting
		c.suggestions = candidates
	}
	deliver := c.deliver
	c.mu.Unlock()

	if err != nil && positions.IsCanceled(err) {
		return
	}

	logging.LogLookup(string(c.Kind), gen, "result")
	if deliver != nil {
		deliver(Result{Kind: c.Kind, Generation: gen, Query: query, Candidates: candidates, Err: err})
	}
}

// supersede cancels any running search. The caller holds c.mu.
func (c *Controller) supersede() {
	c.gens.stop()
	c.suggestions = nil
	c.state = StateIdle
}

// Select commits a suggestion: the field's value becomes the candidate's
// code or number.
func (c *Controller) Select(candidate positions.Candidate) {
	c.mu.Lock()
	c.supersede()
	c.text = candidate.Label()
	c.value = c.text
	onInput := c.onInput
	text := c.text
	c.mu.Unlock()

	if onInput != nil {
		onInput(text)
	}
}

// Blur leaves the field: the raw typed text becomes the committed value.
func (c *Controller) Blur() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supersede()
	c.value = c.text
}

// Close cancels any running search and waits for it to finish.
func (c *Controller) Close() {
	c.mu.Lock()
	c.supersede()
	c.mu.Unlock()
	c.wg.Wait()
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Text returns what is currently typed in the field.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text
}

// Value returns the last committed value.
func (c *Controller) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Suggestions returns the candidates of the current search, if any.
func (c *Controller) Suggestions() []positions.Candidate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]positions.Candidate(nil), c.suggestions...)
}

// Generation returns the current generation.
func (c *Controller) Generation() uint64 {
	return c.gens.latest()
}
