package lookup

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/positions/internal/logging"
)

// ProductUnitDebounce is how long product input must settle before its unit
// is fetched.
const ProductUnitDebounce = 500 * time.Millisecond

// UnitFetcher resolves a product's unit. *positions.Client implements it.
type UnitFetcher interface {
	ProductUnit(ctx context.Context, product string) (string, error)
}

// UnitSink receives the unit of the product being edited. Propagation is a
// display convenience; the server computes the stored unit itself.
type UnitSink interface {
	PropagateUnit(unit string)
}

// UnitSinkFunc adapts a function to UnitSink.
type UnitSinkFunc func(unit string)

// PropagateUnit implements UnitSink.
func (f UnitSinkFunc) PropagateUnit(unit string) { f(unit) }

// UnitCascade fetches the unit of the product typed into the product field
// and pushes it to a sink. Failures are logged and otherwise ignored.
type UnitCascade struct {
	Fetcher  UnitFetcher
	Sink     UnitSink
	Debounce time.Duration

	gens generations
	ctx  context.Context
	wg   sync.WaitGroup
}

// NewUnitCascade creates a cascade with the default debounce.
func NewUnitCascade(ctx context.Context, fetcher UnitFetcher, sink UnitSink) *UnitCascade {
	if ctx == nil {
		ctx = context.Background()
	}
	return &UnitCascade{Fetcher: fetcher, Sink: sink, Debounce: ProductUnitDebounce, ctx: ctx}
}

// Trigger restarts the debounce for product. Only the last product typed
// within the debounce window is fetched, and only a current fetch reaches
// the sink.
func (u *UnitCascade) Trigger(product string) {
	gen, ctx := u.gens.next(u.ctx)
	product = strings.TrimSpace(product)

	u.wg.Add(1)
	go func() {
		defer u.wg.Done()
		if !wait(ctx, u.Debounce) || product == "" {
			return
		}

		unit, err := u.Fetcher.ProductUnit(ctx, product)
		if err != nil {
			logging.Debug("Product unit lookup failed", zap.String("product", product), zap.Error(err))
			return
		}
		if !u.gens.current(gen) {
			logging.LogLookup(string(KindProduct), gen, "stale unit dropped")
			return
		}
		if u.Sink != nil {
			u.Sink.PropagateUnit(unit)
		}
	}()
}

// Cancel drops a pending fetch without waiting. A fetch already in flight
// finishes but its unit is not pushed.
func (u *UnitCascade) Cancel() {
	u.gens.stop()
}

// Close cancels a pending fetch and waits for it.
func (u *UnitCascade) Close() {
	u.gens.stop()
	u.wg.Wait()
}
