package lookup

import (
	"context"
	"sync"
	"time"
)

// generations hands out one generation per started task and cancels the
// previous task whenever a new one starts. Only the task holding the
// current generation may publish its result.
type generations struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// next supersedes the running task and returns the new generation with a
// context that is canceled when the generation is superseded.
func (g *generations) next(parent context.Context) (uint64, context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	g.gen++
	g.cancel = cancel
	return g.gen, ctx
}

// stop supersedes the running task without starting a new one.
func (g *generations) stop() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.gen++
	return g.gen
}

// current reports whether gen is still the latest generation.
func (g *generations) current(gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen == gen
}

func (g *generations) latest() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen
}

// wait blocks for d or until ctx is done. It reports whether the full delay
// elapsed.
func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
