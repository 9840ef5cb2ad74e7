package notice

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/muurk/positions/internal/logging"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		n    Notice
		kind Kind
	}{
		{Success("Saved"), KindSuccess},
		{Failure("Pallet is full"), KindFailure},
		{Info("Reloaded"), KindInfo},
	}
	for _, tt := range tests {
		if tt.n.Kind != tt.kind {
			t.Errorf("%q kind = %s, want %s", tt.n.Content, tt.n.Kind, tt.kind)
		}
		if tt.n.At.IsZero() {
			t.Errorf("%q has no timestamp", tt.n.Content)
		}
	}
}

func TestCollector(t *testing.T) {
	c := &Collector{}
	if _, ok := c.Last(); ok {
		t.Error("Last() on an empty collector reported a notice")
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Notify(Info("x"))
		}()
	}
	wg.Wait()
	c.Notify(Success("done"))

	if got := len(c.Notices()); got != 11 {
		t.Errorf("len(Notices()) = %d, want 11", got)
	}
	if last, _ := c.Last(); last.Content != "done" {
		t.Errorf("Last() = %+v", last)
	}
}

func TestMultiSkipsNil(t *testing.T) {
	a, b := &Collector{}, &Collector{}
	var seen []string
	m := Multi{a, nil, Func(func(n Notice) { seen = append(seen, n.Content) }), b, Log{}, Discard}

	m.Notify(Failure("boom"))

	if len(a.Notices()) != 1 || len(b.Notices()) != 1 || len(seen) != 1 {
		t.Errorf("fan-out incomplete: a=%d b=%d func=%d", len(a.Notices()), len(b.Notices()), len(seen))
	}
}

func TestLogLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logging.SetLogger(zap.New(core))
	t.Cleanup(func() { logging.SetLogger(nil) })

	Log{}.Notify(Success("Saved"))
	Log{}.Notify(Failure("Pallet is full"))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[1].Level != zapcore.WarnLevel {
		t.Errorf("levels = %s, %s", entries[0].Level, entries[1].Level)
	}
	if entries[1].ContextMap()["content"] != "Pallet is full" {
		t.Errorf("fields = %v", entries[1].ContextMap())
	}
}
