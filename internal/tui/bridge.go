package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/positions/internal/gridconfig"
	"github.com/muurk/positions/internal/lookup"
	"github.com/muurk/positions/internal/notice"
	"github.com/muurk/positions/internal/positions"
)

// Messages delivered from background work to the model.
type (
	configMsg struct{ cfg *gridconfig.GridConfig }
	pageMsg   struct{ page *positions.Page }
	noticeMsg struct{ notice notice.Notice }
	lookupMsg struct{ result lookup.Result }
	unitMsg   struct{ unit string }

	bootstrapDoneMsg struct{ err error }
	opDoneMsg        struct {
		op  string
		err error
	}
)

// Operations reported by opDoneMsg.
const (
	opReload = "reload"
	opSave   = "save"
	opDelete = "delete"
)

// bridge is the view layer the grid logic talks to. Callbacks arrive on
// arbitrary goroutines and are turned into messages for the program.
type bridge struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func newBridge(send func(tea.Msg)) *bridge {
	return &bridge{send: send}
}

func (b *bridge) setSend(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *bridge) post(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// Publish implements gridconfig.Publisher.
func (b *bridge) Publish(cfg *gridconfig.GridConfig) { b.post(configMsg{cfg}) }

// Notify implements notice.Notifier.
func (b *bridge) Notify(n notice.Notice) { b.post(noticeMsg{n}) }

// PropagateUnit implements lookup.UnitSink.
func (b *bridge) PropagateUnit(unit string) { b.post(unitMsg{unit}) }

func (b *bridge) lookupResult(r lookup.Result) { b.post(lookupMsg{r}) }

func (b *bridge) page(p *positions.Page) { b.post(pageMsg{p}) }
