// Package notice carries user-visible messages (save confirmations, server
// errors, validation failures) from the grid logic to whatever surface shows
// them: the terminal UI, the CLI, or a log.
package notice

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/positions/internal/logging"
)

// Kind is the severity of a notice.
type Kind string

const (
	KindSuccess Kind = "success"
	KindFailure Kind = "failure"
	KindInfo    Kind = "info"
)

// Notice is one message for the user.
type Notice struct {
	Kind    Kind
	Content string
	At      time.Time
}

// Success returns a success notice.
func Success(content string) Notice {
	return Notice{Kind: KindSuccess, Content: content, At: time.Now()}
}

// Failure returns a failure notice.
func Failure(content string) Notice {
	return Notice{Kind: KindFailure, Content: content, At: time.Now()}
}

// Info returns an informational notice.
func Info(content string) Notice {
	return Notice{Kind: KindInfo, Content: content, At: time.Now()}
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// Func adapts a function to Notifier.
type Func func(n Notice)

// Notify implements Notifier.
func (f Func) Notify(n Notice) { f(n) }

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

// Log writes notices to the structured log.
type Log struct{}

// Notify implements Notifier.
func (Log) Notify(n Notice) {
	fields := []zap.Field{zap.String("kind", string(n.Kind)), zap.String("content", n.Content)}
	if n.Kind == KindFailure {
		logging.Warn("Notice", fields...)
		return
	}
	logging.Info("Notice", fields...)
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(n Notice) {
	for _, notifier := range m {
		if notifier != nil {
			notifier.Notify(n)
		}
	}
}

// Collector records notices in memory. It is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (c *Collector) Notify(n Notice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = append(c.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (c *Collector) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notice(nil), c.notices...)
}

// Last returns the most recent notice, if any.
func (c *Collector) Last() (Notice, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.notices) == 0 {
		return Notice{}, false
	}
	return c.notices[len(c.notices)-1], true
}
