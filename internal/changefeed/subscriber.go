package changefeed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/positions/internal/logging"
	"github.com/muurk/positions/internal/positions"
)

// Subscriber reads the change feed of one backend and hands events for its
// document to Handler.
type Subscriber struct {
	// URL is the websocket URL of the feed (see urls.Endpoints.ChangeFeed)
	URL string

	// Document filters events; empty accepts every document
	Document string

	// Handler is called for every accepted event, from the Run goroutine
	Handler func(ctx context.Context, e Event)

	// Header is sent with the handshake (e.g. Basic Auth)
	Header http.Header

	// Dialer defaults to websocket.DefaultDialer
	Dialer *websocket.Dialer
}

// NewSubscriber creates a subscriber for the events of one document.
func NewSubscriber(url, document string, handler func(ctx context.Context, e Event)) *Subscriber {
	return &Subscriber{URL: url, Document: document, Handler: handler}
}

// Run connects and dispatches events until ctx is canceled or the server
// closes the feed. It does not reconnect. A canceled ctx returns nil.
func (s *Subscriber) Run(ctx context.Context) error {
	dialer := s.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, resp, err := dialer.DialContext(ctx, s.URL, s.Header)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		if resp != nil {
			return fmt.Errorf("change feed handshake failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to connect to change feed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	logging.Info("Subscribed to change feed", zap.String("url", s.URL), zap.String("document", s.Document))

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		_ = conn.Close()
	})
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("change feed read failed: %w", err)
		}

		e, err := Decode(data)
		if err != nil {
			logging.Warn("Ignoring change feed message", zap.Error(err))
			continue
		}
		if s.Document != "" && e.Document != s.Document {
			continue
		}

		logging.LogChangeEvent("received", e.Event, e.ID)
		if s.Handler != nil {
			s.Handler(ctx, e)
		}
	}
}

// ReloadOnChange returns a handler that re-fetches the grid on every event.
// Reload failures are logged.
func ReloadOnChange(r positions.Reloader) func(ctx context.Context, e Event) {
	return func(ctx context.Context, e Event) {
		if err := r.Reload(ctx); err != nil && !positions.IsCanceled(err) {
			logging.Warn("Reload after change event failed",
				zap.String("event", e.Event),
				zap.String("id", e.ID),
				zap.Error(err),
			)
		}
	}
}
