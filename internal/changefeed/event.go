package changefeed

import (
	"encoding/json"
	"fmt"
)

// Event names published on the feed.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event reports a change to one document position.
type Event struct {
	Event    string `json:"event"`
	ID       string `json:"id"`
	Document string `json:"document"`
}

// Encode returns the wire form of the event.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses one feed message.
func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("invalid change event: %w", err)
	}
	switch e.Event {
	case EventCreated, EventUpdated, EventDeleted:
	default:
		return Event{}, fmt.Errorf("unknown change event %q", e.Event)
	}
	return e, nil
}
