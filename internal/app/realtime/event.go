// Package realtime fans item change events out to websocket subscribers.
package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/R3E-Network/stockboard/internal/app/domain/item"
)

// Kind names a change event on the wire.
type Kind string

const (
	KindCreated Kind = "item:created"
	KindUpdated Kind = "item:updated"
	KindDeleted Kind = "item:deleted"
)

// Event is one committed store mutation. Created and Updated carry the full
// item; Deleted carries only the id.
type Event struct {
	Kind Kind
	Item item.Item
	ID   string
}

// Created builds an item:created event.
func Created(it item.Item) Event {
	return Event{Kind: KindCreated, Item: it, ID: it.ID}
}

// Updated builds an item:updated event.
func Updated(it item.Item) Event {
	return Event{Kind: KindUpdated, Item: it, ID: it.ID}
}

// Deleted builds an item:deleted event.
func Deleted(id string) Event {
	return Event{Kind: KindDeleted, ID: id}
}

// Frame is the JSON envelope written to subscribers.
type Frame struct {
	Event   Kind            `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type deletedPayload struct {
	ID string `json:"id"`
}

// Encode renders e as a wire frame.
func (e Event) Encode() ([]byte, error) {
	var payload any
	switch e.Kind {
	case KindCreated, KindUpdated:
		payload = e.Item
	case KindDeleted:
		payload = deletedPayload{ID: e.ID}
	default:
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", e.Kind, err)
	}
	return json.Marshal(Frame{Event: e.Kind, Payload: raw})
}

// Decode parses a wire frame back into an Event.
func Decode(data []byte) (Event, error) {
	if !gjson.ValidBytes(data) {
		return Event{}, fmt.Errorf("invalid frame")
	}

	kind := Kind(gjson.GetBytes(data, "event").String())
	payload := gjson.GetBytes(data, "payload")
	if !payload.IsObject() {
		return Event{}, fmt.Errorf("frame %q has no object payload", kind)
	}

	switch kind {
	case KindCreated, KindUpdated:
		var it item.Item
		if err := json.Unmarshal([]byte(payload.Raw), &it); err != nil {
			return Event{}, fmt.Errorf("decode %s payload: %w", kind, err)
		}
		if it.ID == "" {
			return Event{}, fmt.Errorf("%s payload missing id", kind)
		}
		return Event{Kind: kind, Item: it, ID: it.ID}, nil
	case KindDeleted:
		id := payload.Get("id").String()
		if id == "" {
			return Event{}, fmt.Errorf("%s payload missing id", kind)
		}
		return Deleted(id), nil
	default:
		return Event{}, fmt.Errorf("unknown event kind %q", kind)
	}
}
