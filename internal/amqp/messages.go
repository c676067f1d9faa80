package amqp

import (
	"encoding/json"
	"fmt"

	"melodi/internal/events"
)

// messageVersion is bumped when the envelope layout changes.
const messageVersion = 1

// message is the wire envelope around an event.
type message struct {
	Version int          `json:"version"`
	Event   events.Event `json:"event"`
}

func encodeEvent(e events.Event) ([]byte, error) {
	return json.Marshal(message{Version: messageVersion, Event: e})
}

func decodeEvent(data []byte) (events.Event, error) {
	var m message
	if err := json.Unmarshal(data, &m); err != nil {
		return events.Event{}, fmt.Errorf("unmarshal message: %w", err)
	}
	if m.Version != messageVersion {
		return events.Event{}, fmt.Errorf("unsupported message version %d", m.Version)
	}
	if m.Event.Module == "" || m.Event.Kind == "" {
		return events.Event{}, fmt.Errorf("message without module or kind")
	}
	return m.Event, nil
}
