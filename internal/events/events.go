// Package events describes the notifications emitted after a committed
// mutation. Events are informational: the persisted blob stays the only
// source of truth and a failed publish never undoes a mutation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Modules
const (
	ModuleNotes  = "notes"
	ModuleLedger = "ledger"
	ModuleTasks  = "tasks"
	ModuleHabits = "habits"
)

// Kinds
const (
	KindCreated    = "created"
	KindUpdated    = "updated"
	KindDeleted    = "deleted"
	KindToggled    = "toggled"
	KindCompleted  = "completed"
	KindUndone     = "undone"
	KindReset      = "reset"
	KindLogDeleted = "log_deleted"
)

// Event is a single committed change.
type Event struct {
	Kind     string    `json:"kind"`
	Module   string    `json:"module"`
	EntityID int64     `json:"entityId,omitempty"`
	Summary  string    `json:"summary,omitempty"`
	At       time.Time `json:"at"`
}

// RoutingKey is the module and kind joined by a dot, e.g. "habits.completed".
func (e Event) RoutingKey() string {
	return e.Module + "." + e.Kind
}

func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event and rejects payloads without a module or kind.
func FromJSON(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Module == "" || e.Kind == "" {
		return Event{}, fmt.Errorf("decode event: missing module or kind")
	}
	return e, nil
}

// Publisher delivers events somewhere outside the process.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
