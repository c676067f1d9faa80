package events

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEventJSON(t *testing.T) {
	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	e := Event{Kind: KindCompleted, Module: ModuleHabits, EntityID: 2, Summary: "Olahraga", At: at}

	b, err := e.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	want := `{"kind":"completed","module":"habits","entityId":2,"summary":"Olahraga","at":"2024-05-10T09:00:00Z"}`
	if string(b) != want {
		t.Fatalf("ToJSON() = %s, want %s", b, want)
	}

	back, err := FromJSON(b)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}
	if back.Kind != e.Kind || back.Module != e.Module || back.EntityID != e.EntityID || back.Summary != e.Summary || !back.At.Equal(at) {
		t.Fatalf("FromJSON() = %+v, want %+v", back, e)
	}
	if e.RoutingKey() != "habits.completed" {
		t.Fatalf("RoutingKey() = %q", e.RoutingKey())
	}
}

func TestFromJSONRejectsInvalid(t *testing.T) {
	for _, in := range []string{`not json`, `{}`, `{"module":"notes"}`, `{"kind":1}`} {
		if _, err := FromJSON([]byte(in)); err == nil {
			t.Errorf("FromJSON(%s) should fail", in)
		}
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	ctx := context.Background()
	_ = r.Publish(ctx, Event{Kind: KindCreated, Module: ModuleNotes})
	_ = r.Publish(ctx, Event{Kind: KindDeleted, Module: ModuleNotes})
	if got := r.Events(); len(got) != 2 || got[1].Kind != KindDeleted {
		t.Fatalf("Events() = %+v", got)
	}

	r.Err = errors.New("down")
	if err := r.Publish(ctx, Event{}); !errors.Is(err, r.Err) {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(r.Events()) != 2 {
		t.Fatalf("failed publish must not be recorded")
	}
}
