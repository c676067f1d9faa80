package tasks

import (
	"errors"
	"testing"
	"time"

	"melodi/internal/core"
)

func newList() (*List, *core.State) {
	st := core.EmptyState()
	clock := core.FixedClock{T: time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)}
	return New(&st, core.NewSequence(clock, 0)), &st
}

func TestCreate(t *testing.T) {
	l, st := newList()
	if _, err := l.Create("   ", ""); !errors.Is(err, core.ErrBlankText) {
		t.Fatalf("blank err = %v", err)
	}
	a, err := l.Create("buy milk", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, _ := l.Create("pay rent", "2024-06-01")
	if a.Completed || !a.Due.IsZero() || b.Due != "2024-06-01" {
		t.Fatalf("tasks = %+v %+v", a, b)
	}
	if len(st.Tasks) != 2 || st.Tasks[0].ID != a.ID {
		t.Fatalf("tasks must be appended: %+v", st.Tasks)
	}
}

func TestToggleAndDelete(t *testing.T) {
	l, st := newList()
	a, _ := l.Create("a", "")

	got, ok := l.Toggle(a.ID)
	if !ok || !got.Completed || !st.Tasks[0].Completed {
		t.Fatalf("toggle on failed: %+v", st.Tasks)
	}
	l.Toggle(a.ID)
	if st.Tasks[0].Completed {
		t.Fatalf("toggle off failed")
	}
	if _, ok := l.Toggle(999); ok {
		t.Fatalf("absent id must report not found")
	}

	if !l.Delete(a.ID) || l.Delete(a.ID) {
		t.Fatalf("delete must remove once")
	}
	if len(st.Tasks) != 0 {
		t.Fatalf("tasks = %+v", st.Tasks)
	}
}

func TestCompletionPercentage(t *testing.T) {
	l, _ := newList()
	if got := l.CompletionPercentage(); got != 0 {
		t.Fatalf("empty percentage = %v", got)
	}
	var first core.Task
	for i, text := range []string{"a", "b", "c", "d"} {
		tk, _ := l.Create(text, "")
		if i == 0 {
			first = tk
		}
	}
	l.Toggle(first.ID)
	if got := l.CompletionPercentage(); got != 25 {
		t.Fatalf("percentage = %v, want 25", got)
	}
	p := l.Progress()
	if p.Total != 4 || p.Completed != 1 {
		t.Fatalf("progress = %+v", p)
	}
}

func TestSortedIsStablePartition(t *testing.T) {
	in := []core.Task{
		{ID: 1, Completed: true},
		{ID: 2},
		{ID: 3, Completed: true},
		{ID: 4},
		{ID: 5},
	}
	got := Sorted(in)
	want := []int64{2, 4, 5, 1, 3}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("order = %+v, want ids %v", got, want)
		}
	}
	if in[0].ID != 1 {
		t.Fatalf("Sorted must not reorder its input")
	}
}
