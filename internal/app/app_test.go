package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"melodi/internal/codec"
	"melodi/internal/core"
	"melodi/internal/events"
	"melodi/internal/habits"
	"melodi/internal/storage/memory"
)

var start = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// testStore counts writes and can be told to fail them.
type testStore struct {
	*memory.Store
	mu      sync.Mutex
	puts    int
	failPut error
}

func (s *testStore) Put(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut != nil {
		return s.failPut
	}
	s.puts++
	return s.Store.Put(ctx, key, value)
}

func (s *testStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func (s *testStore) blob(t *testing.T) map[string]json.RawMessage {
	t.Helper()
	raw, ok, err := s.Get(context.Background(), codec.DefaultKey)
	if err != nil || !ok {
		t.Fatalf("blob missing: ok=%v err=%v", ok, err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("blob is not an object: %v", err)
	}
	return m
}

type fixture struct {
	app   *App
	store *testStore
	clock *testClock
	pub   *events.Recorder
}

func open(t *testing.T, store *testStore) fixture {
	t.Helper()
	if store == nil {
		store = &testStore{Store: memory.New()}
	}
	clock := &testClock{t: start}
	pub := &events.Recorder{}
	a, err := Open(context.Background(), Options{Store: store, Clock: clock, Publisher: pub})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return fixture{app: a, store: store, clock: clock, pub: pub}
}

func TestOpenEmptyStoreSeedsAndPersists(t *testing.T) {
	f := open(t, nil)

	hs := f.app.Habits()
	if len(hs) != 3 || hs[0].Text != "Minum Air" {
		t.Fatalf("habits = %+v", hs)
	}
	var stored []core.Habit
	if err := json.Unmarshal(f.store.blob(t)["habits"], &stored); err != nil || len(stored) != 3 {
		t.Fatalf("seeded habits not persisted: %v %+v", err, stored)
	}
	if f.app.Key() != codec.DefaultKey {
		t.Fatalf("key = %q", f.app.Key())
	}
}

func TestOpenReconcilesAndPersists(t *testing.T) {
	blob := `{"notes":"catatan lama","transactions":[],"tasks":[],
		"habits":[{"id":1,"text":"a","active":true,"streak":4,"lastDate":"2024-05-07"},
		          {"id":2,"text":"b","active":true,"streak":2,"lastDate":"2024-05-09"}]}`
	store := &testStore{Store: memory.NewWith(codec.DefaultKey, []byte(blob))}
	f := open(t, store)

	hs := f.app.Habits()
	if hs[0].Active || hs[0].Streak != 0 {
		t.Fatalf("gap must break streak: %+v", hs[0])
	}
	if hs[1].Active || hs[1].Streak != 2 {
		t.Fatalf("yesterday must keep streak: %+v", hs[1])
	}
	if ns := f.app.Notes(); len(ns) != 1 || ns[0].Text != "catatan lama" {
		t.Fatalf("notes = %+v", ns)
	}

	var stored []core.Habit
	_ = json.Unmarshal(f.store.blob(t)["habits"], &stored)
	if stored[0].Streak != 0 {
		t.Fatalf("reconciled state not persisted: %+v", stored)
	}

	// Reopening the same day changes nothing.
	before := f.store.writes()
	open(t, store)
	if f.store.writes() != before {
		t.Fatalf("second open on the same day wrote the blob")
	}
}

func TestOpenFailsOnStoreError(t *testing.T) {
	boom := errors.New("disk full")
	store := &testStore{Store: memory.New(), failPut: boom}
	_, err := Open(context.Background(), Options{Store: store, Clock: &testClock{t: start}})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if _, err := Open(context.Background(), Options{}); err == nil {
		t.Fatalf("nil store must fail")
	}
}

func TestValidationRejectionWritesNothing(t *testing.T) {
	f := open(t, nil)
	ctx := context.Background()
	before := f.store.writes()

	if _, err := f.app.CreateNote(ctx, "   "); !errors.Is(err, core.ErrBlankText) {
		t.Fatalf("note err = %v", err)
	}
	if _, err := f.app.AddTransactionInput(ctx, "kopi", "abc", "expense"); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("amount err = %v", err)
	}
	if _, err := f.app.AddTransaction(ctx, "kopi", 10, "gift"); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("type err = %v", err)
	}
	if _, err := f.app.AddTask(ctx, "", ""); !errors.Is(err, core.ErrBlankText) {
		t.Fatalf("task err = %v", err)
	}
	if _, err := f.app.UpdateNote(ctx, 42, "x"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update err = %v", err)
	}
	if f.store.writes() != before {
		t.Fatalf("rejected mutations wrote the blob")
	}
	if len(f.pub.Events()) != 0 {
		t.Fatalf("rejected mutations published events")
	}
}

func TestAbsentIdsAreNoOps(t *testing.T) {
	f := open(t, nil)
	ctx := context.Background()
	before := f.store.writes()

	checks := []func() (bool, error){
		func() (bool, error) { return f.app.DeleteNote(ctx, 99) },
		func() (bool, error) { return f.app.DeleteTransaction(ctx, 99) },
		func() (bool, error) { return f.app.DeleteTask(ctx, 99) },
		func() (bool, error) { return f.app.DeleteHabit(ctx, 99) },
		func() (bool, error) { return f.app.DeleteHabitLog(ctx, 99, true) },
		func() (bool, error) { _, ok, err := f.app.ToggleTask(ctx, 99); return ok, err },
	}
	for i, c := range checks {
		if ok, err := c(); ok || err != nil {
			t.Fatalf("check %d: ok=%v err=%v", i, ok, err)
		}
	}
	if f.store.writes() != before {
		t.Fatalf("no-op mutations wrote the blob")
	}
}

func TestOpenRepairsRepeatedIDs(t *testing.T) {
	blob := `{"notes":[{"text":"a","date":"2024-05-01T10:00:00.000Z"},{"text":"b","date":"2024-05-01T10:00:00.000Z"}],
		"transactions":[],"tasks":[{"id":7,"text":"x"},{"id":7,"text":"y"}],"habits":[],"habitLogs":[]}`
	store := &testStore{Store: memory.NewWith(codec.DefaultKey, []byte(blob))}
	f := open(t, store)
	ctx := context.Background()

	ns := f.app.Notes()
	if ns[0].ID == 0 || ns[1].ID == 0 || ns[0].ID == ns[1].ID {
		t.Fatalf("note ids = %d %d", ns[0].ID, ns[1].ID)
	}

	if ok, err := f.app.DeleteTask(ctx, 7); !ok || err != nil {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ts := f.app.Tasks()
	if len(ts) != 1 || ts[0].Text != "y" || ts[0].ID == 7 {
		t.Fatalf("tasks after delete = %+v", ts)
	}

	// The repaired ids were persisted on open.
	var stored []core.Note
	_ = json.Unmarshal(f.store.blob(t)["notes"], &stored)
	if len(stored) != 2 || stored[0].ID != ns[0].ID || stored[1].ID != ns[1].ID {
		t.Fatalf("stored notes = %+v", stored)
	}
}

func TestFailedSaveLeavesStateUntouched(t *testing.T) {
	f := open(t, nil)
	ctx := context.Background()
	if _, err := f.app.CreateNote(ctx, "first"); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("disk gone")
	f.store.mu.Lock()
	f.store.failPut = boom
	f.store.mu.Unlock()

	if _, err := f.app.CreateNote(ctx, "second"); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if ns := f.app.Notes(); len(ns) != 1 || ns[0].Text != "first" {
		t.Fatalf("live state changed after failed save: %+v", ns)
	}
	if _, _, err := f.app.ToggleHabit(ctx, 1, habits.Accept("x")); !errors.Is(err, boom) {
		t.Fatalf("toggle err = %v", err)
	}
	if h := f.app.Habits()[0]; h.Active || h.Streak != 0 || len(f.app.HabitLogs()) != 0 {
		t.Fatalf("habit changed after failed save: %+v", h)
	}
	if len(f.pub.Events()) != 1 {
		t.Fatalf("failed commits must not publish: %+v", f.pub.Events())
	}
}

func TestHabitToggleThroughApp(t *testing.T) {
	f := open(t, nil)
	ctx := context.Background()

	p, err := f.app.BeginHabitToggle(2)
	if err != nil || p.Kind != habits.Complete {
		t.Fatalf("begin: %+v %v", p, err)
	}

	before := f.store.writes()
	if _, committed, err := f.app.ResolveHabitToggle(ctx, p, habits.Decline()); committed || err != nil {
		t.Fatalf("decline: committed=%v err=%v", committed, err)
	}
	if f.store.writes() != before {
		t.Fatalf("declined toggle wrote the blob")
	}

	h, committed, err := f.app.ResolveHabitToggle(ctx, p, habits.Accept("jogging"))
	if err != nil || !committed || h.Streak != 1 || !h.Active || h.LastDate != "2024-05-10" {
		t.Fatalf("complete: %+v committed=%v err=%v", h, committed, err)
	}
	if _, committed, err := f.app.ResolveHabitToggle(ctx, p, habits.Accept("again")); committed || !errors.Is(err, habits.ErrStaleTransition) {
		t.Fatalf("replayed pending: committed=%v err=%v", committed, err)
	}

	h, committed, err = f.app.ToggleHabit(ctx, 2, habits.Accept(""))
	if err != nil || !committed || h.Active || h.Streak != 0 || h.LastDate != "2024-05-09" {
		t.Fatalf("undo: %+v committed=%v err=%v", h, committed, err)
	}

	logs := f.app.HabitLogs()
	if len(logs) != 1 || logs[0].HabitName != "Olahraga" || logs[0].Note != "jogging" {
		t.Fatalf("logs = %+v", logs)
	}

	evs := f.pub.Events()
	if len(evs) != 2 || evs[0].Kind != events.KindCompleted || evs[1].Kind != events.KindUndone {
		t.Fatalf("events = %+v", evs)
	}
	if !evs[0].At.Equal(start) || evs[0].EntityID != 2 {
		t.Fatalf("event = %+v", evs[0])
	}

	if _, err := f.app.BeginHabitToggle(404); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown habit err = %v", err)
	}
}

func TestResetHabitsAndDeleteLog(t *testing.T) {
	f := open(t, nil)
	ctx := context.Background()
	f.app.ToggleHabit(ctx, 1, habits.Accept("8 gelas"))
	f.app.ToggleHabit(ctx, 3, habits.Accept("bab 2"))

	n, err := f.app.ResetHabits(ctx)
	if err != nil || n != 2 {
		t.Fatalf("reset: n=%d err=%v", n, err)
	}
	for _, h := range f.app.Habits() {
		if h.Active {
			t.Fatalf("habit still active: %+v", h)
		}
	}
	if f.app.Habits()[0].Streak != 1 {
		t.Fatalf("reset must keep streaks")
	}
	if n, _ := f.app.ResetHabits(ctx); n != 0 {
		t.Fatalf("second reset changed %d", n)
	}

	logs := f.app.HabitLogs()
	if ok, _ := f.app.DeleteHabitLog(ctx, logs[0].ID, false); ok {
		t.Fatalf("unconfirmed delete removed a log")
	}
	if ok, _ := f.app.DeleteHabitLog(ctx, logs[0].ID, true); !ok {
		t.Fatalf("confirmed delete failed")
	}
	if got := f.app.HabitLogs(); len(got) != 1 || got[0].Note != "8 gelas" {
		t.Fatalf("logs = %+v", got)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	f := open(t, nil)
	f.pub.Err = errors.New("broker down")
	if _, err := f.app.AddTask(context.Background(), "belanja", "2024-05-11"); err != nil {
		t.Fatalf("add task: %v", err)
	}
	if len(f.app.Tasks()) != 1 {
		t.Fatalf("task not committed")
	}
}

func TestReadsReturnCopies(t *testing.T) {
	f := open(t, nil)
	f.app.CreateNote(context.Background(), "asli")

	ns := f.app.Notes()
	ns[0].Text = "diubah"
	hs := f.app.Habits()
	hs[0].Streak = 99

	if f.app.Notes()[0].Text != "asli" || f.app.Habits()[0].Streak != 0 {
		t.Fatalf("reads leaked internal state")
	}
}

func TestLedgerAndTasksThroughApp(t *testing.T) {
	f := open(t, nil)
	ctx := context.Background()

	f.app.AddTransaction(ctx, "gaji", 5000, core.Income)
	f.app.AddTransactionInput(ctx, "makan", "1250,5", "Expense")
	tot := f.app.Totals()
	if tot.Income != 5000 || tot.Expense != 1250.5 || tot.Balance != 3749.5 {
		t.Fatalf("totals = %+v", tot)
	}
	txs := f.app.Transactions()
	if len(txs) != 2 || txs[0].Desc != "makan" {
		t.Fatalf("transactions must be newest first: %+v", txs)
	}

	a, _ := f.app.AddTask(ctx, "a", "")
	f.app.AddTask(ctx, "b", "")
	if _, ok, _ := f.app.ToggleTask(ctx, a.ID); !ok {
		t.Fatalf("toggle failed")
	}
	ts := f.app.Tasks()
	if ts[0].Text != "b" || !ts[1].Completed {
		t.Fatalf("incomplete tasks must come first: %+v", ts)
	}
	if p := f.app.TaskProgress(); p.Percentage != 50 || p.Total != 2 {
		t.Fatalf("progress = %+v", p)
	}
}

func TestStateSurvivesReopen(t *testing.T) {
	f := open(t, nil)
	ctx := context.Background()
	n, _ := f.app.CreateNote(ctx, "tetap")
	f.app.ToggleHabit(ctx, 1, habits.Accept(""))

	g := open(t, f.store)
	if ns := g.app.Notes(); len(ns) != 1 || ns[0].ID != n.ID {
		t.Fatalf("notes after reopen = %+v", ns)
	}
	if h := g.app.Habits()[0]; !h.Active || h.Streak != 1 {
		t.Fatalf("habit after reopen = %+v", h)
	}

	// New ids stay above everything already stored.
	m, _ := g.app.CreateNote(ctx, "baru")
	if m.ID <= n.ID {
		t.Fatalf("id %d not above %d", m.ID, n.ID)
	}
}

func TestDayRolloverWhileRunning(t *testing.T) {
	f := open(t, nil)
	ctx := context.Background()
	f.app.ToggleHabit(ctx, 1, habits.Accept(""))

	f.clock.Advance(48 * time.Hour)
	if h := f.app.Habits()[0]; h.Active || h.Streak != 0 {
		t.Fatalf("view not reconciled after two days: %+v", h)
	}

	f.app.AddTask(ctx, "x", "")
	var stored []core.Habit
	_ = json.Unmarshal(f.store.blob(t)["habits"], &stored)
	if stored[0].Active || stored[0].Streak != 0 {
		t.Fatalf("rollover not persisted with the next change: %+v", stored[0])
	}
}
