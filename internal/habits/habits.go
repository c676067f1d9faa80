// Package habits tracks daily routines, their streaks and the reflection
// log written each time a habit is completed.
//
// A habit cycles through two daily states, idle and done, anchored by the
// calendar day on which it last advanced. Reconcile runs once per load and
// clears yesterday's done flags, breaking streaks after a gap of two days or
// more. Toggling is split into Begin and Resolve so the caller can collect
// an annotation (completion) or a confirmation (undo) before anything is
// committed.
package habits

import (
	"errors"
	"fmt"

	"melodi/internal/core"
)

// Defaults returns the habits seeded when the habit list is empty.
func Defaults() []core.Habit {
	return []core.Habit{
		{ID: 1, Text: "Minum Air"},
		{ID: 2, Text: "Olahraga"},
		{ID: 3, Text: "Baca Buku"},
	}
}

// ErrStaleTransition is returned when a habit changed between Begin and
// Resolve.
var ErrStaleTransition = errors.New("habit changed since transition was proposed")

// Kind is the direction of a toggle.
type Kind int

const (
	// Complete marks an idle habit done for today and needs an annotation.
	Complete Kind = iota + 1
	// Undo reverts a done habit and needs a confirmation.
	Undo
)

func (k Kind) String() string {
	switch k {
	case Complete:
		return "complete"
	case Undo:
		return "undo"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "complete":
		*k = Complete
	case "undo":
		*k = Undo
	default:
		return fmt.Errorf("unknown transition kind %q", b)
	}
	return nil
}

// Pending is a proposed toggle awaiting the caller's decision. It carries a
// snapshot of the habit so Resolve can detect concurrent changes.
type Pending struct {
	Kind      Kind     `json:"kind"`
	HabitID   int64    `json:"habitId"`
	HabitName string   `json:"habitName"`
	Active    bool     `json:"active"`
	Streak    int      `json:"streak"`
	LastDate  core.Day `json:"lastDate"`
}

// Decision answers a Pending transition. Note is the annotation recorded
// on completion and is ignored for undo.
type Decision struct {
	Proceed bool
	Note    string
}

// Accept proceeds with the transition.
func Accept(note string) Decision { return Decision{Proceed: true, Note: note} }

// Decline discards the transition.
func Decline() Decision { return Decision{} }

// Tracker operates on the habits and habit logs of a state.
type Tracker struct {
	st    *core.State
	ids   core.IDSource
	clock core.Clock
}

func New(st *core.State, ids core.IDSource, clock core.Clock) *Tracker {
	return &Tracker{st: st, ids: ids, clock: clock}
}

// SeedDefaults fills an empty habit list with Defaults. It reports whether
// anything was added.
func (t *Tracker) SeedDefaults() bool {
	if len(t.st.Habits) > 0 {
		return false
	}
	t.st.Habits = Defaults()
	return true
}

// Reconcile applies the daily reset to every habit and returns how many
// habits changed.
func (t *Tracker) Reconcile() int {
	now := t.clock.Now()
	return Reconcile(t.st.Habits, core.Today(now), core.Yesterday(now))
}

// Reconcile clears the done flag of habits not completed today and resets
// the streak of habits whose last completion is older than yesterday.
// Habits completed today are left untouched, so repeated runs on the same
// day are no-ops.
func Reconcile(habits []core.Habit, today, yesterday core.Day) int {
	changed := 0
	for i := range habits {
		h := &habits[i]
		if h.LastDate == today {
			continue
		}
		before := *h
		h.Active = false
		if !h.LastDate.IsZero() && h.LastDate != yesterday {
			h.Streak = 0
		}
		if *h != before {
			changed++
		}
	}
	return changed
}

// Begin proposes the toggle of habit id.
func (t *Tracker) Begin(id int64) (Pending, error) {
	h, ok := t.find(id)
	if !ok {
		return Pending{}, core.ErrNotFound
	}
	p := Pending{
		Kind:      Complete,
		HabitID:   h.ID,
		HabitName: h.Text,
		Active:    h.Active,
		Streak:    h.Streak,
		LastDate:  h.LastDate,
	}
	if h.Active {
		p.Kind = Undo
	}
	return p, nil
}

// Resolve commits or discards p. It returns the habit as it stands
// afterwards and whether the transition was committed.
//
// Completing sets the habit done, advances the streak, anchors it to today
// and appends a log entry. Undoing clears the flag, decrements the streak
// (never below zero) and rewinds the anchor to yesterday so a later
// completion today continues the streak. Logs are never removed by undo.
func (t *Tracker) Resolve(p Pending, d Decision) (core.Habit, bool, error) {
	i := t.index(p.HabitID)
	if !d.Proceed {
		if i < 0 {
			return core.Habit{}, false, nil
		}
		return t.st.Habits[i], false, nil
	}
	if i < 0 {
		return core.Habit{}, false, fmt.Errorf("%w: %w", ErrStaleTransition, core.ErrNotFound)
	}
	h := &t.st.Habits[i]
	if h.Text != p.HabitName || h.Active != p.Active || h.Streak != p.Streak || h.LastDate != p.LastDate {
		return *h, false, ErrStaleTransition
	}

	now := t.clock.Now()
	switch p.Kind {
	case Complete:
		h.Active = true
		h.Streak++
		h.LastDate = core.Today(now)
		t.st.HabitLogs = append(t.st.HabitLogs, core.HabitLog{
			ID:        t.ids.Next(),
			HabitName: h.Text,
			Note:      d.Note,
			Date:      core.Timestamp(now),
		})
	case Undo:
		h.Active = false
		if h.Streak > 0 {
			h.Streak--
		}
		h.LastDate = core.Yesterday(now)
	default:
		return *h, false, fmt.Errorf("unknown transition kind %d", p.Kind)
	}
	return *h, true, nil
}

// Toggle runs Begin and Resolve with a decision made up front.
func (t *Tracker) Toggle(id int64, d Decision) (core.Habit, bool, error) {
	p, err := t.Begin(id)
	if err != nil {
		return core.Habit{}, false, err
	}
	return t.Resolve(p, d)
}

// ResetDay clears the done flag of every habit without touching streaks.
// It returns how many habits changed.
func (t *Tracker) ResetDay() int {
	changed := 0
	for i := range t.st.Habits {
		if t.st.Habits[i].Active {
			t.st.Habits[i].Active = false
			changed++
		}
	}
	return changed
}

// Create appends an idle habit with no streak.
func (t *Tracker) Create(text string) (core.Habit, error) {
	if core.IsBlank(text) {
		return core.Habit{}, core.ErrBlankText
	}
	h := core.Habit{ID: t.ids.Next(), Text: text}
	t.st.Habits = append(t.st.Habits, h)
	return h, nil
}

// Delete removes a habit. Its logs are kept.
func (t *Tracker) Delete(id int64) bool {
	i := t.index(id)
	if i < 0 {
		return false
	}
	t.st.Habits = append(t.st.Habits[:i:i], t.st.Habits[i+1:]...)
	return true
}

// DeleteLog removes a log entry when confirmed. Streaks are unaffected.
func (t *Tracker) DeleteLog(id int64, confirmed bool) bool {
	if !confirmed {
		return false
	}
	for i, l := range t.st.HabitLogs {
		if l.ID == id {
			t.st.HabitLogs = append(t.st.HabitLogs[:i:i], t.st.HabitLogs[i+1:]...)
			return true
		}
	}
	return false
}

// List returns a copy of the habits in insertion order.
func (t *Tracker) List() []core.Habit {
	return append([]core.Habit{}, t.st.Habits...)
}

// Logs returns the habit logs newest first.
func (t *Tracker) Logs() []core.HabitLog {
	n := len(t.st.HabitLogs)
	out := make([]core.HabitLog, n)
	for i, l := range t.st.HabitLogs {
		out[n-1-i] = l
	}
	return out
}

func (t *Tracker) find(id int64) (core.Habit, bool) {
	if i := t.index(id); i >= 0 {
		return t.st.Habits[i], true
	}
	return core.Habit{}, false
}

func (t *Tracker) index(id int64) int {
	for i, h := range t.st.Habits {
		if h.ID == id {
			return i
		}
	}
	return -1
}
