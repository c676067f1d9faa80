package app

import (
	"context"

	"melodi/internal/core"
	"melodi/internal/events"
	"melodi/internal/habits"
	"melodi/internal/ledger"
	"melodi/internal/notes"
	"melodi/internal/tasks"
)

// Notes

func (a *App) Notes() []core.Note {
	return a.view().Notes
}

func (a *App) NoteViews() []notes.View {
	st := a.view()
	return notes.New(&st, a.ids, a.clock).Views()
}

func (a *App) CreateNote(ctx context.Context, text string) (core.Note, error) {
	var n core.Note
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		var err error
		if n, err = w.notes.Create(text); err != nil {
			return nil, err
		}
		return event(events.ModuleNotes, events.KindCreated, n.ID, notes.ViewOf(n).Preview), nil
	})
	return n, err
}

// UpdateNote returns core.ErrNotFound when id is absent.
func (a *App) UpdateNote(ctx context.Context, id int64, text string) (core.Note, error) {
	var n core.Note
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		var err error
		if n, err = w.notes.Update(id, text); err != nil {
			return nil, err
		}
		return event(events.ModuleNotes, events.KindUpdated, n.ID, notes.ViewOf(n).Preview), nil
	})
	return n, err
}

func (a *App) DeleteNote(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		if removed = w.notes.Delete(id); !removed {
			return nil, nil
		}
		return event(events.ModuleNotes, events.KindDeleted, id, ""), nil
	})
	return removed, err
}

// Ledger

// Transactions returns the ledger newest first.
func (a *App) Transactions() []core.Transaction {
	st := a.view()
	return ledger.New(&st, a.ids, a.clock).List()
}

func (a *App) Totals() core.Totals {
	return ledger.Totals(a.view().Transactions)
}

func (a *App) AddTransaction(ctx context.Context, desc string, amount float64, typ core.TransactionType) (core.Transaction, error) {
	return a.addTransaction(ctx, func(l *ledger.Ledger) (core.Transaction, error) {
		return l.Create(desc, amount, typ)
	})
}

// AddTransactionInput accepts raw user input for the amount and type.
func (a *App) AddTransactionInput(ctx context.Context, desc, amount, typ string) (core.Transaction, error) {
	return a.addTransaction(ctx, func(l *ledger.Ledger) (core.Transaction, error) {
		return l.CreateFromInput(desc, amount, typ)
	})
}

func (a *App) addTransaction(ctx context.Context, create func(*ledger.Ledger) (core.Transaction, error)) (core.Transaction, error) {
	var tx core.Transaction
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		var err error
		if tx, err = create(w.ledger); err != nil {
			return nil, err
		}
		return event(events.ModuleLedger, events.KindCreated, tx.ID, string(tx.Type)+" "+tx.Desc), nil
	})
	return tx, err
}

func (a *App) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		if removed = w.ledger.Delete(id); !removed {
			return nil, nil
		}
		return event(events.ModuleLedger, events.KindDeleted, id, ""), nil
	})
	return removed, err
}

// Tasks

// Tasks returns the tasks with incomplete ones first.
func (a *App) Tasks() []core.Task {
	return tasks.Sorted(a.view().Tasks)
}

func (a *App) TaskProgress() core.Progress {
	return tasks.ProgressOf(a.view().Tasks)
}

func (a *App) AddTask(ctx context.Context, text string, due core.Day) (core.Task, error) {
	var t core.Task
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		var err error
		if t, err = w.tasks.Create(text, due); err != nil {
			return nil, err
		}
		return event(events.ModuleTasks, events.KindCreated, t.ID, t.Text), nil
	})
	return t, err
}

// ToggleTask flips a task's completion. An absent id reports false.
func (a *App) ToggleTask(ctx context.Context, id int64) (core.Task, bool, error) {
	var (
		t  core.Task
		ok bool
	)
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		if t, ok = w.tasks.Toggle(id); !ok {
			return nil, nil
		}
		return event(events.ModuleTasks, events.KindToggled, t.ID, t.Text), nil
	})
	return t, ok, err
}

func (a *App) DeleteTask(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		if removed = w.tasks.Delete(id); !removed {
			return nil, nil
		}
		return event(events.ModuleTasks, events.KindDeleted, id, ""), nil
	})
	return removed, err
}

// Habits

func (a *App) Habits() []core.Habit {
	return a.view().Habits
}

// HabitLogs returns the reflection log newest first.
func (a *App) HabitLogs() []core.HabitLog {
	st := a.view()
	return habits.New(&st, a.ids, a.clock).Logs()
}

func (a *App) AddHabit(ctx context.Context, text string) (core.Habit, error) {
	var h core.Habit
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		var err error
		if h, err = w.habits.Create(text); err != nil {
			return nil, err
		}
		return event(events.ModuleHabits, events.KindCreated, h.ID, h.Text), nil
	})
	return h, err
}

// DeleteHabit removes a habit and keeps its logs.
func (a *App) DeleteHabit(ctx context.Context, id int64) (bool, error) {
	var removed bool
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		if removed = w.habits.Delete(id); !removed {
			return nil, nil
		}
		return event(events.ModuleHabits, events.KindDeleted, id, ""), nil
	})
	return removed, err
}

// BeginHabitToggle proposes the next transition of a habit without
// changing anything. The caller answers it with ResolveHabitToggle.
func (a *App) BeginHabitToggle(id int64) (habits.Pending, error) {
	st := a.view()
	return habits.New(&st, a.ids, a.clock).Begin(id)
}

// ResolveHabitToggle commits or discards p. A declined decision returns
// committed=false and no error. A habit changed since p was proposed is
// rejected with habits.ErrStaleTransition.
func (a *App) ResolveHabitToggle(ctx context.Context, p habits.Pending, d habits.Decision) (core.Habit, bool, error) {
	var (
		h         core.Habit
		committed bool
	)
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		var err error
		if h, committed, err = w.habits.Resolve(p, d); err != nil || !committed {
			return nil, err
		}
		kind := events.KindCompleted
		if p.Kind == habits.Undo {
			kind = events.KindUndone
		}
		return event(events.ModuleHabits, kind, h.ID, h.Text), nil
	})
	if err != nil {
		committed = false
	}
	return h, committed, err
}

// ToggleHabit begins and resolves a transition in one call.
func (a *App) ToggleHabit(ctx context.Context, id int64, d habits.Decision) (core.Habit, bool, error) {
	p, err := a.BeginHabitToggle(id)
	if err != nil {
		return core.Habit{}, false, err
	}
	return a.ResolveHabitToggle(ctx, p, d)
}

// ResetHabits clears today's done flags and keeps streaks. It returns how
// many habits changed.
func (a *App) ResetHabits(ctx context.Context) (int, error) {
	var changed int
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		if changed = w.habits.ResetDay(); changed == 0 {
			return nil, nil
		}
		return event(events.ModuleHabits, events.KindReset, 0, ""), nil
	})
	return changed, err
}

// DeleteHabitLog removes a log entry when confirmed.
func (a *App) DeleteHabitLog(ctx context.Context, id int64, confirmed bool) (bool, error) {
	var removed bool
	err := a.mutate(ctx, func(w *working) (*events.Event, error) {
		if removed = w.habits.DeleteLog(id, confirmed); !removed {
			return nil, nil
		}
		return event(events.ModuleHabits, events.KindLogDeleted, id, ""), nil
	})
	return removed, err
}
