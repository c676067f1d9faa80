// Package app owns the tracker state and is the single entry point for
// presentation layers. Every mutation is one read-modify-write against the
// whole state: it runs on a working copy, the copy is persisted, and only
// then does it replace the live state. Rejected, declined or unsaved
// mutations leave both the live state and the stored blob untouched.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"melodi/internal/codec"
	"melodi/internal/core"
	"melodi/internal/events"
	"melodi/internal/habits"
	"melodi/internal/ledger"
	"melodi/internal/log"
	"melodi/internal/notes"
	"melodi/internal/storage"
	"melodi/internal/tasks"
)

// Options configure Open. Store is required; everything else has a default.
type Options struct {
	Store     storage.Store
	Key       string
	Clock     core.Clock
	Publisher events.Publisher
	Logger    *log.Logger
}

// App is the application state container.
type App struct {
	mu    sync.Mutex
	st    core.State
	day   core.Day
	repo  *codec.Repository
	ids   *core.Sequence
	clock core.Clock
	pub   events.Publisher
	log   *log.Logger
}

// Open loads the state, seeds the default habits when there are none, runs
// the daily habit reconciliation and persists the result. A missing or
// corrupt blob is not an error; only store failures are.
func Open(ctx context.Context, opts Options) (*App, error) {
	if opts.Store == nil {
		return nil, errors.New("open app: nil store")
	}
	if opts.Clock == nil {
		opts.Clock = core.SystemClock{}
	}
	if opts.Publisher == nil {
		opts.Publisher = events.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Wrap(nil, log.ComponentApp)
	}

	ids := core.NewSequence(opts.Clock, 0)
	repo := codec.NewRepository(opts.Store, opts.Key, opts.Clock, ids)

	st, rep, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	ids.Observe(st.MaxID())

	a := &App{
		repo:  repo,
		ids:   ids,
		clock: opts.Clock,
		pub:   opts.Publisher,
		log:   opts.Logger,
	}

	tr := habits.New(&st, ids, opts.Clock)
	seeded := tr.SeedDefaults()
	reconciled := tr.Reconcile()
	if seeded || reconciled > 0 {
		if err := repo.Save(ctx, st); err != nil {
			return nil, fmt.Errorf("save reconciled state: %w", err)
		}
	}
	a.st = st
	a.day = core.Today(opts.Clock.Now())

	a.log.InfoContext(ctx, "State loaded",
		log.FieldStateKey, repo.Key(),
		log.FieldOperation, log.OpLoad,
		"missing", rep.Missing,
		"corrupt", rep.Corrupt,
		"seeded_habits", seeded,
		"reconciled_habits", reconciled,
		"notes", len(st.Notes),
		"transactions", len(st.Transactions),
		"tasks", len(st.Tasks),
		"habits", len(st.Habits),
		"habit_logs", len(st.HabitLogs))
	return a, nil
}

// working is a mutable copy of the state with module views bound to it.
type working struct {
	st     *core.State
	notes  *notes.Store
	ledger *ledger.Ledger
	tasks  *tasks.List
	habits *habits.Tracker
}

func (a *App) begin() *working {
	st := a.st.Clone()
	w := &working{
		st:     &st,
		notes:  notes.New(&st, a.ids, a.clock),
		ledger: ledger.New(&st, a.ids, a.clock),
		tasks:  tasks.New(&st, a.ids),
		habits: habits.New(&st, a.ids, a.clock),
	}
	// A process left running past midnight reconciles before the first
	// change of the new day.
	if today := core.Today(a.clock.Now()); today != a.day {
		w.habits.Reconcile()
	}
	return w
}

// mutate runs fn on a working copy and commits it when fn returns an
// event. A nil event means nothing changed and nothing is written.
func (a *App) mutate(ctx context.Context, fn func(w *working) (*events.Event, error)) error {
	a.mu.Lock()
	w := a.begin()
	ev, err := fn(w)
	if err != nil || ev == nil {
		a.mu.Unlock()
		return err
	}
	if err := a.repo.Save(ctx, *w.st); err != nil {
		a.mu.Unlock()
		a.log.ErrorContext(ctx, "Failed to persist state",
			log.FieldOperation, log.OpSave,
			log.FieldModule, ev.Module,
			log.FieldError, err)
		return fmt.Errorf("commit %s %s: %w", ev.Module, ev.Kind, err)
	}
	a.st = *w.st
	a.day = core.Today(a.clock.Now())
	a.mu.Unlock()

	ev.At = core.Timestamp(a.clock.Now())
	a.log.Mutation(ctx, ev.Module, ev.Kind, ev.EntityID)
	if err := a.pub.Publish(ctx, *ev); err != nil {
		a.log.WarnContext(ctx, "Failed to publish event",
			log.FieldOperation, log.OpPublish,
			log.FieldModule, ev.Module,
			log.FieldError, err)
	}
	return nil
}

// view returns a copy of the live state, reconciled for today.
func (a *App) view() core.State {
	a.mu.Lock()
	st := a.st.Clone()
	day := a.day
	a.mu.Unlock()

	now := a.clock.Now()
	if today := core.Today(now); today != day {
		habits.Reconcile(st.Habits, today, core.Yesterday(now))
	}
	return st
}

// State returns a copy of the whole state.
func (a *App) State() core.State {
	return a.view()
}

// Key returns the storage key of the blob.
func (a *App) Key() string {
	return a.repo.Key()
}

func event(module, kind string, id int64, summary string) *events.Event {
	return &events.Event{Module: module, Kind: kind, EntityID: id, Summary: summary}
}
