package codec

import (
	"context"
	"fmt"
	"log/slog"

	"melodi/internal/core"
	"melodi/internal/storage"
)

// DefaultKey is the storage key of the state blob.
const DefaultKey = "melodiApp_v1"

// Repository loads and saves the state blob under one fixed key.
type Repository struct {
	store storage.Store
	key   string
	clock core.Clock
	ids   core.IDSource
}

func NewRepository(store storage.Store, key string, clock core.Clock, ids core.IDSource) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{store: store, key: key, clock: clock, ids: ids}
}

// Key returns the storage key in use.
func (r *Repository) Key() string { return r.key }

// Load reads and decodes the blob. When decoding had to repair or migrate
// anything, the normalized state is written back before it is returned.
// Only store I/O failures are returned as errors.
func (r *Repository) Load(ctx context.Context) (core.State, Report, error) {
	data, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return core.State{}, Report{}, fmt.Errorf("read state blob: %w", err)
	}

	var (
		st  core.State
		rep Report
	)
	if !found {
		st, rep = core.EmptyState(), Report{Missing: true}
	} else {
		st, rep = Decode(data, r.clock.Now(), r.ids)
	}

	if rep.Corrupt {
		slog.WarnContext(ctx, "State blob unreadable, starting from empty state", "key", r.key, "bytes", len(data))
	}
	if len(rep.Reset) > 0 {
		slog.WarnContext(ctx, "State fields normalized to empty lists", "key", r.key, "fields", rep.Reset)
	}
	if rep.MigratedNotes {
		slog.InfoContext(ctx, "Migrated legacy string notes", "key", r.key, "notes", len(st.Notes))
	}
	for field, n := range rep.Dropped {
		slog.WarnContext(ctx, "Dropped unreadable entries", "key", r.key, "field", field, "dropped", n)
	}
	if rep.RepairedIDs > 0 {
		slog.WarnContext(ctx, "Assigned fresh ids to entries with missing or repeated ids", "key", r.key, "repaired", rep.RepairedIDs)
	}

	if rep.Changed() {
		if err := r.Save(ctx, st); err != nil {
			return core.State{}, rep, err
		}
	}
	return st, rep, nil
}

// Save overwrites the blob with the whole state.
func (r *Repository) Save(ctx context.Context, st core.State) error {
	data, err := Encode(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := r.store.Put(ctx, r.key, data); err != nil {
		return fmt.Errorf("write state blob: %w", err)
	}
	return nil
}
