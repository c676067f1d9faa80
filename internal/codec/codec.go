// Package codec serializes the whole application state to a single blob and
// reads it back tolerantly: missing, corrupt or mis-shaped data never fails
// a load, it is normalized to a structurally valid state instead.
package codec

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"melodi/internal/core"
)

// Top-level field names of the persisted blob.
const (
	FieldNotes        = "notes"
	FieldTransactions = "transactions"
	FieldTasks        = "tasks"
	FieldHabits       = "habits"
	FieldHabitLogs    = "habitLogs"
)

// Report describes what Decode had to repair.
type Report struct {
	Missing        bool     // no blob was stored
	Corrupt        bool     // blob was not a JSON object
	Reset          []string // fields replaced by an empty list
	MigratedNotes  bool     // notes were in the legacy single-string shape
	ClampedStreaks int      // habits whose negative streak was raised to 0
	RepairedIDs    int      // entries given a fresh id: zero or repeated in their list

	// Dropped counts unreadable entries per field. The rest of the list
	// is kept.
	Dropped map[string]int
}

// Changed reports whether the decoded state differs from what was stored.
func (r Report) Changed() bool {
	return r.Missing || r.Corrupt || len(r.Reset) > 0 || r.MigratedNotes ||
		r.ClampedStreaks > 0 || r.RepairedIDs > 0 || len(r.Dropped) > 0
}

// Encode serializes st. Field order is fixed and nil lists are written as
// empty arrays, so equal states always produce identical bytes.
func Encode(st core.State) ([]byte, error) {
	return json.Marshal(st.Clone())
}

// Decode parses a blob into a state. It never fails: unreadable input yields
// an empty state, and each top-level field that is missing or of the wrong
// shape becomes an empty list. Entries that do not decode are dropped one
// by one. Notes stored as a single string are migrated to a one-element list
// (or an empty list when blank) stamped with now. Entries without an id, or
// with an id already used in their list, get a fresh one from ids after ids
// has observed the largest id in the blob.
func Decode(data []byte, now time.Time, ids core.IDSource) (core.State, Report) {
	var rep Report
	st := core.EmptyState()

	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil || root == nil {
		rep.Corrupt = true
		return st, rep
	}

	st.Notes = decodeNotes(root[FieldNotes], now, &rep)
	st.Transactions = decodeList[core.Transaction](root, FieldTransactions, &rep)
	st.Tasks = decodeList[core.Task](root, FieldTasks, &rep)
	st.Habits = decodeList[core.Habit](root, FieldHabits, &rep)
	st.HabitLogs = decodeList[core.HabitLog](root, FieldHabitLogs, &rep)

	for i := range st.Habits {
		if st.Habits[i].Streak < 0 {
			st.Habits[i].Streak = 0
			rep.ClampedStreaks++
		}
	}

	ids.Observe(st.MaxID())
	rep.RepairedIDs += repairIDs(st.Notes, func(n *core.Note) *int64 { return &n.ID }, ids)
	rep.RepairedIDs += repairIDs(st.Transactions, func(t *core.Transaction) *int64 { return &t.ID }, ids)
	rep.RepairedIDs += repairIDs(st.Tasks, func(t *core.Task) *int64 { return &t.ID }, ids)
	rep.RepairedIDs += repairIDs(st.Habits, func(h *core.Habit) *int64 { return &h.ID }, ids)
	rep.RepairedIDs += repairIDs(st.HabitLogs, func(l *core.HabitLog) *int64 { return &l.ID }, ids)

	return st, rep
}

func decodeList[T any](root map[string]json.RawMessage, field string, rep *Report) []T {
	raw, ok := root[field]
	if !ok || isNull(raw) {
		rep.Reset = append(rep.Reset, field)
		return []T{}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil || elems == nil {
		rep.Reset = append(rep.Reset, field)
		return []T{}
	}
	out := make([]T, 0, len(elems))
	for _, elem := range elems {
		var v T
		if isNull(elem) || json.Unmarshal(elem, &v) != nil {
			if rep.Dropped == nil {
				rep.Dropped = make(map[string]int)
			}
			rep.Dropped[field]++
			continue
		}
		out = append(out, v)
	}
	return out
}

// repairIDs gives a fresh id to every entry whose id is zero or was already
// seen earlier in the list. It returns how many ids it replaced.
func repairIDs[T any](list []T, id func(*T) *int64, ids core.IDSource) int {
	seen := make(map[int64]bool, len(list))
	repaired := 0
	for i := range list {
		p := id(&list[i])
		if *p == 0 || seen[*p] {
			*p = ids.Next()
			repaired++
		}
		seen[*p] = true
	}
	return repaired
}

func decodeNotes(raw json.RawMessage, now time.Time, rep *Report) []core.Note {
	var legacy string
	if len(raw) > 0 && json.Unmarshal(raw, &legacy) == nil {
		rep.MigratedNotes = true
		if strings.TrimSpace(legacy) == "" {
			return []core.Note{}
		}
		// The id is issued with the rest of the repairs.
		return []core.Note{{
			Text: legacy,
			Date: core.Timestamp(now),
		}}
	}
	return decodeList[core.Note](map[string]json.RawMessage{FieldNotes: raw}, FieldNotes, rep)
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
