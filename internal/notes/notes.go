// Package notes keeps the journal: an ordered list of free-form entries,
// newest first.
package notes

import (
	"melodi/internal/core"
)

const (
	// PreviewLimit is the number of characters shown before a note is
	// truncated in list views.
	PreviewLimit = 100
	// Ellipsis marks a truncated preview.
	Ellipsis = "..."
)

// Store operates on the notes of a state.
type Store struct {
	st    *core.State
	ids   core.IDSource
	clock core.Clock
}

func New(st *core.State, ids core.IDSource, clock core.Clock) *Store {
	return &Store{st: st, ids: ids, clock: clock}
}

// Create prepends a note. Blank text is rejected with core.ErrBlankText and
// leaves the list untouched.
func (s *Store) Create(text string) (core.Note, error) {
	if core.IsBlank(text) {
		return core.Note{}, core.ErrBlankText
	}
	n := core.Note{
		ID:   s.ids.Next(),
		Text: text,
		Date: core.Timestamp(s.clock.Now()),
	}
	s.st.Notes = append([]core.Note{n}, s.st.Notes...)
	return n, nil
}

// Update replaces the text of a note and refreshes its timestamp.
func (s *Store) Update(id int64, text string) (core.Note, error) {
	if core.IsBlank(text) {
		return core.Note{}, core.ErrBlankText
	}
	for i := range s.st.Notes {
		if s.st.Notes[i].ID == id {
			s.st.Notes[i].Text = text
			s.st.Notes[i].Date = core.Timestamp(s.clock.Now())
			return s.st.Notes[i], nil
		}
	}
	return core.Note{}, core.ErrNotFound
}

// Delete removes a note by id. It reports whether anything was removed.
func (s *Store) Delete(id int64) bool {
	for i, n := range s.st.Notes {
		if n.ID == id {
			s.st.Notes = append(s.st.Notes[:i:i], s.st.Notes[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a note by id.
func (s *Store) Get(id int64) (core.Note, bool) {
	for _, n := range s.st.Notes {
		if n.ID == id {
			return n, true
		}
	}
	return core.Note{}, false
}

// List returns a copy of the notes, newest first.
func (s *Store) List() []core.Note {
	return append([]core.Note{}, s.st.Notes...)
}

// View is a note as shown in the journal list.
type View struct {
	core.Note
	Preview   string `json:"preview"`
	Truncated bool   `json:"truncated"`
}

// Views returns the read model of every note, newest first.
func (s *Store) Views() []View {
	out := make([]View, 0, len(s.st.Notes))
	for _, n := range s.st.Notes {
		out = append(out, ViewOf(n))
	}
	return out
}

// ViewOf builds the list view of a single note.
func ViewOf(n core.Note) View {
	preview, truncated := Preview(n.Text)
	return View{Note: n, Preview: preview, Truncated: truncated}
}

// Preview cuts text to PreviewLimit characters followed by Ellipsis. Text
// within the limit is returned unchanged.
func Preview(text string) (string, bool) {
	runes := []rune(text)
	if len(runes) <= PreviewLimit {
		return text, false
	}
	return string(runes[:PreviewLimit]) + Ellipsis, true
}
