package http

import (
	"net/http"

	"melodi/internal/log"
	"melodi/internal/notes"
)

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.app.NoteViews()).Write(w)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	n, err := s.app.CreateNote(r.Context(), p.Get("text"))
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(notes.ViewOf(n)).Write(w)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	n, err := s.app.UpdateNote(r.Context(), id, p.Get("text"))
	if err != nil {
		writeError(w, r, err, log.OpUpdate)
		return
	}
	NewJSONResponse().Data(notes.ViewOf(n)).Write(w)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	removed, err := s.app.DeleteNote(r.Context(), id)
	if err != nil {
		writeError(w, r, err, log.OpDelete)
		return
	}
	NewJSONResponse().Data(deleted{Deleted: removed}).Write(w)
}
