package http

import (
	"net/http"
	"time"

	"melodi/internal/core"
	"melodi/internal/log"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.app.Tasks()).Write(w)
}

func (s *Server) handleTaskProgress(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.app.TaskProgress()).Write(w)
}

// handleCreateTask takes the task text and an optional due date as
// YYYY-MM-DD.
func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	var due core.Day
	if raw := p.Get("date"); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			ValidationError("date", "date must be YYYY-MM-DD").Write(w)
			return
		}
		due = core.DayOf(d)
	}
	t, err := s.app.AddTask(r.Context(), p.Get("text"), due)
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(t).Write(w)
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	t, found, err := s.app.ToggleTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err, log.OpToggle)
		return
	}
	if !found {
		NotFoundError("task not found").Write(w)
		return
	}
	NewJSONResponse().Data(t).Write(w)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	removed, err := s.app.DeleteTask(r.Context(), id)
	if err != nil {
		writeError(w, r, err, log.OpDelete)
		return
	}
	NewJSONResponse().Data(deleted{Deleted: removed}).Write(w)
}
