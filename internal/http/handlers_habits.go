package http

import (
	"net/http"

	"melodi/internal/core"
	"melodi/internal/habits"
	"melodi/internal/log"
)

func (s *Server) handleListHabits(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.app.Habits()).Write(w)
}

func (s *Server) handleListHabitLogs(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.app.HabitLogs()).Write(w)
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	h, err := s.app.AddHabit(r.Context(), p.Get("text"))
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(h).Write(w)
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	removed, err := s.app.DeleteHabit(r.Context(), id)
	if err != nil {
		writeError(w, r, err, log.OpDelete)
		return
	}
	NewJSONResponse().Data(deleted{Deleted: removed}).Write(w)
}

// handleHabitTransition proposes the next toggle of a habit. The client
// shows it to the user and posts it back with the decision.
func (s *Server) handleHabitTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	p, err := s.app.BeginHabitToggle(id)
	if err != nil {
		writeError(w, r, err, log.OpToggle)
		return
	}
	NewJSONResponse().Data(p).Write(w)
}

type toggleHabitRequest struct {
	Proceed bool            `json:"proceed"`
	Note    string          `json:"note"`
	Pending *habits.Pending `json:"pending"`
}

type toggleHabitResponse struct {
	Committed bool       `json:"committed"`
	Habit     core.Habit `json:"habit"`
}

// handleToggleHabit resolves a transition. With a pending proposal in the
// body it is resolved as proposed and rejected with 409 if the habit has
// changed since; without one the transition is proposed and resolved in
// the same request.
func (s *Server) handleToggleHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var req toggleHabitRequest
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if p.IsJSON() {
		if err := p.Decode(&req); err != nil {
			BadRequestError(err.Error()).Write(w)
			return
		}
		req.Note = sanitizeInput(req.Note)
	} else {
		req.Proceed = p.Bool("proceed")
		req.Note = p.Get("note")
	}

	d := habits.Decline()
	if req.Proceed {
		d = habits.Accept(req.Note)
	}

	var (
		h         core.Habit
		committed bool
		err       error
	)
	if req.Pending != nil {
		if req.Pending.HabitID != id {
			BadRequestError("pending transition is for another habit").Write(w)
			return
		}
		h, committed, err = s.app.ResolveHabitToggle(r.Context(), *req.Pending, d)
	} else {
		h, committed, err = s.app.ToggleHabit(r.Context(), id, d)
	}
	if err != nil {
		writeError(w, r, err, log.OpToggle)
		return
	}
	NewJSONResponse().Data(toggleHabitResponse{Committed: committed, Habit: h}).Write(w)
}

func (s *Server) handleResetHabits(w http.ResponseWriter, r *http.Request) {
	changed, err := s.app.ResetHabits(r.Context())
	if err != nil {
		writeError(w, r, err, log.OpReset)
		return
	}
	NewJSONResponse().Data(map[string]int{"reset": changed}).Write(w)
}

// handleDeleteHabitLog removes a reflection only when the request carries
// confirm=true in the query.
func (s *Server) handleDeleteHabitLog(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	removed, err := s.app.DeleteHabitLog(r.Context(), id, parseBool(r.URL.Query().Get("confirm")))
	if err != nil {
		writeError(w, r, err, log.OpDelete)
		return
	}
	NewJSONResponse().Data(deleted{Deleted: removed}).Write(w)
}
