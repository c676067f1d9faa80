package http

import (
	"errors"
	"net/http"

	"melodi/internal/core"
	"melodi/internal/habits"
	"melodi/internal/log"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.app == nil {
		ErrorResponse(http.StatusServiceUnavailable, CodeInternal, "state not loaded").Write(w)
		return
	}
	NewJSONResponse().Data(map[string]any{
		"status":   "ready",
		"stateKey": s.app.Key(),
		"security": s.metrics.snapshot(),
	}).Write(w)
}

// handleState returns the whole persisted state.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.app.State()).Write(w)
}

// writeError maps err to a response. Failures that are not the caller's
// fault are logged with the request's logger.
func writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	resp := FromError(err)
	if resp.statusCode >= http.StatusInternalServerError {
		log.LogError(r.Context(), "Request failed", err, errorType(err), op)
	}
	resp.Write(w)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, core.ErrBlankText), errors.Is(err, core.ErrInvalidAmount), errors.Is(err, core.ErrInvalidType):
		return log.ErrorTypeValidation
	case errors.Is(err, core.ErrNotFound):
		return log.ErrorTypeNotFound
	case errors.Is(err, habits.ErrStaleTransition):
		return log.ErrorTypeConflict
	default:
		return log.ErrorTypeDatabase
	}
}

// deleted is the body of every delete response. Deleting an absent id is
// not an error.
type deleted struct {
	Deleted bool `json:"deleted"`
}
