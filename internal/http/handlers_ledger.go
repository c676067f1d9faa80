package http

import (
	"net/http"

	"melodi/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.app.Transactions()).Write(w)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.app.Totals()).Write(w)
}

// handleCreateTransaction accepts the amount as a JSON number or as text
// with either decimal separator. The type is "income" or "expense".
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	tx, err := s.app.AddTransactionInput(r.Context(), p.Get("desc"), p.Get("amount"), p.Get("type"))
	if err != nil {
		writeError(w, r, err, log.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Data(tx).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	removed, err := s.app.DeleteTransaction(r.Context(), id)
	if err != nil {
		writeError(w, r, err, log.OpDelete)
		return
	}
	NewJSONResponse().Data(deleted{Deleted: removed}).Write(w)
}
