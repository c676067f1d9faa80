package core

// Totals aggregates the ledger. Balance is Income minus Expense.
type Totals struct {
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Balance float64 `json:"balance"`
}

// Progress summarises task completion.
type Progress struct {
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}
