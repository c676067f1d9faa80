// Package ledger records income and expense transactions and derives their
// totals.
package ledger

import (
	"strings"

	"melodi/internal/core"
)

// Ledger operates on the transactions of a state.
type Ledger struct {
	st    *core.State
	ids   core.IDSource
	clock core.Clock
}

func New(st *core.State, ids core.IDSource, clock core.Clock) *Ledger {
	return &Ledger{st: st, ids: ids, clock: clock}
}

// Create appends a transaction. A blank description, a non-positive or
// non-finite amount, or an unknown type is rejected and nothing is stored.
func (l *Ledger) Create(desc string, amount float64, typ core.TransactionType) (core.Transaction, error) {
	if core.IsBlank(desc) {
		return core.Transaction{}, core.ErrBlankText
	}
	if err := core.ValidateAmount(amount); err != nil {
		return core.Transaction{}, err
	}
	if !typ.Valid() {
		return core.Transaction{}, core.ErrInvalidType
	}
	tx := core.Transaction{
		ID:     l.ids.Next(),
		Desc:   desc,
		Amount: amount,
		Type:   typ,
		Date:   core.Timestamp(l.clock.Now()),
	}
	l.st.Transactions = append(l.st.Transactions, tx)
	return tx, nil
}

// CreateFromInput parses raw form values before calling Create.
func (l *Ledger) CreateFromInput(desc, amount, typ string) (core.Transaction, error) {
	v, err := core.ParseAmount(amount)
	if err != nil {
		return core.Transaction{}, err
	}
	return l.Create(desc, v, ParseType(typ))
}

// ParseType maps user input to a transaction type. Unknown input yields an
// invalid type.
func ParseType(s string) core.TransactionType {
	return core.TransactionType(strings.ToLower(strings.TrimSpace(s)))
}

// Delete removes a transaction by id. It reports whether anything was removed.
func (l *Ledger) Delete(id int64) bool {
	for i, tx := range l.st.Transactions {
		if tx.ID == id {
			l.st.Transactions = append(l.st.Transactions[:i:i], l.st.Transactions[i+1:]...)
			return true
		}
	}
	return false
}

// List returns the transactions newest first.
func (l *Ledger) List() []core.Transaction {
	n := len(l.st.Transactions)
	out := make([]core.Transaction, n)
	for i, tx := range l.st.Transactions {
		out[n-1-i] = tx
	}
	return out
}

// Totals recomputes the aggregates from the full list.
func (l *Ledger) Totals() core.Totals {
	return Totals(l.st.Transactions)
}

// Totals sums income and expense. Any type other than income counts as an
// expense, which keeps hand-edited blobs balanced.
func Totals(txs []core.Transaction) core.Totals {
	var t core.Totals
	for _, tx := range txs {
		if tx.Type == core.Income {
			t.Income += tx.Amount
		} else {
			t.Expense += tx.Amount
		}
	}
	t.Balance = t.Income - t.Expense
	return t
}
