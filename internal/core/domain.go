package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

type (
	TransactionType string

	Note struct {
		ID   int64     `json:"id"`
		Text string    `json:"text"`
		Date time.Time `json:"date"`
	}

	Transaction struct {
		ID     int64           `json:"id"`
		Desc   string          `json:"desc"`
		Amount float64         `json:"amount"`
		Type   TransactionType `json:"type"`
		Date   time.Time       `json:"date"`
	}

	Task struct {
		ID        int64  `json:"id"`
		Text      string `json:"text"`
		Due       Day    `json:"date"` // optional due date
		Completed bool   `json:"completed"`
	}

	// Habit tracks a daily routine. Active means "done today"; LastDate is
	// the calendar day on which Active/Streak last advanced.
	Habit struct {
		ID       int64  `json:"id"`
		Text     string `json:"text"`
		Active   bool   `json:"active"`
		Streak   int    `json:"streak"`
		LastDate Day    `json:"lastDate"`
	}

	// HabitLog is a reflection recorded when a habit is completed. HabitName
	// is a snapshot of the habit text, not a reference.
	HabitLog struct {
		ID        int64     `json:"id"`
		HabitName string    `json:"habitName"`
		Note      string    `json:"note"`
		Date      time.Time `json:"date"`
	}

	// State is the single persisted root.
	State struct {
		Notes        []Note        `json:"notes"`
		Transactions []Transaction `json:"transactions"`
		Tasks        []Task        `json:"tasks"`
		Habits       []Habit       `json:"habits"`
		HabitLogs    []HabitLog    `json:"habitLogs"`
	}
)

var (
	ErrBlankText     = errors.New("blank text")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
	ErrNotFound      = errors.New("not found")
)

// Valid reports whether t is one of the two known transaction types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// EmptyState returns a state with every list allocated.
func EmptyState() State {
	return State{
		Notes:        []Note{},
		Transactions: []Transaction{},
		Tasks:        []Task{},
		Habits:       []Habit{},
		HabitLogs:    []HabitLog{},
	}
}

// Clone returns a deep copy of s. Nil lists come back as empty lists.
func (s State) Clone() State {
	return State{
		Notes:        append(make([]Note, 0, len(s.Notes)), s.Notes...),
		Transactions: append(make([]Transaction, 0, len(s.Transactions)), s.Transactions...),
		Tasks:        append(make([]Task, 0, len(s.Tasks)), s.Tasks...),
		Habits:       append(make([]Habit, 0, len(s.Habits)), s.Habits...),
		HabitLogs:    append(make([]HabitLog, 0, len(s.HabitLogs)), s.HabitLogs...),
	}
}

// MaxID returns the highest id found in any list of s.
func (s State) MaxID() int64 {
	var max int64
	see := func(id int64) {
		if id > max {
			max = id
		}
	}
	for _, n := range s.Notes {
		see(n.ID)
	}
	for _, t := range s.Transactions {
		see(t.ID)
	}
	for _, t := range s.Tasks {
		see(t.ID)
	}
	for _, h := range s.Habits {
		see(h.ID)
	}
	for _, l := range s.HabitLogs {
		see(l.ID)
	}
	return max
}

// Timestamp normalizes t for storage: UTC, millisecond precision, no
// monotonic reading.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
