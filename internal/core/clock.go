package core

import (
	"sync"
	"time"
)

// Clock supplies the current time. Calendar days are computed in the
// location of the returned time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant. Used by tests and tools.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// IDSource hands out entity ids. Observe raises the floor so ids already
// in use are never issued again.
type IDSource interface {
	Next() int64
	Observe(id int64)
}

// Sequence issues ids derived from the clock in milliseconds, bumped past
// the previous id when two entities are created within the same tick. Ids
// are unique, increasing and roughly creation-ordered.
type Sequence struct {
	mu    sync.Mutex
	clock Clock
	last  int64
}

// NewSequence returns a Sequence that never issues an id at or below floor.
func NewSequence(clock Clock, floor int64) *Sequence {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Sequence{clock: clock, last: floor}
}

func (s *Sequence) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.clock.Now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// Observe raises the floor so later ids stay above id.
func (s *Sequence) Observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id > s.last {
		s.last = id
	}
}
