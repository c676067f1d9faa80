package core

import (
	"bytes"
	"encoding/json"
	"time"
)

// DayLayout is the persisted calendar-day format.
const DayLayout = "2006-01-02"

// Day is a calendar day without time of day. The zero value means "no day"
// and is encoded as JSON null.
type Day string

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) Day {
	return Day(t.Format(DayLayout))
}

// Today returns the calendar day of now.
func Today(now time.Time) Day {
	return DayOf(now)
}

// Yesterday returns the calendar day before now.
func Yesterday(now time.Time) Day {
	return DayOf(now.AddDate(0, 0, -1))
}

// IsZero reports whether d is unset.
func (d Day) IsZero() bool {
	return d == ""
}

func (d Day) String() string {
	return string(d)
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d *Day) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = Day(s)
	return nil
}

func (d Day) MarshalYAML() (any, error) {
	if d.IsZero() {
		return nil, nil
	}
	return string(d), nil
}
