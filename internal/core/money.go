// Package core holds the domain model shared by every module: entities,
// the persisted State root, calendar days, clocks, id sources and the
// sentinel errors used for validation.
//
// This file contains amount parsing for the ledger.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts user input into a positive amount.
//
// Both dot (12.5) and comma (12,5) decimal separators are accepted. Empty,
// non-numeric, non-finite, zero and negative inputs return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.50") -> 12.5, nil
//	ParseAmount("12,50") -> 12.5, nil
//	ParseAmount("-3")    -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if err := ValidateAmount(v); err != nil {
		return 0, err
	}
	return v, nil
}

// ValidateAmount rejects zero, negative and non-finite amounts.
func ValidateAmount(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return ErrInvalidAmount
	}
	return nil
}
