package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12.50", 12.5, true},
		{"12,50", 12.5, true},
		{" 7 ", 7, true},
		{"0.01", 0.01, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"12abc", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1,000.50", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tc.in, err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("ParseAmount(%q) = %v, want %v", tc.in, got, tc.want)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("ParseAmount(%q) expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount(1); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := ValidateAmount(v); err == nil {
			t.Fatalf("expected error for %v", v)
		}
	}
}
