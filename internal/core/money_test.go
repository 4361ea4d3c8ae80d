package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.345", 1235, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false}, // rounds to zero
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
		}
	}
}

func TestParseSetting(t *testing.T) {
	m, err := ParseSetting("budget", "0")
	if err != nil || !m.IsZero() {
		t.Fatalf("zero budget should be accepted, got %v %v", m, err)
	}
	m, err = ParseSetting("budget", "1000.50")
	if err != nil || m.Cents != 100050 {
		t.Fatalf("unexpected %v %v", m, err)
	}
	for _, in := range []string{"-1", "x", ""} {
		if _, err := ParseSetting("savings", in); !IsValidation(err) {
			t.Fatalf("%q expected validation error, got %v", in, err)
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		m          Money
		str, fixed string
	}{
		{Money{Cents: 120000}, "1200", "1200.00"},
		{Money{Cents: 1250}, "12.5", "12.50"},
		{Money{Cents: 1}, "0.01", "0.01"},
		{Money{Cents: -380000}, "-3800", "-3800.00"},
	}
	for _, tc := range cases {
		if tc.m.String() != tc.str || tc.m.Fixed() != tc.fixed {
			t.Errorf("%d cents: got %q/%q want %q/%q", tc.m.Cents, tc.m.String(), tc.m.Fixed(), tc.str, tc.fixed)
		}
	}
	if got := (Money{Cents: 120000}).Display(); got != "₹1,200.00" {
		t.Errorf("Display = %q", got)
	}
}

func TestMoneyUnmarshalString(t *testing.T) {
	var m Money
	if err := m.UnmarshalJSON([]byte(`"99.999"`)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Cents != 10000 {
		t.Fatalf("got %d cents", m.Cents)
	}
	if err := m.UnmarshalJSON([]byte(`"nope"`)); err == nil {
		t.Fatalf("expected error")
	}
}
