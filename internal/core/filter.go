package core

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrInvalidMonth = errors.New("invalid month")
	ErrInvalidYear  = errors.New("invalid year")
)

// Filter narrows the transactions considered for display and aggregation.
// An empty axis places no constraint on it; both axes are ANDed.
type Filter struct {
	Month string `json:"month"` // "" or "01".."12"
	Year  string `json:"year"`  // "" or four digits
}

// ParseFilter normalizes loose input ("5", " 2024 ") into a Filter.
func ParseFilter(month, year string) (Filter, error) {
	f := Filter{Month: strings.TrimSpace(month), Year: strings.TrimSpace(year)}
	if f.Month != "" {
		m, err := strconv.Atoi(f.Month)
		if err != nil || !isDigits(f.Month) || m < 1 || m > 12 {
			return Filter{}, &ValidationError{Field: "month", Err: fmt.Errorf("%w: %q", ErrInvalidMonth, month)}
		}
		f.Month = fmt.Sprintf("%02d", m)
	}
	if err := f.Validate(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

func (f Filter) Validate() error {
	if f.Month != "" {
		m, err := strconv.Atoi(f.Month)
		if err != nil || len(f.Month) != 2 || !isDigits(f.Month) || m < 1 || m > 12 {
			return &ValidationError{Field: "month", Err: fmt.Errorf("%w: %q", ErrInvalidMonth, f.Month)}
		}
	}
	if f.Year != "" {
		if len(f.Year) != 4 || !isDigits(f.Year) {
			return &ValidationError{Field: "year", Err: fmt.Errorf("%w: %q", ErrInvalidYear, f.Year)}
		}
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// IsEmpty reports whether f lets every transaction through.
func (f Filter) IsEmpty() bool {
	return f.Month == "" && f.Year == ""
}

// Match reports whether t satisfies both axis constraints.
func (f Filter) Match(t Transaction) bool {
	if f.Month != "" && t.Date.MonthKey() != f.Month {
		return false
	}
	if f.Year != "" && t.Date.YearKey() != f.Year {
		return false
	}
	return true
}

// ApplyFilter returns the transactions matching f, in input order.
func ApplyFilter(txns []Transaction, f Filter) []Transaction {
	out := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortByDateDesc returns a copy of txns ordered newest first. Transactions
// sharing a date keep their relative order.
func SortByDateDesc(txns []Transaction) []Transaction {
	out := make([]Transaction, len(txns))
	copy(out, txns)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}
