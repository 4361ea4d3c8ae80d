package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	Income  Type = "income"
	Expense Type = "expense"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// DateLayout is the ISO calendar date form used on the wire and for sorting.
const DateLayout = "2006-01-02"

type (
	// Type tells whether a transaction brings money in or takes it out.
	Type string

	// Theme is the persisted UI colour scheme.
	Theme string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single recorded income or expense event.
	// ID and Timestamp are assigned once at creation and never change.
	Transaction struct {
		ID          string `json:"id"`
		Type        Type   `json:"type"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        Date   `json:"date"`
		Timestamp   int64  `json:"timestamp"` // ms since epoch
	}

	// Fields holds the mutable part of a transaction, already parsed.
	Fields struct {
		Type        Type
		Amount      Money
		Category    string
		Description string
		Date        Date
	}

	// Draft is raw user input for an add or an edit, as typed in a form.
	Draft struct {
		Type        string `json:"type"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        string `json:"date"`
	}
)

// Categories is the fixed vocabulary of category labels per transaction type.
var Categories = map[Type][]string{
	Income: {
		"Salary",
		"Freelance",
		"Business",
		"Investment",
		"Gift",
		"Other Income",
	},
	Expense: {
		"Food & Dining",
		"Transportation",
		"Shopping",
		"Entertainment",
		"Bills & Utilities",
		"Healthcare",
		"Education",
		"Rent",
		"Other Expense",
	},
}

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidCategory  = errors.New("category not allowed for transaction type")
	ErrInvalidTheme     = errors.New("invalid theme")
)

// ParseType accepts "income" or "expense", case-insensitively.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case Income, Expense:
		return t, nil
	case "":
		return "", &ValidationError{Field: "type", Err: ErrInvalidType}
	default:
		return "", &ValidationError{Field: "type", Err: fmt.Errorf("%w: %q", ErrInvalidType, s)}
	}
}

// CategoriesFor returns a copy of the allowed categories for t.
func CategoriesFor(t Type) []string {
	return slices.Clone(Categories[t])
}

// IsValidCategory reports whether category belongs to t's vocabulary.
func IsValidCategory(t Type, category string) bool {
	return slices.Contains(Categories[t], category)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, &ValidationError{Field: "date", Err: ErrInvalidDate}
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &ValidationError{Field: "date", Err: fmt.Errorf("%w: %q", ErrInvalidDate, s)}
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date of now.
func Today(now time.Time) Date {
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// MonthKey returns the two-digit month used by filters ("01".."12").
func (d Date) MonthKey() string {
	return fmt.Sprintf("%02d", d.Month())
}

// YearKey returns the four-digit year used by filters.
func (d Date) YearKey() string {
	return fmt.Sprintf("%04d", d.Year())
}

// String returns the ISO form, which also sorts chronologically.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("date %q: %w", s, err)
	}
	*d = Date{Time: parsed}
	return nil
}

// Parse turns raw input into validated Fields. Every problem is reported as
// a *ValidationError naming the offending field.
func (d Draft) Parse() (Fields, error) {
	t, err := ParseType(d.Type)
	if err != nil {
		return Fields{}, err
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Fields{}, &ValidationError{Field: "amount", Err: err}
	}
	date, err := ParseDate(d.Date)
	if err != nil {
		return Fields{}, err
	}
	f := Fields{
		Type:        t,
		Amount:      amount,
		Category:    strings.TrimSpace(d.Category),
		Description: strings.TrimSpace(d.Description),
		Date:        date,
	}
	if err := f.Validate(); err != nil {
		return Fields{}, err
	}
	return f, nil
}

func (f Fields) Validate() error {
	switch f.Type {
	case Income, Expense:
	default:
		return &ValidationError{Field: "type", Err: ErrInvalidType}
	}
	if err := f.Amount.Validate(); err != nil {
		return &ValidationError{Field: "amount", Err: err}
	}
	if strings.TrimSpace(f.Category) == "" {
		return &ValidationError{Field: "category", Err: ErrEmptyCategory}
	}
	if !IsValidCategory(f.Type, f.Category) {
		return &ValidationError{Field: "category", Err: fmt.Errorf("%w: %q is not a %s category", ErrInvalidCategory, f.Category, f.Type)}
	}
	if strings.TrimSpace(f.Description) == "" {
		return &ValidationError{Field: "description", Err: ErrEmptyDescription}
	}
	if err := f.Date.Validate(); err != nil {
		return &ValidationError{Field: "date", Err: err}
	}
	return nil
}

// Fields returns the mutable part of t.
func (t Transaction) Fields() Fields {
	return Fields{
		Type:        t.Type,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
	}
}

// WithFields returns a copy of t with every mutable field replaced.
func (t Transaction) WithFields(f Fields) Transaction {
	t.Type = f.Type
	t.Amount = f.Amount
	t.Category = f.Category
	t.Description = f.Description
	t.Date = f.Date
	return t
}

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch th := Theme(strings.ToLower(strings.TrimSpace(s))); th {
	case ThemeLight, ThemeDark:
		return th, nil
	default:
		return "", &ValidationError{Field: "theme", Err: fmt.Errorf("%w: %q", ErrInvalidTheme, s)}
	}
}

// Toggle flips between light and dark. Anything unknown toggles to dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
