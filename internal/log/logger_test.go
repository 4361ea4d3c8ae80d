package log

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf, Level: slog.LevelDebug}).WithComponent(ComponentTracker)
	l.Info("transaction added", NewFields().WithOperation(OpCreate).ToSlice()...)

	out := buf.String()
	if !strings.Contains(out, "component=tracker") || !strings.Contains(out, "operation=create") {
		t.Fatalf("unexpected log line: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFieldsWithTransaction(t *testing.T) {
	tx := core.Transaction{ID: "txn_1", Type: core.Expense, Amount: core.Money{Cents: 120000}, Category: "Rent", Description: "secret", Date: core.NewDate(2024, 5, 5)}
	f := NewFields().WithTransaction(tx).WithError(errors.New("boom"))
	if f[FieldTransactionID] != "txn_1" || f[FieldAmountCents] != int64(120000) || f[FieldDate] != "2024-05-05" || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields %v", f)
	}
	for _, v := range f {
		if v == "secret" {
			t.Fatalf("description leaked into log fields")
		}
	}
	if got := len(NewFields().WithError(nil)); got != 0 {
		t.Fatalf("nil error must not add a field, got %d", got)
	}
}
