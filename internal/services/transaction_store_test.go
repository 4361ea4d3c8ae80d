package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

func fixedClock() func() time.Time {
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("txn_%d", n)
	}
}

func rent() core.Draft {
	return core.Draft{Type: "expense", Amount: "1200", Category: "Rent", Description: "Flat", Date: "2024-05-05"}
}

func salary() core.Draft {
	return core.Draft{Type: "income", Amount: "5000", Category: "Salary", Description: "May pay", Date: "2024-05-01"}
}

func TestTransactionStoreAdd(t *testing.T) {
	s := NewTransactionStore(fixedClock(), sequentialIDs())

	tx, err := s.Add(rent())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID != "txn_1" || tx.Amount.Cents != 120000 || tx.Timestamp != fixedClock()().UnixMilli() {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if _, err := s.Add(rent()); err != nil {
		t.Fatalf("duplicate content must be accepted: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("len = %d", s.Len())
	}
}

func TestTransactionStoreAddRejects(t *testing.T) {
	cases := []struct {
		name  string
		draft func(d *core.Draft)
		field string
	}{
		{"missing type", func(d *core.Draft) { d.Type = "" }, "type"},
		{"zero amount", func(d *core.Draft) { d.Amount = "0" }, "amount"},
		{"negative amount", func(d *core.Draft) { d.Amount = "-5" }, "amount"},
		{"non-numeric amount", func(d *core.Draft) { d.Amount = "abc" }, "amount"},
		{"blank description", func(d *core.Draft) { d.Description = "   " }, "description"},
		{"missing category", func(d *core.Draft) { d.Category = "" }, "category"},
		{"category of other type", func(d *core.Draft) { d.Category = "Salary" }, "category"},
		{"bad date", func(d *core.Draft) { d.Date = "05/05/2024" }, "date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewTransactionStore(fixedClock(), sequentialIDs())
			d := rent()
			tc.draft(&d)
			_, err := s.Add(d)
			var ve *core.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected validation error on %s, got %v", tc.field, err)
			}
			if s.Len() != 0 {
				t.Fatalf("store must be unchanged")
			}
		})
	}
}

func TestTransactionStoreIDsAreUnique(t *testing.T) {
	s := NewTransactionStore(nil, nil)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tx, err := s.Add(rent())
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if !strings.HasPrefix(tx.ID, IDPrefix) || seen[tx.ID] {
			t.Fatalf("bad or duplicate id %q", tx.ID)
		}
		seen[tx.ID] = true
	}
}

func TestTransactionStoreUpdate(t *testing.T) {
	s := NewTransactionStore(fixedClock(), sequentialIDs())
	orig, _ := s.Add(rent())

	d := rent()
	d.Type = "income"
	d.Category = "Gift"
	d.Amount = "99,5"
	updated, err := s.Update(orig.ID, d)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != orig.ID || updated.Timestamp != orig.Timestamp {
		t.Fatalf("id and timestamp must be preserved: %+v", updated)
	}
	if updated.Type != core.Income || updated.Category != "Gift" || updated.Amount.Cents != 9950 {
		t.Fatalf("fields not replaced: %+v", updated)
	}

	bad := d
	bad.Category = "Rent" // expense category on an income
	if _, err := s.Update(orig.ID, bad); !core.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got, _ := s.Get(orig.ID); got != updated {
		t.Fatalf("failed update changed the record: %+v", got)
	}

	if _, err := s.Update("txn_missing", d); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransactionStoreDeleteAndList(t *testing.T) {
	s := NewTransactionStore(fixedClock(), sequentialIDs())
	a, _ := s.Add(salary())
	b, _ := s.Add(rent())
	c, _ := s.Add(salary())

	if s.Delete("txn_unknown") {
		t.Fatal("unknown id must report false")
	}
	if !s.Delete(b.ID) {
		t.Fatal("delete of existing id must report true")
	}
	list := s.List()
	if len(list) != 2 || list[0].ID != a.ID || list[1].ID != c.ID {
		t.Fatalf("unexpected order %v", list)
	}
	list[0].Description = "mutated"
	if got, _ := s.Get(a.ID); got.Description == "mutated" {
		t.Fatal("List must return a copy")
	}

	s.Replace(nil)
	if s.Len() != 0 || s.List() == nil {
		t.Fatal("Replace(nil) must leave an empty, non-nil collection")
	}
}

func TestConfirmationGate(t *testing.T) {
	g := NewConfirmationGate()
	del := g.Request(Action{Kind: ActionDelete, TransactionID: "txn_1"})

	a, err := g.Confirm(del)
	if err != nil || a.Kind != ActionDelete || a.TransactionID != "txn_1" {
		t.Fatalf("confirm: %+v %v", a, err)
	}
	if _, err := g.Confirm(del); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("tokens are single use, got %v", err)
	}

	first := g.Request(Action{Kind: ActionDelete, TransactionID: "txn_2"})
	second := g.Request(Action{Kind: ActionReset})
	if _, err := g.Confirm(first); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("superseded token must be rejected, got %v", err)
	}
	if !g.Cancel(second) {
		t.Fatal("cancel of pending token must report true")
	}
	if g.Cancel(second) {
		t.Fatal("second cancel must report false")
	}
	if _, ok := g.armed(); ok {
		t.Fatal("nothing should be pending")
	}
}
