package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/mirror"
)

func TestStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()
	if _, ok, err := s.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("unexpected get: ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, mirror.KeyBudget, "1000"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, _ := s.Get(ctx, mirror.KeyBudget)
	if !ok || v != "1000" {
		t.Fatalf("got %q ok=%v", v, ok)
	}
	if err := s.Delete(ctx, mirror.KeyBudget, "never-set"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d keys", s.Len())
	}
}

func TestNewFromFile(t *testing.T) {
	s, err := NewFromFile("")
	if err != nil || s.Len() != 0 {
		t.Fatalf("empty path: len=%d err=%v", s.Len(), err)
	}

	dir := t.TempDir()
	mustWrite := func(name, content string) string {
		t.Helper()
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	good := mustWrite("seed.json", `[{"id":"t1","type":"income","amount":5000,"category":"Salary","description":"May pay","date":"2024-05-01","timestamp":1714521600000}]`)
	s, err = NewFromFile(good)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	raw, ok, _ := s.Get(context.Background(), mirror.KeyTransactions)
	if !ok || raw == "" {
		t.Fatalf("seed not stored")
	}

	bad := mustWrite("bad.json", `{"not":"an array"}`)
	if _, err := NewFromFile(bad); err == nil {
		t.Fatalf("expected error for malformed seed")
	}
	if _, err := NewFromFile(filepath.Join(dir, "nope.json")); err == nil {
		t.Fatalf("expected error for missing seed file")
	}
}
