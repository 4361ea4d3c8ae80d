package backend

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
	got, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", SeedFile: "seed.json"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Type != SQLiteBackend || got.SQLiteDBPath != "x.db" || got.SeedFile != "seed.json" {
		t.Fatalf("unexpected config %+v", got)
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(log.Discard())

	t.Run("memory", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: MemoryBackend})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if res.Ping != nil || res.Close() != nil {
			t.Fatalf("memory backend has nothing to ping or close")
		}
		if err := res.Store.Set(ctx, "k", "v"); err != nil {
			t.Fatalf("set: %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "f.db")})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		defer res.Close()
		if err := res.Ping(ctx); err != nil {
			t.Fatalf("ping: %v", err)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend}); err == nil {
			t.Fatal("expected error for missing sqlite path")
		}
		if _, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, SeedFile: "/no/such/seed.json"}); err == nil {
			t.Fatal("expected error for missing seed file")
		}
	})
}

func TestCreateBackendLogsState(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	f := NewFactory(log.New(log.Config{Output: &buf, Level: slog.LevelInfo}))

	res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "v.db")})
	if err != nil {
		t.Fatalf("create sqlite: %v", err)
	}
	res.Close()
	if !strings.Contains(buf.String(), "schema_version=1") {
		t.Errorf("sqlite init log lacks schema version: %s", buf.String())
	}

	seed := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(seed, []byte(`[{"id":"t1","type":"income","amount":5000,"category":"Salary","description":"May pay","date":"2024-05-01","timestamp":1714521600000}]`), 0o600); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if _, err := f.CreateBackend(ctx, Config{Type: MemoryBackend, SeedFile: seed}); err != nil {
		t.Fatalf("create memory: %v", err)
	}
	if !strings.Contains(buf.String(), log.FieldCount+"=1") {
		t.Errorf("memory init log lacks key count: %s", buf.String())
	}
}
