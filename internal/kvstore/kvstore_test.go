package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/b0ase/ckwidget/internal/db"
	"github.com/b0ase/ckwidget/internal/settings"
)

func TestSQLiteRoundTrip(t *testing.T) {
	if err := db.Open(filepath.Join(t.TempDir(), "test.db")); err != nil {
		t.Fatalf("Open: %v", err)
	}
	store := NewSQLite()
	defer store.Close()

	exercise(t, store)
}

// Set CKWIDGET_TEST_REDIS=host:port to run against a live server.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("CKWIDGET_TEST_REDIS")
	if addr == "" {
		t.Skip("CKWIDGET_TEST_REDIS not set")
	}
	store, err := NewRedis(RedisConfig{Addr: addr, DB: 15})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer store.Close()
	store.client.FlushDB(context.Background())

	exercise(t, store)
}

func exercise(t *testing.T, store settings.Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, settings.KeyBestEver); err != nil || ok {
		t.Fatalf("Get missing = ok %v err %v, want false nil", ok, err)
	}

	if err := store.Set(ctx, settings.KeyBestEver, "500"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := store.Get(ctx, settings.KeyBestEver)
	if err != nil || !ok || v != "500" {
		t.Fatalf("Get = (%q, %v, %v), want (500, true, nil)", v, ok, err)
	}

	// Overwrite
	store.Set(ctx, settings.KeyBestEver, "800")
	v, _, _ = store.Get(ctx, settings.KeyBestEver)
	if v != "800" {
		t.Errorf("after overwrite = %q, want 800", v)
	}

	// Full settings round trip through the typed layer
	s := settings.DefaultSettings()
	s.Address = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	if err := settings.SaveSettings(ctx, store, s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	got, err := settings.LoadSettings(ctx, store)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got != s {
		t.Errorf("LoadSettings = %+v, want %+v", got, s)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemory()
	exercise(t, store)
	if store.Writes() == 0 {
		t.Error("expected writes to be counted")
	}
}
