package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Endpoints.FetchTimeout != 15*time.Second {
		t.Errorf("fetch timeout = %v, want 15s", cfg.Endpoints.FetchTimeout)
	}
	if cfg.Endpoints.PoolURL != "https://solo.ckpool.org" {
		t.Errorf("pool url = %s", cfg.Endpoints.PoolURL)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("backend = %s, want sqlite", cfg.Store.Backend)
	}
}

func TestLoadMergesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckwidget.yaml")
	yml := `
wallet:
  address: 1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa
endpoints:
  fetch_timeout: 5s
refresh:
  interval: 0s
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yml), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Wallet.Address != "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa" {
		t.Errorf("address = %q", cfg.Wallet.Address)
	}
	if cfg.Endpoints.FetchTimeout != 5*time.Second {
		t.Errorf("fetch timeout = %v, want 5s", cfg.Endpoints.FetchTimeout)
	}
	if cfg.Refresh.Interval != 0 {
		t.Errorf("interval = %v, want 0", cfg.Refresh.Interval)
	}
	// Untouched sections keep their defaults
	if cfg.Endpoints.PoolSlug != "solock" {
		t.Errorf("pool slug = %q, want solock", cfg.Endpoints.PoolSlug)
	}
	if !cfg.Debug() {
		t.Error("expected debug logging")
	}
}

func TestEnvOverlay(t *testing.T) {
	t.Setenv("CKWIDGET_ADDRESS", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	t.Setenv("CKWIDGET_POOL_URL", "http://127.0.0.1:9999")

	cfg, err := LoadFromBytes(nil)
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}
	if cfg.Wallet.Address != "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq" {
		t.Errorf("address = %q", cfg.Wallet.Address)
	}
	if cfg.Endpoints.PoolURL != "http://127.0.0.1:9999" {
		t.Errorf("pool url = %q", cfg.Endpoints.PoolURL)
	}
}

func TestDBPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/x"
	if got := cfg.DBPath(); got != filepath.Join("/tmp/x", "ckwidget.db") {
		t.Errorf("DBPath = %s", got)
	}
}
