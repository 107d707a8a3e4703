package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/b0ase/ckwidget/internal/address"
	"github.com/b0ase/ckwidget/internal/config"
	"github.com/b0ase/ckwidget/internal/settings"
)

const testAddr = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"

func upstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/{addr}", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"hashrate5m":"5.1T","shares":"2500","bestever":1200}`)
	})
	mux.HandleFunc("GET /price", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"amount":"100499.99"}}`)
	})
	mux.HandleFunc("GET /api/v1/mining/pool/solock/blocks", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `[{"timestamp":%d}]`, time.Now().Add(-50*time.Hour).Unix())
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(t *testing.T, backend string) *config.Config {
	srv := upstream(t)
	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	cfg.Endpoints.PoolURL = srv.URL
	cfg.Endpoints.PriceURL = srv.URL + "/price"
	cfg.Endpoints.ExplorerURL = srv.URL + "/api"
	cfg.Endpoints.FetchTimeout = 5 * time.Second
	cfg.Refresh.Interval = 0
	cfg.Refresh.OnBoot = false
	cfg.API.Enabled = false
	cfg.Store.Backend = backend
	return cfg
}

func TestRefreshWithSeededAddress(t *testing.T) {
	cfg := testConfig(t, "sqlite")
	cfg.Wallet.Address = testAddr

	d, _ := New(cfg)
	if err := d.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	if _, ok := d.Tile(); ok {
		t.Error("tile available before any refresh")
	}

	tile, err := d.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if tile.Setup {
		t.Fatal("expected configured tile")
	}
	if tile.Hashrate != "5.1T" || tile.Shares != "2.50 k" || tile.Best != "1.20 k" {
		t.Errorf("pool fields = %s/%s/%s", tile.Hashrate, tile.Shares, tile.Best)
	}
	if tile.Price != "$100k" || tile.LastBlock != "2d ago" {
		t.Errorf("price/last block = %s/%s", tile.Price, tile.LastBlock)
	}

	got, ok := d.Tile()
	if !ok || got.Best != tile.Best {
		t.Errorf("Tile() = %+v, %v", got, ok)
	}
	if d.Status()["refreshes"] != 1 {
		t.Errorf("refreshes = %v", d.Status()["refreshes"])
	}
}

func TestSetupWithoutAddress(t *testing.T) {
	d, _ := New(testConfig(t, "memory"))
	if err := d.Open(); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()

	tile, err := d.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !tile.Setup || tile.Best != "Setup" {
		t.Errorf("tile = %+v, want setup state", tile)
	}
}

func TestSaveSettingsValidates(t *testing.T) {
	d, _ := New(testConfig(t, "memory"))
	if err := d.Open(); err != nil {
		t.Fatal(err)
	}
	defer d.Stop()
	ctx := context.Background()

	if err := d.SetAddress(ctx, "   "); !errors.Is(err, address.ErrEmpty) {
		t.Errorf("empty address err = %v", err)
	}
	if err := d.SetAddress(ctx, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNb"); !errors.Is(err, address.ErrChecksum) {
		t.Errorf("bad checksum err = %v", err)
	}
	bad := settings.Settings{Address: testAddr, RateColor: "#abc"}
	if err := d.SaveSettings(ctx, bad); !errors.Is(err, settings.ErrInvalidColor) {
		t.Errorf("short colour err = %v", err)
	}

	if err := d.SetAddress(ctx, " "+testAddr+" "); err != nil {
		t.Fatalf("SetAddress: %v", err)
	}
	s, err := d.Settings(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.Address != testAddr || s.RateColor != settings.DefaultRateColor {
		t.Errorf("settings = %+v", s)
	}
}

func TestUnknownBackend(t *testing.T) {
	d, _ := New(testConfig(t, "etcd"))
	if err := d.Open(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestSaveSettingsAfterStop(t *testing.T) {
	d, _ := New(testConfig(t, "memory"))
	if err := d.Open(); err != nil {
		t.Fatal(err)
	}
	d.Stop()
	d.Stop()

	if err := d.SetAddress(context.Background(), testAddr); err != nil {
		t.Fatalf("SetAddress after Stop: %v", err)
	}
	if d.goBackground(func() { t.Error("background work ran after Stop") }) {
		t.Error("goBackground accepted work after Stop")
	}
	time.Sleep(50 * time.Millisecond)
	d.mu.RLock()
	n := d.refreshes
	d.mu.RUnlock()
	if n != 0 {
		t.Errorf("refreshes = %d after Stop, want 0", n)
	}
}

func TestSaveSettingsDuringStop(t *testing.T) {
	d, _ := New(testConfig(t, "memory"))
	if err := d.Open(); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.SetAddress(ctx, testAddr); err != nil {
				t.Errorf("SetAddress: %v", err)
			}
		}()
	}
	d.Stop()
	wg.Wait()
}
