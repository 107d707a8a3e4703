package daemon

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/b0ase/ckwidget/internal/address"
	"github.com/b0ase/ckwidget/internal/config"
	"github.com/b0ase/ckwidget/internal/db"
	"github.com/b0ase/ckwidget/internal/format"
	"github.com/b0ase/ckwidget/internal/kvstore"
	"github.com/b0ase/ckwidget/internal/poller"
	"github.com/b0ase/ckwidget/internal/server"
	"github.com/b0ase/ckwidget/internal/settings"
)

const Version = "0.1.0"

// Store is a settings store that owns a connection.
type Store interface {
	settings.Store
	Close() error
}

// Daemon wires the store, the poller and the HTTP API together.
type Daemon struct {
	cfg       *config.Config
	startTime time.Time
	store     Store
	poller    *poller.Poller
	registry  *prometheus.Registry
	httpSrv   *server.Server
	stopCh    chan struct{}
	wg        sync.WaitGroup

	bgMu    sync.Mutex
	stopped bool

	mu          sync.RWMutex
	tile        *poller.Tile
	lastRefresh time.Time
	refreshes   int
}

// New creates a new daemon instance.
func New(cfg *config.Config) (*Daemon, error) {
	return &Daemon{cfg: cfg, stopCh: make(chan struct{})}, nil
}

// Open prepares the store and the poller without starting any background
// work. Start calls it; one-shot callers may use it directly with Refresh.
func (d *Daemon) Open() error {
	if d.store != nil {
		return nil
	}
	d.startTime = time.Now()

	// 1. Open store
	store, err := d.openStore()
	if err != nil {
		return err
	}
	d.store = store

	// 2. Seed address from config if none is saved yet
	if err := d.seedAddress(); err != nil {
		log.Printf("[daemon] WARNING: %v", err)
	}

	// 3. Build poller
	d.registry = prometheus.NewRegistry()
	d.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.poller = poller.New(poller.Config{
		PoolURL:     d.cfg.Endpoints.PoolURL,
		PriceURL:    d.cfg.Endpoints.PriceURL,
		ExplorerURL: d.cfg.Endpoints.ExplorerURL,
		PoolSlug:    d.cfg.Endpoints.PoolSlug,
		Timeout:     d.cfg.Endpoints.FetchTimeout,
		UserAgent:   d.cfg.Endpoints.UserAgent,
		Debug:       d.cfg.Debug(),
	}, poller.NewMetrics(d.registry))
	d.poller.OnPartial = d.setTile
	return nil
}

func (d *Daemon) openStore() (Store, error) {
	switch d.cfg.Store.Backend {
	case "redis":
		store, err := kvstore.NewRedis(kvstore.RedisConfig{
			Addr:     d.cfg.Store.RedisAddr,
			Password: d.cfg.Store.RedisPassword,
			DB:       d.cfg.Store.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("redis open: %w", err)
		}
		log.Printf("[daemon] Using Redis store at %s", d.cfg.Store.RedisAddr)
		return store, nil
	case "memory":
		log.Println("[daemon] Using in-memory store (state is not persisted)")
		return kvstore.NewMemory(), nil
	case "sqlite", "":
		if err := os.MkdirAll(d.cfg.DataDir, 0700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		if err := db.Open(d.cfg.DBPath()); err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
		return kvstore.NewSQLite(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", d.cfg.Store.Backend)
	}
}

func (d *Daemon) seedAddress() error {
	addr := strings.TrimSpace(d.cfg.Wallet.Address)
	if addr == "" {
		return nil
	}
	ctx := context.Background()
	s, err := settings.LoadSettings(ctx, d.store)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if s.Configured() {
		if s.Address != addr {
			log.Printf("[daemon] Keeping saved address %s (config has %s)", s.Address, addr)
		}
		return nil
	}
	if err := address.Validate(addr); err != nil {
		return fmt.Errorf("configured address %q: %w", addr, err)
	}
	s.Address = addr
	if err := settings.SaveSettings(ctx, d.store, s); err != nil {
		return fmt.Errorf("seed address: %w", err)
	}
	log.Printf("[daemon] Mining address → %s (from config)", addr)
	return nil
}

// Start opens the store and starts the refresh loop and the HTTP API.
func (d *Daemon) Start() error {
	if err := d.Open(); err != nil {
		return err
	}

	if d.cfg.Refresh.OnBoot {
		d.goBackground(func() { d.refreshLogged("boot") })
	}

	if d.cfg.Refresh.Interval > 0 {
		interval := d.cfg.Refresh.Interval
		d.goBackground(func() { d.refreshLoop(interval) })
		log.Printf("[daemon] Refreshing every %v", d.cfg.Refresh.Interval)
	} else {
		log.Println("[daemon] Refresh loop disabled; waiting for external triggers")
	}

	if d.cfg.API.Enabled {
		d.httpSrv = server.New(d.cfg.API.Bind, d.cfg.API.Port, d)
		if port, err := d.httpSrv.Start(); err != nil {
			log.Printf("[daemon] WARNING: HTTP API failed to start: %v (polling continues)", err)
			d.httpSrv = nil
		} else {
			log.Printf("[daemon] HTTP API on port %d", port)
		}
	}

	log.Println("[daemon] All systems online")
	return nil
}

// goBackground runs fn on a tracked goroutine. It reports false and does
// nothing once Stop has begun, so wg.Add never races wg.Wait.
func (d *Daemon) goBackground(fn func()) bool {
	d.bgMu.Lock()
	defer d.bgMu.Unlock()
	if d.stopped {
		return false
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
	return true
}

func (d *Daemon) refreshLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			d.refreshLogged("timer")
		}
	}
}

func (d *Daemon) refreshLogged(trigger string) {
	ctx, cancel := d.cycleContext()
	defer cancel()
	tile, err := d.Refresh(ctx)
	if err != nil {
		log.Printf("[daemon] Refresh (%s) failed: %v", trigger, err)
		return
	}
	if tile.Setup {
		log.Printf("[daemon] Refresh (%s): no address configured", trigger)
		return
	}
	log.Printf("[daemon] Refresh (%s): %s | shares %s | best %s | %s | last block %s",
		trigger, tile.Hashrate, tile.Shares, tile.Best, tile.Price, tile.LastBlock)
}

// cycleContext bounds one cycle and cancels it on Stop.
func (d *Daemon) cycleContext() (context.Context, context.CancelFunc) {
	timeout := d.cfg.Endpoints.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
	go func() {
		select {
		case <-d.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Refresh runs one cycle now. Overlapping calls are allowed; the last one to
// finish determines the tile.
func (d *Daemon) Refresh(ctx context.Context) (poller.Tile, error) {
	if d.poller == nil {
		return poller.Tile{}, fmt.Errorf("daemon not open")
	}
	tile, err := d.poller.Refresh(ctx, d.store)
	if err != nil {
		return tile, err
	}
	d.setTile(tile)

	d.mu.Lock()
	d.lastRefresh = time.Now()
	d.refreshes++
	d.mu.Unlock()
	return tile, nil
}

func (d *Daemon) setTile(t poller.Tile) {
	d.mu.Lock()
	d.tile = &t
	d.mu.Unlock()
}

// Stop shuts down all subsystems.
func (d *Daemon) Stop() {
	log.Println("[daemon] Shutting down...")
	d.bgMu.Lock()
	if d.stopped {
		d.bgMu.Unlock()
		return
	}
	d.stopped = true
	close(d.stopCh)
	d.bgMu.Unlock()

	if d.httpSrv != nil {
		d.httpSrv.Stop()
	}
	d.wg.Wait()
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			log.Printf("[daemon] Store close: %v", err)
		}
	}

	log.Println("[daemon] Shutdown complete")
}

// --- Status accessors (used by HTTP API, MCP and mobile) ---

func (d *Daemon) Uptime() time.Duration { return time.Since(d.startTime) }

func (d *Daemon) Gatherer() prometheus.Gatherer { return d.registry }

// Tile returns the most recent tile, or false before the first refresh has
// produced anything.
func (d *Daemon) Tile() (poller.Tile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.tile == nil {
		return poller.Tile{}, false
	}
	return *d.tile, true
}

func (d *Daemon) Status() map[string]interface{} {
	d.mu.RLock()
	defer d.mu.RUnlock()
	status := map[string]interface{}{
		"version":   Version,
		"uptime":    format.Uptime(d.Uptime()),
		"uptime_ms": d.Uptime().Milliseconds(),
		"backend":   d.cfg.Store.Backend,
		"interval":  d.cfg.Refresh.Interval.String(),
		"refreshes": d.refreshes,
	}
	if !d.lastRefresh.IsZero() {
		status["last_refresh"] = d.lastRefresh.Format(time.RFC3339)
	}
	return status
}

func (d *Daemon) Settings(ctx context.Context) (settings.Settings, error) {
	if d.store == nil {
		return settings.Settings{}, fmt.Errorf("daemon not open")
	}
	return settings.LoadSettings(ctx, d.store)
}

// SaveSettings validates and stores s, then refreshes in the background.
// Empty colours keep their current value.
func (d *Daemon) SaveSettings(ctx context.Context, s settings.Settings) error {
	current, err := d.Settings(ctx)
	if err != nil {
		return err
	}
	s.Address = strings.TrimSpace(s.Address)
	if s.RateColor == "" {
		s.RateColor = current.RateColor
	}
	if s.SharesColor == "" {
		s.SharesColor = current.SharesColor
	}
	if s.BestColor == "" {
		s.BestColor = current.BestColor
	}

	if err := address.Validate(s.Address); err != nil {
		return err
	}
	if err := settings.SaveSettings(ctx, d.store, s); err != nil {
		return err
	}
	log.Printf("[daemon] Settings saved (address %s)", s.Address)

	if !d.goBackground(func() { d.refreshLogged("settings") }) {
		log.Println("[daemon] Shutting down; skipping settings refresh")
	}
	return nil
}

// SetAddress changes only the mining address.
func (d *Daemon) SetAddress(ctx context.Context, addr string) error {
	return d.SaveSettings(ctx, settings.Settings{Address: addr})
}
