// Package mobile provides gomobile-bindable functions for the widget daemon.
// All complex data is returned as JSON strings since gomobile cannot export
// maps, slices, or structs with unexported fields.
package mobile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/b0ase/ckwidget/internal/config"
	"github.com/b0ase/ckwidget/internal/daemon"
	"github.com/b0ase/ckwidget/internal/settings"

	// Required by gomobile bind at build time
	_ "golang.org/x/mobile/bind"
)

var (
	mu      sync.Mutex
	d       *daemon.Daemon
	running bool
)

// Start initialises and starts the widget daemon.
// configYAML may be empty to use defaults. dataDir is the path to the app's
// private files directory (e.g. Context.getFilesDir() + "/ckwidget").
// The host normally drives refreshes from its widget update timer; set
// refresh.interval in configYAML to poll from Go instead.
func Start(configYAML string, dataDir string) error {
	mu.Lock()
	defer mu.Unlock()

	if running {
		return fmt.Errorf("already running")
	}

	cfg, err := config.LoadFromBytes([]byte(configYAML))
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}

	d, err = daemon.New(cfg)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(); err != nil {
		d = nil
		return fmt.Errorf("start daemon: %w", err)
	}

	running = true
	return nil
}

// Stop gracefully shuts down the daemon.
func Stop() {
	mu.Lock()
	defer mu.Unlock()

	if d != nil {
		d.Stop()
		d = nil
	}
	running = false
}

// IsRunning returns true if the daemon is currently running.
func IsRunning() bool {
	mu.Lock()
	defer mu.Unlock()
	return running
}

func current() *daemon.Daemon {
	mu.Lock()
	defer mu.Unlock()
	return d
}

// Refresh runs one cycle and returns the tile as JSON, or {"error":"..."}.
// It blocks for at most the fetch timeout; call it off the UI thread.
func Refresh() string {
	dd := current()
	if dd == nil {
		return `{"error":"daemon not running"}`
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tile, err := dd.Refresh(ctx)
	if err != nil {
		return errJSON(err)
	}
	data, _ := json.Marshal(tile)
	return string(data)
}

// GetTile returns the last tile as JSON, or {} before the first refresh.
func GetTile() string {
	dd := current()
	if dd == nil {
		return `{"error":"daemon not running"}`
	}
	tile, ok := dd.Tile()
	if !ok {
		return `{}`
	}
	data, _ := json.Marshal(tile)
	return string(data)
}

// GetStatus returns daemon status as a JSON string.
func GetStatus() string {
	dd := current()
	if dd == nil {
		return `{"running":false}`
	}
	status := dd.Status()
	status["running"] = true
	data, _ := json.Marshal(status)
	return string(data)
}

// GetSettings returns the saved address and colours as JSON.
func GetSettings() string {
	dd := current()
	if dd == nil {
		return `{"error":"daemon not running"}`
	}
	s, err := dd.Settings(context.Background())
	if err != nil {
		return errJSON(err)
	}
	data, _ := json.Marshal(s)
	return string(data)
}

// SaveSettings validates and stores the settings, then refreshes in the
// background. Empty colours keep their saved value.
// Returns the saved settings as JSON, or {"error":"..."}.
func SaveSettings(address, rateColor, sharesColor, bestColor string) string {
	dd := current()
	if dd == nil {
		return `{"error":"daemon not running"}`
	}
	ctx := context.Background()
	err := dd.SaveSettings(ctx, settings.Settings{
		Address:     address,
		RateColor:   rateColor,
		SharesColor: sharesColor,
		BestColor:   bestColor,
	})
	if err != nil {
		return errJSON(err)
	}
	return GetSettings()
}

// GetVersion returns the daemon version string.
func GetVersion() string {
	return daemon.Version
}

func errJSON(err error) string {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(data)
}
