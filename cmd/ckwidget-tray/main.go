package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/getlantern/systray"

	"github.com/b0ase/ckwidget/internal/poller"
	"github.com/b0ase/ckwidget/internal/settings"
)

var Version = "0.1.0"

const pollInterval = 30 * time.Second

type trayApp struct {
	mu         sync.Mutex
	daemonCmd  *exec.Cmd
	ownsDaemon bool
	configPath string
	baseURL    string
	lastColor  string
	address    string

	mTitle     *systray.MenuItem
	mHashrate  *systray.MenuItem
	mShares    *systray.MenuItem
	mBest      *systray.MenuItem
	mPrice     *systray.MenuItem
	mLastBlock *systray.MenuItem
	mUpdated   *systray.MenuItem

	mRefresh   *systray.MenuItem
	mDashboard *systray.MenuItem
	mCopyAddr  *systray.MenuItem
	mQuit      *systray.MenuItem
}

type statusResponse struct {
	Tile poller.Tile `json:"tile"`
}

func main() {
	app := &trayApp{}
	port := flag.Int("port", 8412, "daemon HTTP API port")
	flag.StringVar(&app.configPath, "config", "", "path to ckwidget.yaml, passed to ckwidgetd")
	flag.Parse()
	app.baseURL = fmt.Sprintf("http://127.0.0.1:%d", *port)

	systray.Run(app.onReady, app.onExit)
}

func (a *trayApp) onReady() {
	fill, _ := settings.ParseColor(settings.DefaultBestColor)
	systray.SetIcon(tileIcon(fill))
	systray.SetTooltip("CKPool Widget v" + Version)

	a.mTitle = systray.AddMenuItem("⛏ CKPool Widget v"+Version, "")
	a.mTitle.Disable()

	systray.AddSeparator()

	a.mHashrate = systray.AddMenuItem("     Hashrate: --", "")
	a.mHashrate.Disable()
	a.mShares = systray.AddMenuItem("     Shares: --", "")
	a.mShares.Disable()
	a.mBest = systray.AddMenuItem("     Best: --", "")
	a.mBest.Disable()
	a.mPrice = systray.AddMenuItem("     BTC: ?", "")
	a.mPrice.Disable()
	a.mLastBlock = systray.AddMenuItem("     Last pool block: N/A", "")
	a.mLastBlock.Disable()
	a.mUpdated = systray.AddMenuItem("     Updated --:--", "")
	a.mUpdated.Disable()

	systray.AddSeparator()

	a.mRefresh = systray.AddMenuItem("↻ Refresh Now", "Fetch pool, price and block data")
	a.mDashboard = systray.AddMenuItem("🖥  Open Dashboard", "Open the tile and settings in a browser")
	a.mCopyAddr = systray.AddMenuItem("📋 Copy Address", "Copy mining address to clipboard")

	systray.AddSeparator()

	a.mQuit = systray.AddMenuItem("Quit", "Stop daemon and quit")

	// Start daemon if not already running
	if !a.isDaemonRunning() {
		a.startDaemon()
	}

	go a.pollLoop()
	go a.handleClicks()
}

func (a *trayApp) onExit() {
	a.stopDaemon()
}

func (a *trayApp) isDaemonRunning() bool {
	resp, err := http.Get(a.baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == 200
}

func (a *trayApp) startDaemon() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.daemonCmd != nil {
		return
	}

	binaryPath := "ckwidgetd"
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "ckwidgetd")
		if _, err := os.Stat(candidate); err == nil {
			binaryPath = candidate
		}
	}

	args := []string{}
	if a.configPath != "" {
		args = append(args, "-config", a.configPath)
	}

	a.daemonCmd = exec.Command(binaryPath, args...)
	a.daemonCmd.Stdout = os.Stdout
	a.daemonCmd.Stderr = os.Stderr
	a.daemonCmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	if err := a.daemonCmd.Start(); err != nil {
		log.Printf("[tray] Failed to start daemon: %v", err)
		a.daemonCmd = nil
		return
	}

	a.ownsDaemon = true
	log.Printf("[tray] Started daemon (PID %d)", a.daemonCmd.Process.Pid)

	cmd := a.daemonCmd
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("[tray] Daemon exited: %v", err)
		}
		a.mu.Lock()
		if a.daemonCmd == cmd {
			a.daemonCmd = nil
			a.ownsDaemon = false
		}
		a.mu.Unlock()
	}()

	for i := 0; i < 30; i++ {
		time.Sleep(500 * time.Millisecond)
		if a.isDaemonRunning() {
			log.Println("[tray] Daemon is ready")
			return
		}
	}
	log.Println("[tray] WARNING: Daemon did not become ready within 15s")
}

func (a *trayApp) stopDaemon() {
	a.mu.Lock()
	cmd := a.daemonCmd
	owns := a.ownsDaemon
	a.mu.Unlock()

	if cmd == nil || !owns {
		return
	}

	log.Println("[tray] Stopping daemon...")
	cmd.Process.Signal(syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			a.mu.Lock()
			exited := a.daemonCmd != cmd
			a.mu.Unlock()
			if exited {
				close(done)
				return
			}
			time.Sleep(100 * time.Millisecond)
		}
	}()

	select {
	case <-done:
		log.Println("[tray] Daemon stopped cleanly")
	case <-time.After(5 * time.Second):
		log.Println("[tray] Daemon did not stop, sending SIGKILL")
		cmd.Process.Kill()
	}
}

func (a *trayApp) pollLoop() {
	a.updateStatus()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			a.updateStatus()
		case <-sigCh:
			systray.Quit()
			return
		}
	}
}

func (a *trayApp) updateStatus() {
	data, err := fetchJSON(http.MethodGet, a.baseURL+"/status")
	if err != nil {
		a.showOffline()
		return
	}
	var st statusResponse
	if err := json.Unmarshal(data, &st); err != nil || st.Tile.UpdatedAt == "" {
		// 503 before the first refresh
		a.mUpdated.SetTitle("     Waiting for first refresh…")
		return
	}
	a.render(st.Tile)
}

func (a *trayApp) refreshNow() {
	a.mUpdated.SetTitle("     Refreshing…")
	data, err := fetchJSON(http.MethodPost, a.baseURL+"/api/refresh")
	if err != nil {
		a.showOffline()
		return
	}
	var tile poller.Tile
	if err := json.Unmarshal(data, &tile); err != nil {
		return
	}
	a.render(tile)
}

func (a *trayApp) render(t poller.Tile) {
	a.mu.Lock()
	a.address = t.Address
	a.mu.Unlock()

	if t.Setup {
		a.mHashrate.SetTitle("     " + t.Hashrate + " " + t.Shares + " " + t.Best)
		a.mShares.SetTitle("     Open the dashboard to set an address")
		a.mBest.SetTitle("     Best: --")
	} else {
		a.mHashrate.SetTitle("     Hashrate: " + t.Hashrate + staleMark(t, poller.FieldHashrate))
		a.mShares.SetTitle("     Shares: " + t.Shares + staleMark(t, poller.FieldShares))
		best := "     Best: " + t.Best
		if t.BestDate != "" {
			best += "  (" + t.BestDate + ")"
		}
		a.mBest.SetTitle(best)
	}
	a.mPrice.SetTitle("     BTC: " + t.Price + staleMark(t, poller.FieldPrice))
	a.mLastBlock.SetTitle("     Last pool block: " + t.LastBlock + staleMark(t, poller.FieldLastBlock))
	a.mUpdated.SetTitle("     Updated " + t.UpdatedAt)

	if t.Setup {
		systray.SetTooltip("CKPool Widget - setup needed")
	} else {
		systray.SetTooltip(fmt.Sprintf("CKPool %s | best %s | %s", t.Hashrate, t.Best, t.Price))
	}

	a.mu.Lock()
	changed := t.Colors.Best != a.lastColor
	a.lastColor = t.Colors.Best
	a.mu.Unlock()
	if changed {
		if fill, err := settings.ParseColor(t.Colors.Best); err == nil {
			systray.SetIcon(tileIcon(fill))
		}
	}
}

func (a *trayApp) showOffline() {
	a.mHashrate.SetTitle("     Hashrate: --")
	a.mShares.SetTitle("     Shares: --")
	a.mBest.SetTitle("     Best: --")
	a.mUpdated.SetTitle("     Daemon offline")
	systray.SetTooltip("CKPool Widget - Offline")
}

func staleMark(t poller.Tile, field string) string {
	for _, f := range t.Stale {
		if f == field {
			return " (cached)"
		}
	}
	return ""
}

func fetchJSON(method, url string) ([]byte, error) {
	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (a *trayApp) handleClicks() {
	for {
		select {
		case <-a.mRefresh.ClickedCh:
			go a.refreshNow()

		case <-a.mDashboard.ClickedCh:
			openBrowser(a.baseURL)

		case <-a.mCopyAddr.ClickedCh:
			a.mu.Lock()
			addr := a.address
			a.mu.Unlock()
			if addr != "" {
				copyToClipboard(addr)
			}

		case <-a.mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	default:
		cmd = exec.Command("open", url)
	}
	cmd.Start()
}

func copyToClipboard(text string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("pbcopy")
	case "linux":
		cmd = exec.Command("xclip", "-selection", "clipboard")
	default:
		return
	}
	cmd.Stdin = strings.NewReader(text)
	cmd.Run()
}
