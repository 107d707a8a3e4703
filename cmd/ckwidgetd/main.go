package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/b0ase/ckwidget/internal/config"
	"github.com/b0ase/ckwidget/internal/daemon"
	"github.com/b0ase/ckwidget/internal/mcpserver"
)

func main() {
	cfgPath := flag.String("config", "", "path to ckwidget.yaml")
	mcpMode := flag.Bool("mcp", false, "serve MCP tools on stdio instead of waiting for signals")
	once := flag.Bool("once", false, "run one refresh, print the tile as JSON and exit")
	flag.Parse()

	// stdout carries the MCP protocol or the -once JSON
	log.SetOutput(os.Stderr)

	if !*mcpMode && !*once {
		orange := "\033[38;5;208m"
		reset := "\033[0m"
		dim := "\033[2m"
		fmt.Printf(orange+`
   ___ _  __ __      ___    _          _
  / __| |/ / \ \    / (_)__| |__ _ ___| |_
 | (__| ' <   \ \/\/ /| / _`+"`"+` / _`+"`"+` / -_)  _|
  \___|_|\_\   \_/\_/ |_\__,_\__, \___|\__|
                             |___/
`+reset+`
  `+dim+`solo.ckpool.org status poller  v%s`+reset+`
  `+orange+`━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━`+reset+`
`, daemon.Version)
	}

	// Resolve config path
	if *cfgPath == "" {
		home, _ := os.UserHomeDir()
		*cfgPath = filepath.Join(home, ".ckwidget", "ckwidget.yaml")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[main] Failed to load config: %v", err)
	}
	log.Printf("[main] Data dir: %s", cfg.DataDir)

	d, err := daemon.New(cfg)
	if err != nil {
		log.Fatalf("[main] Failed to create daemon: %v", err)
	}

	if *once {
		if err := d.Open(); err != nil {
			log.Fatalf("[main] Failed to open daemon: %v", err)
		}
		tile, err := d.Refresh(context.Background())
		d.Stop()
		if err != nil {
			log.Fatalf("[main] Refresh failed: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(tile)
		return
	}

	if err := d.Start(); err != nil {
		log.Fatalf("[main] Failed to start daemon: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *mcpMode {
		log.Println("[main] Serving MCP on stdio")
		if err := mcpserver.New(daemon.Version, d).Run(ctx); err != nil {
			log.Printf("[main] MCP server: %v", err)
		}
	} else {
		<-ctx.Done()
		log.Println("[main] Received signal, shutting down...")
	}

	d.Stop()
	log.Println("[main] Goodbye.")
}
