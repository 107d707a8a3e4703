package mcpserver

import (
	"strings"
	"testing"

	"github.com/b0ase/ckwidget/internal/poller"
)

func TestRenderTile(t *testing.T) {
	tile := poller.Tile{
		Address:   "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa",
		Hashrate:  "12.3M",
		Shares:    "1.50 M",
		Best:      "800.00",
		BestDate:  "2025-06-01",
		Price:     "$68k",
		LastBlock: "3h ago",
		UpdatedAt: "12:00",
		Stale:     []string{"price"},
	}
	out := renderTile(tile, "5 minutes")
	for _, want := range []string{
		"`1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa`",
		"Hashrate (5m): 12.3M",
		"Best ever: 800.00 (record set 2025-06-01)",
		"BTC price: $68k",
		"daemon up 5 minutes",
		"cached values for: price",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderSetupTile(t *testing.T) {
	out := renderTile(poller.Tile{Setup: true, Price: "?", LastBlock: "N/A"}, "")
	if !strings.Contains(out, "No mining address is configured") {
		t.Errorf("setup text missing:\n%s", out)
	}
	if strings.Contains(out, "Hashrate") {
		t.Errorf("setup tile should not list pool fields:\n%s", out)
	}
}
