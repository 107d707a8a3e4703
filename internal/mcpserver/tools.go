package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/b0ase/ckwidget/internal/format"
	"github.com/b0ase/ckwidget/internal/poller"
)

// --- Input types ---

type emptyInput struct{}

type setAddressInput struct {
	Address string `json:"address" jsonschema:"bitcoin address mined to on solo.ckpool.org, optionally with a .worker suffix"`
}

func (s *MCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ckwidget_status",
		Description: "Last refreshed tile: hashrate, shares, best-ever, BTC price, last pool block",
	}, s.handleStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ckwidget_refresh",
		Description: "Fetch pool, price and block data now and return the new tile",
	}, s.handleRefresh)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ckwidget_settings",
		Description: "Configured mining address and display colours",
	}, s.handleSettings)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ckwidget_set_address",
		Description: "Change the monitored mining address (validated, persisted, triggers a refresh)",
	}, s.handleSetAddress)
}

// --- Handlers ---

func (s *MCPServer) handleStatus(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	tile, ok := s.daemon.Tile()
	if !ok {
		return errResult("no refresh has completed yet; call ckwidget_refresh"), nil, nil
	}
	return textResult(renderTile(tile, format.Uptime(s.daemon.Uptime()))), nil, nil
}

func (s *MCPServer) handleRefresh(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	tile, err := s.daemon.Refresh(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("refresh failed: %v", err)), nil, nil
	}
	return textResult(renderTile(tile, "")), nil, nil
}

func (s *MCPServer) handleSettings(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	cur, err := s.daemon.Settings(ctx)
	if err != nil {
		return errResult(fmt.Sprintf("load settings: %v", err)), nil, nil
	}

	addr := cur.Address
	if addr == "" {
		addr = "(not set)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Settings\n\n")
	fmt.Fprintf(&b, "- **Address:** `%s`\n", addr)
	fmt.Fprintf(&b, "- **Hashrate colour:** %s\n", cur.RateColor)
	fmt.Fprintf(&b, "- **Shares colour:** %s\n", cur.SharesColor)
	fmt.Fprintf(&b, "- **Best colour:** %s\n", cur.BestColor)
	return textResult(b.String()), nil, nil
}

func (s *MCPServer) handleSetAddress(ctx context.Context, _ *mcp.CallToolRequest, input setAddressInput) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(input.Address) == "" {
		return errResult("address is required"), nil, nil
	}
	if err := s.daemon.SetAddress(ctx, input.Address); err != nil {
		return errResult(fmt.Sprintf("set address failed: %v", err)), nil, nil
	}
	return textResult(fmt.Sprintf("Address saved; a refresh is running.\n\n- **Address:** `%s`", strings.TrimSpace(input.Address))), nil, nil
}

// --- Helpers ---

func renderTile(t poller.Tile, uptime string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# CKPool Status\n\n")
	if t.Setup {
		fmt.Fprintf(&b, "No mining address is configured. Use `ckwidget_set_address`.\n\n")
	} else {
		fmt.Fprintf(&b, "**Address:** `%s`\n\n", t.Address)
		fmt.Fprintf(&b, "- Hashrate (5m): %s\n", t.Hashrate)
		fmt.Fprintf(&b, "- Shares: %s\n", t.Shares)
		if t.BestDate != "" {
			fmt.Fprintf(&b, "- Best ever: %s (record set %s)\n", t.Best, t.BestDate)
		} else {
			fmt.Fprintf(&b, "- Best ever: %s\n", t.Best)
		}
	}
	fmt.Fprintf(&b, "- BTC price: %s\n", t.Price)
	fmt.Fprintf(&b, "- Last pool block: %s\n", t.LastBlock)
	fmt.Fprintf(&b, "\nUpdated %s", t.UpdatedAt)
	if uptime != "" {
		fmt.Fprintf(&b, " · daemon up %s", uptime)
	}
	if len(t.Stale) > 0 {
		fmt.Fprintf(&b, "\n\n> Showing cached values for: %s", strings.Join(t.Stale, ", "))
	}
	return b.String()
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}
