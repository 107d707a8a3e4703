package mcpserver

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/b0ase/ckwidget/internal/poller"
	"github.com/b0ase/ckwidget/internal/settings"
)

// DaemonInfo is the daemon surface the MCP tools need.
type DaemonInfo interface {
	Uptime() time.Duration
	Tile() (poller.Tile, bool)
	Refresh(ctx context.Context) (poller.Tile, error)
	Settings(ctx context.Context) (settings.Settings, error)
	SetAddress(ctx context.Context, addr string) error
}

// MCPServer wraps the MCP protocol server with ckwidget tools.
type MCPServer struct {
	server *mcp.Server
	daemon DaemonInfo
}

// New creates an MCP server with all ckwidget tools registered.
func New(version string, daemon DaemonInfo) *MCPServer {
	s := &MCPServer{
		daemon: daemon,
		server: mcp.NewServer(
			&mcp.Implementation{
				Name:    "ckwidget",
				Version: version,
			},
			&mcp.ServerOptions{
				Instructions: "Solo CKPool mining status for one address. Provides tools to read the current hashrate, shares, best-ever difficulty, BTC price and last pool block, trigger a refresh, and change the monitored address.",
			},
		),
	}
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects.
func (s *MCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
