// Package mcpserver exposes the engine's observer surface as an MCP
// server: read-only queries plus a whitelisted command set. It never
// exposes the 27 agent actions — those remain reasoner-only.
//
// Built on github.com/mark3labs/mcp-go's server-side API: a
// *server.MCPServer built once in New, tools registered with
// mcp.NewTool+mcp.With* option builders, each backed by a handler closing
// over this package's own dependencies rather than a remote client.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/townloop/engine/domain"
)

const (
	serverName    = "townloop Observer"
	serverVersion = "0.1.0"
)

// Observer is the read-only query surface the engine exposes. Implemented
// by the engine package against a point-in-time snapshot of the current
// tick's WorldData.
type Observer interface {
	GetWorldState(ctx context.Context) (domain.WorldState, error)
	GetAgent(ctx context.Context, name string) (*domain.Agent, bool, error)
	GetAllAgents(ctx context.Context) ([]*domain.Agent, error)
	GetCell(ctx context.Context, pos domain.Position) (domain.Cell, error)
	GetCellsInRect(ctx context.Context, rect domain.Rect) ([]CellAt, error)
	GetObjectsAt(ctx context.Context, pos domain.Position) ([]domain.WorldObject, error)
	GetConversations(ctx context.Context) ([]*domain.Conversation, error)
	GetPendingInvitations(ctx context.Context) ([]*domain.Invitation, error)
}

// CellAt pairs a position with its cell, mirroring worldsvc.CellAt
// without requiring this package to depend on worldsvc.
type CellAt struct {
	Position domain.Position `json:"position"`
	Cell     domain.Cell     `json:"cell"`
}

// Commander is the whitelisted command surface. Every command enqueues at
// most one event, applied in a subsequent tick before the
// invitation-expiry phase; none may overwrite prior events.
type Commander interface {
	TriggerEvent(ctx context.Context, text string) error
	SetWeather(ctx context.Context, weather domain.Weather) error
	SendDream(ctx context.Context, agentName, text string) error
	ForceTurn(ctx context.Context, agentName string) error
	SkipTurns(ctx context.Context, agentName string, n int) error
	EndConversation(ctx context.Context, conversationID string) error
}

// Server hosts the MCP server over the Observer/Commander surface.
type Server struct {
	mcpServer *server.MCPServer
	observer  Observer
	commander Commander
}

// New builds a configured MCP server. Every observer query and whitelisted
// command is registered as one MCP tool.
func New(observer Observer, commander Commander) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
		observer:  observer,
		commander: commander,
	}
	s.registerQueries()
	s.registerCommands()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("mcpserver: serve failed: %w", err)
	}
	return nil
}

func toolError(label string, err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultErrorFromErr(label, err), nil
}
