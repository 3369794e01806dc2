package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/townloop/engine/domain"
)

func (s *Server) registerQueries() {
	s.mcpServer.AddTool(mcp.NewTool("get_world_state",
		mcp.WithDescription("Return the current tick, world size, and weather.")),
		s.handleGetWorldState)

	s.mcpServer.AddTool(mcp.NewTool("get_agent",
		mcp.WithDescription("Return one agent's full state by name."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Agent name.")),
		mcp.WithInputSchema[agentNameArgs]()),
		s.handleGetAgent)

	s.mcpServer.AddTool(mcp.NewTool("get_all_agents",
		mcp.WithDescription("Return every agent's full state.")),
		s.handleGetAllAgents)

	s.mcpServer.AddTool(mcp.NewTool("get_cell",
		mcp.WithDescription("Return the cell at a position."),
		mcp.WithNumber("x", mcp.Required()),
		mcp.WithNumber("y", mcp.Required()),
		mcp.WithInputSchema[positionArgs]()),
		s.handleGetCell)

	s.mcpServer.AddTool(mcp.NewTool("get_cells_in_rect",
		mcp.WithDescription("Return every cell within a rectangle, inclusive of both corners."),
		mcp.WithNumber("min_x", mcp.Required()),
		mcp.WithNumber("min_y", mcp.Required()),
		mcp.WithNumber("max_x", mcp.Required()),
		mcp.WithNumber("max_y", mcp.Required()),
		mcp.WithInputSchema[rectArgs]()),
		s.handleGetCellsInRect)

	s.mcpServer.AddTool(mcp.NewTool("get_objects_at",
		mcp.WithDescription("Return every object placed at a position."),
		mcp.WithNumber("x", mcp.Required()),
		mcp.WithNumber("y", mcp.Required()),
		mcp.WithInputSchema[positionArgs]()),
		s.handleGetObjectsAt)

	s.mcpServer.AddTool(mcp.NewTool("get_conversations",
		mcp.WithDescription("Return every active conversation.")),
		s.handleGetConversations)

	s.mcpServer.AddTool(mcp.NewTool("get_pending_invitations",
		mcp.WithDescription("Return every pending conversation invitation.")),
		s.handleGetPendingInvitations)
}

type agentNameArgs struct {
	Name string `json:"name"`
}

type positionArgs struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type rectArgs struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

func (s *Server) handleGetWorldState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.observer.GetWorldState(ctx)
	if err != nil {
		return toolError("failed to get world state", err)
	}
	return mcp.NewToolResultStructuredOnly(state), nil
}

func (s *Server) handleGetAgent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args agentNameArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid arguments", err)
	}
	agent, ok, err := s.observer.GetAgent(ctx, args.Name)
	if err != nil {
		return toolError("failed to get agent", err)
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no such agent: %s", args.Name)), nil
	}
	return mcp.NewToolResultStructuredOnly(agent), nil
}

func (s *Server) handleGetAllAgents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agents, err := s.observer.GetAllAgents(ctx)
	if err != nil {
		return toolError("failed to get agents", err)
	}
	return mcp.NewToolResultStructuredOnly(agents), nil
}

func (s *Server) handleGetCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args positionArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid arguments", err)
	}
	cell, err := s.observer.GetCell(ctx, domain.Position{X: args.X, Y: args.Y})
	if err != nil {
		return toolError("failed to get cell", err)
	}
	return mcp.NewToolResultStructuredOnly(cell), nil
}

func (s *Server) handleGetCellsInRect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args rectArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid arguments", err)
	}
	rect := domain.Rect{
		Min: domain.Position{X: args.MinX, Y: args.MinY},
		Max: domain.Position{X: args.MaxX, Y: args.MaxY},
	}
	cells, err := s.observer.GetCellsInRect(ctx, rect)
	if err != nil {
		return toolError("failed to get cells", err)
	}
	return mcp.NewToolResultStructuredOnly(cells), nil
}

func (s *Server) handleGetObjectsAt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args positionArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid arguments", err)
	}
	objects, err := s.observer.GetObjectsAt(ctx, domain.Position{X: args.X, Y: args.Y})
	if err != nil {
		return toolError("failed to get objects", err)
	}
	return mcp.NewToolResultStructuredOnly(objects), nil
}

func (s *Server) handleGetConversations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	conversations, err := s.observer.GetConversations(ctx)
	if err != nil {
		return toolError("failed to get conversations", err)
	}
	return mcp.NewToolResultStructuredOnly(conversations), nil
}

func (s *Server) handleGetPendingInvitations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	invitations, err := s.observer.GetPendingInvitations(ctx)
	if err != nil {
		return toolError("failed to get invitations", err)
	}
	return mcp.NewToolResultStructuredOnly(invitations), nil
}
