package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/townloop/engine/domain"
)

func (s *Server) registerCommands() {
	s.mcpServer.AddTool(mcp.NewTool("trigger_event",
		mcp.WithDescription("Enqueue a free-text observer event for the next tick."),
		mcp.WithString("text", mcp.Required()),
		mcp.WithInputSchema[triggerEventArgs]()),
		s.handleTriggerEvent)

	s.mcpServer.AddTool(mcp.NewTool("set_weather",
		mcp.WithDescription("Enqueue a weather change for the next tick."),
		mcp.WithString("weather", mcp.Required(), mcp.Enum("clear", "cloudy", "rainy", "foggy")),
		mcp.WithInputSchema[setWeatherArgs]()),
		s.handleSetWeather)

	s.mcpServer.AddTool(mcp.NewTool("send_dream",
		mcp.WithDescription("Enqueue a dream message delivered to a sleeping agent."),
		mcp.WithString("agent", mcp.Required()),
		mcp.WithString("text", mcp.Required()),
		mcp.WithInputSchema[sendDreamArgs]()),
		s.handleSendDream)

	s.mcpServer.AddTool(mcp.NewTool("force_turn",
		mcp.WithDescription("Force an agent to take its turn next tick, ending any trance."),
		mcp.WithString("agent", mcp.Required()),
		mcp.WithInputSchema[forceTurnArgs]()),
		s.handleForceTurn)

	s.mcpServer.AddTool(mcp.NewTool("skip_turns",
		mcp.WithDescription("Skip an agent's next n turns."),
		mcp.WithString("agent", mcp.Required()),
		mcp.WithNumber("n", mcp.Required()),
		mcp.WithInputSchema[skipTurnsArgs]()),
		s.handleSkipTurns)

	s.mcpServer.AddTool(mcp.NewTool("end_conversation",
		mcp.WithDescription("Force-end a conversation by id."),
		mcp.WithString("conversation_id", mcp.Required()),
		mcp.WithInputSchema[endConversationArgs]()),
		s.handleEndConversation)
}

type triggerEventArgs struct {
	Text string `json:"text"`
}

type setWeatherArgs struct {
	Weather string `json:"weather"`
}

type sendDreamArgs struct {
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

type forceTurnArgs struct {
	Agent string `json:"agent"`
}

type skipTurnsArgs struct {
	Agent string `json:"agent"`
	N     int    `json:"n"`
}

type endConversationArgs struct {
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleTriggerEvent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args triggerEventArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid arguments", err)
	}
	if err := s.commander.TriggerEvent(ctx, args.Text); err != nil {
		return toolError("failed to enqueue event", err)
	}
	return mcp.NewToolResultText("event enqueued"), nil
}

func (s *Server) handleSetWeather(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args setWeatherArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid arguments", err)
	}
	if err := s.commander.SetWeather(ctx, domain.Weather(args.Weather)); err != nil {
		return toolError("failed to enqueue weather change", err)
	}
	return mcp.NewToolResultText("weather change enqueued"), nil
}

func (s *Server) handleSendDream(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args sendDreamArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid arguments", err)
	}
	if err := s.commander.SendDream(ctx, args.Agent, args.Text); err != nil {
		return toolError("failed to enqueue dream", err)
	}
	return mcp.NewToolResultText("dream enqueued"), nil
}

func (s *Server) handleForceTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args forceTurnArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid arguments", err)
	}
	if err := s.commander.ForceTurn(ctx, args.Agent); err != nil {
		return toolError("failed to enqueue force turn", err)
	}
	return mcp.NewToolResultText("force turn enqueued"), nil
}

func (s *Server) handleSkipTurns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args skipTurnsArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid arguments", err)
	}
	if err := s.commander.SkipTurns(ctx, args.Agent, args.N); err != nil {
		return toolError("failed to enqueue skip turns", err)
	}
	return mcp.NewToolResultText("skip turns enqueued"), nil
}

func (s *Server) handleEndConversation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args endConversationArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid arguments", err)
	}
	if err := s.commander.EndConversation(ctx, args.ConversationID); err != nil {
		return toolError("failed to enqueue end conversation", err)
	}
	return mcp.NewToolResultText("end conversation enqueued"), nil
}
