package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/townloop/engine/domain"
)

type fakeObserver struct {
	agents map[string]*domain.Agent
}

func (f *fakeObserver) GetWorldState(ctx context.Context) (domain.WorldState, error) {
	return domain.WorldState{Tick: 7}, nil
}

func (f *fakeObserver) GetAgent(ctx context.Context, name string) (*domain.Agent, bool, error) {
	a, ok := f.agents[name]
	return a, ok, nil
}

func (f *fakeObserver) GetAllAgents(ctx context.Context) ([]*domain.Agent, error) {
	var out []*domain.Agent
	for _, a := range f.agents {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeObserver) GetCell(ctx context.Context, pos domain.Position) (domain.Cell, error) {
	return domain.Cell{Terrain: domain.TerrainGrass}, nil
}

func (f *fakeObserver) GetCellsInRect(ctx context.Context, rect domain.Rect) ([]CellAt, error) {
	return nil, nil
}

func (f *fakeObserver) GetObjectsAt(ctx context.Context, pos domain.Position) ([]domain.WorldObject, error) {
	return nil, nil
}

func (f *fakeObserver) GetConversations(ctx context.Context) ([]*domain.Conversation, error) {
	return nil, nil
}

func (f *fakeObserver) GetPendingInvitations(ctx context.Context) ([]*domain.Invitation, error) {
	return nil, nil
}

type fakeCommander struct {
	lastWeather domain.Weather
}

func (f *fakeCommander) TriggerEvent(ctx context.Context, text string) error { return nil }
func (f *fakeCommander) SetWeather(ctx context.Context, weather domain.Weather) error {
	f.lastWeather = weather
	return nil
}
func (f *fakeCommander) SendDream(ctx context.Context, agentName, text string) error { return nil }
func (f *fakeCommander) ForceTurn(ctx context.Context, agentName string) error       { return nil }
func (f *fakeCommander) SkipTurns(ctx context.Context, agentName string, n int) error { return nil }
func (f *fakeCommander) EndConversation(ctx context.Context, conversationID string) error {
	return nil
}

func TestHandleGetWorldState(t *testing.T) {
	s := New(&fakeObserver{}, &fakeCommander{})
	result, err := s.handleGetWorldState(context.Background(), mcp.CallToolRequest{})
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestHandleGetAgentNotFound(t *testing.T) {
	s := New(&fakeObserver{agents: map[string]*domain.Agent{}}, &fakeCommander{})
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"name": "nobody"}
	result, err := s.handleGetAgent(context.Background(), req)
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestHandleSetWeather(t *testing.T) {
	commander := &fakeCommander{}
	s := New(&fakeObserver{}, commander)
	req := mcp.CallToolRequest{}
	req.Params.Arguments = map[string]any{"weather": "rainy"}
	result, err := s.handleSetWeather(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, domain.WeatherRainy, commander.lastWeather)
}
