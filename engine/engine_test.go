package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/townloop/engine/config"
	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/narrator"
	"github.com/townloop/engine/reasoner"
	"github.com/townloop/engine/storage"
)

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	dir := t.TempDir()
	s, err := storage.Open(filepath.Join(dir, "world.db"), filepath.Join(dir, "events.jsonl"), storage.DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.World.Width, cfg.World.Height = 8, 8
	cfg.Storage.AgentsDir = filepath.Join(t.TempDir(), "agents")
	cfg.Storage.SnapshotDir = filepath.Join(t.TempDir(), "snapshots")
	cfg.Storage.SnapshotInterval = 2
	return cfg
}

func seedOneAgent(t *testing.T, store *storage.Store, name string, pos domain.Position) {
	t.Helper()
	data := storage.NewWorldData()
	data.World = domain.WorldState{Width: 8, Height: 8, Weather: domain.WeatherClear}
	data.Agents[name] = domain.NewAgent(name, "mock", "curious", pos)
	require.NoError(t, store.Seed(context.Background(), data))
}

// walkEastScript always returns a single move action, exercising the
// movement phase and the commit path without a live LLM.
func walkEastScript(perception reasoner.Perception) []domain.ActionCall {
	return []domain.ActionCall{{Name: domain.ActionWalk, Args: map[string]any{"direction": "east"}}}
}

func TestRunTickAdvancesTickAndCommitsMovement(t *testing.T) {
	store := openTestStore(t)
	cfg := testConfig(t)
	seedOneAgent(t, store, "ada", domain.Position{X: 2, Y: 2})

	reason := reasoner.NewMockReasoner(reasoner.MockReasonerOptions{Script: walkEastScript})
	e, err := New(context.Background(), store, cfg, reason, narrator.NewLocalNarrator(nil))
	require.NoError(t, err)

	require.NoError(t, e.RunTick(context.Background()))

	world, err := e.GetWorldState(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, world.Tick)

	agents, err := e.GetAllAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	require.Equal(t, domain.Position{X: 3, Y: 2}, agents[0].Position)

	reloaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.World.Tick)
	require.Equal(t, domain.Position{X: 3, Y: 2}, reloaded.Agents["ada"].Position)
}

func TestRunAdvancesMultipleTicksAndWritesAgentStatus(t *testing.T) {
	store := openTestStore(t)
	cfg := testConfig(t)
	seedOneAgent(t, store, "ada", domain.Position{X: 0, Y: 0})

	reason := reasoner.NewMockReasoner(reasoner.MockReasonerOptions{Script: walkEastScript})
	e, err := New(context.Background(), store, cfg, reason, narrator.NewLocalNarrator(nil))
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background(), 3))

	world, err := e.GetWorldState(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, world.Tick)

	statusPath := filepath.Join(cfg.Storage.AgentsDir, "ada", ".status")
	require.FileExists(t, statusPath)
	for _, name := range []string{"journal.md", "notes.md", "discoveries.md"} {
		require.FileExists(t, filepath.Join(cfg.Storage.AgentsDir, "ada", name))
	}
}

func TestRunTickWritesSnapshotOnInterval(t *testing.T) {
	store := openTestStore(t)
	cfg := testConfig(t)
	seedOneAgent(t, store, "ada", domain.Position{X: 0, Y: 0})

	reason := reasoner.NewMockReasoner(reasoner.MockReasonerOptions{Default: nil})
	e, err := New(context.Background(), store, cfg, reason, narrator.NewLocalNarrator(nil))
	require.NoError(t, err)

	require.NoError(t, e.Run(context.Background(), 2))

	entries, err := filepath.Glob(filepath.Join(cfg.Storage.SnapshotDir, "snapshot_*.db"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSetWeatherCommandAppliesOnNextTick(t *testing.T) {
	store := openTestStore(t)
	cfg := testConfig(t)
	seedOneAgent(t, store, "ada", domain.Position{X: 0, Y: 0})

	reason := reasoner.NewMockReasoner(reasoner.MockReasonerOptions{Default: nil})
	e, err := New(context.Background(), store, cfg, reason, narrator.NewLocalNarrator(nil))
	require.NoError(t, err)

	require.NoError(t, e.SetWeather(context.Background(), domain.WeatherRainy))
	require.NoError(t, e.RunTick(context.Background()))

	world, err := e.GetWorldState(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.WeatherRainy, world.Weather)
}

func TestRunStopsEarlyOnCancelledContext(t *testing.T) {
	store := openTestStore(t)
	cfg := testConfig(t)
	seedOneAgent(t, store, "ada", domain.Position{X: 0, Y: 0})

	reason := reasoner.NewMockReasoner(reasoner.MockReasonerOptions{Script: walkEastScript})
	e, err := New(context.Background(), store, cfg, reason, narrator.NewLocalNarrator(nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = e.Run(ctx, 1)
	require.Error(t, err)
}
