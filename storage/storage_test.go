package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/townloop/engine/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "world.db"), filepath.Join(dir, "events.jsonl"), DefaultOptions())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesSchemaAndSeedsWorldState(t *testing.T) {
	s := openTestStore(t)
	data, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, data.World.Tick)
	require.Empty(t, data.Agents)
}

func TestApplyEventsMovesAgentAndAssignsSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `INSERT INTO agents (name, model_id, personality, x, y, facing, sleeping, session_id, last_turn_tick, journey, known_agents) VALUES ('ada', 'm', '', 0, 0, 'south', 0, '', 0, '', '')`)
	require.NoError(t, err)

	events := []domain.Event{
		domain.NewEvent(1, domain.EventAgentMoved, map[string]any{"agent": "ada", "to_x": 1, "to_y": 0}),
	}
	lastSeq, err := s.ApplyEvents(ctx, 1, 0, events)
	require.NoError(t, err)
	require.Equal(t, int64(1), lastSeq)

	data, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, domain.Position{X: 1, Y: 0}, data.Agents["ada"].Position)
	require.Equal(t, 1, data.World.Tick)

	read, err := ReadAllEvents(s.log.path)
	require.NoError(t, err)
	require.Len(t, read, 1)
	require.Equal(t, int64(1), read[0].Seq)
}

func TestApplyEventsRollsBackLogOnDBFailure(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	preSize, err := s.log.Size()
	require.NoError(t, err)

	bad := []domain.Event{domain.NewEvent(1, domain.EventType("NotARealEvent"), nil)}
	_, err = s.ApplyEvents(ctx, 1, 0, bad)
	require.Error(t, err)

	postSize, err := s.log.Size()
	require.NoError(t, err)
	require.Equal(t, preSize, postSize)
}

func TestWallPlacedIsSymmetric(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	events := []domain.Event{
		domain.NewEvent(1, domain.EventWallPlaced, map[string]any{
			"x": 0, "y": 0, "direction": "north",
			"x2": 0, "y2": -1, "direction2": "south",
		}),
	}
	_, err := s.ApplyEvents(ctx, 1, 0, events)
	require.NoError(t, err)

	data, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, data.GetCell(domain.Position{X: 0, Y: 0}).HasWall(domain.North))
	require.True(t, data.GetCell(domain.Position{X: 0, Y: -1}).HasWall(domain.South))
}

func TestSnapshotRetention(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	s.options.SnapshotRetention = 2
	dir := filepath.Join(t.TempDir(), "snapshots")

	for tick := 1; tick <= 4; tick++ {
		_, err := s.Snapshot(ctx, tick, dir)
		require.NoError(t, err)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestReplayHashDeterministicAcrossStores(t *testing.T) {
	ctx := context.Background()
	s1 := openTestStore(t)
	s2 := openTestStore(t)

	_, err := s1.db.ExecContext(ctx, `INSERT INTO agents (name, model_id, personality, x, y, facing, sleeping, session_id, last_turn_tick, journey, known_agents) VALUES ('ada', 'm', '', 0, 0, 'south', 0, '', 0, '', '')`)
	require.NoError(t, err)
	_, err = s2.db.ExecContext(ctx, `INSERT INTO agents (name, model_id, personality, x, y, facing, sleeping, session_id, last_turn_tick, journey, known_agents) VALUES ('ada', 'm', '', 0, 0, 'south', 0, '', 0, '', '')`)
	require.NoError(t, err)

	events := []domain.Event{domain.NewEvent(1, domain.EventAgentMoved, map[string]any{"agent": "ada", "to_x": 1, "to_y": 0})}
	_, err = s1.ApplyEvents(ctx, 1, 0, events)
	require.NoError(t, err)
	_, err = s2.ApplyEvents(ctx, 1, 0, events)
	require.NoError(t, err)

	h1, err := s1.ReplayHash(ctx)
	require.NoError(t, err)
	h2, err := s2.ReplayHash(ctx)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}
