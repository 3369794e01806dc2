package storage

import (
	"context"
	"fmt"

	"github.com/townloop/engine/domain"
)

// Seed writes the initial WorldData produced by `townloop init` directly
// into the schema tables, bypassing ApplyEvents: world creation is a
// one-time bulk write, not a simulated action, so it has no corresponding
// entry in domain.EventType and is never appended to the event log.
func (s *Store) Seed(ctx context.Context, data *WorldData) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO world_state (id, tick, width, height, weather) VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET tick=excluded.tick, width=excluded.width, height=excluded.height, weather=excluded.weather`,
		data.World.Tick, data.World.Width, data.World.Height, string(data.World.Weather),
	); err != nil {
		return fmt.Errorf("failed to seed world_state: %w", err)
	}

	for pos, cell := range data.Cells {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cells (x, y, terrain, walls, doors) VALUES (?, ?, ?, ?, ?)`,
			pos.X, pos.Y, string(cell.Terrain), encodeDirSet(cell.Walls), encodeDirSet(cell.Doors),
		); err != nil {
			return fmt.Errorf("failed to seed cell %s: %w", pos, err)
		}
	}

	for name, a := range data.Agents {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO agents (name, model_id, personality, x, y, facing, sleeping, session_id, last_turn_tick, journey, known_agents)
			 VALUES (?, ?, ?, ?, ?, ?, 0, '', 0, '', '')`,
			name, a.ModelID, a.Personality, a.Position.X, a.Position.Y, string(a.Facing),
		); err != nil {
			return fmt.Errorf("failed to seed agent %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}
	return nil
}
