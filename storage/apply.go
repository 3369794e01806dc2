package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/townloop/engine/domain"
)

// ApplyEvents atomically updates the database and appends the events to
// the audit log. On any failure, both are rolled back: the SQL
// transaction via its own Rollback, and the just-appended log frames via
// EventLog.Truncate back to their pre-append size.
//
// Events are assigned monotonically increasing sequence numbers here, and
// persisted atomically with the state changes they describe.
func (s *Store) ApplyEvents(ctx context.Context, tick int, lastSeq int64, events []domain.Event) (newLastSeq int64, err error) {
	if len(events) == 0 {
		return lastSeq, nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	preSize, err := s.log.Size()
	if err != nil {
		return lastSeq, fmt.Errorf("failed to stat event log: %w", err)
	}

	seq := lastSeq
	stamped := make([]domain.Event, len(events))
	for i, e := range events {
		seq++
		e.Seq = seq
		e.Tick = tick
		stamped[i] = e
	}

	if err := s.log.Append(stamped); err != nil {
		return lastSeq, fmt.Errorf("failed to append to event log: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		_ = s.log.Truncate(preSize)
		return lastSeq, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			_ = s.log.Truncate(preSize)
		}
	}()

	for _, e := range stamped {
		if err = applyOne(ctx, tx, e); err != nil {
			return lastSeq, fmt.Errorf("failed to apply event seq %d (%s): %w", e.Seq, e.Type, err)
		}
	}

	prevHash, err := currentReplayHash(ctx, tx)
	if err != nil {
		return lastSeq, err
	}
	newHash := chainHash(prevHash, stamped)

	if _, err = tx.ExecContext(ctx, `UPDATE world_state SET tick = ?, replay_hash = ? WHERE id = 1`, tick, newHash); err != nil {
		return lastSeq, fmt.Errorf("failed to update world_state: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return lastSeq, fmt.Errorf("failed to commit transaction: %w", err)
	}
	if err = s.log.Sync(); err != nil {
		// The DB already committed; a failed fsync of the audit log is
		// logged by the caller but is not fatal to the tick, since the
		// database (the authoritative store) is already durable.
		return seq, fmt.Errorf("event log sync failed after commit: %w", err)
	}
	return seq, nil
}

func currentReplayHash(ctx context.Context, tx *sql.Tx) (string, error) {
	var hash string
	row := tx.QueryRowContext(ctx, `SELECT replay_hash FROM world_state WHERE id = 1`)
	if err := row.Scan(&hash); err != nil {
		return "", fmt.Errorf("failed to read replay_hash: %w", err)
	}
	return hash, nil
}

// chainHash folds the previous tick's replay hash with this tick's events,
// producing the rolling content hash checked by the replay-equivalence
// property.
func chainHash(prev string, events []domain.Event) string {
	h := sha256.New()
	h.Write([]byte(prev))
	for _, e := range events {
		data, _ := json.Marshal(e)
		h.Write(data)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func applyOne(ctx context.Context, tx *sql.Tx, e domain.Event) error {
	switch e.Type {
	case domain.EventAgentMoved:
		name := str(e.Data, "agent")
		x, y := intv(e.Data, "to_x"), intv(e.Data, "to_y")
		_, err := tx.ExecContext(ctx, `UPDATE agents SET x = ?, y = ? WHERE name = ?`, x, y, name)
		return err

	case domain.EventAgentGathered:
		name := str(e.Data, "agent")
		kind := str(e.Data, "kind")
		return addStack(ctx, tx, name, kind, 1)

	case domain.EventAgentSlept:
		_, err := tx.ExecContext(ctx, `UPDATE agents SET sleeping = 1 WHERE name = ?`, str(e.Data, "agent"))
		return err

	case domain.EventAgentWoke:
		_, err := tx.ExecContext(ctx, `UPDATE agents SET sleeping = 0 WHERE name = ?`, str(e.Data, "agent"))
		return err

	case domain.EventSignWritten:
		extras, _ := json.Marshal(map[string]any{"text": str(e.Data, "text"), "author": str(e.Data, "author")})
		_, err := tx.ExecContext(ctx, `INSERT INTO objects (id, x, y, kind, created_tick, created_by, extras) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			str(e.Data, "id"), intv(e.Data, "x"), intv(e.Data, "y"), string(domain.ObjectSign), e.Tick, str(e.Data, "author"), string(extras))
		return err

	case domain.EventItemPlaced:
		extras, _ := json.Marshal(map[string]any{"item_kind": str(e.Data, "kind"), "properties": e.Data["properties"]})
		_, err := tx.ExecContext(ctx, `INSERT INTO objects (id, x, y, kind, created_tick, created_by, extras) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			str(e.Data, "id"), intv(e.Data, "x"), intv(e.Data, "y"), string(domain.ObjectPlacedItem), e.Tick, str(e.Data, "author"), string(extras))
		return err

	case domain.EventWallPlaced, domain.EventDoorPlaced:
		if err := setEdge(ctx, tx, e.Data, e.Type); err != nil {
			return err
		}
		return nil

	case domain.EventWallRemoved:
		return clearEdge(ctx, tx, e.Data)

	case domain.EventPlaceNamed:
		_, err := tx.ExecContext(ctx, `INSERT INTO named_places (x, y, name) VALUES (?, ?, ?)
			ON CONFLICT(x, y) DO UPDATE SET name = excluded.name`,
			intv(e.Data, "x"), intv(e.Data, "y"), str(e.Data, "name"))
		return err

	case domain.EventCraftSucceeded:
		return applyCraft(ctx, tx, e)

	case domain.EventItemGiven:
		return applyGive(ctx, tx, e)

	case domain.EventItemTaken:
		name := str(e.Data, "agent")
		objID := str(e.Data, "object_id")
		if _, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, objID); err != nil {
			return err
		}
		props, _ := json.Marshal(e.Data["properties"])
		_, err := tx.ExecContext(ctx, `INSERT INTO inventory_items (unique_id, agent_name, kind, properties) VALUES (?, ?, ?, ?)`,
			objID, name, str(e.Data, "kind"), string(props))
		return err

	case domain.EventItemDropped:
		name := str(e.Data, "agent")
		uniqueID := str(e.Data, "unique_id")
		_, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE unique_id = ? AND agent_name = ?`, uniqueID, name)
		if err != nil {
			return err
		}
		props, _ := json.Marshal(e.Data["properties"])
		_, err = tx.ExecContext(ctx, `INSERT INTO objects (id, x, y, kind, created_tick, created_by, extras) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			uniqueID, intv(e.Data, "x"), intv(e.Data, "y"), string(domain.ObjectPlacedItem), e.Tick, name,
			mustMarshalExtras(str(e.Data, "kind"), props))
		return err

	case domain.EventInvitationSent:
		_, err := tx.ExecContext(ctx, `INSERT INTO conversation_invitations (id, inviter, invitee, privacy, created_tick, status) VALUES (?, ?, ?, ?, ?, ?)`,
			str(e.Data, "id"), str(e.Data, "inviter"), str(e.Data, "invitee"), str(e.Data, "privacy"), e.Tick, string(domain.InvitationPending))
		return err

	case domain.EventInvitationAccepted:
		_, err := tx.ExecContext(ctx, `UPDATE conversation_invitations SET status = ? WHERE id = ?`, string(domain.InvitationAccepted), str(e.Data, "id"))
		return err

	case domain.EventInvitationDeclined:
		_, err := tx.ExecContext(ctx, `UPDATE conversation_invitations SET status = ? WHERE id = ?`, string(domain.InvitationDeclined), str(e.Data, "id"))
		return err

	case domain.EventInvitationExpired:
		_, err := tx.ExecContext(ctx, `UPDATE conversation_invitations SET status = ? WHERE id = ?`, string(domain.InvitationExpired), str(e.Data, "id"))
		return err

	case domain.EventConversationStarted:
		if _, err := tx.ExecContext(ctx, `INSERT INTO conversations (id, privacy, started_tick, ended_tick) VALUES (?, ?, ?, NULL)`,
			str(e.Data, "id"), str(e.Data, "privacy"), e.Tick); err != nil {
			return err
		}
		// In-process events carry []string; events decoded from JSON carry []any.
		var participants []string
		switch ps := e.Data["participants"].(type) {
		case []string:
			participants = ps
		case []any:
			for _, p := range ps {
				name, _ := p.(string)
				participants = append(participants, name)
			}
		}
		for _, name := range participants {
			if _, err := tx.ExecContext(ctx, `INSERT INTO conversation_participants (conversation_id, agent_name, last_turn_tick) VALUES (?, ?, ?)`,
				str(e.Data, "id"), name, e.Tick); err != nil {
				return err
			}
		}
		return nil

	case domain.EventParticipantJoined:
		_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO conversation_participants (conversation_id, agent_name, last_turn_tick) VALUES (?, ?, ?)`,
			str(e.Data, "conversation_id"), str(e.Data, "agent"), e.Tick)
		return err

	case domain.EventParticipantLeft:
		_, err := tx.ExecContext(ctx, `DELETE FROM conversation_participants WHERE conversation_id = ? AND agent_name = ?`,
			str(e.Data, "conversation_id"), str(e.Data, "agent"))
		return err

	case domain.EventTurnAdded:
		var n int
		row := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM conversation_turns WHERE conversation_id = ?`, str(e.Data, "conversation_id"))
		if err := row.Scan(&n); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO conversation_turns (conversation_id, seq, speaker, text, tick) VALUES (?, ?, ?, ?, ?)`,
			str(e.Data, "conversation_id"), n, str(e.Data, "speaker"), str(e.Data, "text"), e.Tick)
		return err

	case domain.EventConversationEnded:
		_, err := tx.ExecContext(ctx, `UPDATE conversations SET ended_tick = ? WHERE id = ?`, e.Tick, str(e.Data, "conversation_id"))
		return err

	case domain.EventWeatherChanged:
		_, err := tx.ExecContext(ctx, `UPDATE world_state SET weather = ? WHERE id = 1`, str(e.Data, "weather"))
		return err

	case domain.EventJourneyInterrupted, domain.EventJourneyArrived:
		_, err := tx.ExecContext(ctx, `UPDATE agents SET journey = '' WHERE name = ?`, str(e.Data, "agent"))
		return err

	case domain.EventObserverTriggered:
		// Informational; nothing relational to persist beyond the audit log
		// entry itself.
		return nil

	case domain.EventStructureDetected:
		return upsertStructure(ctx, tx, e.Data)

	case domain.EventStructureRemoved:
		_, err := tx.ExecContext(ctx, `DELETE FROM structures WHERE id = ?`, str(e.Data, "id"))
		return err

	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
}

func mustMarshalExtras(itemKind string, propsJSON []byte) string {
	var props any
	_ = json.Unmarshal(propsJSON, &props)
	extras, _ := json.Marshal(map[string]any{"item_kind": itemKind, "properties": props})
	return string(extras)
}

// upsertStructure persists the enclosure described by data (as produced by
// worldsvc.SyncStructure): interior cells and creator names are stored as
// JSON text columns (unlike cells.walls/cells.doors, which saveCell below
// writes as comma-separated direction names via encodeDirSet).
func upsertStructure(ctx context.Context, tx *sql.Tx, data map[string]any) error {
	interior, _ := json.Marshal(data["interior"])
	creators, _ := json.Marshal(data["creators"])
	isPrivate := 0
	if b, _ := data["is_private"].(bool); b {
		isPrivate = 1
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO structures (id, interior, creators, is_private) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET interior = excluded.interior, creators = excluded.creators, is_private = excluded.is_private`,
		str(data, "id"), string(interior), string(creators), isPrivate)
	return err
}

func setEdge(ctx context.Context, tx *sql.Tx, data map[string]any, t domain.EventType) error {
	// Symmetric write: the caller (worldsvc) always includes both sides of
	// the edge in the event payload, so apply_events never needs to derive
	// the mirror position itself — this keeps the single wall-symmetry
	// invariant enforced in exactly one place (worldsvc's edgeEvent).
	if err := upsertEdge(ctx, tx, intv(data, "x"), intv(data, "y"), str(data, "direction"), t); err != nil {
		return err
	}
	return upsertEdge(ctx, tx, intv(data, "x2"), intv(data, "y2"), str(data, "direction2"), t)
}

func upsertEdge(ctx context.Context, tx *sql.Tx, x, y int, dir string, t domain.EventType) error {
	cell, err := selectOrDefaultCell(ctx, tx, x, y)
	if err != nil {
		return err
	}
	cell.Walls[domain.Direction(dir)] = true
	if t == domain.EventDoorPlaced {
		cell.Doors[domain.Direction(dir)] = true
	}
	return saveCell(ctx, tx, x, y, cell)
}

func clearEdge(ctx context.Context, tx *sql.Tx, data map[string]any) error {
	for _, pair := range [][2]string{{"x", "direction"}, {"x2", "direction2"}} {
		xKey := pair[0]
		dirKey := pair[1]
		yKey := "y"
		if xKey == "x2" {
			yKey = "y2"
		}
		x, y, dir := intv(data, xKey), intv(data, yKey), str(data, dirKey)
		cell, err := selectOrDefaultCell(ctx, tx, x, y)
		if err != nil {
			return err
		}
		delete(cell.Walls, domain.Direction(dir))
		delete(cell.Doors, domain.Direction(dir))
		if err := saveCell(ctx, tx, x, y, cell); err != nil {
			return err
		}
	}
	return nil
}

func selectOrDefaultCell(ctx context.Context, tx *sql.Tx, x, y int) (domain.Cell, error) {
	row := tx.QueryRowContext(ctx, `SELECT terrain, walls, doors FROM cells WHERE x = ? AND y = ?`, x, y)
	var terrain, walls, doors string
	err := row.Scan(&terrain, &walls, &doors)
	if err == sql.ErrNoRows {
		return domain.DefaultCell(), nil
	}
	if err != nil {
		return domain.Cell{}, err
	}
	return domain.Cell{Terrain: domain.Terrain(terrain), Walls: decodeDirSet(walls), Doors: decodeDirSet(doors)}, nil
}

func saveCell(ctx context.Context, tx *sql.Tx, x, y int, cell domain.Cell) error {
	if cell.IsDefault() {
		_, err := tx.ExecContext(ctx, `DELETE FROM cells WHERE x = ? AND y = ?`, x, y)
		return err
	}
	_, err := tx.ExecContext(ctx, `INSERT INTO cells (x, y, terrain, walls, doors) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(x, y) DO UPDATE SET terrain = excluded.terrain, walls = excluded.walls, doors = excluded.doors`,
		x, y, string(cell.Terrain), encodeDirSet(cell.Walls), encodeDirSet(cell.Doors))
	return err
}

func applyCraft(ctx context.Context, tx *sql.Tx, e domain.Event) error {
	name := str(e.Data, "agent")
	if consumed, ok := e.Data["consumed"].(map[string]any); ok {
		for kind := range consumed {
			if err := addStack(ctx, tx, name, kind, -intv(consumed, kind)); err != nil {
				return err
			}
		}
	}
	if e.Data["stackable"] == true {
		qty := intv(e.Data, "quantity")
		return addStack(ctx, tx, name, str(e.Data, "output_kind"), qty)
	}
	props, _ := json.Marshal(e.Data["properties"])
	_, err := tx.ExecContext(ctx, `INSERT INTO inventory_items (unique_id, agent_name, kind, properties) VALUES (?, ?, ?, ?)`,
		str(e.Data, "item_id"), name, str(e.Data, "output_kind"), string(props))
	return err
}

func applyGive(ctx context.Context, tx *sql.Tx, e domain.Event) error {
	giver, recipient, kind := str(e.Data, "giver"), str(e.Data, "recipient"), str(e.Data, "kind")
	qty := intv(e.Data, "quantity")
	if err := addStack(ctx, tx, giver, kind, -qty); err != nil {
		return err
	}
	return addStack(ctx, tx, recipient, kind, qty)
}

func addStack(ctx context.Context, tx *sql.Tx, agent, kind string, delta int) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO inventory_stacks (agent_name, kind, count) VALUES (?, ?, ?)
		ON CONFLICT(agent_name, kind) DO UPDATE SET count = count + excluded.count`,
		agent, kind, delta)
	return err
}

func str(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func intv(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
