package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/townloop/engine/domain"
)

// Load reconstructs the full in-memory WorldData from the database alone,
// at the current committed tick. The event log is never consulted here.
func (s *Store) Load(ctx context.Context) (*WorldData, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	w := NewWorldData()

	row := s.db.QueryRowContext(ctx, `SELECT tick, width, height, weather FROM world_state WHERE id = 1`)
	var weather string
	if err := row.Scan(&w.World.Tick, &w.World.Width, &w.World.Height, &weather); err != nil {
		return nil, fmt.Errorf("failed to load world_state: %w", err)
	}
	w.World.Weather = domain.Weather(weather)

	if err := s.loadCells(ctx, w); err != nil {
		return nil, err
	}
	if err := s.loadObjects(ctx, w); err != nil {
		return nil, err
	}
	if err := s.loadAgents(ctx, w); err != nil {
		return nil, err
	}
	if err := s.loadNamedPlaces(ctx, w); err != nil {
		return nil, err
	}
	if err := s.loadConversations(ctx, w); err != nil {
		return nil, err
	}
	if err := s.loadInvitations(ctx, w); err != nil {
		return nil, err
	}
	if err := s.loadStructures(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func encodeDirSet(m map[domain.Direction]bool) string {
	var parts []string
	for _, d := range domain.AllDirections {
		if m[d] {
			parts = append(parts, string(d))
		}
	}
	return strings.Join(parts, ",")
}

func decodeDirSet(s string) map[domain.Direction]bool {
	out := map[domain.Direction]bool{}
	if s == "" {
		return out
	}
	for _, p := range strings.Split(s, ",") {
		out[domain.Direction(p)] = true
	}
	return out
}

func (s *Store) loadCells(ctx context.Context, w *WorldData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT x, y, terrain, walls, doors FROM cells`)
	if err != nil {
		return fmt.Errorf("failed to load cells: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var x, y int
		var terrain, walls, doors string
		if err := rows.Scan(&x, &y, &terrain, &walls, &doors); err != nil {
			return err
		}
		w.Cells[domain.Position{X: x, Y: y}] = domain.Cell{
			Terrain: domain.Terrain(terrain),
			Walls:   decodeDirSet(walls),
			Doors:   decodeDirSet(doors),
		}
	}
	return rows.Err()
}

func (s *Store) loadObjects(ctx context.Context, w *WorldData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, x, y, kind, created_tick, created_by, extras FROM objects`)
	if err != nil {
		return fmt.Errorf("failed to load objects: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, kind, createdBy, extras string
		var x, y, createdTick int
		if err := rows.Scan(&id, &x, &y, &kind, &createdTick, &createdBy, &extras); err != nil {
			return err
		}
		obj := domain.WorldObject{
			ID: id, Position: domain.Position{X: x, Y: y}, Kind: domain.ObjectKind(kind),
			CreatedTick: createdTick, CreatedBy: createdBy,
		}
		var fields map[string]any
		if err := json.Unmarshal([]byte(extras), &fields); err == nil {
			switch obj.Kind {
			case domain.ObjectSign:
				obj.SignText, _ = fields["text"].(string)
				obj.SignAuthor, _ = fields["author"].(string)
			case domain.ObjectPlacedItem:
				obj.ItemKind, _ = fields["item_kind"].(string)
				if props, ok := fields["properties"].(map[string]any); ok {
					obj.ItemProperties = map[string]string{}
					for k, v := range props {
						obj.ItemProperties[k] = fmt.Sprintf("%v", v)
					}
				}
			}
		}
		w.Objects[id] = obj
	}
	return rows.Err()
}

func (s *Store) loadAgents(ctx context.Context, w *WorldData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, model_id, personality, x, y, facing, sleeping, session_id, last_turn_tick, journey, known_agents FROM agents`)
	if err != nil {
		return fmt.Errorf("failed to load agents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, modelID, personality, facing, sessionID, journeyJSON, known string
		var x, y, sleeping, lastTurn int
		if err := rows.Scan(&name, &modelID, &personality, &x, &y, &facing, &sleeping, &sessionID, &lastTurn, &journeyJSON, &known); err != nil {
			return err
		}
		a := &domain.Agent{
			Name: name, ModelID: modelID, Personality: personality,
			Position: domain.Position{X: x, Y: y}, Facing: domain.Direction(facing),
			Sleeping: sleeping != 0, SessionID: sessionID, LastTurnTick: lastTurn,
			Inventory:   domain.NewInventory(),
			KnownAgents: decodeNameSet(known),
		}
		if journeyJSON != "" {
			var j domain.Journey
			if err := json.Unmarshal([]byte(journeyJSON), &j); err == nil {
				a.Journey = &j
			}
		}
		w.Agents[name] = a
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return s.loadInventory(ctx, w)
}

func decodeNameSet(s string) map[string]bool {
	out := map[string]bool{}
	if s == "" {
		return out
	}
	for _, p := range strings.Split(s, ",") {
		out[p] = true
	}
	return out
}

func encodeNameSet(m map[string]bool) string {
	var parts []string
	for k := range m {
		parts = append(parts, k)
	}
	return strings.Join(parts, ",")
}

func (s *Store) loadInventory(ctx context.Context, w *WorldData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT agent_name, kind, count FROM inventory_stacks`)
	if err != nil {
		return fmt.Errorf("failed to load inventory_stacks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var agentName, kind string
		var count int
		if err := rows.Scan(&agentName, &kind, &count); err != nil {
			return err
		}
		if a, ok := w.Agents[agentName]; ok {
			a.Inventory.Stacks[domain.ResourceKind(kind)] = count
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	itemRows, err := s.db.QueryContext(ctx, `SELECT unique_id, agent_name, kind, properties FROM inventory_items`)
	if err != nil {
		return fmt.Errorf("failed to load inventory_items: %w", err)
	}
	defer itemRows.Close()
	for itemRows.Next() {
		var uid, agentName, kind, propsJSON string
		if err := itemRows.Scan(&uid, &agentName, &kind, &propsJSON); err != nil {
			return err
		}
		item := domain.Item{UniqueID: uid, Kind: kind}
		_ = json.Unmarshal([]byte(propsJSON), &item.Properties)
		if a, ok := w.Agents[agentName]; ok {
			a.Inventory.AddItem(item)
		}
	}
	return itemRows.Err()
}

func (s *Store) loadNamedPlaces(ctx context.Context, w *WorldData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT x, y, name FROM named_places`)
	if err != nil {
		return fmt.Errorf("failed to load named_places: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var x, y int
		var name string
		if err := rows.Scan(&x, &y, &name); err != nil {
			return err
		}
		w.NamedPlaces[domain.Position{X: x, Y: y}] = name
	}
	return rows.Err()
}

func (s *Store) loadConversations(ctx context.Context, w *WorldData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, privacy, started_tick, ended_tick FROM conversations`)
	if err != nil {
		return fmt.Errorf("failed to load conversations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, privacy string
		var started int
		var ended *int
		if err := rows.Scan(&id, &privacy, &started, &ended); err != nil {
			return err
		}
		w.Conversations[id] = &domain.Conversation{
			ID: id, Privacy: domain.Privacy(privacy), StartedTick: started, EndedTick: ended,
			LastTurnTick: map[string]int{},
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	partRows, err := s.db.QueryContext(ctx, `SELECT conversation_id, agent_name, last_turn_tick FROM conversation_participants`)
	if err != nil {
		return fmt.Errorf("failed to load conversation_participants: %w", err)
	}
	defer partRows.Close()
	for partRows.Next() {
		var cid, agent string
		var lastTurn int
		if err := partRows.Scan(&cid, &agent, &lastTurn); err != nil {
			return err
		}
		if c, ok := w.Conversations[cid]; ok {
			c.Participants = append(c.Participants, agent)
			c.LastTurnTick[agent] = lastTurn
		}
	}
	if err := partRows.Err(); err != nil {
		return err
	}

	turnRows, err := s.db.QueryContext(ctx, `SELECT conversation_id, speaker, text, tick FROM conversation_turns ORDER BY conversation_id, seq ASC`)
	if err != nil {
		return fmt.Errorf("failed to load conversation_turns: %w", err)
	}
	defer turnRows.Close()
	for turnRows.Next() {
		var cid, speaker, text string
		var tick int
		if err := turnRows.Scan(&cid, &speaker, &text, &tick); err != nil {
			return err
		}
		if c, ok := w.Conversations[cid]; ok {
			c.Turns = append(c.Turns, domain.Turn{Speaker: speaker, Text: text, Tick: tick})
		}
	}
	return turnRows.Err()
}

func (s *Store) loadInvitations(ctx context.Context, w *WorldData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, inviter, invitee, privacy, created_tick, status FROM conversation_invitations`)
	if err != nil {
		return fmt.Errorf("failed to load conversation_invitations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, inviter, invitee, privacy, status string
		var created int
		if err := rows.Scan(&id, &inviter, &invitee, &privacy, &created, &status); err != nil {
			return err
		}
		w.Invitations[id] = &domain.Invitation{
			ID: id, Inviter: inviter, Invitee: invitee, Privacy: domain.Privacy(privacy),
			CreatedTick: created, Status: domain.InvitationStatus(status),
		}
	}
	return rows.Err()
}

func (s *Store) loadStructures(ctx context.Context, w *WorldData) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, interior, creators, is_private FROM structures`)
	if err != nil {
		return fmt.Errorf("failed to load structures: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, interiorJSON, creatorsJSON string
		var isPrivate int
		if err := rows.Scan(&id, &interiorJSON, &creatorsJSON, &isPrivate); err != nil {
			return err
		}
		var cells []map[string]int
		_ = json.Unmarshal([]byte(interiorJSON), &cells)
		interior := make(map[domain.Position]bool, len(cells))
		for _, c := range cells {
			interior[domain.Position{X: c["x"], Y: c["y"]}] = true
		}
		var creatorNames []string
		_ = json.Unmarshal([]byte(creatorsJSON), &creatorNames)
		creators := make(map[string]bool, len(creatorNames))
		for _, n := range creatorNames {
			creators[n] = true
		}
		w.Structures[id] = &domain.Structure{
			ID: id, Interior: interior, Creators: creators, IsPrivate: isPrivate != 0,
		}
	}
	return rows.Err()
}

// nextSeqID is a small helper used by callers assembling deterministic
// object/conversation ids from the current next-sequence counter.
func nextSeqID(prefix string, n int) string {
	return prefix + "-" + strconv.Itoa(n)
}
