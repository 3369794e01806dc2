package worldsvc

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/townloop/engine/domain"
)

// PlaceWall mutates the in-memory cells for edge (pos, dir) on both sides
// and returns the symmetric pair of events needed to record it: both pos's
// edge and its neighbor's mirrored edge are set in one logical change, so a
// wall is never visible from only one side. Idempotent: if the wall
// already exists, the returned event still applies (a no-op write on the
// already-set side) so build_shelter's additive-overlap semantics stay
// simple — callers never need to check first. agent names the acting
// agent, carried on the event so a structure this wall closes off can
// attribute the right creator.
func (w *World) PlaceWall(agent string, pos domain.Position, dir domain.Direction) (domain.Event, error) {
	return w.edgeEvent(agent, pos, dir, domain.EventWallPlaced)
}

// RemoveWall is the inverse of PlaceWall; also removes any door on the
// same edge, since a door cannot exist without its wall (domain.Cell.Valid).
func (w *World) RemoveWall(agent string, pos domain.Position, dir domain.Direction) (domain.Event, error) {
	return w.edgeEvent(agent, pos, dir, domain.EventWallRemoved)
}

// PlaceDoor requires a pre-existing wall on the edge: a door cannot be
// hung where there is nothing to hang it on.
func (w *World) PlaceDoor(agent string, pos domain.Position, dir domain.Direction) (domain.Event, error) {
	cell := w.GetCell(pos)
	if !cell.HasWall(dir) {
		return domain.Event{}, fmt.Errorf("no wall on %s edge of %s to hang a door on", dir, pos)
	}
	return w.edgeEvent(agent, pos, dir, domain.EventDoorPlaced)
}

// PlaceDoorForce hangs a door on an edge regardless of whether a wall
// already exists there, setting both in one event (apply_events' upsertEdge
// sets Walls and Doors together for EventDoorPlaced). Used only by
// build_shelter, which is constructing a fresh wall and door on the same
// edge simultaneously rather than hanging a door on a pre-existing wall.
func (w *World) PlaceDoorForce(agent string, pos domain.Position, dir domain.Direction) (domain.Event, error) {
	return w.edgeEvent(agent, pos, dir, domain.EventDoorPlaced)
}

func (w *World) edgeEvent(agent string, pos domain.Position, dir domain.Direction, t domain.EventType) (domain.Event, error) {
	neighbor := pos.Neighbor(dir)
	if !neighbor.InBounds(w.data.World.Width, w.data.World.Height) {
		return domain.Event{}, fmt.Errorf("%s edge of %s has no neighboring cell in-bounds", dir, pos)
	}
	w.setEdge(pos, dir, t)
	w.setEdge(neighbor, dir.Opposite(), t)
	data := map[string]any{
		"x": pos.X, "y": pos.Y, "direction": string(dir),
		"x2": neighbor.X, "y2": neighbor.Y, "direction2": string(dir.Opposite()),
		"agent": agent,
	}
	return domain.NewEvent(0, t, data), nil
}

// setEdge applies t to one side of an edge directly against w.data.Cells.
// This mirrors what storage.ApplyEvents later does to the database for the
// same event; without it, a wall placed earlier in a tick would stay
// invisible to DetectStructure and to any later-acting agent sharing this
// WorldData, since the engine only reloads WorldData from storage at
// startup, never mid-run.
func (w *World) setEdge(pos domain.Position, dir domain.Direction, t domain.EventType) {
	cell := w.data.GetCell(pos)
	if cell.Walls == nil {
		cell.Walls = map[domain.Direction]bool{}
	}
	if cell.Doors == nil {
		cell.Doors = map[domain.Direction]bool{}
	}
	switch t {
	case domain.EventWallPlaced:
		cell.Walls[dir] = true
	case domain.EventWallRemoved:
		delete(cell.Walls, dir)
		delete(cell.Doors, dir)
	case domain.EventDoorPlaced:
		cell.Walls[dir] = true
		cell.Doors[dir] = true
	}
	w.data.Cells[pos] = cell
}

// RenamePlace returns the event that writes (or overwrites) a named-place
// entry at pos.
func (w *World) RenamePlace(pos domain.Position, name string) domain.Event {
	return domain.NewEvent(0, domain.EventPlaceNamed, map[string]any{"x": pos.X, "y": pos.Y, "name": name})
}

// DetectStructure flood-fills from seed across unwalled edges, stopping at
// every wall; a doored wall bounds the enclosure like any other. It returns
// (nil, false) if the fill escapes the declared world bounds (no closing
// boundary) or if it never terminates within a generous cell budget — an
// enclosure must be fully bounded to count as a structure.
func (w *World) DetectStructure(seed domain.Position) (*domain.Structure, bool) {
	width, height := w.data.World.Width, w.data.World.Height
	const maxCells = 4096 // generous bound; a structure larger than this is not "minimal enclosed".

	visited := map[domain.Position]bool{seed: true}
	queue := []domain.Position{seed}
	escaped := false

	for len(queue) > 0 {
		if len(visited) > maxCells {
			return nil, false
		}
		cur := queue[0]
		queue = queue[1:]
		cell := w.GetCell(cur)
		for _, d := range domain.AllDirections {
			if cell.HasWall(d) {
				continue
			}
			next := cur.Neighbor(d)
			if !next.InBounds(width, height) {
				escaped = true
				continue
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	if escaped {
		return nil, false
	}

	interior := make(map[domain.Position]bool, len(visited))
	for p := range visited {
		interior[p] = true
	}
	return &domain.Structure{
		Interior: interior,
		Creators: map[string]bool{},
	}, true
}

// SyncStructure re-detects the enclosure containing seed after a wall
// change and reconciles w.data.Structures and the returned event with
// whatever it finds:
//
//   - If seed is still (or newly) enclosed, the structure keeps a stable
//     ID across repeated build actions on the same room (found by interior
//     membership, not reminted as a fresh UUID each time) and gains one
//     more creator only when recordCreator is true — false for actions
//     that don't add a bounding wall (remove_wall, place_door), matching
//     "agents who added any bounding wall are recorded as creators".
//   - If seed is no longer enclosed (a remove_wall broke the boundary) but
//     used to be, the prior structure is deleted and an
//     EventStructureRemoved is returned instead.
//   - If seed was never enclosed and still isn't, ok is false: nothing
//     changed.
func (w *World) SyncStructure(seed domain.Position, agent string, recordCreator bool) (domain.Event, bool) {
	existingID, existing := w.structureContaining(seed)

	structure, ok := w.DetectStructure(seed)
	if !ok {
		if !existing {
			return domain.Event{}, false
		}
		delete(w.data.Structures, existingID)
		return domain.NewEvent(0, domain.EventStructureRemoved, map[string]any{"id": existingID}), true
	}

	id := existingID
	if existing {
		structure.Creators = w.data.Structures[id].Creators
		structure.IsPrivate = w.data.Structures[id].IsPrivate
	} else {
		id = uuid.NewString()
		structure.Creators = map[string]bool{}
	}
	structure.ID = id
	if recordCreator {
		structure.Creators[agent] = true
	}
	w.data.Structures[id] = structure

	creators := make([]string, 0, len(structure.Creators))
	for c := range structure.Creators {
		creators = append(creators, c)
	}
	interior := make([]map[string]int, 0, len(structure.Interior))
	for p := range structure.Interior {
		interior = append(interior, map[string]int{"x": p.X, "y": p.Y})
	}
	return domain.NewEvent(0, domain.EventStructureDetected, map[string]any{
		"id": id, "creators": creators, "interior": interior, "is_private": structure.IsPrivate,
	}), true
}

// structureContaining finds the structure (if any) already covering seed,
// so a repeat build_shelter against an existing room extends it rather
// than minting a new ID and losing prior creators.
func (w *World) structureContaining(seed domain.Position) (string, bool) {
	for id, s := range w.data.Structures {
		if s.Interior[seed] {
			return id, true
		}
	}
	return "", false
}
