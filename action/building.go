package action

import (
	"github.com/google/uuid"

	"github.com/townloop/engine/domain"
)

// handlePlaceWall walls the edge in the given direction of the agent's
// current cell, symmetrically: the neighboring cell's mirrored edge is
// walled in the same logical change.
func handlePlaceWall(c *Context, args map[string]any) domain.ActionResult {
	dir, ok := argDirection(args, "direction")
	if !ok {
		return domain.Failf("place_wall requires a direction")
	}
	ev, err := c.World.PlaceWall(c.Self.Name, c.Self.Position, dir)
	if err != nil {
		return domain.Failf("%s", err)
	}
	events := []domain.Event{ev}
	if syncEv, ok := c.World.SyncStructure(c.Self.Position, c.Self.Name, true); ok {
		events = append(events, syncEv)
	}
	return domain.Ok("placed wall "+string(dir), events, nil)
}

// handleRemoveWall removes the wall (and any door) on the given edge.
func handleRemoveWall(c *Context, args map[string]any) domain.ActionResult {
	dir, ok := argDirection(args, "direction")
	if !ok {
		return domain.Failf("remove_wall requires a direction")
	}
	ev, err := c.World.RemoveWall(c.Self.Name, c.Self.Position, dir)
	if err != nil {
		return domain.Failf("%s", err)
	}
	events := []domain.Event{ev}
	// Removing a wall never adds one, so the agent is never recorded as a
	// creator here — but the removal can break an existing enclosure.
	if syncEv, ok := c.World.SyncStructure(c.Self.Position, c.Self.Name, false); ok {
		events = append(events, syncEv)
	}
	return domain.Ok("removed wall "+string(dir), events, nil)
}

// handlePlaceDoor hangs a door on an edge that must already be walled.
func handlePlaceDoor(c *Context, args map[string]any) domain.ActionResult {
	dir, ok := argDirection(args, "direction")
	if !ok {
		return domain.Failf("place_door requires a direction")
	}
	ev, err := c.World.PlaceDoor(c.Self.Name, c.Self.Position, dir)
	if err != nil {
		return domain.Failf("%s", err)
	}
	events := []domain.Event{ev}
	// A door doesn't add a bounding wall, so it never makes the agent a
	// creator. DetectStructure counts a doored wall as part of the
	// boundary, so the re-sync reports the enclosure unchanged.
	if syncEv, ok := c.World.SyncStructure(c.Self.Position, c.Self.Name, false); ok {
		events = append(events, syncEv)
	}
	return domain.Ok("placed door "+string(dir), events, nil)
}

// handlePlaceItem drops a named item object at the agent's own cell.
func handlePlaceItem(c *Context, args map[string]any) domain.ActionResult {
	kind, ok := argString(args, "item")
	if !ok {
		return domain.Failf("place_item requires an item kind")
	}
	id := uuid.NewString()
	ev := domain.NewEvent(c.Tick, domain.EventItemPlaced, map[string]any{
		"id": id, "x": c.Self.Position.X, "y": c.Self.Position.Y, "kind": kind, "author": c.Self.Name,
	})
	return domain.Ok("placed "+kind, []domain.Event{ev}, map[string]any{"id": id})
}

// handleBuildShelter builds a 3x3 enclosure centered on the agent with a
// single door on the agent's facing direction. Overlap with existing
// structure is additive: existing walls are simply re-set (a no-op)
// rather than rejected, so calling build_shelter next to an existing
// structure only ever adds walls, never fails outright. Only events for
// edges that actually change are emitted.
func handleBuildShelter(c *Context, args map[string]any) domain.ActionResult {
	center := c.Self.Position
	var events []domain.Event

	type edge struct {
		pos domain.Position
		dir domain.Direction
	}
	var perimeter []edge
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			p := domain.Position{X: center.X + dx, Y: center.Y + dy}
			if dy == -1 {
				perimeter = append(perimeter, edge{p, domain.North})
			}
			if dy == 1 {
				perimeter = append(perimeter, edge{p, domain.South})
			}
			if dx == -1 {
				perimeter = append(perimeter, edge{p, domain.West})
			}
			if dx == 1 {
				perimeter = append(perimeter, edge{p, domain.East})
			}
		}
	}

	var doorEdge edge
	switch c.Self.Facing {
	case domain.North:
		doorEdge = edge{domain.Position{X: center.X, Y: center.Y - 1}, domain.North}
	case domain.South:
		doorEdge = edge{domain.Position{X: center.X, Y: center.Y + 1}, domain.South}
	case domain.East:
		doorEdge = edge{domain.Position{X: center.X + 1, Y: center.Y}, domain.East}
	case domain.West:
		doorEdge = edge{domain.Position{X: center.X - 1, Y: center.Y}, domain.West}
	}

	for _, e := range perimeter {
		cell := c.World.GetCell(e.pos)
		if cell.HasWall(e.dir) {
			continue // already walled: additive overlap is a no-op.
		}
		if e.pos == doorEdge.pos && e.dir == doorEdge.dir {
			ev, err := c.World.PlaceDoorForce(c.Self.Name, e.pos, e.dir)
			if err != nil {
				return domain.Failf("%s", err)
			}
			events = append(events, ev)
			continue
		}
		ev, err := c.World.PlaceWall(c.Self.Name, e.pos, e.dir)
		if err != nil {
			return domain.Failf("%s", err)
		}
		events = append(events, ev)
	}
	// The agent is recorded as a creator only if it added at least one
	// bounding wall (or the door edge) here; already-walled edges were
	// skipped above.
	if syncEv, ok := c.World.SyncStructure(center, c.Self.Name, len(events) > 0); ok {
		events = append(events, syncEv)
	}
	return domain.Ok("built shelter", events, map[string]any{"center": center})
}
