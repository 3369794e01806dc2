package action

import "github.com/townloop/engine/domain"

// handleExamine returns structured data about the cell one step in the
// given direction (or the agent's own cell for "down"): terrain, walls,
// doors, and any objects there. No state change.
func handleExamine(c *Context, args map[string]any) domain.ActionResult {
	pos, err := resolveDirectedPosition(c, args)
	if err != nil {
		return domain.Failf("%s", err)
	}
	cell := c.World.GetCell(pos)
	objects := c.World.ObjectsAt(pos)
	data := map[string]any{
		"position": pos,
		"terrain":  string(cell.Terrain),
		"walls":    cell.Walls,
		"doors":    cell.Doors,
		"objects":  objects,
	}
	return domain.Ok("examined "+pos.String(), nil, data)
}

// handleSenseOthers reports coarse bearings to known agents. No state
// change.
func handleSenseOthers(c *Context, args map[string]any) domain.ActionResult {
	sightings := agentsvcSenseOthers(c)
	return domain.Ok("sensed nearby agents", nil, map[string]any{"sightings": sightings})
}
