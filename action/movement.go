package action

import (
	"github.com/townloop/engine/agentsvc"
	"github.com/townloop/engine/domain"
)

// handleWalk moves the agent one step in the given direction, requiring
// CanStep.
func handleWalk(c *Context, args map[string]any) domain.ActionResult {
	dir, ok := argDirection(args, "direction")
	if !ok {
		return domain.Failf("walk requires a valid direction")
	}
	if !c.World.CanStep(c.Self.Position, dir) {
		return domain.Failf("cannot step %s from %s", dir, c.Self.Position)
	}
	to := c.Self.Position.Neighbor(dir)
	ev := domain.NewEvent(c.Tick, domain.EventAgentMoved, map[string]any{
		"agent": c.Self.Name, "from_x": c.Self.Position.X, "from_y": c.Self.Position.Y,
		"to_x": to.X, "to_y": to.Y,
	})
	c.Self.Position = to
	c.Self.Facing = dir
	return domain.Ok("walked "+string(dir), []domain.Event{ev}, map[string]any{"position": to})
}

// handleApproach moves one step toward a visible agent, stopping adjacent
// to the target rather than overlapping it. The target must currently be
// in vision. Only agents can be targeted; objects cannot.
func handleApproach(c *Context, args map[string]any) domain.ActionResult {
	target, ok := argString(args, "target")
	if !ok {
		return domain.Failf("approach requires a target name")
	}
	other, known := c.Agents[target]
	if !known || !c.Visible(target) {
		return domain.Failf("%s is not currently visible", target)
	}
	if c.Self.Position.ChebyshevDistance(other.Position) <= 1 {
		return domain.Ok("already adjacent to "+target, nil, map[string]any{"position": c.Self.Position})
	}
	for _, dir := range domain.AllDirections {
		if !c.World.CanStep(c.Self.Position, dir) {
			continue
		}
		candidate := c.Self.Position.Neighbor(dir)
		if candidate.ChebyshevDistance(other.Position) < c.Self.Position.ChebyshevDistance(other.Position) {
			ev := domain.NewEvent(c.Tick, domain.EventAgentMoved, map[string]any{
				"agent": c.Self.Name, "from_x": c.Self.Position.X, "from_y": c.Self.Position.Y,
				"to_x": candidate.X, "to_y": candidate.Y,
			})
			c.Self.Position = candidate
			c.Self.Facing = dir
			return domain.Ok("approached "+target, []domain.Event{ev}, map[string]any{"position": candidate})
		}
	}
	return domain.Failf("no step toward %s is currently possible", target)
}

// handleJourney plans a multi-step route via A* and sets the agent into
// trance; the movement phase advances it one cell per tick thereafter.
func handleJourney(c *Context, args map[string]any) domain.ActionResult {
	dest, ok := argPosition(args, "x", "y")
	if !ok {
		return domain.Failf("journey requires destination x, y")
	}
	journey, found := agentsvc.PlanJourney(c.World, c.Self.Position, dest)
	if !found {
		return domain.Failf("no path to %s", dest)
	}
	c.Self.Journey = journey
	return domain.Ok("journey planned to "+dest.String(), nil, map[string]any{"steps": len(journey.Path) - 1})
}
