package action

import (
	"fmt"

	"github.com/townloop/engine/domain"
)

// handleTake picks up the placed_item object in the given direction (or
// "down" for the agent's own cell), moving it into the agent's inventory
// as a unique item.
func handleTake(c *Context, args map[string]any) domain.ActionResult {
	pos, err := resolveDirectedPosition(c, args)
	if err != nil {
		return domain.Failf("%s", err)
	}
	for _, obj := range c.World.ObjectsAt(pos) {
		if obj.Kind != domain.ObjectPlacedItem {
			continue
		}
		ev := domain.NewEvent(c.Tick, domain.EventItemTaken, map[string]any{
			"agent": c.Self.Name, "object_id": obj.ID, "kind": obj.ItemKind, "properties": obj.ItemProperties,
		})
		item := domain.Item{UniqueID: obj.ID, Kind: obj.ItemKind, Properties: obj.ItemProperties}
		c.Self.Inventory.AddItem(item)
		return domain.Ok("took "+obj.ItemKind, []domain.Event{ev}, map[string]any{"item": item})
	}
	return domain.Failf("nothing to take at %s", pos)
}

// handleDrop removes a unique item by kind from the agent's inventory and
// places it in the agent's current cell.
func handleDrop(c *Context, args map[string]any) domain.ActionResult {
	kind, ok := argString(args, "kind")
	if !ok {
		return domain.Failf("drop requires a kind")
	}
	for _, it := range c.Self.Inventory.Items {
		if it.Kind != kind {
			continue
		}
		item, removed := c.Self.Inventory.RemoveItem(it.UniqueID)
		if !removed {
			continue
		}
		ev := domain.NewEvent(c.Tick, domain.EventItemDropped, map[string]any{
			"agent": c.Self.Name, "unique_id": item.UniqueID, "kind": item.Kind, "properties": item.Properties,
			"x": c.Self.Position.X, "y": c.Self.Position.Y,
		})
		return domain.Ok("dropped "+kind, []domain.Event{ev}, nil)
	}
	return domain.Failf("no %s to drop", kind)
}

// handleGive transfers one stackable resource unit from the agent to a
// recipient who must be within one step, in the same or an adjacent
// passable cell.
func handleGive(c *Context, args map[string]any) domain.ActionResult {
	kind, ok := argString(args, "kind")
	if !ok {
		return domain.Failf("give requires a kind")
	}
	recipientName, ok := argString(args, "recipient")
	if !ok {
		return domain.Failf("give requires a recipient")
	}
	recipient, known := c.Agents[recipientName]
	if !known {
		return domain.Failf("unknown recipient %s", recipientName)
	}
	if c.Self.Position.ChebyshevDistance(recipient.Position) > 1 {
		return domain.Failf("%s is not within one step", recipientName)
	}
	if !c.Self.Inventory.Has(domain.ResourceKind(kind), 1) {
		return domain.Failf("no %s to give", kind)
	}
	ev := domain.NewEvent(c.Tick, domain.EventItemGiven, map[string]any{
		"giver": c.Self.Name, "recipient": recipientName, "kind": kind, "quantity": 1,
	})
	c.Self.Inventory.Add(domain.ResourceKind(kind), -1)
	recipient.Inventory.Add(domain.ResourceKind(kind), 1)
	return domain.Ok("gave 1 "+kind+" to "+recipientName, []domain.Event{ev}, nil)
}

// handleGather yields one unit of the current terrain's gatherable
// resource, if any.
func handleGather(c *Context, args map[string]any) domain.ActionResult {
	cell := c.World.GetCell(c.Self.Position)
	kind, ok := cell.Terrain.GatherableResource()
	if !ok {
		return domain.Failf("%s has nothing to gather", cell.Terrain)
	}
	ev := domain.NewEvent(c.Tick, domain.EventAgentGathered, map[string]any{"agent": c.Self.Name, "kind": string(kind)})
	c.Self.Inventory.Add(kind, 1)
	return domain.Ok("gathered 1 "+string(kind), []domain.Event{ev}, map[string]any{"kind": string(kind)})
}

// resolveDirectedPosition resolves the direction-or-"down" convention
// shared by examine/take/read_sign: "down" means the agent's own cell,
// otherwise it must be a valid compass direction.
func resolveDirectedPosition(c *Context, args map[string]any) (domain.Position, error) {
	raw, ok := argString(args, "direction")
	if !ok {
		return domain.Position{}, fmt.Errorf("requires a direction")
	}
	if raw == "down" {
		return c.Self.Position, nil
	}
	dir, ok := argDirection(args, "direction")
	if !ok {
		return domain.Position{}, fmt.Errorf("invalid direction %q", raw)
	}
	return c.Self.Position.Neighbor(dir), nil
}
