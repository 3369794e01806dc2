package action

import (
	"github.com/google/uuid"

	"github.com/townloop/engine/domain"
)

// handleWriteSign places a sign object at the agent's own cell bearing the
// given text.
func handleWriteSign(c *Context, args map[string]any) domain.ActionResult {
	text, ok := argString(args, "text")
	if !ok {
		return domain.Failf("write_sign requires text")
	}
	id := uuid.NewString()
	ev := domain.NewEvent(c.Tick, domain.EventSignWritten, map[string]any{
		"id": id, "x": c.Self.Position.X, "y": c.Self.Position.Y, "text": text, "author": c.Self.Name,
	})
	return domain.Ok("wrote a sign", []domain.Event{ev}, map[string]any{"id": id})
}

// handleReadSign returns the full text of a sign in the given direction
// (or the agent's own cell for "down"), never truncated.
func handleReadSign(c *Context, args map[string]any) domain.ActionResult {
	pos, err := resolveDirectedPosition(c, args)
	if err != nil {
		return domain.Failf("%s", err)
	}
	for _, obj := range c.World.ObjectsAt(pos) {
		if obj.Kind == domain.ObjectSign {
			return domain.Ok("read the sign", nil, map[string]any{"text": obj.SignText, "author": obj.SignAuthor})
		}
	}
	return domain.Failf("no sign at %s", pos)
}

// handleNamePlace writes a named-place entry at the agent's own cell.
func handleNamePlace(c *Context, args map[string]any) domain.ActionResult {
	name, ok := argString(args, "name")
	if !ok {
		return domain.Failf("name_place requires a name")
	}
	ev := c.World.RenamePlace(c.Self.Position, name)
	return domain.Ok("named this place "+name, []domain.Event{ev}, nil)
}
