package action

import "github.com/townloop/engine/domain"

// handleSleep sets sleeping=true; the wake phase clears it when the
// agent's wake condition is met.
func handleSleep(c *Context, args map[string]any) domain.ActionResult {
	if c.Self.Sleeping {
		return domain.Failf("already asleep")
	}
	ev := domain.NewEvent(c.Tick, domain.EventAgentSlept, map[string]any{"agent": c.Self.Name})
	c.Self.Sleeping = true
	return domain.Ok("fell asleep", []domain.Event{ev}, nil)
}
