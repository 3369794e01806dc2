// Package action implements the 27-action closed-vocabulary action engine:
// preconditions, deterministic effects, event emission, and the
// data-driven crafting recipe table.
//
// Each action is a small handler function over a shared Context, collected
// into one registry the engine dispatches through by name.
package action

import (
	"github.com/townloop/engine/agentsvc"
	"github.com/townloop/engine/conversation"
	"github.com/townloop/engine/domain"
	"github.com/townloop/engine/worldsvc"
)

// Context is everything one action execution needs: the acting agent, the
// world and conversation services bound to the tick's snapshot, the full
// agent roster (for give/approach/sense_others), and the effective vision
// radius already adjusted for time-of-day.
type Context struct {
	Tick         int
	Self         *domain.Agent
	Agents       map[string]*domain.Agent
	World        *worldsvc.World
	Conversation *conversation.Service
	Recipes      *RecipeTable
	VisionRadius int
}

// Visible reports whether c.Self can currently see other, using the
// context's effective vision radius.
func (c *Context) Visible(other string) bool {
	o, ok := c.Agents[other]
	if !ok {
		return false
	}
	return c.Self.Position.ChebyshevDistance(o.Position) <= c.VisionRadius
}

// visibilityFor adapts Context.Visible into the conversation.Visibility
// shape, letting the conversation service ask "can seer see target" for
// any agent, not just the currently-acting one.
func visibilityFor(agents map[string]*domain.Agent, visionRadius int) conversation.Visibility {
	return func(seer, target string) bool {
		s, ok1 := agents[seer]
		t, ok2 := agents[target]
		if !ok1 || !ok2 {
			return false
		}
		return s.Position.ChebyshevDistance(t.Position) <= visionRadius
	}
}

// NewContext builds an action Context for a single agent's turn.
func NewContext(tick int, self *domain.Agent, agents map[string]*domain.Agent, world *worldsvc.World, recipes *RecipeTable, visionRadius int) *Context {
	conv := conversation.New(world.Data(), visibilityFor(agents, visionRadius))
	return &Context{
		Tick: tick, Self: self, Agents: agents, World: world,
		Conversation: conv, Recipes: recipes, VisionRadius: visionRadius,
	}
}

// agentsvcSenseOthers exposes agentsvc.SenseOthers to the sense_others handler.
func agentsvcSenseOthers(c *Context) []agentsvc.PresenceSighting {
	return agentsvc.SenseOthers(c.Self, c.Agents, c.VisionRadius)
}
