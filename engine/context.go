package engine

import (
	"github.com/townloop/engine/conversation"
	"github.com/townloop/engine/worldsvc"
)

// visibilityOf adapts tc's agent roster and effective vision radius into
// the conversation.Visibility predicate, the same shape action.NewContext
// builds per-turn via its own visibilityFor helper.
func visibilityOf(tc *tickContext) conversation.Visibility {
	radius := tc.visionRadius()
	return func(seer, target string) bool {
		s, ok1 := tc.data.Agents[seer]
		t, ok2 := tc.data.Agents[target]
		if !ok1 || !ok2 {
			return false
		}
		return s.Position.ChebyshevDistance(t.Position) <= radius
	}
}

// worldOf wraps tc's working snapshot in a worldsvc.World for passability
// queries needed outside of a single agent's action.Context (e.g.
// phaseMovement's re-check of a journey's next step).
func worldOf(tc *tickContext) *worldsvc.World {
	return worldsvc.New(tc.data)
}
