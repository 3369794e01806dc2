// Package narrator turns an action.Result into the prose string returned
// to the reasoner as a tool's result. A local template-backed narrator
// handles the simple-action fast path; an external-LLM-backed narrator
// handles crafting, perception, and failure results.
//
// Package-level *template.Template values parsed once at init, rendered
// against a small proxy struct.
package narrator

import (
	"context"

	"github.com/townloop/engine/domain"
)

// Narrator is a pure function, from the engine's point of view, from one
// action's outcome to a prose description.
type Narrator interface {
	Narrate(ctx context.Context, agentName string, call domain.ActionCall, result domain.ActionResult) (string, error)
}

// simpleActions is the set of action families a local template can
// narrate without consulting the external narrator: every action except
// the crafting family (combine/work/apply) and the perception family
// (examine/sense_others), which read as flatter without a turn of phrase
// the raw ActionResult.Message can't give them.
var simpleActions = map[domain.ActionName]bool{
	domain.ActionWalk:               true,
	domain.ActionApproach:           true,
	domain.ActionJourney:            true,
	domain.ActionTake:               true,
	domain.ActionDrop:               true,
	domain.ActionGive:               true,
	domain.ActionGather:             true,
	domain.ActionBuildShelter:       true,
	domain.ActionPlaceWall:          true,
	domain.ActionPlaceDoor:          true,
	domain.ActionPlaceItem:          true,
	domain.ActionRemoveWall:         true,
	domain.ActionWriteSign:          true,
	domain.ActionReadSign:           true,
	domain.ActionNamePlace:          true,
	domain.ActionSpeak:              true,
	domain.ActionInvite:             true,
	domain.ActionAcceptInvite:       true,
	domain.ActionDeclineInvite:      true,
	domain.ActionJoinConversation:   true,
	domain.ActionLeaveConversation:  true,
	domain.ActionSleep:              true,
}

// IsSimple reports whether name belongs to the local-template fast path
// when its result succeeded. Failures are always routed externally.
func IsSimple(name domain.ActionName, success bool) bool {
	return success && simpleActions[name]
}
