package action

import "github.com/townloop/engine/domain"

// Handler executes one ActionCall's preconditions and effects, returning
// the resulting ActionResult. Handlers never write to storage. Besides the
// events embedded in the result, a successful handler may update the
// acting agent and the world snapshot bound to c, so later actions in the
// same tick see the change.
type Handler func(c *Context, args map[string]any) domain.ActionResult

// Registry dispatches an ActionCall to its Handler by name.
type Registry struct {
	handlers map[domain.ActionName]Handler
}

// NewRegistry builds the registry with every one of the 27 actions wired
// in. A missing handler for any entry in domain.AllActions is a
// programming error, not a runtime condition.
func NewRegistry() *Registry {
	r := &Registry{handlers: map[domain.ActionName]Handler{
		domain.ActionWalk:             handleWalk,
		domain.ActionApproach:         handleApproach,
		domain.ActionJourney:          handleJourney,
		domain.ActionExamine:          handleExamine,
		domain.ActionSenseOthers:      handleSenseOthers,
		domain.ActionTake:             handleTake,
		domain.ActionDrop:             handleDrop,
		domain.ActionGive:             handleGive,
		domain.ActionGather:           handleGather,
		domain.ActionCombine:          handleCombine,
		domain.ActionWork:             handleWork,
		domain.ActionApply:            handleApply,
		domain.ActionBuildShelter:     handleBuildShelter,
		domain.ActionPlaceWall:        handlePlaceWall,
		domain.ActionPlaceDoor:        handlePlaceDoor,
		domain.ActionPlaceItem:        handlePlaceItem,
		domain.ActionRemoveWall:       handleRemoveWall,
		domain.ActionWriteSign:        handleWriteSign,
		domain.ActionReadSign:         handleReadSign,
		domain.ActionNamePlace:        handleNamePlace,
		domain.ActionSpeak:            handleSpeak,
		domain.ActionInvite:           handleInvite,
		domain.ActionAcceptInvite:     handleAcceptInvite,
		domain.ActionDeclineInvite:    handleDeclineInvite,
		domain.ActionJoinConversation: handleJoinConversation,
		domain.ActionLeaveConversation: handleLeaveConversation,
		domain.ActionSleep:            handleSleep,
	}}
	return r
}

// Dispatch executes call against c, or fails if the action name is
// somehow outside the closed vocabulary (the tool schema should make this
// unreachable in practice).
func (r *Registry) Dispatch(c *Context, call domain.ActionCall) domain.ActionResult {
	h, ok := r.handlers[call.Name]
	if !ok {
		return domain.Failf("unknown action %q", call.Name)
	}
	return h(c, call.Args)
}
