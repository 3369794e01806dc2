package domain

import "fmt"

// ActionName enumerates the closed, 27-entry action vocabulary. Keeping
// this as a single list (rather than scattering string literals) lets the
// action engine's registry and the generated tool schema share one
// source of truth.
type ActionName string

const (
	ActionWalk              ActionName = "walk"
	ActionApproach           ActionName = "approach"
	ActionJourney            ActionName = "journey"
	ActionExamine            ActionName = "examine"
	ActionSenseOthers        ActionName = "sense_others"
	ActionTake               ActionName = "take"
	ActionDrop               ActionName = "drop"
	ActionGive               ActionName = "give"
	ActionGather             ActionName = "gather"
	ActionCombine            ActionName = "combine"
	ActionWork               ActionName = "work"
	ActionApply              ActionName = "apply"
	ActionBuildShelter       ActionName = "build_shelter"
	ActionPlaceWall          ActionName = "place_wall"
	ActionPlaceDoor          ActionName = "place_door"
	ActionPlaceItem          ActionName = "place_item"
	ActionRemoveWall         ActionName = "remove_wall"
	ActionWriteSign          ActionName = "write_sign"
	ActionReadSign           ActionName = "read_sign"
	ActionNamePlace          ActionName = "name_place"
	ActionSpeak              ActionName = "speak"
	ActionInvite             ActionName = "invite"
	ActionAcceptInvite       ActionName = "accept_invite"
	ActionDeclineInvite      ActionName = "decline_invite"
	ActionJoinConversation   ActionName = "join_conversation"
	ActionLeaveConversation  ActionName = "leave_conversation"
	ActionSleep              ActionName = "sleep"
)

// AllActions lists every action name in the closed vocabulary, grouped by
// action family. Exactly 27 entries.
var AllActions = []ActionName{
	ActionWalk, ActionApproach, ActionJourney,
	ActionExamine, ActionSenseOthers,
	ActionTake, ActionDrop, ActionGive, ActionGather,
	ActionCombine, ActionWork, ActionApply,
	ActionBuildShelter, ActionPlaceWall, ActionPlaceDoor, ActionPlaceItem, ActionRemoveWall,
	ActionWriteSign, ActionReadSign, ActionNamePlace,
	ActionSpeak, ActionInvite, ActionAcceptInvite, ActionDeclineInvite,
	ActionJoinConversation, ActionLeaveConversation,
	ActionSleep,
}

// ActionCall is one reasoner-emitted tool call: a name plus its arguments.
type ActionCall struct {
	Name ActionName
	Args map[string]any
}

// ActionResult is the outcome of executing one ActionCall. Failed actions
// (Success == false) emit no events and consume no resources: the
// failed-action purity law every handler must uphold.
type ActionResult struct {
	Success bool
	Message string
	Events  []Event
	Data    map[string]any
}

// Failf builds a failed ActionResult with a formatted message and no
// events, preserving the failed-action purity law.
func Failf(format string, args ...any) ActionResult {
	return ActionResult{Success: false, Message: fmt.Sprintf(format, args...)}
}

// Ok builds a successful ActionResult.
func Ok(message string, events []Event, data map[string]any) ActionResult {
	if data == nil {
		data = map[string]any{}
	}
	return ActionResult{Success: true, Message: message, Events: events, Data: data}
}
