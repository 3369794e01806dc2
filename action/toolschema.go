package action

import "github.com/townloop/engine/schema"

// ToolSpec is one entry of the fixed tool schema handed to the reasoner
// per turn: the closed 27-entry action vocabulary declared by the action
// engine.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  *schema.Schema `json:"parameters"`
}

// ToolSchema builds the full 27-entry tool list, one per domain.AllActions
// entry, using a reflection-based schema generator.
//
// Each action's argument shape is described by a small Go struct with json
// tags, and schema.Generate (schema/generate_schema.go) reflects it into a
// schema.Schema without hand-maintaining a parallel JSON description.
func ToolSchema() []ToolSpec {
	return []ToolSpec{
		toolFor("walk", "Step one cell in a compass direction.", walkArgs{}),
		toolFor("approach", "Move one step toward a visible agent.", approachArgs{}),
		toolFor("journey", "Plan and begin a multi-tick walk to a destination.", journeyArgs{}),
		toolFor("examine", "Inspect a cell in a direction, or your own cell with \"down\".", directionArgs{}),
		toolFor("sense_others", "List known agents currently within vision, by coarse bearing.", emptyArgs{}),
		toolFor("take", "Pick up a placed item in a direction, or your own cell.", directionArgs{}),
		toolFor("drop", "Drop a unique item of the given kind at your feet.", kindArgs{}),
		toolFor("give", "Hand one unit of a resource to a nearby agent.", giveArgs{}),
		toolFor("gather", "Gather one unit of the current terrain's resource.", emptyArgs{}),
		toolFor("combine", "Combine a bag of resources into a crafted output.", craftArgs{}),
		toolFor("work", "Work a single material with an optional technique.", craftArgs{}),
		toolFor("apply", "Apply a tool (technique) to a material.", craftArgs{}),
		toolFor("build_shelter", "Build a 3x3 enclosure centered on yourself with a door facing forward.", emptyArgs{}),
		toolFor("place_wall", "Place a wall on one edge of your cell.", directionArgs{}),
		toolFor("place_door", "Hang a door on an existing wall.", directionArgs{}),
		toolFor("place_item", "Place a named item at your feet.", itemArgs{}),
		toolFor("remove_wall", "Remove the wall (and any door) on one edge of your cell.", directionArgs{}),
		toolFor("write_sign", "Write a sign at your feet with the given text.", textArgs{}),
		toolFor("read_sign", "Read the full text of a sign in a direction.", directionArgs{}),
		toolFor("name_place", "Name your current position.", nameArgs{}),
		toolFor("speak", "Speak a turn into your active conversation.", textArgs{}),
		toolFor("invite", "Invite a visible agent to a conversation.", inviteArgs{}),
		toolFor("accept_invite", "Accept your pending invitation.", emptyArgs{}),
		toolFor("decline_invite", "Decline your pending invitation.", emptyArgs{}),
		toolFor("join_conversation", "Join a public conversation via a known participant.", joinArgs{}),
		toolFor("leave_conversation", "Leave your active conversation.", emptyArgs{}),
		toolFor("sleep", "Fall asleep until woken.", emptyArgs{}),
	}
}

func toolFor(name, description string, argShape any) ToolSpec {
	s, err := schema.Generate(argShape)
	if err != nil {
		// Argument shapes are fixed Go structs declared in this file; a
		// reflection failure here can only mean a programming error.
		panic("action: failed to generate tool schema for " + name + ": " + err.Error())
	}
	return ToolSpec{Name: name, Description: description, Parameters: s}
}

type emptyArgs struct{}

type directionArgs struct {
	Direction string `json:"direction" enum:"north,south,east,west,down" description:"Compass direction, or \"down\" for your own cell."`
}

type walkArgs struct {
	Direction string `json:"direction" enum:"north,south,east,west" description:"Compass direction to step."`
}

type approachArgs struct {
	Target string `json:"target" description:"Name of a currently visible agent to approach."`
}

type journeyArgs struct {
	X int `json:"x" description:"Destination column."`
	Y int `json:"y" description:"Destination row."`
}

type kindArgs struct {
	Kind string `json:"kind" description:"Resource or item kind."`
}

type giveArgs struct {
	Kind      string `json:"kind" description:"Resource kind to give."`
	Recipient string `json:"recipient" description:"Name of the recipient agent."`
}

type craftArgs struct {
	Inputs    []string `json:"inputs,omitempty" description:"Bag of input resource kinds."`
	Material  string   `json:"material,omitempty" description:"Single material kind, shorthand for inputs."`
	Technique string   `json:"technique,omitempty" description:"Optional technique or tool kind."`
}

type itemArgs struct {
	Item string `json:"item" description:"Item kind to place."`
}

type textArgs struct {
	Text string `json:"text" description:"Text content."`
}

type nameArgs struct {
	Name string `json:"name" description:"Name to give this place."`
}

type inviteArgs struct {
	Invitee string `json:"invitee" description:"Name of the agent to invite."`
	Privacy string `json:"privacy,omitempty" enum:"public,private" description:"Conversation privacy; defaults to public."`
}

type joinArgs struct {
	KnownParticipant string `json:"known_participant" description:"Name of a known agent already in the target conversation."`
}
