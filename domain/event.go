package domain

// EventType tags the Event union. Every observable state change in the
// simulation is recorded as exactly one Event.
type EventType string

const (
	EventAgentMoved           EventType = "AgentMoved"
	EventAgentGathered        EventType = "AgentGathered"
	EventAgentSlept           EventType = "AgentSlept"
	EventAgentWoke            EventType = "AgentWoke"
	EventSignWritten          EventType = "SignWritten"
	EventWallPlaced           EventType = "WallPlaced"
	EventWallRemoved          EventType = "WallRemoved"
	EventDoorPlaced           EventType = "DoorPlaced"
	EventPlaceNamed           EventType = "PlaceNamed"
	EventItemPlaced           EventType = "ItemPlaced"
	EventCraftSucceeded       EventType = "CraftSucceeded"
	EventInvitationSent       EventType = "InvitationSent"
	EventInvitationAccepted   EventType = "InvitationAccepted"
	EventInvitationDeclined   EventType = "InvitationDeclined"
	EventInvitationExpired    EventType = "InvitationExpired"
	EventConversationStarted  EventType = "ConversationStarted"
	EventTurnAdded            EventType = "TurnAdded"
	EventParticipantJoined    EventType = "ParticipantJoined"
	EventParticipantLeft      EventType = "ParticipantLeft"
	EventConversationEnded    EventType = "ConversationEnded"
	EventWeatherChanged       EventType = "WeatherChanged"
	EventObserverTriggered    EventType = "ObserverTriggered"
	EventJourneyInterrupted   EventType = "JourneyInterrupted"
	EventJourneyArrived       EventType = "JourneyArrived"
	EventItemGiven            EventType = "ItemGiven"
	EventItemTaken            EventType = "ItemTaken"
	EventItemDropped          EventType = "ItemDropped"
	EventStructureDetected    EventType = "StructureDetected"
	EventStructureRemoved     EventType = "StructureRemoved"
)

// Event is the tagged-union record appended to the event log and used to
// derive storage mutations during commit. Data is a type-specific bag of
// fields kept as a plain map so the storage layer can serialize it without
// a large switch, and so new event types can be added without touching the
// storage schema. Total-match dispatch on Type still happens wherever an
// event's meaning matters (apply_events, the narrator, tests).
type Event struct {
	Tick int       `json:"tick"`
	Seq  int64     `json:"seq"`
	Type EventType `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// NewEvent constructs an event for the current tick. Seq is assigned later,
// at commit time, by the storage layer.
func NewEvent(tick int, t EventType, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{Tick: tick, Type: t, Data: data}
}
