package domain

// Agent is the mutable record for one autonomous inhabitant of the world.
// Agents are never destroyed; sleeping/waking, journeys and known_agents
// accrual are the only forms of "state loss and gain" the model allows.
type Agent struct {
	Name         string
	ModelID      string
	Personality  string
	Position     Position
	Facing       Direction
	Inventory    Inventory
	Journey      *Journey
	Sleeping     bool
	SessionID    string
	LastTurnTick int
	KnownAgents  map[string]bool
}

// NewAgent constructs an agent at the given position with an empty
// inventory and no known agents yet.
func NewAgent(name, modelID, personality string, pos Position) *Agent {
	return &Agent{
		Name:        name,
		ModelID:     modelID,
		Personality: personality,
		Position:    pos,
		Facing:      South,
		Inventory:   NewInventory(),
		KnownAgents: map[string]bool{},
	}
}

// InTrance reports whether the agent currently has an active journey.
func (a *Agent) InTrance() bool {
	return a.Journey != nil
}

// Knows reports whether other has ever been co-visible with a.
func (a *Agent) Knows(other string) bool {
	return a.KnownAgents[other]
}

// Learn records that other is now known to a. known_agents only grows.
func (a *Agent) Learn(other string) {
	if a.KnownAgents == nil {
		a.KnownAgents = map[string]bool{}
	}
	a.KnownAgents[other] = true
}

// Clone returns a deep copy of the agent, since Agent embeds maps/pointers.
func (a *Agent) Clone() *Agent {
	if a == nil {
		return nil
	}
	out := *a
	out.Inventory = a.Inventory.Clone()
	out.KnownAgents = make(map[string]bool, len(a.KnownAgents))
	for k, v := range a.KnownAgents {
		out.KnownAgents[k] = v
	}
	if a.Journey != nil {
		j := *a.Journey
		j.Path = append([]Position(nil), a.Journey.Path...)
		out.Journey = &j
	}
	return &out
}
