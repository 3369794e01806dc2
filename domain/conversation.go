package domain

// Turn is one utterance in a conversation's globally-ordered turn history.
type Turn struct {
	Speaker string
	Text    string
	Tick    int
}

// Conversation is the consent-based social state shared by its
// participants. It is created by an accepted invitation or by joining a
// public conversation, and ends (not reopenable) when its last participant
// leaves.
type Conversation struct {
	ID           string
	Privacy      Privacy
	Participants []string // ordered set: insertion order, no duplicates.
	Turns        []Turn
	StartedTick  int
	EndedTick    *int

	// LastTurnTick tracks, per participant, the tick at which that
	// participant most recently received the conversation's state — used
	// only to compute UnseenTurns.
	LastTurnTick map[string]int
}

// NewConversation constructs a conversation with its founding participants.
func NewConversation(id string, privacy Privacy, startedTick int, founders ...string) *Conversation {
	c := &Conversation{
		ID:           id,
		Privacy:      privacy,
		StartedTick:  startedTick,
		LastTurnTick: map[string]int{},
	}
	for _, f := range founders {
		c.addParticipant(f)
	}
	return c
}

func (c *Conversation) addParticipant(name string) {
	for _, p := range c.Participants {
		if p == name {
			return
		}
	}
	c.Participants = append(c.Participants, name)
	if c.LastTurnTick == nil {
		c.LastTurnTick = map[string]int{}
	}
	c.LastTurnTick[name] = c.StartedTick
}

// Join adds a participant if not already present.
func (c *Conversation) Join(name string) {
	c.addParticipant(name)
}

// Leave removes a participant. Returns true if the conversation is now
// ended (participants set became empty) as a result.
func (c *Conversation) Leave(name string, tick int) bool {
	for i, p := range c.Participants {
		if p == name {
			c.Participants = append(c.Participants[:i], c.Participants[i+1:]...)
			break
		}
	}
	delete(c.LastTurnTick, name)
	if len(c.Participants) == 0 && c.EndedTick == nil {
		c.EndedTick = &tick
		return true
	}
	return false
}

// HasParticipant reports whether name is currently a participant.
func (c *Conversation) HasParticipant(name string) bool {
	for _, p := range c.Participants {
		if p == name {
			return true
		}
	}
	return false
}

// AddTurn appends a turn to the globally-ordered history.
func (c *Conversation) AddTurn(speaker, text string, tick int) {
	c.Turns = append(c.Turns, Turn{Speaker: speaker, Text: text, Tick: tick})
}

// UnseenTurns returns the turns with Tick > the participant's last-seen
// tick.
func (c *Conversation) UnseenTurns(participant string) []Turn {
	last := c.LastTurnTick[participant]
	var out []Turn
	for _, t := range c.Turns {
		if t.Tick > last {
			out = append(out, t)
		}
	}
	return out
}

// MarkSeen updates a participant's last-seen tick to the handed-off tick.
func (c *Conversation) MarkSeen(participant string, tick int) {
	if c.LastTurnTick == nil {
		c.LastTurnTick = map[string]int{}
	}
	c.LastTurnTick[participant] = tick
}

// Ended reports whether the conversation has been logically retired.
func (c *Conversation) Ended() bool {
	return c.EndedTick != nil
}
